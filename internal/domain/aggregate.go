package domain

import "fmt"

// Aggregate reduces a sample table to a single representative value for the
// polygon: the arithmetic mean of contained samples when any exist,
// otherwise the value of the sample nearest to the polygon's area-weighted
// centroid. Distance ties keep the earliest sample in the input, so the
// fallback is deterministic for a fixed table order.
//
// An empty table returns ErrDataUnavailable; the aggregator never invents
// a value.
func Aggregate(polygon Polygon, samples []Sample) (float64, error) {
	value, _, err := AggregateDetailed(polygon, samples)
	return value, err
}

// AggregateDetailed is Aggregate plus a flag reporting whether the
// nearest-sample fallback was taken, which the service layer counts.
func AggregateDetailed(polygon Polygon, samples []Sample) (float64, bool, error) {
	if len(samples) == 0 {
		return 0, false, fmt.Errorf("%w: empty sample table", ErrDataUnavailable)
	}

	var sum float64
	var contained int
	for _, s := range samples {
		if polygon.Contains(Point{Lon: s.Lon, Lat: s.Lat}) {
			sum += s.Value
			contained++
		}
	}
	if contained > 0 {
		return sum / float64(contained), false, nil
	}

	// Fallback: nearest sample to the centroid. Squared Euclidean distance
	// preserves ordering, so no square root is taken.
	centroid := polygon.Centroid()
	best := 0
	bestDist := distSq(centroid, samples[0])
	for i := 1; i < len(samples); i++ {
		if d := distSq(centroid, samples[i]); d < bestDist {
			best, bestDist = i, d
		}
	}
	return samples[best].Value, true, nil
}

func distSq(p Point, s Sample) float64 {
	dx := p.Lon - s.Lon
	dy := p.Lat - s.Lat
	return dx*dx + dy*dy
}
