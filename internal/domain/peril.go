package domain

import (
	"fmt"
	"math"
)

// Peril names a category of agricultural risk.
type Peril string

const (
	PerilDrought    Peril = "drought"
	PerilFlood      Peril = "flood"
	PerilHail       Peril = "hail"
	PerilFrost      Peril = "frost"
	PerilPestilence Peril = "pestilence"
)

// Perils lists the five perils in scoring and reporting order.
var Perils = []Peril{PerilDrought, PerilFlood, PerilHail, PerilFrost, PerilPestilence}

// PerilScore is one scored peril with its user-facing explanation.
type PerilScore struct {
	Peril       Peril   `json:"peril"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// PerilSet holds the five peril scores keyed by name.
type PerilSet map[Peril]PerilScore

// ScorePerils maps the three dataset aggregates to the five peril scores.
// It is a pure function: callers must have resolved any missing aggregate
// to a concrete number before invoking it. Scores are clamped to [0, 1]
// and rounded to three decimals.
func ScorePerils(ndvi, elevation, weather float64) PerilSet {
	elevFactor := elevation / 2000

	scores := map[Peril]float64{
		PerilDrought:    1 - (ndvi + weather/20),
		PerilFlood:      1 - elevFactor + weather/20,
		PerilHail:       elevFactor*0.7 + 0.2,
		PerilFrost:      elevFactor*0.5 + (1-ndvi)*0.5,
		PerilPestilence: ndvi * 0.8,
	}

	set := make(PerilSet, len(scores))
	for peril, raw := range scores {
		score := roundTo(clamp01(raw), 3)
		set[peril] = PerilScore{
			Peril:       peril,
			Score:       score,
			Explanation: explain(peril, score, ndvi, elevation, weather),
		}
	}
	return set
}

// OverallRisk is the unweighted mean of the five peril scores, clamped to
// [0, 1] and rounded to three decimals.
func OverallRisk(set PerilSet) float64 {
	var sum float64
	for _, peril := range Perils {
		sum += set[peril].Score
	}
	return roundTo(clamp01(sum/float64(len(Perils))), 3)
}

// explain names the severity bucket and interpolates the two inputs that
// drive the peril. Elevation is reported in whole meters, everything else
// to two decimals.
func explain(peril Peril, score, ndvi, elevation, weather float64) string {
	bucket := severityBucket(score)
	switch peril {
	case PerilDrought:
		return fmt.Sprintf("%s drought risk: vegetation index %.2f with weather value %.2f", bucket, ndvi, weather)
	case PerilFlood:
		return fmt.Sprintf("%s flood risk: elevation %.0f m with weather value %.2f", bucket, elevation, weather)
	case PerilHail:
		return fmt.Sprintf("%s hail exposure at elevation %.0f m", bucket, elevation)
	case PerilFrost:
		return fmt.Sprintf("%s frost risk: elevation %.0f m with vegetation index %.2f", bucket, elevation, ndvi)
	case PerilPestilence:
		return fmt.Sprintf("%s pest pressure: vegetation index %.2f", bucket, ndvi)
	}
	return bucket
}

// severityBucket maps a score to its reporting bucket: high above 0.6,
// moderate above 0.3, low otherwise.
func severityBucket(score float64) string {
	switch {
	case score > 0.6:
		return "high"
	case score > 0.3:
		return "moderate"
	default:
		return "low"
	}
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// roundTo rounds half away from zero at the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
