package domain

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for the two failure classes the core distinguishes.
// Callers match with errors.Is; wrapped variants carry detail.
var (
	// ErrInvalidGeometry marks a malformed input polygon (unclosed ring,
	// too few vertices, zero area). Detected before any aggregation.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrDataUnavailable marks a sample table that is missing, unreadable,
	// or empty. Distinct from a polygon that merely contains no samples,
	// which is a normal fallback case.
	ErrDataUnavailable = errors.New("sample data unavailable")
)

// Point is a WGS-84 coordinate. X is longitude, Y is latitude.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Ring is a closed linear ring: the first and last vertex are equal.
type Ring []Point

// Polygon is a planar polygon in geographic coordinates. Rings[0] is the
// outer boundary; any further rings are holes. Construct via NewPolygon or
// ParseGeoJSON so validation has run.
type Polygon struct {
	rings []Ring
}

// onSegmentEpsilon bounds the cross-product test that decides whether a
// point lies on a ring edge. Boundary points count as contained.
const onSegmentEpsilon = 1e-12

// NewPolygon validates a ring set and returns a Polygon.
// Each ring must be closed and have at least four vertices (triangle plus
// the closing vertex), and the outer ring must enclose a non-zero area.
func NewPolygon(rings []Ring) (Polygon, error) {
	if len(rings) == 0 {
		return Polygon{}, fmt.Errorf("%w: no rings", ErrInvalidGeometry)
	}
	for i, ring := range rings {
		if len(ring) < 4 {
			return Polygon{}, fmt.Errorf("%w: ring %d has %d vertices, need at least 4", ErrInvalidGeometry, i, len(ring))
		}
		if ring[0] != ring[len(ring)-1] {
			return Polygon{}, fmt.Errorf("%w: ring %d is not closed", ErrInvalidGeometry, i)
		}
	}
	p := Polygon{rings: rings}
	if math.Abs(signedArea(rings[0])) == 0 {
		return Polygon{}, fmt.Errorf("%w: outer ring has zero area", ErrInvalidGeometry)
	}
	return p, nil
}

// Rings returns the validated ring set. The slice is shared, not copied;
// callers treat polygons as immutable.
func (p Polygon) Rings() []Ring { return p.rings }

// Contains reports whether pt lies inside the polygon under the even-odd
// rule. Points exactly on any ring edge are contained; this is the policy
// the aggregator relies on and the tests pin down.
func (p Polygon) Contains(pt Point) bool {
	inside := false
	for _, ring := range p.rings {
		for i := 0; i < len(ring)-1; i++ {
			a, b := ring[i], ring[i+1]
			if onSegment(pt, a, b) {
				return true
			}
			// Even-odd ray cast: count edges crossing a ray going east from pt.
			if (a.Lat > pt.Lat) != (b.Lat > pt.Lat) {
				xCross := a.Lon + (pt.Lat-a.Lat)/(b.Lat-a.Lat)*(b.Lon-a.Lon)
				if pt.Lon < xCross {
					inside = !inside
				}
			}
		}
	}
	return inside
}

// Centroid returns the area-weighted geometric centroid of the polygon,
// not the average of its vertices. Ring winding is normalized so the outer
// ring contributes positively and holes subtract, whatever order the input
// used.
func (p Polygon) Centroid() Point {
	var areaSum, cxSum, cySum float64
	for ri, ring := range p.rings {
		a := signedArea(ring)
		cx, cy := ringCentroidNumerator(ring)
		flip := false
		if ri == 0 {
			flip = a < 0
		} else {
			flip = a > 0
		}
		if flip {
			a, cx, cy = -a, -cx, -cy
		}
		areaSum += a
		cxSum += cx
		cySum += cy
	}
	if areaSum == 0 {
		// Degenerate ring set; fall back to the first vertex.
		return p.rings[0][0]
	}
	return Point{Lon: cxSum / (6 * areaSum), Lat: cySum / (6 * areaSum)}
}

// AreaHectares projects the polygon to Web Mercator (EPSG:3857) and returns
// the planar area in hectares. Holes subtract. This mirrors the fixed
// EPSG:4326 to EPSG:3857 transform the service has always priced against;
// it is a pricing convention, not a geodetically exact area.
func (p Polygon) AreaHectares() float64 {
	var total float64
	for i, ring := range p.rings {
		projected := make(Ring, len(ring))
		for j, pt := range ring {
			projected[j] = mercator(pt)
		}
		a := math.Abs(signedArea(projected))
		if i == 0 {
			total += a
		} else {
			total -= a
		}
	}
	if total < 0 {
		total = 0
	}
	return total / 10_000 // m^2 to hectares
}

const earthRadiusM = 6378137.0

// mercator applies the spherical Web Mercator forward transform.
func mercator(pt Point) Point {
	x := earthRadiusM * pt.Lon * math.Pi / 180
	lat := pt.Lat
	// Clamp away from the poles where the projection diverges.
	if lat > 89.9 {
		lat = 89.9
	}
	if lat < -89.9 {
		lat = -89.9
	}
	y := earthRadiusM * math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))
	return Point{Lon: x, Lat: y}
}

// signedArea is twice the shoelace sum of a closed ring. Positive for
// counter-clockwise winding.
func signedArea(ring Ring) float64 {
	var sum float64
	for i := 0; i < len(ring)-1; i++ {
		sum += ring[i].Lon*ring[i+1].Lat - ring[i+1].Lon*ring[i].Lat
	}
	return sum / 2
}

// ringCentroidNumerator accumulates the shoelace centroid numerators for a
// ring; the caller divides by 6*signedArea.
func ringCentroidNumerator(ring Ring) (float64, float64) {
	var cx, cy float64
	for i := 0; i < len(ring)-1; i++ {
		cross := ring[i].Lon*ring[i+1].Lat - ring[i+1].Lon*ring[i].Lat
		cx += (ring[i].Lon + ring[i+1].Lon) * cross
		cy += (ring[i].Lat + ring[i+1].Lat) * cross
	}
	return cx, cy
}

// onSegment reports whether pt lies on the segment a-b within epsilon.
func onSegment(pt, a, b Point) bool {
	cross := (b.Lon-a.Lon)*(pt.Lat-a.Lat) - (b.Lat-a.Lat)*(pt.Lon-a.Lon)
	if math.Abs(cross) > onSegmentEpsilon {
		return false
	}
	dot := (pt.Lon-a.Lon)*(b.Lon-a.Lon) + (pt.Lat-a.Lat)*(b.Lat-a.Lat)
	if dot < 0 {
		return false
	}
	lenSq := (b.Lon-a.Lon)*(b.Lon-a.Lon) + (b.Lat-a.Lat)*(b.Lat-a.Lat)
	return dot <= lenSq
}
