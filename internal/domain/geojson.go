package domain

import (
	"encoding/json"
	"fmt"
)

// geoJSONGeometry is the subset of the GeoJSON geometry object the service
// accepts: a single Polygon with [lon, lat] positions.
type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates [][][]float64   `json:"coordinates"`
	Geometry    json.RawMessage `json:"geometry"` // present when a Feature is supplied
}

// ParseGeoJSON decodes a GeoJSON Polygon geometry, or a Feature wrapping
// one, into a validated Polygon. Drawing tools commonly emit the full
// Feature, so both shapes are accepted.
func ParseGeoJSON(data []byte) (Polygon, error) {
	var g geoJSONGeometry
	if err := json.Unmarshal(data, &g); err != nil {
		return Polygon{}, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	if g.Type == "Feature" {
		if len(g.Geometry) == 0 {
			return Polygon{}, fmt.Errorf("%w: feature has no geometry", ErrInvalidGeometry)
		}
		return ParseGeoJSON(g.Geometry)
	}

	if g.Type != "Polygon" {
		return Polygon{}, fmt.Errorf("%w: unsupported geometry type %q", ErrInvalidGeometry, g.Type)
	}

	rings := make([]Ring, len(g.Coordinates))
	for i, coords := range g.Coordinates {
		ring := make(Ring, len(coords))
		for j, pos := range coords {
			if len(pos) < 2 {
				return Polygon{}, fmt.Errorf("%w: ring %d position %d has %d coordinates", ErrInvalidGeometry, i, j, len(pos))
			}
			// Extra elements (altitude) are ignored.
			ring[j] = Point{Lon: pos[0], Lat: pos[1]}
		}
		rings[i] = ring
	}
	return NewPolygon(rings)
}
