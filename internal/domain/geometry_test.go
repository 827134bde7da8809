package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unitSquare is a 1x1 degree square with its lower-left corner at the origin.
func unitSquare(t *testing.T) Polygon {
	t.Helper()
	p, err := NewPolygon([]Ring{{
		{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 1}, {Lon: 0, Lat: 0},
	}})
	require.NoError(t, err)
	return p
}

func TestNewPolygon(t *testing.T) {
	t.Run("valid square", func(t *testing.T) {
		unitSquare(t)
	})

	t.Run("no rings", func(t *testing.T) {
		_, err := NewPolygon(nil)
		require.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("too few vertices", func(t *testing.T) {
		_, err := NewPolygon([]Ring{{
			{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 0, Lat: 0},
		}})
		require.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("unclosed ring", func(t *testing.T) {
		_, err := NewPolygon([]Ring{{
			{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 1},
		}})
		require.ErrorIs(t, err, ErrInvalidGeometry)
	})

	t.Run("zero area", func(t *testing.T) {
		_, err := NewPolygon([]Ring{{
			{Lon: 0, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 2, Lat: 2}, {Lon: 0, Lat: 0},
		}})
		require.ErrorIs(t, err, ErrInvalidGeometry)
	})
}

func TestContains(t *testing.T) {
	square := unitSquare(t)

	tests := []struct {
		name string
		pt   Point
		want bool
	}{
		{"interior", Point{Lon: 0.5, Lat: 0.5}, true},
		{"outside right", Point{Lon: 1.5, Lat: 0.5}, false},
		{"outside above", Point{Lon: 0.5, Lat: 1.5}, false},
		{"far away", Point{Lon: 100, Lat: -40}, false},
		// Boundary points count as contained. This is the documented
		// containment policy the aggregator depends on.
		{"on bottom edge", Point{Lon: 0.5, Lat: 0}, true},
		{"on right edge", Point{Lon: 1, Lat: 0.5}, true},
		{"on vertex", Point{Lon: 0, Lat: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, square.Contains(tt.pt))
		})
	}
}

func TestContains_Hole(t *testing.T) {
	// Unit square with a centered 0.4x0.4 hole.
	p, err := NewPolygon([]Ring{
		{{Lon: 0, Lat: 0}, {Lon: 1, Lat: 0}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 1}, {Lon: 0, Lat: 0}},
		{{Lon: 0.3, Lat: 0.3}, {Lon: 0.3, Lat: 0.7}, {Lon: 0.7, Lat: 0.7}, {Lon: 0.7, Lat: 0.3}, {Lon: 0.3, Lat: 0.3}},
	})
	require.NoError(t, err)

	assert.False(t, p.Contains(Point{Lon: 0.5, Lat: 0.5}), "point inside the hole")
	assert.True(t, p.Contains(Point{Lon: 0.1, Lat: 0.1}), "point between outer ring and hole")
	assert.True(t, p.Contains(Point{Lon: 0.3, Lat: 0.5}), "point on the hole boundary")
}

func TestCentroid(t *testing.T) {
	t.Run("square", func(t *testing.T) {
		c := unitSquare(t).Centroid()
		assert.InDelta(t, 0.5, c.Lon, 1e-12)
		assert.InDelta(t, 0.5, c.Lat, 1e-12)
	})

	t.Run("area weighted, not vertex average", func(t *testing.T) {
		// An L-shaped polygon: vertex average and area centroid differ.
		p, err := NewPolygon([]Ring{{
			{Lon: 0, Lat: 0}, {Lon: 2, Lat: 0}, {Lon: 2, Lat: 1},
			{Lon: 1, Lat: 1}, {Lon: 1, Lat: 2}, {Lon: 0, Lat: 2}, {Lon: 0, Lat: 0},
		}})
		require.NoError(t, err)

		c := p.Centroid()
		// Decompose: 2x1 rectangle centered (1, 0.5) area 2, plus 1x1
		// square centered (0.5, 1.5) area 1.
		assert.InDelta(t, (2*1.0+1*0.5)/3, c.Lon, 1e-12)
		assert.InDelta(t, (2*0.5+1*1.5)/3, c.Lat, 1e-12)
	})

	t.Run("clockwise winding gives the same centroid", func(t *testing.T) {
		ccw := unitSquare(t)
		cw, err := NewPolygon([]Ring{{
			{Lon: 0, Lat: 0}, {Lon: 0, Lat: 1}, {Lon: 1, Lat: 1}, {Lon: 1, Lat: 0}, {Lon: 0, Lat: 0},
		}})
		require.NoError(t, err)
		assert.Equal(t, ccw.Centroid(), cw.Centroid())
	})
}

func TestAreaHectares(t *testing.T) {
	// A 0.01 x 0.01 degree square at the equator is roughly 1.113 km on a
	// side in Web Mercator, about 124 ha.
	p, err := NewPolygon([]Ring{{
		{Lon: 0, Lat: 0}, {Lon: 0.01, Lat: 0}, {Lon: 0.01, Lat: 0.01}, {Lon: 0, Lat: 0.01}, {Lon: 0, Lat: 0},
	}})
	require.NoError(t, err)

	area := p.AreaHectares()
	assert.InDelta(t, 124, area, 1.0)
}

func TestAreaHectares_HoleSubtracts(t *testing.T) {
	full, err := NewPolygon([]Ring{{
		{Lon: 0, Lat: 0}, {Lon: 0.01, Lat: 0}, {Lon: 0.01, Lat: 0.01}, {Lon: 0, Lat: 0.01}, {Lon: 0, Lat: 0},
	}})
	require.NoError(t, err)

	holed, err := NewPolygon([]Ring{
		{{Lon: 0, Lat: 0}, {Lon: 0.01, Lat: 0}, {Lon: 0.01, Lat: 0.01}, {Lon: 0, Lat: 0.01}, {Lon: 0, Lat: 0}},
		{{Lon: 0.002, Lat: 0.002}, {Lon: 0.008, Lat: 0.002}, {Lon: 0.008, Lat: 0.008}, {Lon: 0.002, Lat: 0.008}, {Lon: 0.002, Lat: 0.002}},
	})
	require.NoError(t, err)

	assert.Less(t, holed.AreaHectares(), full.AreaHectares())
}
