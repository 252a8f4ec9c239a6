package raster_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/normals-gridder/internal/raster"
)

func TestFromOrigin(t *testing.T) {
	a := raster.FromOrigin(-100000, 250000, 10000, 10000)

	assert.Equal(t, -100000.0, a.XOrigin)
	assert.Equal(t, 250000.0, a.YOrigin)
	assert.Equal(t, 10000.0, a.XSize)
	assert.Equal(t, -10000.0, a.YSize)
}

func TestCellBounds_NorthUp(t *testing.T) {
	a := raster.FromOrigin(0, 30000, 10000, 10000)

	// Top-left pixel spans the northernmost strip.
	xmin, ymin, xmax, ymax := a.CellBounds(0, 0)
	assert.Equal(t, 0.0, xmin)
	assert.Equal(t, 10000.0, xmax)
	assert.Equal(t, 20000.0, ymin)
	assert.Equal(t, 30000.0, ymax)

	// Rows move south, columns move east.
	xmin, ymin, xmax, ymax = a.CellBounds(2, 1)
	assert.Equal(t, 10000.0, xmin)
	assert.Equal(t, 20000.0, xmax)
	assert.Equal(t, 0.0, ymin)
	assert.Equal(t, 10000.0, ymax)
}

func TestFlipRows(t *testing.T) {
	in := [][]float64{{1, 2}, {3, 4}, {5, 6}}

	out := raster.FlipRows(in)

	assert.Equal(t, [][]float64{{5, 6}, {3, 4}, {1, 2}}, out)
	// The input is left untouched.
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}, {5, 6}}, in)
}

func TestSurface_Clone(t *testing.T) {
	s := &raster.Surface{
		Data:      [][]float64{{1, 2}, {3, 4}},
		Transform: raster.FromOrigin(0, 2000, 1000, 1000),
		Proj4:     "+proj=longlat",
		EPSG:      4326,
	}

	c := s.Clone()
	c.Data[0][0] = math.NaN()

	assert.Equal(t, 1.0, s.Data[0][0])
	assert.Equal(t, s.EPSG, c.EPSG)
}

func TestSurface_Shape(t *testing.T) {
	s := &raster.Surface{Data: [][]float64{{1, 2, 3}, {4, 5, 6}}}
	assert.Equal(t, 2, s.Rows())
	assert.Equal(t, 3, s.Cols())

	empty := &raster.Surface{}
	require.Zero(t, empty.Rows())
	assert.Zero(t, empty.Cols())
}
