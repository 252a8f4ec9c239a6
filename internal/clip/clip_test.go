package clip_test

import (
	"math"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/normals-gridder/internal/clip"
	"github.com/couchcryptid/normals-gridder/internal/raster"
)

func rect(xmin, ymin, xmax, ymax float64) geom.Polygon {
	return geom.Polygon{{
		{X: xmin, Y: ymin},
		{X: xmax, Y: ymin},
		{X: xmax, Y: ymax},
		{X: xmin, Y: ymax},
	}}
}

func fullSurface(rows, cols int) *raster.Surface {
	data := make([][]float64, rows)
	for r := range data {
		data[r] = make([]float64, cols)
		for c := range data[r] {
			data[r][c] = float64(r*cols + c + 1)
		}
	}
	return &raster.Surface{
		Data:      data,
		Transform: raster.FromOrigin(0, float64(rows)*1000, 1000, 1000),
		Proj4:     "+proj=aea",
	}
}

func TestClip_LeftHalf(t *testing.T) {
	// 4x4 grid of 1km cells; the polygon covers the two western columns.
	s := fullSurface(4, 4)
	b := clip.NewBoundary(rect(0, 0, 2000, 4000))

	out := b.Clip(s)

	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if c < 2 {
				assert.False(t, math.IsNaN(out.Data[r][c]), "cell (%d,%d) should survive", r, c)
				assert.Equal(t, s.Data[r][c], out.Data[r][c])
			} else {
				assert.True(t, math.IsNaN(out.Data[r][c]), "cell (%d,%d) should be masked", r, c)
			}
		}
	}
}

func TestClip_AllTouchedKeepsPartialOverlap(t *testing.T) {
	s := fullSurface(2, 2)
	// A sliver that only nicks the southwest cell's corner.
	b := clip.NewBoundary(rect(-500, -500, 100, 100))

	out := b.Clip(s)

	// Southwest cell is raster row 1 (north-up), column 0.
	assert.False(t, math.IsNaN(out.Data[1][0]))
	assert.True(t, math.IsNaN(out.Data[0][0]))
	assert.True(t, math.IsNaN(out.Data[0][1]))
	assert.True(t, math.IsNaN(out.Data[1][1]))
}

func TestClip_EdgeContactWithoutAreaIsOutside(t *testing.T) {
	s := fullSurface(1, 2)
	// Shares only the boundary line x=1000 with the eastern cell.
	b := clip.NewBoundary(rect(0, 0, 1000, 1000))

	out := b.Clip(s)

	assert.False(t, math.IsNaN(out.Data[0][0]))
	assert.True(t, math.IsNaN(out.Data[0][1]))
}

func TestClip_DoesNotMutateInput(t *testing.T) {
	s := fullSurface(2, 2)
	b := clip.NewBoundary(rect(-10, -10, 10, 10))

	_ = b.Clip(s)

	for r := range s.Data {
		for c := range s.Data[r] {
			require.False(t, math.IsNaN(s.Data[r][c]))
		}
	}
}

func TestClip_MultiplePolygons(t *testing.T) {
	s := fullSurface(1, 3)
	b := clip.NewBoundary(
		rect(100, 100, 900, 900),
		rect(2100, 100, 2900, 900),
	)

	out := b.Clip(s)

	assert.False(t, math.IsNaN(out.Data[0][0]))
	assert.True(t, math.IsNaN(out.Data[0][1]))
	assert.False(t, math.IsNaN(out.Data[0][2]))
}
