// Package raster holds the gridded surface produced by interpolation and
// writes it out as a georeferenced GeoTIFF.
package raster

// Surface is a single-band north-up raster: Data[0] is the northernmost
// row. The transform and spatial reference travel with the values so the
// clipper and the writer need no extra context.
type Surface struct {
	Data      [][]float64
	Transform Affine
	Proj4     string
	EPSG      int
}

// Rows returns the row count.
func (s *Surface) Rows() int { return len(s.Data) }

// Cols returns the column count, 0 for an empty surface.
func (s *Surface) Cols() int {
	if len(s.Data) == 0 {
		return 0
	}
	return len(s.Data[0])
}

// FlipRows returns the grid with its row order reversed. Interpolation
// emits row 0 at the minimum y; rasters want row 0 at the maximum y.
func FlipRows(grid [][]float64) [][]float64 {
	out := make([][]float64, len(grid))
	for i := range grid {
		out[i] = grid[len(grid)-1-i]
	}
	return out
}

// Clone copies the surface with fresh row storage so the caller can mask
// values without touching the original.
func (s *Surface) Clone() *Surface {
	data := make([][]float64, len(s.Data))
	for i, row := range s.Data {
		data[i] = make([]float64, len(row))
		copy(data[i], row)
	}
	return &Surface{Data: data, Transform: s.Transform, Proj4: s.Proj4, EPSG: s.EPSG}
}
