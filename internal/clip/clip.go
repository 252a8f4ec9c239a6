package clip

import (
	"math"

	"github.com/ctessum/geom"

	"github.com/couchcryptid/normals-gridder/internal/raster"
)

// Clip returns a copy of the surface with every cell outside the boundary
// set to NaN. A cell counts as inside when any boundary polygon overlaps
// it with positive area, so edge cells touched by the boundary keep their
// values.
func (b *Boundary) Clip(s *raster.Surface) *raster.Surface {
	out := s.Clone()
	for r := 0; r < out.Rows(); r++ {
		for c := 0; c < out.Cols(); c++ {
			if !b.covers(out.Transform, r, c) {
				out.Data[r][c] = math.NaN()
			}
		}
	}
	return out
}

func (b *Boundary) covers(t raster.Affine, row, col int) bool {
	xmin, ymin, xmax, ymax := t.CellBounds(row, col)
	cell := geom.Polygon{{
		{X: xmin, Y: ymin},
		{X: xmax, Y: ymin},
		{X: xmax, Y: ymax},
		{X: xmin, Y: ymax},
	}}
	bounds := cell.Bounds()
	for _, hit := range b.index.SearchIntersect(bounds) {
		poly := hit.(geom.Polygonal)
		isect := poly.Intersection(cell)
		if isect != nil && isect.Area() > 0 {
			return true
		}
	}
	return false
}
