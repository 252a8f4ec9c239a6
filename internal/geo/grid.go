package geo

import (
	"fmt"
	"math"

	"github.com/couchcryptid/normals-gridder/internal/domain"
)

// BuildGrid produces the regular sampling mesh over the projected bounding
// box. Both coordinate sequences ascend from the minimum bound in steps of
// exactly resolution, extending one step past the maximum when it is not an
// exact multiple, so the grid always covers the full bound. Values are
// computed multiplicatively (min + i*resolution) to avoid accumulation
// drift; the result depends only on bounds and resolution.
func BuildGrid(bounds domain.ProjectedBounds, resolution float64) (domain.Grid, error) {
	if resolution <= 0 {
		return domain.Grid{}, domain.NewConfigError(fmt.Errorf("grid resolution must be positive, got %g", resolution))
	}
	if bounds.XMax <= bounds.XMin || bounds.YMax <= bounds.YMin {
		return domain.Grid{}, domain.NewConfigError(fmt.Errorf("degenerate bounds %+v", bounds))
	}

	return domain.Grid{
		X:          sequence(bounds.XMin, bounds.XMax, resolution),
		Y:          sequence(bounds.YMin, bounds.YMax, resolution),
		Resolution: resolution,
	}, nil
}

// sequence returns min, min+step, ... covering [min, max]. The relative
// tolerance keeps an exact multiple of step from growing a spurious extra
// node to float rounding.
func sequence(min, max, step float64) []float64 {
	const tol = 1e-9
	n := int(math.Ceil((max-min)/step-tol)) + 1
	if min+float64(n-1)*step < max-(max-min)*tol {
		n++
	}
	seq := make([]float64, n)
	for i := range seq {
		seq[i] = min + float64(i)*step
	}
	return seq
}
