// Package drift supplies the auxiliary covariates for universal kriging as
// a small set of strategies selected by region configuration, rather than
// conditional branches inside the interpolator.
//
// Each covariate normalizes over a basis point set (the union of station
// locations and grid nodes) so its value lies in [0, 1] at every location
// the kriging system evaluates.
package drift

import (
	"fmt"

	"github.com/couchcryptid/normals-gridder/internal/dem"
	"github.com/couchcryptid/normals-gridder/internal/domain"
)

// Covariate is a named external-trend predictor evaluated at projected
// coordinates.
type Covariate struct {
	Name string
	At   func(x, y float64) float64
}

// Latitude builds the latitude-gradient covariate, normalizing northing
// over the basis extent: (y - min) / (max - min). An empty basis or zero
// northing range makes the normalization a division by zero and is a
// numerical error.
func Latitude(basis []domain.ProjectedPoint) (Covariate, error) {
	if len(basis) == 0 {
		return Covariate{}, domain.NewNumericalError(fmt.Errorf("latitude drift: empty basis"))
	}
	minY, maxY := basis[0].Y, basis[0].Y
	for _, p := range basis[1:] {
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	if maxY == minY {
		return Covariate{}, domain.NewNumericalError(
			fmt.Errorf("latitude drift: all %d basis points share northing %g", len(basis), minY))
	}
	span := maxY - minY
	return Covariate{
		Name: "latitude",
		At:   func(_, y float64) float64 { return (y - minY) / span },
	}, nil
}

// Elevation builds the DEM-backed covariate: each location samples the
// first band of the DEM and normalizes across the elevations seen at the
// basis points. A missing DEM is a configuration error; a degenerate
// (zero-range) sampled set is a numerical error.
func Elevation(demPath string, basis []domain.ProjectedPoint) (Covariate, error) {
	model, err := dem.Open(demPath)
	if err != nil {
		return Covariate{}, err
	}
	if len(basis) == 0 {
		return Covariate{}, domain.NewNumericalError(fmt.Errorf("elevation drift: empty basis"))
	}

	var minE, maxE float64
	seen := false
	for _, p := range basis {
		e, ok := model.Sample(p.X, p.Y)
		if !ok {
			continue
		}
		if !seen {
			minE, maxE = e, e
			seen = true
			continue
		}
		if e < minE {
			minE = e
		}
		if e > maxE {
			maxE = e
		}
	}
	if !seen {
		return Covariate{}, domain.NewNumericalError(
			fmt.Errorf("elevation drift: DEM %s has no data at any of %d basis points", demPath, len(basis)))
	}
	if maxE == minE {
		return Covariate{}, domain.NewNumericalError(
			fmt.Errorf("elevation drift: degenerate elevation range %g over %d basis points", minE, len(basis)))
	}
	span := maxE - minE

	return Covariate{
		Name: "elevation",
		At: func(x, y float64) float64 {
			e, ok := model.Sample(x, y)
			if !ok {
				e = minE // open water and DEM gaps read as the regional floor
			}
			return (e - minE) / span
		},
	}, nil
}

// ForRegion assembles the covariate set a region's configuration calls for:
// latitude always, elevation only when the region ships a DEM.
func ForRegion(region domain.RegionConfig, basis []domain.ProjectedPoint) ([]Covariate, error) {
	lat, err := Latitude(basis)
	if err != nil {
		return nil, err
	}
	covs := []Covariate{lat}

	if region.HasElevationDrift() {
		elev, err := Elevation(region.DEMFile, basis)
		if err != nil {
			return nil, err
		}
		covs = append(covs, elev)
	}
	return covs, nil
}
