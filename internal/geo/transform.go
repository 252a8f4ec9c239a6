// Package geo covers the planar-geometry stages between loading and
// interpolation: reprojection into the regional coordinate system, spatial
// declustering, and regular grid construction.
package geo

import (
	"fmt"

	"github.com/ctessum/geom/proj"

	"github.com/couchcryptid/normals-gridder/internal/domain"
)

// longlatProj4 is the spatial reference of the station file's coordinates.
const longlatProj4 = "+proj=longlat +datum=WGS84 +no_defs"

// Projector transforms geographic coordinates into a region's planar
// projection. Downstream coordinate order is always (x=easting, y=northing).
type Projector struct {
	forward proj.Transformer
	proj4   string
}

// NewProjector parses the region's proj4 definition and prepares the
// geodetic-to-projected transform. A malformed or unsupported definition is
// a configuration error reported with the offending string.
func NewProjector(regionProj4 string) (*Projector, error) {
	src, err := proj.Parse(longlatProj4)
	if err != nil {
		return nil, fmt.Errorf("parsing longlat reference: %w", err)
	}
	dst, err := proj.Parse(regionProj4)
	if err != nil {
		return nil, domain.NewConfigError(fmt.Errorf("parsing projection %q: %w", regionProj4, err))
	}
	forward, err := src.NewTransform(dst)
	if err != nil {
		return nil, domain.NewConfigError(fmt.Errorf("building transform to %q: %w", regionProj4, err))
	}
	return &Projector{forward: forward, proj4: regionProj4}, nil
}

// Project transforms one geographic coordinate pair (lon, lat in degrees)
// into projected (x, y) meters.
func (p *Projector) Project(lon, lat float64) (x, y float64, err error) {
	x, y, err = p.forward(lon, lat)
	if err != nil {
		return 0, 0, fmt.Errorf("projecting (%.4f, %.4f): %w", lon, lat, err)
	}
	return x, y, nil
}

// ProjectStations transforms every station into the regional projection,
// preserving input order.
func (p *Projector) ProjectStations(records []domain.StationRecord) ([]domain.ProjectedPoint, error) {
	pts := make([]domain.ProjectedPoint, 0, len(records))
	for _, rec := range records {
		x, y, err := p.Project(rec.Longitude, rec.Latitude)
		if err != nil {
			return nil, fmt.Errorf("station %s: %w", rec.ID, err)
		}
		pts = append(pts, domain.ProjectedPoint{X: x, Y: y, Value: rec.Value})
	}
	return pts, nil
}

// ProjectBounds transforms the geographic bounding box's southwest and
// northeast corners into projected units.
func (p *Projector) ProjectBounds(b domain.GeographicBounds) (domain.ProjectedBounds, error) {
	xMin, yMin, err := p.Project(b.West, b.South)
	if err != nil {
		return domain.ProjectedBounds{}, fmt.Errorf("projecting southwest corner: %w", err)
	}
	xMax, yMax, err := p.Project(b.East, b.North)
	if err != nil {
		return domain.ProjectedBounds{}, fmt.Errorf("projecting northeast corner: %w", err)
	}
	return domain.ProjectedBounds{XMin: xMin, XMax: xMax, YMin: yMin, YMax: yMax}, nil
}
