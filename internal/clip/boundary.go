// Package clip masks raster cells that fall outside a region boundary
// polygon. Boundaries come from shapefiles, get reprojected into the
// raster's spatial reference, and are indexed in an rtree so per-cell
// lookups only test nearby polygons.
package clip

import (
	"fmt"
	"os"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/geom/proj"

	"github.com/couchcryptid/normals-gridder/internal/domain"
)

// Boundary is a spatially indexed set of region polygons in the target
// projection.
type Boundary struct {
	index *rtree.Rtree
	count int
}

// LoadBoundary reads every polygonal feature from the shapefile at path
// and reprojects it into targetProj4 when the shapefile's own reference
// differs. A missing file or a shapefile with no polygonal features is a
// configuration problem, not a data one.
func LoadBoundary(path, targetProj4 string) (*Boundary, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, domain.NewConfigError(fmt.Errorf("boundary shapefile: %w", err))
	}
	dec, err := shp.NewDecoder(path)
	if err != nil {
		return nil, domain.NewConfigError(fmt.Errorf("open boundary shapefile %s: %w", path, err))
	}
	defer dec.Close()

	target, err := proj.Parse(targetProj4)
	if err != nil {
		return nil, domain.NewConfigError(fmt.Errorf("parse target projection: %w", err))
	}
	srcSR, err := dec.SR()
	if err != nil {
		return nil, domain.NewConfigError(fmt.Errorf("boundary spatial reference: %w", err))
	}
	transform, err := srcSR.NewTransform(target)
	if err != nil {
		return nil, domain.NewConfigError(fmt.Errorf("boundary reprojection: %w", err))
	}

	b := &Boundary{index: rtree.NewTree(25, 50)}
	for {
		g, _, more := dec.DecodeRowFields()
		if !more {
			break
		}
		g, err = g.Transform(transform)
		if err != nil {
			return nil, domain.NewConfigError(fmt.Errorf("reproject boundary feature: %w", err))
		}
		poly, ok := g.(geom.Polygonal)
		if !ok {
			continue
		}
		b.index.Insert(poly)
		b.count++
	}
	if err := dec.Error(); err != nil {
		return nil, domain.NewConfigError(fmt.Errorf("decode boundary shapefile %s: %w", path, err))
	}
	if b.count == 0 {
		return nil, domain.NewConfigError(fmt.Errorf("boundary shapefile %s has no polygonal features", path))
	}
	return b, nil
}

// NewBoundary indexes an already projected set of polygons.
func NewBoundary(polys ...geom.Polygonal) *Boundary {
	b := &Boundary{index: rtree.NewTree(25, 50)}
	for _, p := range polys {
		b.index.Insert(p)
		b.count++
	}
	return b
}

// NumFeatures reports how many polygons were indexed.
func (b *Boundary) NumFeatures() int { return b.count }
