package domain

// StationRecord is one usable row from the wide station CSV: a station's
// identity, geographic position, and the value of the requested variable.
// Records are immutable once loaded.
type StationRecord struct {
	ID        string  // NCEI station identifier, e.g. "USW00023174"
	Latitude  float64 // degrees north, WGS-84
	Longitude float64 // degrees east, WGS-84
	Value     float64 // the requested variable's normal value
	Flag      string  // completeness flag for that variable ("C", "S", or "R" after filtering)
}

// ProjectedPoint is a station's position in the regional planar projection,
// carrying the originating value. Created per (region, record) pair and
// discarded after interpolation.
type ProjectedPoint struct {
	X     float64 // easting, meters
	Y     float64 // northing, meters
	Value float64
}

// ProjectedBounds is a geographic bounding box after projection into the
// regional coordinate system.
type ProjectedBounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Contains reports whether (x, y) lies inside the bounds. Points exactly on
// an edge count as inside; the declusterer drops only strictly-outside points.
func (b ProjectedBounds) Contains(x, y float64) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

// GeographicBounds is a region's bounding box in geographic coordinates.
type GeographicBounds struct {
	West, South, East, North float64
}

// Grid holds the ascending coordinate sequences of the regular sampling mesh
// in the regional projection. Spacing is uniform and equal to the configured
// resolution; the last value of each sequence is >= the corresponding bound.
type Grid struct {
	X          []float64 // ascending eastings
	Y          []float64 // ascending northings
	Resolution float64   // meters
}

// NX returns the number of columns.
func (g Grid) NX() int { return len(g.X) }

// NY returns the number of rows.
func (g Grid) NY() int { return len(g.Y) }

// Nodes returns every grid node as a flat point list, row-major with y
// varying slowest. Used as the normalization basis for drift covariates.
func (g Grid) Nodes() []ProjectedPoint {
	pts := make([]ProjectedPoint, 0, len(g.X)*len(g.Y))
	for _, y := range g.Y {
		for _, x := range g.X {
			pts = append(pts, ProjectedPoint{X: x, Y: y})
		}
	}
	return pts
}

// RegionConfig describes one interpolation region. Instances come from the
// regions registry and are read-only for the pipeline's lifetime.
type RegionConfig struct {
	Name         string           // registry key, e.g. "conus"
	EPSG         int              // projected CRS code written into raster geokeys
	Proj4        string           // proj4 definition of the target projection
	Description  string           // human-readable projection description for metadata
	Bounds       GeographicBounds // geographic bounding box of the sampling domain
	BoundaryFile string           // polygon boundary used for clipping
	DEMFile      string           // elevation raster; empty disables elevation drift
}

// HasElevationDrift reports whether the region supplies a DEM for the
// elevation covariate. Puerto Rico intentionally does not.
func (r RegionConfig) HasElevationDrift() bool { return r.DEMFile != "" }
