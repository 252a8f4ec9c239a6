package raster

// Affine maps pixel (col, row) to projected coordinates. Only the
// axis-aligned north-up case is represented: positive x size, negative y
// size, origin at the northwest corner.
type Affine struct {
	XOrigin float64 // west edge of pixel (0, 0)
	YOrigin float64 // north edge of pixel (0, 0)
	XSize   float64
	YSize   float64 // negative for north-up rasters
}

// FromOrigin builds the transform for a north-up raster whose northwest
// corner is (west, north) with square-ish pixels of the given sizes.
func FromOrigin(west, north, xsize, ysize float64) Affine {
	return Affine{XOrigin: west, YOrigin: north, XSize: xsize, YSize: -ysize}
}

// CellBounds returns the projected rectangle covered by pixel (row, col)
// as (xmin, ymin, xmax, ymax).
func (a Affine) CellBounds(row, col int) (xmin, ymin, xmax, ymax float64) {
	xmin = a.XOrigin + float64(col)*a.XSize
	xmax = xmin + a.XSize
	ytop := a.YOrigin + float64(row)*a.YSize
	ybot := ytop + a.YSize
	if ybot < ytop {
		return xmin, ybot, xmax, ytop
	}
	return xmin, ytop, xmax, ybot
}
