// Package dem reads digital elevation models in the Arc/Info ASCII grid
// format (.asc) and samples them at projected coordinates. The ancillary
// DEMs are resampled offline into each region's projection, so sampling is
// a direct planar lookup.
package dem

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/normals-gridder/internal/domain"
)

// Model is a loaded DEM: row 0 is the northernmost row, as stored.
type Model struct {
	ncols, nrows       int
	xll, yll, cellsize float64
	nodata             float64
	data               []float64 // row-major, nrows*ncols
}

// Open reads an Arc/Info ASCII grid. A missing file is a configuration
// error: regions that request elevation drift must ship a DEM.
func Open(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewConfigError(fmt.Errorf("open DEM %s: %w", path, err))
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	m := &Model{nodata: -9999}
	header := map[string]*float64{
		"xllcorner":    &m.xll,
		"yllcorner":    &m.yll,
		"cellsize":     &m.cellsize,
		"nodata_value": &m.nodata,
	}

	var values []float64
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		key := strings.ToLower(fields[0])

		// Header lines are "key value"; everything after them is data.
		if len(fields) == 2 && (key == "ncols" || key == "nrows") {
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("DEM %s: bad %s: %w", path, key, err)
			}
			if key == "ncols" {
				m.ncols = n
			} else {
				m.nrows = n
			}
			continue
		}
		if dst, ok := header[key]; ok && len(fields) == 2 {
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return nil, fmt.Errorf("DEM %s: bad %s: %w", path, key, err)
			}
			*dst = v
			continue
		}

		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("DEM %s: bad cell value %q: %w", path, field, err)
			}
			values = append(values, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading DEM %s: %w", path, err)
	}

	if m.ncols <= 0 || m.nrows <= 0 || m.cellsize <= 0 {
		return nil, fmt.Errorf("DEM %s: incomplete header (ncols=%d nrows=%d cellsize=%g)",
			path, m.ncols, m.nrows, m.cellsize)
	}
	if len(values) != m.ncols*m.nrows {
		return nil, fmt.Errorf("DEM %s: expected %d cells, found %d", path, m.ncols*m.nrows, len(values))
	}
	m.data = values
	return m, nil
}

// Sample returns the elevation at projected (x, y) using bilinear
// interpolation between the four surrounding cell centers. Coordinates
// outside the DEM extent clamp to the edge; a nodata corner degrades to the
// nearest valid corner. The second return is false only when every corner
// is nodata.
func (m *Model) Sample(x, y float64) (float64, bool) {
	// Cell-center coordinates: column c center is at xll + (c+0.5)*cellsize.
	fc := (x-m.xll)/m.cellsize - 0.5
	fr := (m.yll+float64(m.nrows)*m.cellsize-y)/m.cellsize - 0.5

	fc = clamp(fc, 0, float64(m.ncols-1))
	fr = clamp(fr, 0, float64(m.nrows-1))

	c0 := int(math.Floor(fc))
	r0 := int(math.Floor(fr))
	c1 := minInt(c0+1, m.ncols-1)
	r1 := minInt(r0+1, m.nrows-1)
	tx := fc - float64(c0)
	ty := fr - float64(r0)

	v00, ok00 := m.at(r0, c0)
	v01, ok01 := m.at(r0, c1)
	v10, ok10 := m.at(r1, c0)
	v11, ok11 := m.at(r1, c1)

	if ok00 && ok01 && ok10 && ok11 {
		top := v00*(1-tx) + v01*tx
		bottom := v10*(1-tx) + v11*tx
		return top*(1-ty) + bottom*ty, true
	}

	// Nearest valid corner fallback along coastlines and DEM edges.
	type corner struct {
		v    float64
		ok   bool
		dist float64
	}
	corners := []corner{
		{v00, ok00, tx*tx + ty*ty},
		{v01, ok01, (1-tx)*(1-tx) + ty*ty},
		{v10, ok10, tx*tx + (1-ty)*(1-ty)},
		{v11, ok11, (1-tx)*(1-tx) + (1-ty)*(1-ty)},
	}
	best := -1
	for i, c := range corners {
		if c.ok && (best < 0 || c.dist < corners[best].dist) {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return corners[best].v, true
}

func (m *Model) at(r, c int) (float64, bool) {
	v := m.data[r*m.ncols+c]
	if v == m.nodata {
		return 0, false
	}
	return v, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
