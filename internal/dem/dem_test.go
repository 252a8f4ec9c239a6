package dem_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/normals-gridder/internal/dem"
	"github.com/couchcryptid/normals-gridder/internal/domain"
)

// 3x3 grid, 100m cells, lower-left corner at origin. Row 0 in the file is
// the northern row.
const asc = `ncols 3
nrows 3
xllcorner 0
yllcorner 0
cellsize 100
NODATA_value -9999
70 80 90
40 50 60
10 20 -9999
`

func writeASC(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dem.asc")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestOpen_MissingFileIsConfigError(t *testing.T) {
	_, err := dem.Open(filepath.Join(t.TempDir(), "missing.asc"))
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestOpen_CellCountMismatch(t *testing.T) {
	path := writeASC(t, `ncols 2
nrows 2
xllcorner 0
yllcorner 0
cellsize 100
NODATA_value -9999
1 2 3
`)
	_, err := dem.Open(path)
	assert.Error(t, err)
}

func TestSample_CellCenters(t *testing.T) {
	m, err := dem.Open(writeASC(t, asc))
	require.NoError(t, err)

	// Center of the northwest cell.
	v, ok := m.Sample(50, 250)
	require.True(t, ok)
	assert.InDelta(t, 70, v, 1e-9)

	// Center of the middle cell.
	v, ok = m.Sample(150, 150)
	require.True(t, ok)
	assert.InDelta(t, 50, v, 1e-9)
}

func TestSample_BilinearBetweenCenters(t *testing.T) {
	m, err := dem.Open(writeASC(t, asc))
	require.NoError(t, err)

	// Halfway between the centers of the middle cell (50) and its eastern
	// neighbor (60).
	v, ok := m.Sample(200, 150)
	require.True(t, ok)
	assert.InDelta(t, 55, v, 1e-9)
}

func TestSample_EdgeClamp(t *testing.T) {
	m, err := dem.Open(writeASC(t, asc))
	require.NoError(t, err)

	// Far outside the extent clamps to the nearest corner cell.
	v, ok := m.Sample(-1e6, 1e6)
	require.True(t, ok)
	assert.InDelta(t, 70, v, 1e-9)
}

func TestSample_NodataFallsBackToNearestValidCorner(t *testing.T) {
	m, err := dem.Open(writeASC(t, asc))
	require.NoError(t, err)

	// The southeast cell is nodata; sampling just inside it returns a
	// nearby valid value instead of failing.
	v, ok := m.Sample(240, 60)
	require.True(t, ok)
	assert.Contains(t, []float64{20, 60}, v)
}

func TestSample_AllNodata(t *testing.T) {
	m, err := dem.Open(writeASC(t, `ncols 1
nrows 1
xllcorner 0
yllcorner 0
cellsize 100
NODATA_value -9999
-9999
`))
	require.NoError(t, err)

	_, ok := m.Sample(50, 50)
	assert.False(t, ok)
}
