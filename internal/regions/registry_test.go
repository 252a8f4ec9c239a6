package regions_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/normals-gridder/internal/domain"
	"github.com/couchcryptid/normals-gridder/internal/regions"
)

func TestRegistry_Builtins(t *testing.T) {
	r, err := regions.NewRegistry("/data", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"alaska", "conus", "hawaii", "puerto_rico"}, r.Names())

	conus, err := r.Lookup("conus")
	require.NoError(t, err)
	assert.Equal(t, 5072, conus.EPSG)
	assert.Equal(t, -125.0, conus.Bounds.West)
	assert.Equal(t, filepath.Join("/data", "nation_lower48.shp"), conus.BoundaryFile)
	assert.True(t, conus.HasElevationDrift())

	pr, err := r.Lookup("puerto_rico")
	require.NoError(t, err)
	assert.Equal(t, 6566, pr.EPSG)
	assert.False(t, pr.HasElevationDrift(), "puerto rico runs latitude-only drift")
}

func TestRegistry_UnknownRegion(t *testing.T) {
	r, err := regions.NewRegistry("", "")
	require.NoError(t, err)

	_, err = r.Lookup("guam")
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestRegistry_OverridesMergeWithBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`regions:
  - name: conus
    boundary_file: custom_lower48.shp
  - name: test_island
    epsg: 32161
    proj4: "+proj=lcc +lat_0=17.83 +lon_0=-66.43 +datum=NAD83 +units=m +no_defs"
    west: -68
    south: 17
    east: -65
    north: 19
    boundary_file: island.shp
`), 0o600))

	r, err := regions.NewRegistry("/data", path)
	require.NoError(t, err)

	conus, err := r.Lookup("conus")
	require.NoError(t, err)
	// Overridden path, untouched projection.
	assert.Equal(t, filepath.Join("/data", "custom_lower48.shp"), conus.BoundaryFile)
	assert.Equal(t, 5072, conus.EPSG)

	island, err := r.Lookup("test_island")
	require.NoError(t, err)
	assert.Equal(t, 32161, island.EPSG)
	assert.Equal(t, 19.0, island.Bounds.North)
	assert.False(t, island.HasElevationDrift())
}

func TestRegistry_NewRegionWithoutProjectionRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`regions:
  - name: nowhere
    epsg: 9999
`), 0o600))

	_, err := regions.NewRegistry("", path)
	assert.Error(t, err)
}

func TestRegistry_MissingOverrideFile(t *testing.T) {
	_, err := regions.NewRegistry("", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}
