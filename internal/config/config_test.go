package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/normals-gridder/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("STATIONS_CSV", "/data/normals.csv")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/normals.csv", cfg.StationsCSV)
	assert.Equal(t, "data/outputs", cfg.OutputDir)
	assert.Equal(t, []string{"tavg"}, cfg.Variables)
	assert.Equal(t, []string{"conus"}, cfg.Regions)
	assert.Equal(t, 10000.0, cfg.ResolutionMeters)
	assert.Equal(t, "spherical", cfg.VariogramModel)
	assert.Equal(t, "universal", cfg.KrigingMode)
	assert.Equal(t, 20, cfg.NLags)
	assert.True(t, cfg.VariogramWeight)
	assert.True(t, cfg.ContinueOnError)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_RequiresStationsCSV(t *testing.T) {
	t.Setenv("STATIONS_CSV", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ParsesLists(t *testing.T) {
	setRequired(t)
	t.Setenv("VARIABLES", "tavg, pr_annual ,tmin_jja")
	t.Setenv("REGIONS", "conus,puerto_rico")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"tavg", "pr_annual", "tmin_jja"}, cfg.Variables)
	assert.Equal(t, []string{"conus", "puerto_rico"}, cfg.Regions)
}

func TestLoad_RejectsBadNumbers(t *testing.T) {
	setRequired(t)
	t.Setenv("RESOLUTION_METERS", "-5")
	_, err := config.Load()
	assert.Error(t, err)

	t.Setenv("RESOLUTION_METERS", "10000")
	t.Setenv("NLAGS", "1")
	_, err = config.Load()
	assert.Error(t, err)
}

func TestMinSeparation_FallsBackToResolution(t *testing.T) {
	cfg := &config.Config{ResolutionMeters: 10000}
	assert.Equal(t, 10000.0, cfg.MinSeparation())

	cfg.MinSeparationMeters = 2500
	assert.Equal(t, 2500.0, cfg.MinSeparation())
}
