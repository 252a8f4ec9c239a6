package station_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/normals-gridder/internal/domain"
	"github.com/couchcryptid/normals-gridder/internal/station"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stations.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func tavg(t *testing.T) domain.VariableSpec {
	t.Helper()
	spec, err := domain.LookupVariable("tavg")
	require.NoError(t, err)
	return spec
}

func TestLoad_FiltersFlagsAndSentinels(t *testing.T) {
	path := writeCSV(t, `STATION,NAME,LATITUDE,LONGITUDE,ANN-TAVG-NORMAL,comp_flag_ANN-TAVG-NORMAL
USW001,ALPHA,40.0,-105.0,52.1,C
USW002,BRAVO,41.0,-104.0,50.3,S
USW003,CHARLIE,42.0,-103.0,49.9,R
USW004,DELTA,43.0,-102.0,48.0,P
USW005,ECHO,44.0,-101.0,9999,C
USW006,FOXTROT,45.0,-100.0,,C
USW007,GOLF,46.0,-99.0,not_a_number,C
`)

	records, flags, err := station.Load(path, tavg(t))
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, "USW001", records[0].ID)
	assert.Equal(t, 52.1, records[0].Value)
	assert.Equal(t, "USW003", records[2].ID)

	// Breakdown covers every row that carried a flag, kept or not.
	assert.Equal(t, 1, flags["P"])
	assert.GreaterOrEqual(t, flags["C"], 1)
}

func TestLoad_MissingFlagColumnIsConfigError(t *testing.T) {
	path := writeCSV(t, `STATION,LATITUDE,LONGITUDE,ANN-TAVG-NORMAL
USW001,40.0,-105.0,52.1
`)

	_, _, err := station.Load(path, tavg(t))
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	assert.True(t, errors.As(err, &cfgErr), "expected a config error, got %v", err)
}

func TestLoad_MissingIdentityColumnIsConfigError(t *testing.T) {
	path := writeCSV(t, `STATION,LONGITUDE,ANN-TAVG-NORMAL,comp_flag_ANN-TAVG-NORMAL
USW001,-105.0,52.1,C
`)

	_, _, err := station.Load(path, tavg(t))
	require.Error(t, err)

	var cfgErr *domain.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoad_PreservesFileOrder(t *testing.T) {
	path := writeCSV(t, `STATION,LATITUDE,LONGITUDE,ANN-TAVG-NORMAL,comp_flag_ANN-TAVG-NORMAL
Z,40.0,-105.0,1.0,C
A,41.0,-104.0,2.0,C
M,42.0,-103.0,3.0,C
`)

	records, _, err := station.Load(path, tavg(t))
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"Z", "A", "M"}, []string{records[0].ID, records[1].ID, records[2].ID})
}

func TestLoad_MalformedRowIsNotSilentlyDropped(t *testing.T) {
	// A bare quote mid-file is a parse error. It must surface instead of
	// ending the scan early and losing every station after it.
	path := writeCSV(t, `STATION,LATITUDE,LONGITUDE,ANN-TAVG-NORMAL,comp_flag_ANN-TAVG-NORMAL
USW001,40.0,-105.0,52.1,C
USW002,41.0,BR"OKEN,50.3,C
USW003,42.0,-103.0,49.9,C
USW004,43.0,-102.0,48.0,C
`)

	_, _, err := station.Load(path, tavg(t))
	require.Error(t, err)

	var dataErr *domain.DataQualityError
	assert.True(t, errors.As(err, &dataErr), "expected a data quality error, got %v", err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := station.Load(filepath.Join(t.TempDir(), "nope.csv"), tavg(t))
	assert.Error(t, err)
}
