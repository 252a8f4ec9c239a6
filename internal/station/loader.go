// Package station reads the wide station CSV and filters it down to the
// records usable for gridding a single variable.
package station

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/normals-gridder/internal/domain"
)

// FlagBreakdown counts stations by completeness-flag value among the rows
// that carried the variable at all. Surfaced for diagnostics; later stages
// do not depend on it.
type FlagBreakdown map[string]int

// Load reads the station CSV at path and returns the records usable for the
// given variable, in file order, along with the flag breakdown.
//
// A file without the variable's completeness-flag column is a configuration
// error: the flag column is mandatory, not optional. Rows are dropped when
// the variable value is missing or unparseable, the flag is outside
// {C, S, R}, or the value equals the 9999 no-data sentinel.
func Load(path string, variable domain.VariableSpec) ([]domain.StationRecord, FlagBreakdown, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open stations csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // wide table; trailing columns vary by station

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read stations csv header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.TrimSpace(h)] = i
	}

	for _, required := range []string{"STATION", "LATITUDE", "LONGITUDE"} {
		if _, ok := colIdx[required]; !ok {
			return nil, nil, domain.NewConfigError(fmt.Errorf("stations csv missing column %q", required))
		}
	}
	valueCol, ok := colIdx[variable.Column]
	if !ok {
		return nil, nil, domain.NewConfigError(
			fmt.Errorf("stations csv missing variable column %q", variable.Column))
	}
	flagCol, ok := colIdx[variable.FlagColumn()]
	if !ok {
		return nil, nil, domain.NewConfigError(fmt.Errorf(
			"expected a completeness flag column %q but it was not found; check the input data",
			variable.FlagColumn()))
	}

	var records []domain.StationRecord
	flags := make(FlagBreakdown)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A malformed row must not silently truncate the file: every
			// station after it would be dropped from the grid.
			return nil, nil, domain.NewDataQualityError(fmt.Errorf("read stations csv: %w", err))
		}

		value, ok := parseCell(row, valueCol)
		if !ok {
			continue // station does not record this measurement
		}

		flag := cell(row, flagCol)
		if flag != "" {
			flags[flag]++
		}
		if !domain.GoodFlags[flag] {
			continue
		}
		if value == domain.NoDataSentinel {
			continue
		}

		lat, okLat := parseCell(row, colIdx["LATITUDE"])
		lon, okLon := parseCell(row, colIdx["LONGITUDE"])
		if !okLat || !okLon {
			continue
		}

		records = append(records, domain.StationRecord{
			ID:        cell(row, colIdx["STATION"]),
			Latitude:  lat,
			Longitude: lon,
			Value:     value,
			Flag:      flag,
		})
	}

	return records, flags, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseCell(row []string, i int) (float64, bool) {
	s := cell(row, i)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
