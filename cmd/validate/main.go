// Command validate preflights a station-normals CSV before a gridding
// batch: column structure, coordinate sanity, per-variable usable counts,
// and regional coverage. It exits nonzero when any phase fails, so it can
// gate a batch in CI or a job wrapper.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -csv data/inputs/normals_annual_2006_2020.csv \
//	  -variables tavg,pr_annual -regions conus,alaska
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/normals-gridder/internal/domain"
	"github.com/couchcryptid/normals-gridder/internal/regions"
	"github.com/couchcryptid/normals-gridder/internal/station"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	csvPath := flag.String("csv", "", "station normals CSV to validate")
	variablesFlag := flag.String("variables", "tavg", "comma-separated variable short names")
	regionsFlag := flag.String("regions", "conus", "comma-separated region names")
	dataDir := flag.String("data-dir", "data/ancillary", "ancillary data directory")
	regionsFile := flag.String("regions-file", "", "optional region override YAML")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*csvPath, splitList(*variablesFlag), splitList(*regionsFlag), *dataDir, *regionsFile); code != 0 {
		os.Exit(code)
	}
}

func run(csvPath string, variables, regionNames []string, dataDir, regionsFile string) int {
	fmt.Println("=== Station Normals Preflight ===")
	fmt.Println()

	registry, err := regions.NewRegistry(dataDir, regionsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load region registry: %v\n", err)
		return 1
	}

	header, rows, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load CSV: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateStructure(header, variables),
		validateCoordinates(rows),
		validateVariables(csvPath, variables),
		validateRegionCoverage(rows, regionNames, registry),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}
	fmt.Printf("\nRows: %d\n", len(rows))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == 20 {
				fmt.Printf("  ... %d more\n", len(p.errors)-20)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// csvRow is a parsed CSV row with field values keyed by header name.
type csvRow struct {
	lineNum int
	fields  map[string]string
}

func loadCSV(path string) ([]string, []csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) < 2 {
		return nil, nil, fmt.Errorf("no data rows in %s", path)
	}

	header := all[0]
	rows := make([]csvRow, 0, len(all)-1)
	for i, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[strings.TrimSpace(h)] = strings.TrimSpace(row[j])
			}
		}
		rows = append(rows, csvRow{lineNum: i + 2, fields: fields})
	}
	return header, rows, nil
}

// Phase 1: every requested variable needs its value column and its
// completeness flag column; the identity columns are always mandatory.
func validateStructure(header []string, variables []string) *phase {
	p := &phase{name: "Phase 1: Column Structure"}

	present := map[string]bool{}
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}

	for _, col := range []string{"STATION", "LATITUDE", "LONGITUDE"} {
		if !present[col] {
			p.errorf("missing required column %q", col)
		}
	}
	for _, name := range variables {
		spec, err := domain.LookupVariable(name)
		if err != nil {
			p.errorf("unknown variable %q", name)
			continue
		}
		if !present[spec.Column] {
			p.errorf("%s: missing value column %q", name, spec.Column)
		}
		if !present[spec.FlagColumn()] {
			p.errorf("%s: missing completeness flag column %q", name, spec.FlagColumn())
		}
	}
	return p
}

// Phase 2: coordinates must parse and lie on the globe; duplicate station
// IDs must not disagree about where the station is.
func validateCoordinates(rows []csvRow) *phase {
	p := &phase{name: "Phase 2: Coordinate Sanity"}

	seen := map[string]string{}
	for _, row := range rows {
		id := row.fields["STATION"]
		latS, lonS := row.fields["LATITUDE"], row.fields["LONGITUDE"]

		lat, latErr := strconv.ParseFloat(latS, 64)
		lon, lonErr := strconv.ParseFloat(lonS, 64)
		if latErr != nil || lonErr != nil {
			p.errorf("line %d (%s): unparseable coordinates %q, %q", row.lineNum, id, latS, lonS)
			continue
		}
		if lat < -90 || lat > 90 {
			p.errorf("line %d (%s): latitude %g out of range", row.lineNum, id, lat)
		}
		if lon < -180 || lon > 180 {
			p.errorf("line %d (%s): longitude %g out of range", row.lineNum, id, lon)
		}

		key := latS + "," + lonS
		if prev, ok := seen[id]; ok && prev != key {
			p.errorf("station %s appears at both (%s) and (%s)", id, prev, key)
		}
		seen[id] = key
	}
	return p
}

// Phase 3: run the production loader per variable and require a usable
// station population.
func validateVariables(csvPath string, variables []string) *phase {
	p := &phase{name: "Phase 3: Variable Coverage"}

	for _, name := range variables {
		spec, err := domain.LookupVariable(name)
		if err != nil {
			continue // already reported in phase 1
		}
		records, flags, err := station.Load(csvPath, spec)
		if err != nil {
			p.errorf("%s: %v", name, err)
			continue
		}
		fmt.Printf("  %s: %d usable stations, flags %v\n", name, len(records), flags)
		if len(records) < 3 {
			p.errorf("%s: only %d usable stations; kriging needs more", name, len(records))
		}
	}
	return p
}

// Phase 4: each requested region's bounding box must contain stations.
func validateRegionCoverage(rows []csvRow, regionNames []string, registry *regions.Registry) *phase {
	p := &phase{name: "Phase 4: Region Coverage"}

	for _, name := range regionNames {
		rc, err := registry.Lookup(name)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		var inside int
		for _, row := range rows {
			lat, latErr := strconv.ParseFloat(row.fields["LATITUDE"], 64)
			lon, lonErr := strconv.ParseFloat(row.fields["LONGITUDE"], 64)
			if latErr != nil || lonErr != nil {
				continue
			}
			if lat >= rc.Bounds.South && lat <= rc.Bounds.North &&
				lon >= rc.Bounds.West && lon <= rc.Bounds.East {
				inside++
			}
		}
		fmt.Printf("  %s: %d stations in bounding box\n", name, inside)
		if inside == 0 {
			p.errorf("%s: no stations fall inside the bounding box", name)
		}
	}
	return p
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
