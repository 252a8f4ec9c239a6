package domain

import "fmt"

// VariableSpec ties a short variable name to its NCEI normals CSV column and
// the unit string recorded in raster metadata.
type VariableSpec struct {
	Name   string // short name used in config and output filenames, e.g. "tavg"
	Column string // wide-CSV column, e.g. "ANN-TAVG-NORMAL"
	Units  string // unit description for provenance tags
}

// FlagColumn returns the completeness-flag column paired with the variable's
// value column. The flag column is mandatory in the input CSV.
func (v VariableSpec) FlagColumn() string { return "comp_flag_" + v.Column }

// variableTable maps short variable names to their CSV columns. Only
// columns present in the annual/seasonal normals archive are listed; the
// remaining atlas fields come from climate projections, not station normals.
var variableTable = map[string]VariableSpec{
	"tavg":              {Name: "tavg", Column: "ANN-TAVG-NORMAL", Units: "degrees Fahrenheit"},
	"tmean_jja":         {Name: "tmean_jja", Column: "JJA-TAVG-NORMAL", Units: "degrees Fahrenheit"},
	"tmin_jja":          {Name: "tmin_jja", Column: "JJA-TMIN-NORMAL", Units: "degrees Fahrenheit"},
	"pr_annual":         {Name: "pr_annual", Column: "ANN-PRCP-NORMAL", Units: "inches"},
	"tmax_days_ge_100f": {Name: "tmax_days_ge_100f", Column: "ANN-TMAX-AVGNDS-GRTH100", Units: "days per year"},
	"tmin_days_ge_70f":  {Name: "tmin_days_ge_70f", Column: "ANN-TMIN-AVGNDS-LSTH070", Units: "days per year"},
	"tmin_days_le_0f":   {Name: "tmin_days_le_0f", Column: "ANN-TMIN-AVGNDS-LSTH000", Units: "days per year"},
	"tmin_days_le_32f":  {Name: "tmin_days_le_32f", Column: "ANN-TMIN-AVGNDS-LSTH032", Units: "days per year"},
}

// LookupVariable resolves a short variable name. Unknown names are
// configuration errors, reported with the offending identifier.
func LookupVariable(name string) (VariableSpec, error) {
	v, ok := variableTable[name]
	if !ok {
		return VariableSpec{}, NewConfigError(fmt.Errorf("unknown variable %q", name))
	}
	return v, nil
}

// VariableNames lists the supported short names, for validation messages.
func VariableNames() []string {
	names := make([]string, 0, len(variableTable))
	for n := range variableTable {
		names = append(names, n)
	}
	return names
}

// NoDataSentinel is the NCEI placeholder for a missing normal value.
// Rows carrying it are excluded during loading.
const NoDataSentinel = 9999

// GoodFlags is the set of completeness-flag codes usable for gridding:
// (C)omplete, (S)tandard, and (R)epresentative records.
var GoodFlags = map[string]bool{"C": true, "S": true, "R": true}
