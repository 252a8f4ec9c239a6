// Package regions supplies the per-region interpolation parameters: target
// projection, geographic bounds, clip boundary, and optional DEM. The
// registry is built once and injected into each pipeline run rather than
// living as process-wide state.
package regions

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/normals-gridder/internal/domain"
)

// Registry resolves region names to their configuration.
type Registry struct {
	regions map[string]domain.RegionConfig
}

// builtin is the reference region table. Projections are the equal-area
// systems NCEI products are conventionally distributed in; bounding boxes
// are generous envelopes around each region's stations. Paths are relative
// to the data directory until Resolve is called.
var builtin = []domain.RegionConfig{
	{
		Name:         "conus",
		EPSG:         5072,
		Proj4:        "+proj=aea +lat_1=29.5 +lat_2=45.5 +lat_0=23 +lon_0=-96 +x_0=0 +y_0=0 +datum=NAD83 +units=m +no_defs",
		Description:  "CONUS Albers Equal Area (EPSG:5072)",
		Bounds:       domain.GeographicBounds{West: -125, South: 20, East: -60, North: 50},
		BoundaryFile: "nation_lower48.shp",
		DEMFile:      "conus_dem.asc",
	},
	{
		Name:         "alaska",
		EPSG:         3338,
		Proj4:        "+proj=aea +lat_1=55 +lat_2=65 +lat_0=50 +lon_0=-154 +x_0=0 +y_0=0 +datum=NAD83 +units=m +no_defs",
		Description:  "Alaska Albers Equal Area (EPSG:3338)",
		Bounds:       domain.GeographicBounds{West: -170, South: 51, East: -129, North: 72},
		BoundaryFile: "alaska.shp",
		DEMFile:      "alaska_dem.asc",
	},
	{
		Name:         "hawaii",
		EPSG:         102007,
		Proj4:        "+proj=aea +lat_1=8 +lat_2=18 +lat_0=13 +lon_0=-157 +x_0=0 +y_0=0 +datum=NAD83 +units=m +no_defs",
		Description:  "Hawaii Albers Equal Area (ESRI:102007)",
		Bounds:       domain.GeographicBounds{West: -161, South: 18.5, East: -154, North: 23},
		BoundaryFile: "hawaii.shp",
		DEMFile:      "hawaii_dem.asc",
	},
	{
		// Puerto Rico runs with latitude-only drift: the small domain and
		// maritime climate make elevation drift unstable there, so no DEM.
		Name:         "puerto_rico",
		EPSG:         6566,
		Proj4:        "+proj=lcc +lat_1=18.43333333333333 +lat_2=18.03333333333333 +lat_0=17.83333333333333 +lon_0=-66.43333333333334 +x_0=200000 +y_0=200000 +datum=NAD83 +units=m +no_defs",
		Description:  "Puerto Rico and US Virgin Islands (EPSG:6566)",
		Bounds:       domain.GeographicBounds{West: -67.5, South: 17.6, East: -65.2, North: 18.8},
		BoundaryFile: "puerto_rico.shp",
		DEMFile:      "",
	},
}

// NewRegistry builds the registry from the built-in table, optionally
// overridden or extended by a YAML file. Every file path is resolved
// against dataDir.
func NewRegistry(dataDir, overrideFile string) (*Registry, error) {
	r := &Registry{regions: make(map[string]domain.RegionConfig, len(builtin))}
	for _, rc := range builtin {
		r.regions[rc.Name] = resolve(rc, dataDir)
	}

	if overrideFile != "" {
		if err := r.applyOverrides(overrideFile, dataDir); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// regionFile mirrors the YAML override schema. Zero-valued fields fall back
// to the built-in entry for the same name; unknown names define new regions
// and must be complete.
type regionFile struct {
	Regions []struct {
		Name         string  `yaml:"name"`
		EPSG         int     `yaml:"epsg"`
		Proj4        string  `yaml:"proj4"`
		Description  string  `yaml:"description"`
		West         float64 `yaml:"west"`
		South        float64 `yaml:"south"`
		East         float64 `yaml:"east"`
		North        float64 `yaml:"north"`
		BoundaryFile string  `yaml:"boundary_file"`
		DEMFile      string  `yaml:"dem_file"`
	} `yaml:"regions"`
}

func (r *Registry) applyOverrides(path, dataDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.NewConfigError(fmt.Errorf("reading regions file: %w", err))
	}
	var f regionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.NewConfigError(fmt.Errorf("parsing regions file %s: %w", path, err))
	}

	for _, o := range f.Regions {
		if o.Name == "" {
			return domain.NewConfigError(fmt.Errorf("regions file %s: entry missing name", path))
		}
		rc, ok := r.regions[o.Name]
		if !ok {
			rc = domain.RegionConfig{Name: o.Name}
		}
		if o.EPSG != 0 {
			rc.EPSG = o.EPSG
		}
		if o.Proj4 != "" {
			rc.Proj4 = o.Proj4
		}
		if o.Description != "" {
			rc.Description = o.Description
		}
		if o.West != 0 || o.South != 0 || o.East != 0 || o.North != 0 {
			rc.Bounds = domain.GeographicBounds{West: o.West, South: o.South, East: o.East, North: o.North}
		}
		if o.BoundaryFile != "" {
			rc.BoundaryFile = filepath.Join(dataDir, o.BoundaryFile)
		}
		if o.DEMFile != "" {
			rc.DEMFile = filepath.Join(dataDir, o.DEMFile)
		}
		if rc.Proj4 == "" {
			return domain.NewConfigError(fmt.Errorf("region %q has no projection", o.Name))
		}
		r.regions[o.Name] = rc
	}
	return nil
}

// Lookup resolves a region name. Unknown names are configuration errors.
func (r *Registry) Lookup(name string) (domain.RegionConfig, error) {
	rc, ok := r.regions[name]
	if !ok {
		return domain.RegionConfig{}, domain.NewConfigError(
			fmt.Errorf("unknown region %q (have %v)", name, r.Names()))
	}
	return rc, nil
}

// Names lists the registered region names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.regions))
	for n := range r.regions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func resolve(rc domain.RegionConfig, dataDir string) domain.RegionConfig {
	if rc.BoundaryFile != "" {
		rc.BoundaryFile = filepath.Join(dataDir, rc.BoundaryFile)
	}
	if rc.DEMFile != "" {
		rc.DEMFile = filepath.Join(dataDir, rc.DEMFile)
	}
	return rc
}
