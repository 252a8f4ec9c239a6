// Package pipeline turns one (variable, region) pair into a clipped
// GeoTIFF: load and filter stations, project, decluster, build the grid,
// krige, clip to the region boundary, and write the raster.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/normals-gridder/internal/clip"
	"github.com/couchcryptid/normals-gridder/internal/config"
	"github.com/couchcryptid/normals-gridder/internal/domain"
	"github.com/couchcryptid/normals-gridder/internal/drift"
	"github.com/couchcryptid/normals-gridder/internal/geo"
	"github.com/couchcryptid/normals-gridder/internal/kriging"
	"github.com/couchcryptid/normals-gridder/internal/observability"
	"github.com/couchcryptid/normals-gridder/internal/raster"
	"github.com/couchcryptid/normals-gridder/internal/regions"
	"github.com/couchcryptid/normals-gridder/internal/station"
)

// Result summarizes one completed run.
type Result struct {
	RunID      string
	OutputPath string
	Loaded     int
	Retained   int
	Variogram  kriging.Params
}

// Pipeline executes gridding runs against a fixed configuration.
type Pipeline struct {
	cfg      *config.Config
	registry *regions.Registry
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a Pipeline.
func New(cfg *config.Config, registry *regions.Registry, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{cfg: cfg, registry: registry, logger: logger, metrics: metrics}
}

// RunOne grids a single variable over a single region and writes the
// output GeoTIFF. Cancellation is honored between stages; a stage that has
// started runs to completion.
func (p *Pipeline) RunOne(ctx context.Context, variableName, regionName string) (*Result, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID, "variable", variableName, "region", regionName)

	variable, err := domain.LookupVariable(variableName)
	if err != nil {
		return nil, err
	}
	region, err := p.registry.Lookup(regionName)
	if err != nil {
		return nil, err
	}
	model, err := kriging.ParseModel(p.cfg.VariogramModel)
	if err != nil {
		return nil, err
	}
	mode, err := kriging.ParseMode(p.cfg.KrigingMode)
	if err != nil {
		return nil, err
	}

	logger.Info("run starting",
		"column", variable.Column,
		"epsg", region.EPSG,
		"resolution_m", p.cfg.ResolutionMeters,
		"mode", string(mode),
		"model", string(model),
	)

	// Load and quality-filter stations.
	start := time.Now()
	records, flags, err := station.Load(p.cfg.StationsCSV, variable)
	if err != nil {
		return nil, err
	}
	p.observeStage("load", start)
	logger.Info("stations loaded", "usable", len(records), "flags", flags)
	p.metrics.StationsLoaded.WithLabelValues(variableName, regionName).Observe(float64(len(records)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Project into the regional equal-area CRS and thin clustered stations.
	start = time.Now()
	projector, err := geo.NewProjector(region.Proj4)
	if err != nil {
		return nil, err
	}
	points, err := projector.ProjectStations(records)
	if err != nil {
		return nil, err
	}
	bounds, err := projector.ProjectBounds(region.Bounds)
	if err != nil {
		return nil, err
	}
	p.observeStage("project", start)

	start = time.Now()
	retained := geo.Decluster(points, bounds, p.cfg.MinSeparation())
	p.observeStage("decluster", start)
	logger.Info("stations declustered",
		"in_bounds_input", len(points), "retained", len(retained), "min_separation_m", p.cfg.MinSeparation())
	p.metrics.StationsRetained.WithLabelValues(variableName, regionName).Observe(float64(len(retained)))
	if len(retained) == 0 {
		return nil, domain.NewDataQualityError(fmt.Errorf(
			"no stations remain for %s/%s after bounds filtering and declustering (%d loaded)",
			variableName, regionName, len(records)))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grid, err := geo.BuildGrid(bounds, p.cfg.ResolutionMeters)
	if err != nil {
		return nil, err
	}
	logger.Info("grid built", "nx", grid.NX(), "ny", grid.NY())

	// Drift covariates normalize over everything the solver will evaluate.
	var drifts []kriging.Drift
	var driftNames []string
	if mode == kriging.Universal {
		basis := make([]domain.ProjectedPoint, 0, len(retained)+grid.NX()*grid.NY())
		basis = append(basis, retained...)
		basis = append(basis, grid.Nodes()...)
		covs, err := drift.ForRegion(region, basis)
		if err != nil {
			return nil, err
		}
		for _, cov := range covs {
			drifts = append(drifts, kriging.Drift(cov.At))
			driftNames = append(driftNames, cov.Name)
		}
		logger.Info("drift covariates ready", "drifts", driftNames)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	xs := make([]float64, len(retained))
	ys := make([]float64, len(retained))
	vs := make([]float64, len(retained))
	for i, pt := range retained {
		xs[i], ys[i], vs[i] = pt.X, pt.Y, pt.Value
	}
	interp, err := kriging.New(xs, ys, vs, kriging.Options{
		Mode:   mode,
		Model:  model,
		NLags:  p.cfg.NLags,
		Weight: p.cfg.VariogramWeight,
		Drifts: drifts,
	})
	if err != nil {
		return nil, err
	}
	params := interp.Params()
	logger.Info("variogram fitted",
		"nugget", params.Nugget, "sill", params.Sill, "range_m", params.Range)

	est, variance, err := interp.Grid(grid.X, grid.Y)
	if err != nil {
		return nil, err
	}
	p.observeStage("interpolate", start)
	logVarianceSummary(logger, variance)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// North-up raster: interpolation emits row 0 at minimum y.
	res := p.cfg.ResolutionMeters
	surface := &raster.Surface{
		Data:      raster.FlipRows(est),
		Transform: raster.FromOrigin(grid.X[0], grid.Y[grid.NY()-1], res, res),
		Proj4:     region.Proj4,
		EPSG:      region.EPSG,
	}

	start = time.Now()
	boundary, err := clip.LoadBoundary(region.BoundaryFile, region.Proj4)
	if err != nil {
		return nil, err
	}
	clipped := boundary.Clip(surface)
	p.observeStage("clip", start)
	logger.Info("surface clipped", "boundary_features", boundary.NumFeatures())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	outputPath := filepath.Join(p.cfg.OutputDir, outputName(variableName, regionName, res))
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	tags := raster.Tags{
		DateTime:     domain.Now().UTC(),
		DocumentName: filepath.Base(outputPath),
		Software:     "normals-gridder",
		Metadata: map[string]string{
			"run_id":     runID,
			"variable":   variableName,
			"units":      variable.Units,
			"source":     "NCEI U.S. Climate Normals station CSV",
			"projection": region.Description,
			"region":     regionName,
		},
	}
	if err := raster.WriteGeoTIFF(outputPath, clipped, tags); err != nil {
		return nil, err
	}
	p.observeStage("write", start)
	logger.Info("run complete", "output", outputPath)

	return &Result{
		RunID:      runID,
		OutputPath: outputPath,
		Loaded:     len(records),
		Retained:   len(retained),
		Variogram:  params,
	}, nil
}

func (p *Pipeline) observeStage(stage string, start time.Time) {
	p.metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// outputName follows the published naming convention, e.g.
// tavg_conus_grid_10km.tif.
func outputName(variable, region string, resolutionMeters float64) string {
	km := resolutionMeters / 1000
	if km == math.Trunc(km) && km >= 1 {
		return fmt.Sprintf("%s_%s_grid_%.0fkm.tif", variable, region, km)
	}
	return fmt.Sprintf("%s_%s_grid_%.0fm.tif", variable, region, resolutionMeters)
}

// logVarianceSummary reports the kriging variance spread. The variance
// band itself is not written out; the log line is its only surface.
func logVarianceSummary(logger *slog.Logger, variance [][]float64) {
	var sum, max float64
	var n int
	for _, row := range variance {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			sum += v
			n++
			if v > max {
				max = v
			}
		}
	}
	if n == 0 {
		return
	}
	logger.Info("kriging variance", "mean", sum/float64(n), "max", max)
}
