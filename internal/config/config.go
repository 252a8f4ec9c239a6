package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all gridder settings, populated from environment variables.
type Config struct {
	StationsCSV string
	OutputDir   string
	DataDir     string
	RegionsFile string

	Variables []string
	Regions   []string

	ResolutionMeters    float64
	MinSeparationMeters float64 // 0 means "use ResolutionMeters"

	VariogramModel  string
	KrigingMode     string
	NLags           int
	VariogramWeight bool

	ContinueOnError bool

	HTTPAddr        string
	MetricsEnabled  bool
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is merged in first, if
// present, without overriding already-exported variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	resolution, err := parseFloat("RESOLUTION_METERS", 10000)
	if err != nil {
		return nil, err
	}
	minSep, err := parseFloat("MIN_SEPARATION_METERS", 0)
	if err != nil {
		return nil, err
	}
	nlags, err := parseInt("NLAGS", 20)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		StationsCSV: os.Getenv("STATIONS_CSV"),
		OutputDir:   envOrDefault("OUTPUT_DIR", "data/outputs"),
		DataDir:     envOrDefault("DATA_DIR", "data/ancillary"),
		RegionsFile: os.Getenv("REGIONS_FILE"),

		Variables: splitList(envOrDefault("VARIABLES", "tavg")),
		Regions:   splitList(envOrDefault("REGIONS", "conus")),

		ResolutionMeters:    resolution,
		MinSeparationMeters: minSep,

		VariogramModel:  envOrDefault("VARIOGRAM_MODEL", "spherical"),
		KrigingMode:     envOrDefault("KRIGING_MODE", "universal"),
		NLags:           nlags,
		VariogramWeight: envBool("VARIOGRAM_WEIGHT", true),

		ContinueOnError: envBool("CONTINUE_ON_ERROR", true),

		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		MetricsEnabled:  envBool("METRICS_ENABLED", true),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.StationsCSV == "" {
		return nil, errors.New("STATIONS_CSV is required")
	}
	if cfg.ResolutionMeters <= 0 {
		return nil, errors.New("RESOLUTION_METERS must be positive")
	}
	if cfg.MinSeparationMeters < 0 {
		return nil, errors.New("MIN_SEPARATION_METERS must not be negative")
	}
	if cfg.NLags < 2 {
		return nil, errors.New("NLAGS must be at least 2")
	}
	if len(cfg.Variables) == 0 {
		return nil, errors.New("VARIABLES is required")
	}
	if len(cfg.Regions) == 0 {
		return nil, errors.New("REGIONS is required")
	}

	return cfg, nil
}

// MinSeparation resolves the declustering distance: an explicit value, or
// the grid resolution when left at zero.
func (c *Config) MinSeparation() float64 {
	if c.MinSeparationMeters > 0 {
		return c.MinSeparationMeters
	}
	return c.ResolutionMeters
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "true" || v == "1"
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func parseDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// splitList parses a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
