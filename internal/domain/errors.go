package domain

// Error classes for the pipeline's failure taxonomy. A run fails with
// exactly one class; the driver uses the class both for logging and for the
// runs_total outcome label. None of these are retried.

// ConfigError marks a misconfiguration: missing required columns, unknown
// projection or estimation-mode identifiers, absent DEM/boundary files.
type ConfigError struct{ Err error }

func (e *ConfigError) Error() string { return "config: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError wraps err as a configuration error.
func NewConfigError(err error) error { return &ConfigError{Err: err} }

// DataQualityError marks input that is structurally valid but unusable:
// zero stations after filtering or declustering, degenerate value ranges.
// It aborts the single (variable, region) run only.
type DataQualityError struct{ Err error }

func (e *DataQualityError) Error() string { return "data quality: " + e.Err.Error() }
func (e *DataQualityError) Unwrap() error { return e.Err }

// NewDataQualityError wraps err as a data-quality error.
func NewDataQualityError(err error) error { return &DataQualityError{Err: err} }

// NumericalError marks a numerical failure in interpolation: a singular or
// ill-conditioned kriging system, or a division-by-zero drift normalization.
// The message carries enough context (point count, variogram parameters) to
// diagnose without rerunning.
type NumericalError struct{ Err error }

func (e *NumericalError) Error() string { return "numerical: " + e.Err.Error() }
func (e *NumericalError) Unwrap() error { return e.Err }

// NewNumericalError wraps err as a numerical error.
func NewNumericalError(err error) error { return &NumericalError{Err: err} }
