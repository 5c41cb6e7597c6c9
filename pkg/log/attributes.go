// Package log defines standard attribute keys for stability-selection
// operations.
//
// Using these keys consistently enables structured log analysis across the
// library. Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples").
package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator or selector type.
	// Examples: "STABL", "Lasso", "LogisticLasso"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "get_support", "export"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "stabl", "linear", "export"
	ComponentKey = "ml.component"
)

// Data shape and characteristics.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of real features (columns).
	FeaturesKey = "data.features"

	// ArtificialFeaturesKey indicates the number of injected decoy columns.
	ArtificialFeaturesKey = "data.artificial_features"

	// SubsamplesKey indicates the size of each bootstrap draw.
	SubsamplesKey = "data.subsamples"
)

// Selection process context.
const (
	// LambdaKey records the current regularization value on the path.
	LambdaKey = "path.lambda"

	// LambdaGridSizeKey records the number of grid points on the path.
	LambdaGridSizeKey = "path.grid_size"

	// BootstrapsKey records the number of resamples per grid point.
	BootstrapsKey = "path.bootstraps"

	// WorkersKey records the parallelism degree used for resample fits.
	WorkersKey = "path.workers"

	// ThresholdKey records a selection threshold in [0, 1].
	ThresholdKey = "selection.threshold"

	// SelectedKey records the number of selected features.
	SelectedKey = "selection.count"

	// MinFDRKey records the minimum estimated false discovery proportion.
	MinFDRKey = "selection.min_fdr"
)

// Performance metrics.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// IterationKey records the current iteration of an iterative solver.
	IterationKey = "training.iteration"
)

// Error context.
const (
	// ErrAttrKey carries an error value; the zerolog provider expands it
	// into a message plus stack trace.
	ErrAttrKey = "error"

	// StacktraceAttrKey carries a formatted stack trace extracted from a
	// cockroachdb/errors value.
	StacktraceAttrKey = "stacktrace"
)
