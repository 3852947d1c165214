// Package log defines standard attribute keys for machine learning operations.
//
// This file contains predefined attribute keys that provide consistency across
// all logging operations in ensgo. Using these standard keys enables better
// log analysis, monitoring, and debugging of ensemble training workflows.
//
// The attributes are organized into categories:
//   - Model and Operation Context
//   - Data Shape and Characteristics
//   - Ensemble Training State
//   - Performance Metrics
//   - Error Context
//
// These keys follow a hierarchical naming convention (e.g., "model.name",
// "data.samples") to enable structured log analysis and filtering.

package log

// Model and Operation Context
// These attributes identify the model type, instance, and operation being performed.
const (
	// ModelNameKey identifies the type of machine learning model.
	// Examples: "Wagging", "StochasticGradientBoosting", "DecisionTreeRegressor"
	ModelNameKey = "model.name"

	// OperationKey specifies the machine learning operation being performed.
	// Standard values: "fit", "predict", "classify", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "ensemble", "tree", "linear", "metrics"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	// Examples: "training", "inference", "validation"
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
// These attributes describe the structure and properties of data being processed.
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of numeric features in the dataset.
	FeaturesKey = "data.features"

	// CategoricalsKey indicates the number of categorical features in the dataset.
	CategoricalsKey = "data.categoricals"

	// LayoutKey records the physical layout of the backing store.
	// Values: "row_major", "column_major"
	LayoutKey = "data.layout"
)

// Ensemble Training State
// These attributes track the progress of ensemble trainers.
const (
	// EnsembleSizeKey records the configured number of ensemble members or stages.
	EnsembleSizeKey = "ensemble.members"

	// MemberKey records the index of the ensemble member being trained.
	MemberKey = "ensemble.member"

	// StageKey records the current boosting stage during sequential training.
	StageKey = "training.stage"

	// ShrinkageKey records the boosting shrinkage (learning rate) in effect.
	ShrinkageKey = "training.shrinkage"

	// SubsampleKey records the row subsampling fraction in effect.
	SubsampleKey = "training.subsample"

	// WorkersKey records the number of workers in the pool driving training.
	// Zero means sequential execution on the caller goroutine.
	WorkersKey = "training.workers"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Tree Structure
// These attributes describe the shape of a fitted decision tree.
const (
	// TreeDepthKey records the depth of a fitted decision tree.
	TreeDepthKey = "tree.depth"

	// TreeLeavesKey records the number of leaves in a fitted decision tree.
	TreeLeavesKey = "tree.leaves"
)

// Performance Metrics
// These attributes capture timing, accuracy, and loss information.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records model accuracy for evaluation operations.
	// Range typically [0.0, 1.0] for classification accuracy.
	AccuracyKey = "metrics.accuracy"

	// LossKey records loss value during training or evaluation.
	LossKey = "metrics.loss"

	// MAEKey records mean absolute error for regression evaluation.
	MAEKey = "metrics.mae"
)

// Error and Warning Context
// These attributes provide additional context for error and warning messages.
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	// Examples: "DIMENSION_MISMATCH", "NOT_FITTED", "SINGULAR_MATRIX"
	ErrorCodeKey = "error.code"

	// ErrorTypeKey categorizes the type of error encountered.
	// Examples: "ValidationError", "ModelError", "IndexError"
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Automatically populated by the error logging functions.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute value constants for common operations.
// Using these constants ensures consistency across the codebase.
const (
	// Standard ML operations
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationClassify = "classify"
	OperationScore    = "score"

	// Standard ML phases
	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInference  = "inference"

	// Standard error codes
	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
	ErrorIndexOutOfRange   = "INDEX_OUT_OF_RANGE"
	ErrorSingularMatrix    = "SINGULAR_MATRIX"
)
