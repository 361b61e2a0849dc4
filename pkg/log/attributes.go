package log

// Attribute keys shared across components so that log lines from every stage
// can be filtered with the same field names.
const (
	// Model and operation context
	ModelNameKey   = "model.name"
	EstimatorIDKey = "estimator.id"
	OperationKey   = "ml.operation"
	ComponentKey   = "ml.component"
	PhaseKey       = "ml.phase"

	// Data characteristics
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	ColumnKey   = "data.column"
	PathKey     = "data.path"

	// Performance and metrics
	DurationMsKey = "perf.duration_ms"
	R2ScoreKey    = "metrics.r2_score"
	CVScoreKey    = "metrics.cv_score"
	SkewnessKey   = "metrics.skewness"

	// Search and hyperparameters
	HyperParamsKey    = "model.hyperparams"
	RegularizationKey = "hyperparams.regularization"
	RandomSeedKey     = "config.random_seed"
	IterationKey      = "training.iteration"
	FoldKey           = "training.fold"

	// Errors
	ErrorCodeKey  = "error.code"
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"
	OperationValidate  = "validate"
	OperationSearch    = "search"

	PhaseIngest        = "ingest"
	PhaseValidation    = "validation"
	PhasePreprocessing = "preprocessing"
	PhaseTraining      = "training"
	PhaseEvaluation    = "evaluation"
	PhaseExploration   = "exploration"

	ErrorSchema      = "SCHEMA_VIOLATION"
	ErrorSuitability = "DATASET_SUITABILITY"
)
