package workflow

import (
	"net/http"
	"time"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/eda"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/validation"
)

// Artifact file names shared by the stages.
const (
	TrainFile         = "bike_train.csv"
	TestFile          = "bike_test.csv"
	CleanFile         = "bike_clean.csv"
	PreprocessorFile  = "bike_preprocessor.gob"
	RidgePipelineFile = "ridge_pipeline.gob"
	TreePipelineFile  = "tree_pipeline.gob"
	ScoresFile        = "test_scores.csv"
	RidgePlotFile     = "prediction_error_ridge.png"
	TreePlotFile      = "prediction_error_tree.png"
)

// DefaultSeed is the seed every stage uses unless told otherwise.
const DefaultSeed int64 = 123

// DatasetURL is the UCI archive of the Seoul bike sharing demand data.
const DatasetURL = "https://archive.ics.uci.edu/static/public/560/seoul+bike+sharing+demand.zip"

func requirePath(name, value string) error {
	if value == "" {
		return bikeErrors.NewValidationError(name, "path is required", value)
	}
	return nil
}

// ValidateConfig configures the download and validation stage.
type ValidateConfig struct {
	URL     string
	WriteTo string
	// Client performs the download. Nil uses a client with Timeout.
	Client  *http.Client
	Timeout time.Duration

	FeatureLabel   validation.FeatureLabelOptions
	FeatureFeature validation.FeatureFeatureOptions
}

// DefaultValidateConfig returns the configuration of the reference run.
func DefaultValidateConfig() ValidateConfig {
	return ValidateConfig{
		URL:            DatasetURL,
		WriteTo:        "data/raw",
		Timeout:        2 * time.Minute,
		FeatureLabel:   validation.DefaultFeatureLabelOptions(),
		FeatureFeature: validation.DefaultFeatureFeatureOptions(),
	}
}

// Validate checks that the configuration is usable.
func (c ValidateConfig) Validate() error {
	if c.URL == "" {
		return bikeErrors.NewValidationError("url", "is required", c.URL)
	}
	if err := requirePath("write_to", c.WriteTo); err != nil {
		return err
	}
	if c.FeatureLabel.Threshold <= 0 || c.FeatureLabel.Folds < 2 {
		return bikeErrors.NewValidationError("feature_label", "threshold must be positive and folds at least 2", c.FeatureLabel)
	}
	return nil
}

func (c ValidateConfig) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return &http.Client{Timeout: c.Timeout}
}

// SplitConfig configures feature engineering, splitting and preprocessor
// creation.
type SplitConfig struct {
	RawData        string
	DataTo         string
	PreprocessorTo string
	TestSize       float64
	Seed           int64
}

// DefaultSplitConfig returns a 70/30 split with DefaultSeed.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		RawData:        "data/raw/SeoulBikeData.csv",
		DataTo:         "data/processed",
		PreprocessorTo: "results/models",
		TestSize:       0.3,
		Seed:           DefaultSeed,
	}
}

// Validate checks that the configuration is usable.
func (c SplitConfig) Validate() error {
	for _, p := range []struct{ name, value string }{
		{"raw_data", c.RawData},
		{"data_to", c.DataTo},
		{"preprocessor_to", c.PreprocessorTo},
	} {
		if err := requirePath(p.name, p.value); err != nil {
			return err
		}
	}
	if !(c.TestSize > 0 && c.TestSize < 1) {
		return bikeErrors.NewValidationError("test_size", "must be in the open interval (0, 1)", c.TestSize)
	}
	return nil
}

// EDAConfig configures the exploratory stage.
type EDAConfig struct {
	TrainingData string
	PlotTo       string
	TableTo      string
	Options      eda.Options
}

// DefaultEDAConfig returns the configuration of the reference run.
func DefaultEDAConfig() EDAConfig {
	return EDAConfig{
		TrainingData: "data/processed/" + TrainFile,
		PlotTo:       "results/figures",
		TableTo:      "results/tables",
		Options:      eda.DefaultOptions(),
	}
}

// Validate checks that the configuration is usable.
func (c EDAConfig) Validate() error {
	if err := requirePath("training_data", c.TrainingData); err != nil {
		return err
	}
	if err := requirePath("plot_to", c.PlotTo); err != nil {
		return err
	}
	if c.Options.SampleSize < 0 {
		return bikeErrors.NewValidationError("sample_size", "must not be negative", c.Options.SampleSize)
	}
	return requirePath("table_to", c.TableTo)
}

// FitConfig configures model training.
type FitConfig struct {
	TrainingData string
	Preprocessor string
	PipelineTo   string
	Search       SearchOptions
}

// DefaultFitConfig returns 10 candidates under 10-fold CV with DefaultSeed.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		TrainingData: "data/processed/" + TrainFile,
		Preprocessor: "results/models/" + PreprocessorFile,
		PipelineTo:   "results/models",
		Search:       DefaultSearchOptions(DefaultSeed),
	}
}

// Validate checks that the configuration is usable.
func (c FitConfig) Validate() error {
	if err := requirePath("training_data", c.TrainingData); err != nil {
		return err
	}
	if err := requirePath("preprocessor", c.Preprocessor); err != nil {
		return err
	}
	if err := requirePath("pipeline_to", c.PipelineTo); err != nil {
		return err
	}
	return c.Search.Validate()
}

// EvaluateConfig configures the evaluation stage.
type EvaluateConfig struct {
	TestData          string
	PipelineFromRidge string
	PipelineFromTree  string
	ResultsTo         string
	PlotTo            string
	// Seed is recorded with the run. Scoring itself draws no random numbers.
	Seed int64
}

// DefaultEvaluateConfig returns the configuration of the reference run.
func DefaultEvaluateConfig() EvaluateConfig {
	return EvaluateConfig{
		TestData:          "data/processed/" + TestFile,
		PipelineFromRidge: "results/models/" + RidgePipelineFile,
		PipelineFromTree:  "results/models/" + TreePipelineFile,
		ResultsTo:         "results/tables",
		PlotTo:            "results/figures",
		Seed:              DefaultSeed,
	}
}

// Validate checks that the configuration is usable.
func (c EvaluateConfig) Validate() error {
	for _, p := range []struct{ name, value string }{
		{"test_data", c.TestData},
		{"pipeline_from_ridge", c.PipelineFromRidge},
		{"pipeline_from_tree", c.PipelineFromTree},
		{"results_to", c.ResultsTo},
		{"plot_to", c.PlotTo},
	} {
		if err := requirePath(p.name, p.value); err != nil {
			return err
		}
	}
	return nil
}
