package workflow

import (
	"context"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/core/model"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/eda"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/evaluation"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/features"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/preprocessing"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/sklearn/model_selection"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/sklearn/pipeline"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/validation"
)

// Scores holds the held-out R² of both models.
type Scores struct {
	Ridge float64
	Tree  float64
}

// RunValidate downloads the archive, validates the raw CSV and runs the
// statistical gates on the cleaned frame. It returns the validated frame.
func RunValidate(ctx context.Context, cfg ValidateConfig) (dataframe.DataFrame, error) {
	if err := cfg.Validate(); err != nil {
		return dataframe.DataFrame{}, err
	}
	logger := log.GetLoggerWithName("workflow").With(log.PhaseKey, log.PhaseValidation)

	csvPath, err := dataset.FetchArchive(ctx, cfg.client(), cfg.URL, cfg.WriteTo)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	raw, err := dataset.LoadRawCSV(csvPath)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	clean, err := validation.Validate(raw)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	skew, err := validation.CheckTargetSkewness(clean, dataset.RawRentedBikeCount)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	logger.Info("Target is skewed", log.ColumnKey, dataset.RawRentedBikeCount, log.SkewnessKey, skew)

	if _, err := validation.CheckFeatureLabelCorrelation(clean, dataset.RawRentedBikeCount, cfg.FeatureLabel); err != nil {
		return dataframe.DataFrame{}, err
	}
	logger.Info("No anomalous correlations between target and features")

	if _, err := validation.CheckFeatureFeatureCorrelation(clean, dataset.RawRentedBikeCount, cfg.FeatureFeature); err != nil {
		return dataframe.DataFrame{}, err
	}
	logger.Info("No anomalous correlations between features",
		log.PathKey, csvPath,
		log.SamplesKey, clean.Nrow(),
	)
	return clean, nil
}

// RunSplit engineers the raw data, writes the clean frame and its train/test
// split, and saves an unfitted bike preprocessor.
func RunSplit(cfg SplitConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	raw, err := dataset.LoadRawCSV(cfg.RawData)
	if err != nil {
		return err
	}
	clean, err := features.CleanAndEngineer(raw)
	if err != nil {
		return err
	}
	train, test, err := model_selection.SplitFrame(clean, cfg.TestSize, cfg.Seed)
	if err != nil {
		return err
	}

	for name, df := range map[string]dataframe.DataFrame{
		CleanFile: clean,
		TrainFile: train,
		TestFile:  test,
	} {
		if err := dataset.WriteCSV(filepath.Join(cfg.DataTo, name), df); err != nil {
			return err
		}
	}
	preprocessorPath := filepath.Join(cfg.PreprocessorTo, PreprocessorFile)
	if err := model.SaveModel(preprocessing.NewBikePreprocessor(), preprocessorPath); err != nil {
		return err
	}

	log.GetLoggerWithName("workflow").Info("Data split",
		log.PhaseKey, log.PhasePreprocessing,
		log.RandomSeedKey, cfg.Seed,
		"train.samples", train.Nrow(),
		"test.samples", test.Nrow(),
		log.PathKey, cfg.DataTo,
	)
	return nil
}

// RunEDA writes the exploratory tables and figures of the training data.
func RunEDA(cfg EDAConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	train, err := dataset.LoadCSV(cfg.TrainingData)
	if err != nil {
		return err
	}
	return eda.Run(train, cfg.PlotTo, cfg.TableTo, cfg.Options)
}

// RunFit trains both pipelines on the training data and saves them.
func RunFit(cfg FitConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	train, err := dataset.LoadCSV(cfg.TrainingData)
	if err != nil {
		return err
	}
	preprocessor := &preprocessing.ColumnTransformer{}
	if err := model.LoadModel(preprocessor, cfg.Preprocessor); err != nil {
		return bikeErrors.Wrapf(err, "load preprocessor %s", cfg.Preprocessor)
	}

	start := time.Now()
	ridge, dtree, err := FitWithOptions(train, preprocessor, cfg.Search)
	if err != nil {
		return err
	}
	if err := model.SaveModel(ridge, filepath.Join(cfg.PipelineTo, RidgePipelineFile)); err != nil {
		return err
	}
	if err := model.SaveModel(dtree, filepath.Join(cfg.PipelineTo, TreePipelineFile)); err != nil {
		return err
	}

	log.GetLoggerWithName("workflow").Info("Pipelines saved",
		log.PhaseKey, log.PhaseTraining,
		log.RandomSeedKey, cfg.Search.Seed,
		log.PathKey, cfg.PipelineTo,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// LoadPipeline reads a pipeline saved by RunFit.
func LoadPipeline(path string) (*pipeline.Pipeline, error) {
	p := &pipeline.Pipeline{}
	if err := model.LoadModel(p, path); err != nil {
		return nil, bikeErrors.Wrapf(err, "load pipeline %s", path)
	}
	if !p.IsFitted() {
		return nil, bikeErrors.NewNotFittedError("Pipeline", "Load")
	}
	return p, nil
}

// RunEvaluate scores both pipelines on the test data, writes the scores
// table and one prediction error plot per model.
func RunEvaluate(cfg EvaluateConfig) (Scores, error) {
	if err := cfg.Validate(); err != nil {
		return Scores{}, err
	}
	test, err := dataset.LoadCSV(cfg.TestData)
	if err != nil {
		return Scores{}, err
	}
	ridge, err := LoadPipeline(cfg.PipelineFromRidge)
	if err != nil {
		return Scores{}, err
	}
	dtree, err := LoadPipeline(cfg.PipelineFromTree)
	if err != nil {
		return Scores{}, err
	}

	var scores Scores
	if scores.Ridge, err = evaluation.Score(ridge, test, dataset.Target); err != nil {
		return Scores{}, bikeErrors.Wrap(err, "score ridge")
	}
	if scores.Tree, err = evaluation.Score(dtree, test, dataset.Target); err != nil {
		return Scores{}, bikeErrors.Wrap(err, "score tree")
	}
	if err := evaluation.SaveScores(filepath.Join(cfg.ResultsTo, ScoresFile), scores.Ridge, scores.Tree); err != nil {
		return Scores{}, err
	}
	if err := evaluation.PredictionErrorPlot(ridge, test, dataset.Target, filepath.Join(cfg.PlotTo, RidgePlotFile)); err != nil {
		return Scores{}, err
	}
	if err := evaluation.PredictionErrorPlot(dtree, test, dataset.Target, filepath.Join(cfg.PlotTo, TreePlotFile)); err != nil {
		return Scores{}, err
	}

	log.GetLoggerWithName("workflow").Info("Models evaluated",
		log.PhaseKey, log.PhaseEvaluation,
		log.RandomSeedKey, cfg.Seed,
		"ridge."+log.R2ScoreKey, scores.Ridge,
		"tree."+log.R2ScoreKey, scores.Tree,
	)
	return scores, nil
}
