// Package workflow wires the stages of the rental prediction workflow
// together: validate, split, explore, fit and evaluate. Each stage reads the
// artifacts of the previous one from disk and takes an explicit config.
package workflow

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/linear"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/preprocessing"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/sklearn/model_selection"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/sklearn/pipeline"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/sklearn/tree"
)

// TreeRandomState seeds the decision tree of every candidate.
const TreeRandomState = 42

// SearchOptions control the randomized hyperparameter search.
type SearchOptions struct {
	NIter int
	CV    int
	Seed  int64
}

// DefaultSearchOptions samples 10 candidates scored with 10-fold CV.
func DefaultSearchOptions(seed int64) SearchOptions {
	return SearchOptions{NIter: 10, CV: 10, Seed: seed}
}

// Validate checks that the search can run.
func (o SearchOptions) Validate() error {
	if o.NIter < 1 {
		return bikeErrors.NewValidationError("n_iter", "must be at least 1", o.NIter)
	}
	if o.CV < 2 {
		return bikeErrors.NewValidationError("cv", "must be at least 2", o.CV)
	}
	return nil
}

// RidgeDistributions は ridge__alpha を 1e-3 から 1e3 まで対数等間隔の10点で探索する
func RidgeDistributions() model_selection.Distributions {
	alphas := floats.LogSpan(make([]float64, 10), 1e-3, 1e3)
	values := make([]interface{}, len(alphas))
	for i, a := range alphas {
		values[i] = a
	}
	return model_selection.Distributions{"ridge__alpha": values}
}

// TreeDistributions returns the depth and split-size grid of the tree
// search. A nil max_depth grows the tree until the leaves are pure.
func TreeDistributions() model_selection.Distributions {
	return model_selection.Distributions{
		"decisiontreeregressor__max_depth":         {nil, 10, 20, 30, 40},
		"decisiontreeregressor__min_samples_split": {2, 5, 10},
		"decisiontreeregressor__min_samples_leaf":  {1, 2, 4},
	}
}

// Fit tunes a ridge pipeline and a decision tree pipeline on the training
// frame with the default search and returns both refit on all rows.
func Fit(train dataframe.DataFrame, preprocessor *preprocessing.ColumnTransformer, seed int64) (ridge, dtree *pipeline.Pipeline, err error) {
	return FitWithOptions(train, preprocessor, DefaultSearchOptions(seed))
}

// FitWithOptions is Fit with an explicit search configuration.
//
// Every candidate pipeline gets an unfitted clone of preprocessor, so the
// caller's transformer is never modified.
func FitWithOptions(train dataframe.DataFrame, preprocessor *preprocessing.ColumnTransformer, opts SearchOptions) (ridge, dtree *pipeline.Pipeline, err error) {
	defer bikeErrors.Recover(&err, "workflow.Fit")
	if preprocessor == nil {
		return nil, nil, bikeErrors.NewValidationError("preprocessor", "is required", nil)
	}
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	X, y, err := dataset.SplitTarget(train, dataset.Target)
	if err != nil {
		return nil, nil, err
	}

	newRidge := func() *pipeline.Pipeline {
		return pipeline.New(preprocessor.Clone(), linear.NewRidge())
	}
	newTree := func() *pipeline.Pipeline {
		return pipeline.New(preprocessor.Clone(), tree.NewDecisionTreeRegressor(tree.WithRandomState(TreeRandomState)))
	}

	ridge, err = search(newRidge, RidgeDistributions(), X, y, opts)
	if err != nil {
		return nil, nil, bikeErrors.Wrap(err, "ridge search")
	}
	dtree, err = search(newTree, TreeDistributions(), X, y, opts)
	if err != nil {
		return nil, nil, bikeErrors.Wrap(err, "decision tree search")
	}
	return ridge, dtree, nil
}

func search(newPipeline func() *pipeline.Pipeline, dists model_selection.Distributions, X dataframe.DataFrame, y *mat.VecDense, opts SearchOptions) (*pipeline.Pipeline, error) {
	s := model_selection.NewRandomizedSearchCV(newPipeline, dists,
		model_selection.WithNIter(opts.NIter),
		model_selection.WithCV(opts.CV),
		model_selection.WithRandomSeed(opts.Seed),
	)
	if err := s.Fit(X, y); err != nil {
		return nil, err
	}
	best, err := s.BestEstimator()
	if err != nil {
		return nil, err
	}
	logBest(best, s)
	return best, nil
}

func logBest(p *pipeline.Pipeline, s *model_selection.RandomizedSearchCV[*pipeline.Pipeline]) {
	log.GetLoggerWithName("workflow").Info("Best candidate selected",
		log.PhaseKey, log.PhaseTraining,
		log.ModelNameKey, p.EstimatorStep,
		log.EstimatorIDKey, p.ID,
		log.HyperParamsKey, fmt.Sprint(s.BestParams()),
		log.CVScoreKey, s.BestScore(),
	)
}
