package model_selection

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
)

// Estimator is a model trained on a feature frame, such as a preprocessor
// bound pipeline.
type Estimator interface {
	Fit(df dataframe.DataFrame, y *mat.VecDense) error
	Score(df dataframe.DataFrame, y *mat.VecDense) (float64, error)
	SetParams(params map[string]interface{}) error
}

// Distributions maps a parameter name to the discrete values it may take.
type Distributions map[string][]interface{}

// Size returns the number of points of the grid spanned by d.
func (d Distributions) Size() int {
	if len(d) == 0 {
		return 0
	}
	size := 1
	for _, values := range d {
		size *= len(values)
	}
	return size
}

func (d Distributions) keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// at decodes a grid index, the last key varying fastest.
func (d Distributions) at(keys []string, index int) map[string]interface{} {
	params := make(map[string]interface{}, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		values := d[keys[i]]
		params[keys[i]] = values[index%len(values)]
		index /= len(values)
	}
	return params
}

// ParameterSampler draws NIter candidates from Distributions.
//
// A grid that has at most NIter points is enumerated in full; otherwise
// NIter distinct grid points are drawn with RandomSeed.
type ParameterSampler struct {
	Distributions Distributions
	NIter         int
	RandomSeed    int64
}

// Sample returns the candidate parameter sets in evaluation order.
func (ps ParameterSampler) Sample() ([]map[string]interface{}, error) {
	if ps.NIter < 1 {
		return nil, bikeErrors.NewValidationError("n_iter", "must be at least 1", ps.NIter)
	}
	if len(ps.Distributions) == 0 {
		return nil, bikeErrors.NewValidationError("param_distributions", "must not be empty", nil)
	}
	for name, values := range ps.Distributions {
		if len(values) == 0 {
			return nil, bikeErrors.NewValidationError(name, "has no candidate values", nil)
		}
	}

	keys := ps.Distributions.keys()
	size := ps.Distributions.Size()

	if size <= ps.NIter {
		candidates := make([]map[string]interface{}, size)
		for i := range candidates {
			candidates[i] = ps.Distributions.at(keys, i)
		}
		return candidates, nil
	}

	rng := newRand(ps.RandomSeed)
	seen := make(map[int]bool, ps.NIter)
	candidates := make([]map[string]interface{}, 0, ps.NIter)
	for len(candidates) < ps.NIter {
		idx := rng.IntN(size)
		if seen[idx] {
			continue
		}
		seen[idx] = true
		candidates = append(candidates, ps.Distributions.at(keys, idx))
	}
	return candidates, nil
}

// CVResult holds the cross-validated score of one candidate.
type CVResult struct {
	Params     map[string]interface{}
	FoldScores []float64
	MeanScore  float64
	StdScore   float64
	Rank       int
}

type searchConfig struct {
	nIter      int
	cv         int
	randomSeed int64
}

// SearchOption configures RandomizedSearchCV.
type SearchOption func(*searchConfig)

// WithNIter sets the number of sampled candidates (default 10).
func WithNIter(n int) SearchOption {
	return func(c *searchConfig) { c.nIter = n }
}

// WithCV sets the number of unshuffled folds (default 5).
func WithCV(k int) SearchOption {
	return func(c *searchConfig) { c.cv = k }
}

// WithRandomSeed sets the seed of the parameter sampler.
func WithRandomSeed(seed int64) SearchOption {
	return func(c *searchConfig) { c.randomSeed = seed }
}

// RandomizedSearchCV は候補パラメータをK-fold交差検証で評価し、
// 平均スコアが最大の設定で全データに再学習する
type RandomizedSearchCV[E Estimator] struct {
	NewEstimator  func() E
	Distributions Distributions
	NIter         int
	CV            int
	RandomSeed    int64

	results       []CVResult
	bestIndex     int
	bestEstimator E
	fitted        bool
	logger        log.Logger
}

// NewRandomizedSearchCV creates a search over dists. newEstimator must
// return a fresh unfitted estimator on every call.
func NewRandomizedSearchCV[E Estimator](newEstimator func() E, dists Distributions, opts ...SearchOption) *RandomizedSearchCV[E] {
	cfg := searchConfig{nIter: 10, cv: 5}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RandomizedSearchCV[E]{
		NewEstimator:  newEstimator,
		Distributions: dists,
		NIter:         cfg.nIter,
		CV:            cfg.cv,
		RandomSeed:    cfg.randomSeed,
		logger:        log.GetLoggerWithName("RandomizedSearchCV"),
	}
}

// Fit evaluates every sampled candidate and refits the best one on the
// full data. Any fold failure aborts the search.
func (s *RandomizedSearchCV[E]) Fit(df dataframe.DataFrame, y *mat.VecDense) (err error) {
	defer bikeErrors.Recover(&err, "RandomizedSearchCV.Fit")
	if s.NewEstimator == nil {
		return bikeErrors.NewValidationError("estimator", "constructor is required", nil)
	}
	if df.Err != nil {
		return bikeErrors.NewTypeError("RandomizedSearchCV.Fit", "dataframe", df.Err.Error())
	}
	if y == nil || y.Len() != df.Nrow() {
		got := 0
		if y != nil {
			got = y.Len()
		}
		return bikeErrors.NewDimensionError("RandomizedSearchCV.Fit", df.Nrow(), got, 0)
	}

	candidates, err := ParameterSampler{
		Distributions: s.Distributions,
		NIter:         s.NIter,
		RandomSeed:    s.RandomSeed,
	}.Sample()
	if err != nil {
		return err
	}
	folds, err := NewKFold(s.CV, false, 0).Split(df.Nrow())
	if err != nil {
		return err
	}

	start := time.Now()
	trainFrames := make([]dataframe.DataFrame, len(folds))
	testFrames := make([]dataframe.DataFrame, len(folds))
	for k, fold := range folds {
		trainFrames[k] = df.Subset(fold.TrainIndices)
		testFrames[k] = df.Subset(fold.TestIndices)
	}

	results := make([]CVResult, len(candidates))
	for i, params := range candidates {
		scores := make([]float64, len(folds))
		for k, fold := range folds {
			est := s.NewEstimator()
			if err := est.SetParams(params); err != nil {
				return err
			}
			if err := est.Fit(trainFrames[k], subsetVec(y, fold.TrainIndices)); err != nil {
				return bikeErrors.Wrapf(err, "candidate %d fold %d", i, k)
			}
			score, err := est.Score(testFrames[k], subsetVec(y, fold.TestIndices))
			if err != nil {
				return bikeErrors.Wrapf(err, "candidate %d fold %d", i, k)
			}
			scores[k] = score
		}
		mean, std := stat.PopMeanStdDev(scores, nil)
		results[i] = CVResult{Params: params, FoldScores: scores, MeanScore: mean, StdScore: std}

		s.logger.Debug("Candidate evaluated",
			log.OperationKey, log.OperationSearch,
			log.IterationKey, i,
			log.HyperParamsKey, fmt.Sprint(params),
			log.CVScoreKey, mean,
		)
	}

	rankResults(results)
	best := 0
	for i := range results {
		if results[i].Rank == 1 {
			best = i
			break
		}
	}

	est := s.NewEstimator()
	if err := est.SetParams(results[best].Params); err != nil {
		return err
	}
	if err := est.Fit(df, y); err != nil {
		return bikeErrors.Wrap(err, "refit best candidate")
	}

	s.results = results
	s.bestIndex = best
	s.bestEstimator = est
	s.fitted = true

	s.logger.Info("Search completed",
		log.OperationKey, log.OperationSearch,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, df.Nrow(),
		log.HyperParamsKey, fmt.Sprint(results[best].Params),
		log.CVScoreKey, results[best].MeanScore,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// rankResults assigns rank 1 to the best mean score; ties share the
// lowest rank.
func rankResults(results []CVResult) {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return results[order[a]].MeanScore > results[order[b]].MeanScore
	})
	for pos, idx := range order {
		rank := pos + 1
		if pos > 0 && results[idx].MeanScore == results[order[pos-1]].MeanScore {
			rank = results[order[pos-1]].Rank
		}
		results[idx].Rank = rank
	}
}

// IsFitted reports whether Fit has completed.
func (s *RandomizedSearchCV[E]) IsFitted() bool {
	return s.fitted
}

// BestParams returns the parameters of the winning candidate.
func (s *RandomizedSearchCV[E]) BestParams() map[string]interface{} {
	if !s.fitted {
		return nil
	}
	return s.results[s.bestIndex].Params
}

// BestScore returns the mean cross-validated score of the winning candidate.
func (s *RandomizedSearchCV[E]) BestScore() float64 {
	if !s.fitted {
		return 0
	}
	return s.results[s.bestIndex].MeanScore
}

// BestEstimator returns the winning candidate refit on the full data.
func (s *RandomizedSearchCV[E]) BestEstimator() (E, error) {
	if !s.fitted {
		var zero E
		return zero, bikeErrors.NewNotFittedError("RandomizedSearchCV", "BestEstimator")
	}
	return s.bestEstimator, nil
}

// CVResults returns one entry per evaluated candidate, in sampling order.
func (s *RandomizedSearchCV[E]) CVResults() []CVResult {
	return s.results
}
