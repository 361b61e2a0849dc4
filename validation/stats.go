package validation

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/metrics"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/sklearn/model_selection"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/sklearn/tree"
)

// targetValues returns the present values of the numeric target column.
func targetValues(op string, df dataframe.DataFrame, target string) ([]float64, error) {
	if !dataset.HasColumn(df, target) {
		return nil, bikeErrors.NewValueErrorf(op, "Column '%s' does not exist in the DataFrame.", target)
	}
	col := df.Col(target)
	if !dataset.IsNumeric(col) {
		return nil, bikeErrors.NewValueErrorf(op, "The target variable '%s' is not numerical.", target)
	}
	return col.Float(), nil
}

func dropNaN(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Skewness returns the population Fisher-Pearson coefficient of skewness
// of x. A constant sample has skewness 0.
func Skewness(x []float64) float64 {
	if len(x) == 0 {
		return math.NaN()
	}
	m2 := stat.Moment(2, x, nil)
	if m2 == 0 {
		return 0
	}
	return stat.Moment(3, x, nil) / math.Pow(m2, 1.5)
}

// CheckTargetSkewness は目的変数の歪度が[-1, 1]の外にあることを確認する
//
// Missing values are ignored. The computed skewness is returned on success
// and carried in the message on failure.
func CheckTargetSkewness(df dataframe.DataFrame, target string) (float64, error) {
	values, err := targetValues("CheckTargetSkewness", df, target)
	if err != nil {
		return 0, err
	}
	values = dropNaN(values)
	if len(values) == 0 {
		return 0, bikeErrors.NewValueErrorf("CheckTargetSkewness", "The target variable '%s' has no observations.", target)
	}

	skew := Skewness(values)
	if skew >= -1 && skew <= 1 {
		return skew, bikeErrors.NewValueErrorf("CheckTargetSkewness",
			"The target variable '%s' is not skewed (skewness=%.2f).", target, skew)
	}

	log.GetLoggerWithName("validation").Info("Target is skewed",
		log.PhaseKey, log.PhaseValidation,
		log.ColumnKey, target,
		log.SkewnessKey, skew,
	)
	return skew, nil
}

// FeatureLabelOptions configures CheckFeatureLabelCorrelation.
type FeatureLabelOptions struct {
	Threshold  float64 // maximum acceptable predictive power score
	Folds      int     // cross-validation folds of the score
	SampleSize int     // rows sampled before scoring, 0 for all
	RandomSeed int64
}

// DefaultFeatureLabelOptions returns threshold 0.9, 4 folds and a 5000 row sample.
func DefaultFeatureLabelOptions() FeatureLabelOptions {
	return FeatureLabelOptions{Threshold: 0.9, Folds: 4, SampleSize: 5000, RandomSeed: 123}
}

// FeatureScore is the predictive power of one feature for the target.
type FeatureScore struct {
	Feature string
	PPS     float64
}

// CheckFeatureLabelCorrelation scores every feature against target with the
// predictive power score and fails if any exceeds opts.Threshold. Scores are
// returned in descending order.
func CheckFeatureLabelCorrelation(df dataframe.DataFrame, target string, opts FeatureLabelOptions) (_ []FeatureScore, err error) {
	defer bikeErrors.Recover(&err, "CheckFeatureLabelCorrelation")
	if opts.Folds < 2 {
		return nil, bikeErrors.NewValidationError("folds", "must be at least 2", opts.Folds)
	}
	if _, err := targetValues("CheckFeatureLabelCorrelation", df, target); err != nil {
		return nil, err
	}

	if opts.SampleSize > 0 && df.Nrow() > opts.SampleSize {
		s := uint64(opts.RandomSeed)
		perm := rand.New(rand.NewPCG(s, s)).Perm(df.Nrow())
		df = df.Subset(perm[:opts.SampleSize])
		if df.Err != nil {
			return nil, bikeErrors.Wrap(df.Err, "sample rows")
		}
	}
	y := df.Col(target).Float()

	var scores []FeatureScore
	for _, name := range df.Names() {
		if name == target {
			continue
		}
		x, present := encodeFeature(df.Col(name))
		xs, ys := make([]float64, 0, len(y)), make([]float64, 0, len(y))
		for i := range y {
			if (present != nil && !present[i]) || math.IsNaN(x[i]) || math.IsNaN(y[i]) {
				continue
			}
			xs = append(xs, x[i])
			ys = append(ys, y[i])
		}
		pps, err := PredictivePowerScore(xs, ys, opts.Folds, opts.RandomSeed)
		if err != nil {
			return nil, bikeErrors.Wrapf(err, "score feature '%s'", name)
		}
		scores = append(scores, FeatureScore{Feature: name, PPS: pps})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].PPS > scores[j].PPS })

	var offending []string
	for _, s := range scores {
		if s.PPS > opts.Threshold {
			offending = append(offending, fmt.Sprintf("%s (pps=%.2f)", s.Feature, s.PPS))
		}
	}
	if len(offending) > 0 {
		return scores, bikeErrors.NewValueErrorf("CheckFeatureLabelCorrelation",
			"Feature-Label correlation exceeds the maximum acceptable threshold. Features: %s",
			strings.Join(offending, ", "))
	}

	log.GetLoggerWithName("validation").Info("Feature-label correlation within bounds",
		log.PhaseKey, log.PhaseValidation,
		log.FeaturesKey, len(scores),
		log.SamplesKey, df.Nrow(),
	)
	return scores, nil
}

// encodeFeature maps a column to numbers. Non-numeric columns are label
// encoded over their sorted distinct values; the mask marks present values.
func encodeFeature(s series.Series) ([]float64, []bool) {
	if dataset.IsNumeric(s) {
		return s.Float(), nil
	}
	records := s.Records()
	present := make([]bool, len(records))
	var levels []string
	seen := make(map[string]bool)
	for i, r := range records {
		if s.Elem(i).IsNA() {
			continue
		}
		present[i] = true
		if !seen[r] {
			seen[r] = true
			levels = append(levels, r)
		}
	}
	sort.Strings(levels)
	code := make(map[string]float64, len(levels))
	for i, l := range levels {
		code[l] = float64(i)
	}
	x := make([]float64, len(records))
	for i, r := range records {
		x[i] = code[r]
	}
	return x, present
}

func median(x []float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// PredictivePowerScore returns how much better a decision tree on x alone
// predicts y than the median baseline, in [0, 1]:
//
//	pps = max(0, 1 - MAE_tree / MAE_median)
//
// MAE_tree is the mean over shuffled k-fold cross-validation.
func PredictivePowerScore(x, y []float64, folds int, seed int64) (float64, error) {
	if len(x) != len(y) {
		return 0, bikeErrors.NewDimensionError("PredictivePowerScore", len(y), len(x), 0)
	}
	n := len(y)
	if n < folds {
		return 0, nil
	}

	med := median(y)
	var baseline float64
	for _, v := range y {
		baseline += math.Abs(v - med)
	}
	baseline /= float64(n)
	if baseline == 0 {
		return 0, nil
	}

	splits, err := model_selection.NewKFold(folds, true, seed).Split(n)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, fold := range splits {
		Xtr, ytr := column(x, y, fold.TrainIndices)
		Xte, yte := column(x, y, fold.TestIndices)

		dt := tree.NewDecisionTreeRegressor(tree.WithRandomState(seed))
		if err := dt.Fit(Xtr, ytr); err != nil {
			return 0, err
		}
		pred, err := dt.Predict(Xte)
		if err != nil {
			return 0, err
		}
		mae, err := metrics.MAE(yte, metrics.ToVec(pred))
		if err != nil {
			return 0, err
		}
		total += mae
	}
	modelMAE := total / float64(len(splits))
	return math.Max(0, 1-modelMAE/baseline), nil
}

func column(x, y []float64, idx []int) (*mat.Dense, *mat.VecDense) {
	X := mat.NewDense(len(idx), 1, nil)
	v := mat.NewVecDense(len(idx), nil)
	for i, j := range idx {
		X.Set(i, 0, x[j])
		v.SetVec(i, y[j])
	}
	return X, v
}

// FeatureFeatureOptions configures CheckFeatureFeatureCorrelation.
type FeatureFeatureOptions struct {
	Threshold float64  // absolute rank correlation above which a pair is flagged
	MaxPairs  int      // flagged pairs tolerated
	Ignore    []string // features left out of the check
}

// DefaultFeatureFeatureOptions flags any pair above 0.9. The dew point is
// ignored: it tracks temperature and is dropped before modelling.
func DefaultFeatureFeatureOptions() FeatureFeatureOptions {
	return FeatureFeatureOptions{Threshold: 0.9, MaxPairs: 0, Ignore: []string{dataset.RawDewPoint}}
}

// CorrelatedPair is a pair of features with its Spearman correlation.
type CorrelatedPair struct {
	A, B        string
	Correlation float64
}

// CheckFeatureFeatureCorrelation computes the absolute Spearman correlation
// between every pair of numeric features and fails when more than
// opts.MaxPairs pairs exceed opts.Threshold. Flagged pairs are returned
// strongest first.
func CheckFeatureFeatureCorrelation(df dataframe.DataFrame, target string, opts FeatureFeatureOptions) (_ []CorrelatedPair, err error) {
	defer bikeErrors.Recover(&err, "CheckFeatureFeatureCorrelation")
	if df.Err != nil {
		return nil, bikeErrors.NewTypeError("CheckFeatureFeatureCorrelation", "dataframe", df.Err.Error())
	}

	ignore := make(map[string]bool, len(opts.Ignore)+1)
	ignore[target] = true
	for _, name := range opts.Ignore {
		ignore[name] = true
	}

	var names []string
	var cols [][]float64
	for _, name := range df.Names() {
		if ignore[name] || !dataset.IsNumeric(df.Col(name)) {
			continue
		}
		names = append(names, name)
		cols = append(cols, df.Col(name).Float())
	}

	var pairs []CorrelatedPair
	for i := 0; i < len(cols); i++ {
		for j := i + 1; j < len(cols); j++ {
			corr := SpearmanCorrelation(cols[i], cols[j])
			if math.IsNaN(corr) {
				continue
			}
			if math.Abs(corr) > opts.Threshold {
				pairs = append(pairs, CorrelatedPair{A: names[i], B: names[j], Correlation: corr})
			}
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return math.Abs(pairs[a].Correlation) > math.Abs(pairs[b].Correlation)
	})

	if len(pairs) > opts.MaxPairs {
		desc := make([]string, len(pairs))
		for i, p := range pairs {
			desc[i] = fmt.Sprintf("%s ~ %s (%.2f)", p.A, p.B, p.Correlation)
		}
		return pairs, bikeErrors.NewValueErrorf("CheckFeatureFeatureCorrelation",
			"Feature-Feature correlation issues detected. Pairs: %s", strings.Join(desc, ", "))
	}

	log.GetLoggerWithName("validation").Info("Feature-feature correlation within bounds",
		log.PhaseKey, log.PhaseValidation,
		log.FeaturesKey, len(names),
	)
	return pairs, nil
}

// SpearmanCorrelation returns the rank correlation of x and y over the rows
// where both are present. Ties receive their average rank. The result is NaN
// when either side is constant.
func SpearmanCorrelation(x, y []float64) float64 {
	xs, ys := make([]float64, 0, len(x)), make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	rx, ry := rank(xs), rank(ys)
	if stat.Variance(rx, nil) == 0 || stat.Variance(ry, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(rx, ry, nil)
}

func rank(x []float64) []float64 {
	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return x[idx[a]] < x[idx[b]] })

	ranks := make([]float64, len(x))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && x[idx[j+1]] == x[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}
