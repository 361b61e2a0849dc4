package validation_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/validation"
)

func TestSkewness(t *testing.T) {
	assert.InDelta(t, 2/math.Sqrt(3), validation.Skewness([]float64{0, 0, 0, 3}), 1e-12)
	assert.Equal(t, 0.0, validation.Skewness([]float64{4, 4, 4}))
	assert.True(t, math.IsNaN(validation.Skewness(nil)))
}

func TestCheckTargetSkewness(t *testing.T) {
	t.Run("skewed", func(t *testing.T) {
		df := dataframe.New(series.New([]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 100, math.NaN()}, series.Float, dataset.Target))
		skew, err := validation.CheckTargetSkewness(df, dataset.Target)
		require.NoError(t, err)
		assert.Greater(t, skew, 1.0)
	})

	t.Run("symmetric", func(t *testing.T) {
		df := dataframe.New(series.New([]int{1, 2, 3, 4, 5}, series.Int, dataset.Target))
		skew, err := validation.CheckTargetSkewness(df, dataset.Target)
		var valueErr *bikeErrors.ValueError
		require.True(t, bikeErrors.As(err, &valueErr))
		assert.Contains(t, valueErr.Message, "is not skewed")
		assert.Contains(t, valueErr.Message, "skewness=0.00")
		assert.Equal(t, 0.0, skew)
	})

	t.Run("missing", func(t *testing.T) {
		df := dataframe.New(series.New([]int{1}, series.Int, "count"))
		_, err := validation.CheckTargetSkewness(df, dataset.Target)
		assert.ErrorContains(t, err, "Column 'Rented Bike Count' does not exist in the DataFrame.")
	})

	t.Run("not numerical", func(t *testing.T) {
		df := dataframe.New(series.New([]string{"a", "b"}, series.String, dataset.Target))
		_, err := validation.CheckTargetSkewness(df, dataset.Target)
		assert.ErrorContains(t, err, "not numerical")
	})
}

func correlationFrame(n int) dataframe.DataFrame {
	rng := rand.New(rand.NewPCG(1, 2))
	target := make([]float64, n)
	leak := make([]float64, n)
	noise := make([]float64, n)
	season := make([]string, n)
	for i := 0; i < n; i++ {
		target[i] = float64(i % 50)
		leak[i] = target[i]*3 + 7
		noise[i] = rng.Float64()
		season[i] = dataset.SeasonOrder[rng.IntN(len(dataset.SeasonOrder))]
	}
	return dataframe.New(
		series.New(target, series.Float, dataset.Target),
		series.New(leak, series.Float, "leak"),
		series.New(noise, series.Float, "noise"),
		series.New(season, series.String, dataset.Seasons),
	)
}

func TestCheckFeatureLabelCorrelation(t *testing.T) {
	opts := validation.DefaultFeatureLabelOptions()

	t.Run("leaking feature fails", func(t *testing.T) {
		scores, err := validation.CheckFeatureLabelCorrelation(correlationFrame(200), dataset.Target, opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Feature-Label correlation exceeds the maximum acceptable threshold.")
		assert.Contains(t, err.Error(), "leak")
		require.Len(t, scores, 3)
		assert.Equal(t, "leak", scores[0].Feature)
		assert.Greater(t, scores[0].PPS, 0.9)
	})

	t.Run("unrelated features pass", func(t *testing.T) {
		df := correlationFrame(200).Drop("leak")
		scores, err := validation.CheckFeatureLabelCorrelation(df, dataset.Target, opts)
		require.NoError(t, err)
		for _, s := range scores {
			assert.GreaterOrEqual(t, s.PPS, 0.0)
			assert.LessOrEqual(t, s.PPS, 0.9, s.Feature)
		}
	})

	t.Run("sampling is seeded", func(t *testing.T) {
		small := opts
		small.SampleSize = 80
		a, errA := validation.CheckFeatureLabelCorrelation(correlationFrame(200), dataset.Target, small)
		b, errB := validation.CheckFeatureLabelCorrelation(correlationFrame(200), dataset.Target, small)
		assert.Equal(t, errA != nil, errB != nil)
		assert.Equal(t, a, b)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := validation.CheckFeatureLabelCorrelation(correlationFrame(10), "count", opts)
		assert.ErrorContains(t, err, "does not exist")
	})
}

func TestPredictivePowerScore(t *testing.T) {
	y := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	pps, err := validation.PredictivePowerScore(x, y, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, pps, "constant target has no predictable signal")

	_, err = validation.PredictivePowerScore(x, y[:3], 4, 0)
	assert.Error(t, err)
}

func TestCheckFeatureFeatureCorrelation(t *testing.T) {
	n := 50
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		a[i] = float64(i)
		b[i] = math.Pow(float64(i), 3)
		c[i] = float64((i * 17) % 11)
	}
	df := dataframe.New(
		series.New(a, series.Float, "a"),
		series.New(b, series.Float, "b"),
		series.New(c, series.Float, "c"),
		series.New(a, series.Float, dataset.Target),
	)

	pairs, err := validation.CheckFeatureFeatureCorrelation(df, dataset.Target, validation.DefaultFeatureFeatureOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Feature-Feature correlation issues detected.")
	require.Len(t, pairs, 1, "the target is not a feature")
	assert.Equal(t, "a", pairs[0].A)
	assert.Equal(t, "b", pairs[0].B)
	assert.InDelta(t, 1.0, pairs[0].Correlation, 1e-12)

	opts := validation.DefaultFeatureFeatureOptions()
	opts.Ignore = append(opts.Ignore, "b")
	pairs, err = validation.CheckFeatureFeatureCorrelation(df, dataset.Target, opts)
	require.NoError(t, err)
	assert.Empty(t, pairs)

	opts = validation.DefaultFeatureFeatureOptions()
	opts.MaxPairs = 1
	_, err = validation.CheckFeatureFeatureCorrelation(df, dataset.Target, opts)
	assert.NoError(t, err)
}

func TestSpearmanCorrelation(t *testing.T) {
	x := []float64{1, 2, 2, 3, math.NaN()}
	assert.InDelta(t, 1.0, validation.SpearmanCorrelation(x, x), 1e-12)
	assert.InDelta(t, -1.0, validation.SpearmanCorrelation(x, []float64{9, 4, 4, 1, 0}), 1e-12)
	assert.True(t, math.IsNaN(validation.SpearmanCorrelation(x, []float64{1, 1, 1, 1, 1})))
}
