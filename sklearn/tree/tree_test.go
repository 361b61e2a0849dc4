package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/sklearn/tree"
)

// stepData は x0 <= 5 で 10、それ以外で 50 を返す階段関数。x1 はノイズ列。
func stepData() (*mat.Dense, *mat.VecDense) {
	n := 20
	X := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i%10+1))
		X.Set(i, 1, float64((i*7)%3))
		if i%10+1 <= 5 {
			y.SetVec(i, 10)
		} else {
			y.SetVec(i, 50)
		}
	}
	return X, y
}

func TestDecisionTreeRegressorFitsStep(t *testing.T) {
	X, y := stepData()

	dt := tree.NewDecisionTreeRegressor(tree.WithRandomState(42))
	require.NoError(t, dt.Fit(X, y))

	assert.Equal(t, 1, dt.GetDepth())
	assert.Equal(t, 2, dt.GetNLeaves())
	assert.Equal(t, 0, dt.Root.Feature)
	assert.InDelta(t, 5.5, dt.Root.Threshold, 1e-12)
	assert.InDelta(t, 1.0, dt.FeatureImportances[0], 1e-12)

	pred, err := dt.Predict(mat.NewDense(2, 2, []float64{3, 0, 8, 0}))
	require.NoError(t, err)
	assert.Equal(t, 10.0, pred.At(0, 0))
	assert.Equal(t, 50.0, pred.At(1, 0))

	score, err := dt.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-12)
}

func TestDecisionTreeRegressorConstraints(t *testing.T) {
	X := mat.NewDense(8, 1, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	y := mat.NewVecDense(8, []float64{1, 2, 3, 4, 5, 6, 7, 8})

	t.Run("max depth", func(t *testing.T) {
		dt := tree.NewDecisionTreeRegressor(tree.WithMaxDepth(2), tree.WithRandomState(0))
		require.NoError(t, dt.Fit(X, y))
		assert.LessOrEqual(t, dt.GetDepth(), 2)
		assert.LessOrEqual(t, dt.GetNLeaves(), 4)
	})

	t.Run("unbounded grows to purity", func(t *testing.T) {
		dt := tree.NewDecisionTreeRegressor(tree.WithRandomState(0))
		require.NoError(t, dt.Fit(X, y))
		assert.Equal(t, 8, dt.GetNLeaves())
	})

	t.Run("min samples leaf", func(t *testing.T) {
		dt := tree.NewDecisionTreeRegressor(tree.WithMinSamplesLeaf(4), tree.WithRandomState(0))
		require.NoError(t, dt.Fit(X, y))
		assert.Equal(t, 2, dt.GetNLeaves())
		assert.Equal(t, 4, dt.Root.Left.NSamples)
	})

	t.Run("min samples split", func(t *testing.T) {
		dt := tree.NewDecisionTreeRegressor(tree.WithMinSamplesSplit(10), tree.WithRandomState(0))
		require.NoError(t, dt.Fit(X, y))
		assert.Equal(t, 1, dt.GetNLeaves())
		assert.InDelta(t, 4.5, dt.Root.Value, 1e-12)
	})
}

func TestDecisionTreeRegressorDeterministic(t *testing.T) {
	X, y := stepData()
	a := tree.NewDecisionTreeRegressor(tree.WithRandomState(7))
	b := tree.NewDecisionTreeRegressor(tree.WithRandomState(7))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	pa, err := a.Predict(X)
	require.NoError(t, err)
	pb, err := b.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(pa, pb))
}

func TestDecisionTreeRegressorParams(t *testing.T) {
	dt := tree.NewDecisionTreeRegressor()
	require.NoError(t, dt.SetParams(map[string]interface{}{
		"max_depth":         nil,
		"min_samples_split": 5,
		"min_samples_leaf":  2,
		"random_state":      42,
	}))
	params := dt.GetParams()
	assert.Equal(t, tree.Unbounded, params["max_depth"])
	assert.Equal(t, 5, params["min_samples_split"])
	assert.Equal(t, 2, params["min_samples_leaf"])
	assert.Equal(t, int64(42), params["random_state"])

	assert.Error(t, dt.SetParams(map[string]interface{}{"alpha": 1}))
	assert.Error(t, dt.SetParams(map[string]interface{}{"max_depth": "deep"}))
}

func TestDecisionTreeRegressorErrors(t *testing.T) {
	_, err := tree.NewDecisionTreeRegressor().Predict(mat.NewDense(1, 1, nil))
	var notFitted *bikeErrors.NotFittedError
	assert.True(t, bikeErrors.As(err, &notFitted))

	dt := tree.NewDecisionTreeRegressor(tree.WithMinSamplesSplit(1))
	err = dt.Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewVecDense(2, []float64{1, 2}))
	var validationErr *bikeErrors.ValidationError
	assert.True(t, bikeErrors.As(err, &validationErr))
}
