package linear_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/linear"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
)

func TestRidgeClosedForm(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewVecDense(4, []float64{2, 4, 6, 8})

	// Sxx = 5, Sxy = 10 を中心化後に計算すると w = 10 / (5 + α)
	ridge := linear.NewRidge(linear.WithAlpha(1))
	require.NoError(t, ridge.Fit(X, y))

	assert.InDelta(t, 10.0/6.0, ridge.Coef[0], 1e-10)
	assert.InDelta(t, 5-2.5*10.0/6.0, ridge.Intercept, 1e-10)
}

func TestRidgeRecoversLinearModel(t *testing.T) {
	// y = 3*x0 - 2*x1 + 5
	data := []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
		2, 1,
		1, 3,
	}
	X := mat.NewDense(6, 2, data)
	y := mat.NewVecDense(6, nil)
	for i := 0; i < 6; i++ {
		y.SetVec(i, 3*X.At(i, 0)-2*X.At(i, 1)+5)
	}

	ridge := linear.NewRidge(linear.WithAlpha(1e-8))
	require.NoError(t, ridge.Fit(X, y))
	assert.InDelta(t, 3, ridge.Coef[0], 1e-5)
	assert.InDelta(t, -2, ridge.Coef[1], 1e-5)
	assert.InDelta(t, 5, ridge.Intercept, 1e-5)

	score, err := ridge.Score(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-8)
}

func TestRidgeShrinksWithAlpha(t *testing.T) {
	X := mat.NewDense(5, 1, []float64{1, 2, 3, 4, 5})
	y := mat.NewVecDense(5, []float64{1, 3, 2, 5, 4})

	weak := linear.NewRidge(linear.WithAlpha(0.001))
	strong := linear.NewRidge(linear.WithAlpha(1000))
	require.NoError(t, weak.Fit(X, y))
	require.NoError(t, strong.Fit(X, y))

	assert.Less(t, strong.Coef[0], weak.Coef[0])
	assert.Greater(t, strong.Coef[0], 0.0)
}

func TestRidgeErrors(t *testing.T) {
	t.Run("not fitted", func(t *testing.T) {
		_, err := linear.NewRidge().Predict(mat.NewDense(1, 1, []float64{1}))
		var notFitted *bikeErrors.NotFittedError
		assert.True(t, bikeErrors.As(err, &notFitted))
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		ridge := linear.NewRidge()
		require.NoError(t, ridge.Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), mat.NewVecDense(3, []float64{1, 2, 3})))
		_, err := ridge.Predict(mat.NewDense(1, 2, []float64{1, 2}))
		var dimErr *bikeErrors.DimensionError
		assert.True(t, bikeErrors.As(err, &dimErr))
	})

	t.Run("negative alpha", func(t *testing.T) {
		ridge := linear.NewRidge(linear.WithAlpha(-1))
		err := ridge.Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewVecDense(2, []float64{1, 2}))
		var validationErr *bikeErrors.ValidationError
		assert.True(t, bikeErrors.As(err, &validationErr))
	})
}

func TestRidgeParams(t *testing.T) {
	ridge := linear.NewRidge()
	require.NoError(t, ridge.SetParams(map[string]interface{}{"alpha": 0.5}))
	assert.Equal(t, 0.5, ridge.GetParams()["alpha"])
	assert.Error(t, ridge.SetParams(map[string]interface{}{"max_depth": 3}))
	assert.Equal(t, "Ridge(alpha=0.5)", ridge.String())
}
