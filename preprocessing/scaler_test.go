package preprocessing_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/preprocessing"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
)

const epsilon = 1e-10

func TestStandardScaler_Fit(t *testing.T) {
	// 気温と湿度: 平均 2 / 50、母標準偏差 sqrt(2/3)*1 / sqrt(2/3)*10
	X := mat.NewDense(3, 2, []float64{
		1, 40,
		2, 50,
		3, 60,
	})

	scaler := preprocessing.NewStandardScalerDefault()
	if err := scaler.Fit(X); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	std := math.Sqrt(2.0 / 3.0)
	if math.Abs(scaler.Mean[0]-2) > epsilon || math.Abs(scaler.Mean[1]-50) > epsilon {
		t.Errorf("unexpected mean: %v", scaler.Mean)
	}
	if math.Abs(scaler.Scale[0]-std) > epsilon || math.Abs(scaler.Scale[1]-10*std) > epsilon {
		t.Errorf("unexpected scale: %v", scaler.Scale)
	}

	XScaled, err := scaler.Transform(X)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	for j := 0; j < 2; j++ {
		col := mat.Col(nil, j, XScaled)
		var sum float64
		for _, v := range col {
			sum += v
		}
		if math.Abs(sum) > epsilon {
			t.Errorf("column %d should have zero mean after scaling, got sum %f", j, sum)
		}
	}
}

func TestStandardScaler_ConstantFeature(t *testing.T) {
	// 分散0の列はスケール1、変換後は0
	X := mat.NewDense(3, 2, []float64{
		5, 1,
		5, 2,
		5, 3,
	})

	scaler := preprocessing.NewStandardScalerDefault()
	XScaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	if scaler.Scale[0] != 1.0 {
		t.Errorf("Scale[0] should be 1.0 for constant feature, got %f", scaler.Scale[0])
	}
	for i := 0; i < 3; i++ {
		if XScaled.At(i, 0) != 0 {
			t.Errorf("constant feature should be 0 after scaling, got %f at row %d", XScaled.At(i, 0), i)
		}
	}
}

func TestStandardScaler_MissingValues(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, math.NaN(), 3, 5})

	scaler := preprocessing.NewStandardScalerDefault()
	require.NoError(t, scaler.Fit(X))

	assert.InDelta(t, 3.0, scaler.Mean[0], epsilon, "NaN is ignored when computing the mean")
	assert.InDelta(t, math.Sqrt(8.0/3.0), scaler.Scale[0], epsilon)

	XScaled, err := scaler.Transform(X)
	require.NoError(t, err)
	assert.Equal(t, 0.0, XScaled.At(1, 0), "missing values are imputed with the training mean")
	assert.False(t, math.IsNaN(XScaled.At(1, 0)))
}

func TestStandardScaler_Options(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{2, 4})

	t.Run("without mean", func(t *testing.T) {
		scaler := preprocessing.NewStandardScaler(false, true)
		out, err := scaler.FitTransform(X)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, out.At(0, 0), epsilon)
		assert.InDelta(t, 4.0, out.At(1, 0), epsilon)
	})

	t.Run("without std", func(t *testing.T) {
		scaler := preprocessing.NewStandardScaler(true, false)
		out, err := scaler.FitTransform(X)
		require.NoError(t, err)
		assert.InDelta(t, -1.0, out.At(0, 0), epsilon)
		assert.InDelta(t, 1.0, out.At(1, 0), epsilon)
	})
}

func TestStandardScaler_InverseTransform(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{-3.1, 80, 0.5, 60, 12.4, 35})

	scaler := preprocessing.NewStandardScalerDefault()
	XScaled, err := scaler.FitTransform(X)
	require.NoError(t, err)

	restored, err := scaler.InverseTransform(XScaled)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(X, restored, 1e-9))
}

func TestStandardScaler_Errors(t *testing.T) {
	scaler := preprocessing.NewStandardScalerDefault()

	_, err := scaler.Transform(mat.NewDense(1, 1, nil))
	var notFitted *bikeErrors.NotFittedError
	assert.True(t, bikeErrors.As(err, &notFitted))

	require.NoError(t, scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})))
	_, err = scaler.Transform(mat.NewDense(1, 3, nil))
	var dimErr *bikeErrors.DimensionError
	assert.True(t, bikeErrors.As(err, &dimErr))

	assert.Error(t, preprocessing.NewStandardScalerDefault().Fit(&mat.Dense{}))
}

func TestStandardScaler_String(t *testing.T) {
	scaler := preprocessing.NewStandardScaler(true, false)
	assert.Equal(t, "StandardScaler(with_mean=true, with_std=false)", scaler.String())

	require.NoError(t, scaler.Fit(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})))
	assert.Equal(t, "StandardScaler(with_mean=true, with_std=false, n_features=3)", scaler.String())
}
