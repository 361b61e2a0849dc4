package preprocessing_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/core/model"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/preprocessing"
)

func engineeredFrame() dataframe.DataFrame {
	return dataframe.LoadRecords([][]string{
		{dataset.Hour, dataset.Temperature, dataset.DewPoint, dataset.Seasons, dataset.Holiday, dataset.Year, dataset.Month, dataset.Day},
		{"0", "-5.0", "-17.6", "Winter", "0", "2017", "12", "1"},
		{"1", "10.0", "-17.6", "Summer", "1", "2018", "6", "2"},
		{"0", "25.0", "-17.6", "Summer", "0", "2018", "6", "1"},
	})
}

func TestColumnTransformer_BikePreprocessor(t *testing.T) {
	df := engineeredFrame()
	ct := preprocessing.NewBikePreprocessor()
	assert.False(t, ct.IsFitted())

	out, err := ct.FitTransform(df)
	require.NoError(t, err)

	names := ct.GetFeatureNamesOut()
	assert.Equal(t, []string{
		"onehot__Hour_0", "onehot__Hour_1",
		"onehot__Seasons_Summer", "onehot__Seasons_Winter",
		"onehot__Year_2017", "onehot__Year_2018",
		"onehot__Month_6", "onehot__Month_12",
		"onehot__Day_1", "onehot__Day_2",
		"scaler__Temperature", "scaler__Holiday",
	}, names)
	assert.Equal(t, []string{dataset.Temperature, dataset.Holiday}, ct.Remainder, "dropped columns never reach the scaler")

	r, c := out.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, len(names), c)

	assert.Equal(t, []float64{1, 0, 0, 1, 1, 0, 0, 1, 1, 0}, mat.Row(nil, 0, out)[:10])
	assert.InDelta(t, -15/math.Sqrt(150), out.At(0, 10), 1e-12)
}

func TestColumnTransformer_TransformDoesNotRefit(t *testing.T) {
	ct := preprocessing.NewBikePreprocessor()
	require.NoError(t, ct.Fit(engineeredFrame()))

	unseen := dataframe.LoadRecords([][]string{
		{dataset.Hour, dataset.Temperature, dataset.DewPoint, dataset.Seasons, dataset.Holiday, dataset.Year, dataset.Month, dataset.Day},
		{"1", "40.0", "3.0", "Spring", "1", "2018", "6", "2"},
	})
	out, err := ct.Transform(unseen)
	require.NoError(t, err)

	assert.Equal(t, 0.0, out.At(0, 2), "unknown season encodes to zeros")
	assert.Equal(t, 0.0, out.At(0, 3))
	assert.InDelta(t, 30/math.Sqrt(150), out.At(0, 10), 1e-12, "training statistics are reused")
}

func TestColumnTransformer_Errors(t *testing.T) {
	_, err := preprocessing.NewBikePreprocessor().Transform(engineeredFrame())
	assert.Error(t, err, "transform before fit")

	t.Run("missing one-hot column", func(t *testing.T) {
		df := engineeredFrame().Drop(dataset.Seasons)
		assert.ErrorContains(t, preprocessing.NewBikePreprocessor().Fit(df), "Seasons")
	})

	t.Run("missing drop column", func(t *testing.T) {
		df := engineeredFrame().Drop(dataset.DewPoint)
		assert.ErrorContains(t, preprocessing.NewBikePreprocessor().Fit(df), "drop column")
	})

	t.Run("non numeric remainder", func(t *testing.T) {
		df := engineeredFrame().Mutate(dataframe.LoadRecords([][]string{{"Label"}, {"a"}, {"b"}, {"c"}}).Col("Label"))
		assert.ErrorContains(t, preprocessing.NewBikePreprocessor().Fit(df), "must be numeric")
	})

	t.Run("missing column at transform", func(t *testing.T) {
		ct := preprocessing.NewBikePreprocessor()
		require.NoError(t, ct.Fit(engineeredFrame()))
		_, err := ct.Transform(engineeredFrame().Drop(dataset.Temperature))
		assert.ErrorContains(t, err, "missing")
	})
}

func TestColumnTransformer_Persistence(t *testing.T) {
	df := engineeredFrame()
	dir := t.TempDir()

	// 未学習の仕様もそのまま保存できる
	blank := preprocessing.NewBikePreprocessor()
	blankPath := filepath.Join(dir, "bike_preprocessor.gob")
	require.NoError(t, model.SaveModel(blank, blankPath))

	var loadedBlank preprocessing.ColumnTransformer
	require.NoError(t, model.LoadModel(&loadedBlank, blankPath))
	assert.False(t, loadedBlank.IsFitted())
	assert.Equal(t, blank.OneHot, loadedBlank.OneHot)
	assert.Equal(t, blank.Drop, loadedBlank.Drop)

	fitted := blank.Clone()
	want, err := fitted.FitTransform(df)
	require.NoError(t, err)

	fittedPath := filepath.Join(dir, "fitted.gob")
	require.NoError(t, model.SaveModel(fitted, fittedPath))
	var loaded preprocessing.ColumnTransformer
	require.NoError(t, model.LoadModel(&loaded, fittedPath))
	require.True(t, loaded.IsFitted())

	got, err := loaded.Transform(df)
	require.NoError(t, err)
	assert.True(t, mat.EqualApprox(want, got, 1e-12))
	assert.False(t, blank.IsFitted(), "Clone leaves the source untouched")
}
