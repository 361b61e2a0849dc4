package evaluation_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/evaluation"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/linear"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/preprocessing"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/sklearn/pipeline"
)

// echo predicts the Temperature column.
type echo struct{}

func (echo) Predict(df dataframe.DataFrame) (*mat.VecDense, error) {
	col := df.Col(dataset.Temperature)
	return mat.NewVecDense(col.Len(), col.Float()), nil
}

func testFrame() dataframe.DataFrame {
	return dataframe.New(
		series.New([]float64{1, 2, 3, 4}, series.Float, dataset.Temperature),
		series.New([]int{1, 2, 3, 4}, series.Int, dataset.Target),
	)
}

func TestScore(t *testing.T) {
	r2, err := evaluation.Score(echo{}, testFrame(), dataset.Target)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r2)

	_, err = evaluation.Score(echo{}, testFrame().Drop(dataset.Target), dataset.Target)
	assert.ErrorContains(t, err, "does not exist")

	empty := dataframe.New(
		series.New([]float64{}, series.Float, dataset.Temperature),
		series.New([]int{}, series.Int, dataset.Target),
	)
	_, err = evaluation.Score(echo{}, empty, dataset.Target)
	var valueErr *bikeErrors.ValueError
	require.True(t, bikeErrors.As(err, &valueErr), "empty frames are rejected, not panicked on")
	assert.Contains(t, valueErr.Message, "no observations")
}

func TestScorePipeline(t *testing.T) {
	df := testFrame()
	X, y, err := dataset.SplitTarget(df, dataset.Target)
	require.NoError(t, err)

	p := pipeline.New(preprocessing.NewColumnTransformer(nil, nil), linear.NewRidge(linear.WithAlpha(1e-6)))
	require.NoError(t, p.Fit(X, y))

	r2, err := evaluation.Score(p, df, dataset.Target)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r2, 1e-6)
}

func TestSaveScores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tables", "test_scores.csv")
	require.NoError(t, evaluation.SaveScores(path, 0.5, 0.875))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "accuracy_ridge,accuracy_tree\n0.5,0.875\n", string(got))

	df, err := dataset.LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, evaluation.ScoreHeader, df.Names())
}

func TestPredictionErrorPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "figures", "prediction_error_ridge.png")
	require.NoError(t, evaluation.PredictionErrorPlot(echo{}, testFrame(), dataset.Target, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	empty := dataframe.New(
		series.New([]float64{}, series.Float, dataset.Temperature),
		series.New([]int{}, series.Int, dataset.Target),
	)
	err = evaluation.PredictionErrorPlot(echo{}, empty, dataset.Target, path)
	assert.ErrorContains(t, err, "no observations")
}
