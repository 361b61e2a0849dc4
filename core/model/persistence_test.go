package model_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/core/model"
	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
)

type artifact struct {
	ID      string
	Weights []float64
	State   *model.StateManager
}

func TestSaveLoadModel(t *testing.T) {
	state := model.NewStateManager()
	state.SetDimensions(3, 10)
	state.SetFitted()
	original := &artifact{ID: model.NewEstimatorID(), Weights: []float64{1.5, -2, 0.25}, State: state}

	path := filepath.Join(t.TempDir(), "nested", "model.gob")
	require.NoError(t, model.SaveModel(original, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	var loaded artifact
	require.NoError(t, model.LoadModel(&loaded, path))
	assert.Equal(t, original.ID, loaded.ID)
	assert.Equal(t, original.Weights, loaded.Weights)
	assert.True(t, loaded.State.IsFitted())
	nFeatures, nSamples := loaded.State.GetDimensions()
	assert.Equal(t, 3, nFeatures)
	assert.Equal(t, 10, nSamples)
}

func TestLoadModelErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		var a artifact
		err := model.LoadModel(&a, filepath.Join(t.TempDir(), "nope.gob"))
		var modelErr *bikeErrors.ModelError
		require.True(t, bikeErrors.As(err, &modelErr))
		assert.Equal(t, "open file", modelErr.Kind)
	})

	t.Run("corrupt blob", func(t *testing.T) {
		var a artifact
		err := model.LoadModelFromReader(&a, bytes.NewReader([]byte("not an artifact")))
		var modelErr *bikeErrors.ModelError
		require.True(t, bikeErrors.As(err, &modelErr))
		assert.Equal(t, "corrupt artifact", modelErr.Kind)
	})
}

func TestStateManager(t *testing.T) {
	s := model.NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("Ridge", "Predict")
	var notFitted *bikeErrors.NotFittedError
	require.True(t, bikeErrors.As(err, &notFitted))
	assert.Equal(t, "Ridge", notFitted.ModelName)

	s.SetFitted()
	assert.NoError(t, s.RequireFitted("Ridge", "Predict"))
	s.Reset()
	assert.False(t, s.IsFitted())
}

func TestNewEstimatorIDUnique(t *testing.T) {
	assert.NotEqual(t, model.NewEstimatorID(), model.NewEstimatorID())
	assert.Len(t, model.NewEstimatorID(), 36)
}
