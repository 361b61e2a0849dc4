package log_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/log"
)

func TestZerologLoggerFields(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)

	logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, 120,
		log.R2ScoreKey, 0.5,
	)

	assert.True(t, logger.ContainsMessage("Training started"))
	assert.True(t, logger.ContainsField(log.OperationKey, log.OperationFit))
	assert.True(t, logger.ContainsField(log.SamplesKey, float64(120)))
	assert.True(t, logger.ContainsField("level", "info"))
}

func TestZerologLoggerErrorDetail(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelDebug)

	logger.Error("validation failed", bikeErrors.NewValueError("Validate", "empty"), log.PhaseKey, log.PhaseValidation)

	entries, err := logger.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Contains(t, entries[0][log.ErrAttrKey], "empty")
	detail, ok := entries[0][log.ErrAttrKey+"_detail"].(map[string]interface{})
	require.True(t, ok, "typed errors are emitted as objects")
	assert.Equal(t, "ValueError", detail["type"])
	assert.Equal(t, log.PhaseValidation, entries[0][log.PhaseKey])
}

func TestZerologLoggerLevels(t *testing.T) {
	logger, buf := log.NewTestLogger(log.LevelWarn)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.False(t, logger.Enabled(context.Background(), log.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), log.LevelError))
}

func TestWithAndProvider(t *testing.T) {
	provider, _ := log.NewTestLoggerProvider(log.LevelInfo)

	logger := provider.GetLoggerWithName("Ridge").With(log.EstimatorIDKey, "abc")
	logger.Info("fitted")

	assert.True(t, provider.ContainsField(log.ComponentKey, "Ridge"))
	assert.True(t, provider.ContainsField(log.EstimatorIDKey, "abc"))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"debug", log.LevelDebug, false},
		{"INFO", log.LevelInfo, false},
		{"warn", log.LevelWarn, false},
		{"error", log.LevelError, false},
		{"verbose", log.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := log.ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
