package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mauv0809/padel-rotation/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTuningFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadTuning_Defaults(t *testing.T) {
	t.Setenv("TUNING_FILE", "")

	tuning, err := config.LoadTuning()
	require.NoError(t, err)
	assert.Equal(t, config.DefaultTuning(), tuning)
	assert.Equal(t, 20.0, tuning.Scheduler.Alpha)
	assert.Equal(t, 300, tuning.Scheduler.IterationCap)
	assert.Equal(t, 14*24*time.Hour, tuning.Scheduler.RecencyHalfLife)
	assert.Equal(t, 32.0, tuning.Rating.KFactor)
	assert.Equal(t, 1500.0, tuning.Rating.DefaultRating)
}

func TestLoadTuning_FileThenEnv(t *testing.T) {
	path := writeTuningFile(t, `
scheduler:
  alpha: 35
  iteration_cap: 50
  recency_half_life: 72h
rating:
  k_factor: 24
`)
	t.Setenv("TUNING_FILE", path)
	t.Setenv("TUNING_SCHEDULER_ITERATION_CAP", "80")
	t.Setenv("TUNING_RATING_DEFAULT_RATING", "1200")

	tuning, err := config.LoadTuning()
	require.NoError(t, err)
	assert.Equal(t, 35.0, tuning.Scheduler.Alpha)
	assert.Equal(t, 20.0, tuning.Scheduler.Beta, "unset keys keep their default")
	assert.Equal(t, 80, tuning.Scheduler.IterationCap, "env wins over the file")
	assert.Equal(t, 72*time.Hour, tuning.Scheduler.RecencyHalfLife)
	assert.Equal(t, 24.0, tuning.Rating.KFactor)
	assert.Equal(t, 1200.0, tuning.Rating.DefaultRating)
}

func TestLoadTuning_Invalid(t *testing.T) {
	t.Run("negative weight", func(t *testing.T) {
		t.Setenv("TUNING_FILE", "")
		t.Setenv("TUNING_SCHEDULER_BETA", "-1")
		_, err := config.LoadTuning()
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("zero k-factor", func(t *testing.T) {
		t.Setenv("TUNING_FILE", "")
		t.Setenv("TUNING_RATING_K_FACTOR", "0")
		_, err := config.LoadTuning()
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("TUNING_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		_, err := config.LoadTuning()
		require.Error(t, err)
		assert.NotErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestTuning_Options(t *testing.T) {
	tuning := config.DefaultTuning()
	assert.Len(t, tuning.SchedulerOptions(), 3)
	assert.Len(t, tuning.RatingOptions(), 1)
}
