package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, 10.0, cfg.BaseScore)
	assert.Equal(t, 1.0, cfg.PenaltyFactor)
	assert.Equal(t, 0.2, cfg.TimelinessFloor)

	assert.Equal(t, 30*time.Minute, cfg.ScanInterval)
	assert.Equal(t, 3, cfg.RedThresholdDays)
	assert.Equal(t, 5.0, cfg.RedDeduction)
	assert.Equal(t, 0.0, cfg.YellowDeduction)
	assert.Equal(t, 24*time.Hour, cfg.WarnWindow)
	assert.Equal(t, 50, cfg.WarnProgress)
	assert.Equal(t, 48*time.Hour, cfg.AppealWindow)

	assert.False(t, cfg.IncludeDeletedTasks)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SCORE_BASE", "20")
	t.Setenv("RED_THRESHOLD_DAYS", "5")
	t.Setenv("WARN_WINDOW", "12h")
	t.Setenv("APPEAL_WINDOW", "72h")
	t.Setenv("INCLUDE_DELETED_TASKS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 20.0, cfg.BaseScore)
	assert.Equal(t, 5, cfg.RedThresholdDays)
	assert.Equal(t, 12*time.Hour, cfg.WarnWindow)
	assert.Equal(t, 72*time.Hour, cfg.AppealWindow)
	assert.True(t, cfg.IncludeDeletedTasks)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SCORE_BASE", "not-a-number")
	t.Setenv("SCAN_INTERVAL", "bogus")
	t.Setenv("INCLUDE_DELETED_TASKS", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.BaseScore)
	assert.Equal(t, 30*time.Minute, cfg.ScanInterval)
	assert.False(t, cfg.IncludeDeletedTasks)
}
