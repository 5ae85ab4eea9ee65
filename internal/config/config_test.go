package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("SCHEDULER_CLEANUP_CRON", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, "0 0 2 * * *", cfg.Scheduler.CleanupCron)
	assert.Equal(t, "0 0 0 1 * *", cfg.Scheduler.AccessCodeCron)
	assert.Equal(t, "Africa/Lagos", cfg.Portal.Timezone)
	assert.Equal(t, 9, cfg.Portal.ReminderHourUTC)
	assert.Equal(t, 2, cfg.Portal.FirstReminderMinutes)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("OUTBOX_MAX_ATTEMPTS", "3")
	t.Setenv("SCHEDULER_ENABLED", "false")
	t.Setenv("EMAIL_API_BASE_URL", "https://mail.example")
	t.Setenv("EMAIL_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 3, cfg.Scheduler.OutboxMaxAttempts)
	assert.False(t, cfg.Scheduler.Enabled)
	assert.True(t, cfg.Email.Enabled())
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "soon")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestJobTimeout(t *testing.T) {
	assert.Equal(t, 2*time.Minute, SchedulerConfig{}.JobTimeout())
	assert.Equal(t, 5*time.Second, SchedulerConfig{JobTimeoutSeconds: 5}.JobTimeout())
}
