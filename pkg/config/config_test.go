package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "courses.txt", cfg.CourseFile)
	assert.Equal(t, "zotreg.log", cfg.AuditLogFile)
	assert.False(t, cfg.Ops.Enabled)
	assert.Equal(t, 8080, cfg.Ops.Port)
	assert.Equal(t, 1024, cfg.Protocol.MaxMessageSize)
	assert.Equal(t, 10*time.Second, cfg.Shutdown.Timeout)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 3*time.Second, cfg.Shutdown.Timeout)
}

func TestBadShutdownTimeoutFallsBack(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Shutdown.Timeout)
}

func TestInvalidEnvRejected(t *testing.T) {
	t.Setenv("ENV", "staging")

	_, err := Load()
	assert.Error(t, err)
}
