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
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.Equal(t, "uploads", cfg.Storage.UploadDir)
	assert.Equal(t, "http://localhost:5000", cfg.Storage.PublicBaseURL)
	assert.Equal(t, "python", cfg.Worker.Executable)
	assert.Equal(t, []string{"../modeling/main.py"}, cfg.Worker.Args)
	assert.Equal(t, 2*time.Minute, cfg.Worker.Timeout)
	assert.Equal(t, 0, cfg.Worker.MaxParallel)
	assert.False(t, cfg.S3.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "8081")
	t.Setenv("WORKER_EXECUTABLE", "python3")
	t.Setenv("WORKER_ARGS", "-u /opt/modeling/main.py")
	t.Setenv("WORKER_TIMEOUT", "45s")
	t.Setenv("WORKER_MAX_PARALLEL", "4")
	t.Setenv("S3_ENABLED", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "python3", cfg.Worker.Executable)
	assert.Equal(t, []string{"-u", "/opt/modeling/main.py"}, cfg.Worker.Args)
	assert.Equal(t, 45*time.Second, cfg.Worker.Timeout)
	assert.Equal(t, 4, cfg.Worker.MaxParallel)
	assert.True(t, cfg.S3.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero timeout", "WORKER_TIMEOUT", "0s"},
		{"negative parallelism", "WORKER_MAX_PARALLEL", "-1"},
		{"bad duration", "WORKER_TIMEOUT", "soon"},
		{"bad port", "SERVER_PORT", "http"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			assert.Error(t, err)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5433, Name: "m", SSLMode: "disable"}

	assert.Equal(t, "postgres://u:p@db:5433/m?sslmode=disable", d.DSN())
}
