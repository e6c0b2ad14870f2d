package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "reports", cfg.Paths.ReportsDir)
	assert.True(t, cfg.Server.RateLimit.Enabled)
	assert.False(t, cfg.Reports.UseNativeConversionRate)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BIZREPORT_SERVER_PORT", "9090")
	t.Setenv("BIZREPORT_LOGGING_LEVEL", "debug")
	t.Setenv("BIZREPORT_REPORTS_USE_NATIVE_CONVERSION_RATE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Reports.UseNativeConversionRate)
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 7070\npaths:\n  reports_dir: data/in\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	t.Setenv("BIZREPORT_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "data/in", cfg.Paths.ReportsDir)
}

func TestLoadInvalidLevel(t *testing.T) {
	t.Setenv("BIZREPORT_LOGGING_LEVEL", "verbose")

	_, err := Load()
	assert.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{}
	cfg.Paths.ReportsDir = filepath.Join(dir, "reports")
	cfg.Paths.OutputDir = filepath.Join(dir, "output")
	cfg.Paths.LogsDir = filepath.Join(dir, "logs")

	require.NoError(t, cfg.EnsureDirectories())
	for _, d := range []string{cfg.Paths.ReportsDir, cfg.Paths.OutputDir, cfg.Paths.LogsDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
