package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the config search path at an empty directory and returns it
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{"ORGSTATS_DB", "ORGSTATS_ORG", "ORGSTATS_PERIOD", "ORGSTATS_UTC", "ORGSTATS_CHART_FRAMES"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return filepath.Join(dir, "orgstats")
}

func noEnvFile(t *testing.T) Options {
	return Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(New(), noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, DefaultPeriod, cfg.Period)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 6, cfg.Chart.Frames)
	assert.Equal(t, 40*time.Millisecond, cfg.Chart.FrameInterval)
	assert.False(t, cfg.UTC)
	assert.Empty(t, cfg.DB)
	assert.Empty(t, cfg.File)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), `
org: acme
period: 7d
utc: true
db: ~/stats.db
log:
  level: debug
chart:
  frames: 0
  frame-interval: 10ms
  include-previous: true
`)

	cfg, err := Load(New(), noEnvFile(t))
	require.NoError(t, err)

	home, err := homedir.Dir()
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.Org)
	assert.Equal(t, "7d", cfg.Period)
	assert.True(t, cfg.UTC)
	assert.Equal(t, filepath.Join(home, "stats.db"), cfg.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 0, cfg.Chart.Frames)
	assert.Equal(t, 10*time.Millisecond, cfg.Chart.FrameInterval)
	assert.True(t, cfg.Chart.IncludePrevious)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.File)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), "period: 7d\nchart:\n  frames: 3\n")
	t.Setenv("ORGSTATS_PERIOD", "30d")
	t.Setenv("ORGSTATS_CHART_FRAMES", "1")

	cfg, err := Load(New(), noEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "30d", cfg.Period)
	assert.Equal(t, 1, cfg.Chart.Frames)
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	writeFile(t, envFile, "ORGSTATS_ORG=from-dotenv\n")

	cfg, err := Load(New(), Options{EnvFile: envFile})
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Org)
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "org: beta\n")

	opts := noEnvFile(t)
	opts.ConfigFile = path
	cfg, err := Load(New(), opts)
	require.NoError(t, err)
	assert.Equal(t, "beta", cfg.Org)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	isolate(t)

	opts := noEnvFile(t)
	opts.ConfigFile = filepath.Join(t.TempDir(), "nope.yaml")
	_, err := Load(New(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_FlagValueWins(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "config.yaml"), "org: acme\n")

	v := New()
	v.Set(KeyOrg, "from-flag")
	cfg, err := Load(v, noEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Org)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Period: "14d",
			Log:    LogConfig{Level: "info"},
			Chart:  ChartConfig{Frames: 6, FrameInterval: 40 * time.Millisecond},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad period", func(c *Config) { c.Period = "fortnight" }, "invalid period"},
		{"zero period", func(c *Config) { c.Period = "0d" }, "invalid period"},
		{"minute period", func(c *Config) { c.Period = "30m" }, "invalid period"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log.level"},
		{"negative frames", func(c *Config) { c.Chart.Frames = -1 }, "invalid chart.frames"},
		{"zero interval", func(c *Config) { c.Chart.FrameInterval = 0 }, "invalid chart.frame-interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
