package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "orgstats.log")

	logger, closer, err := New(Options{File: path, Level: "debug"})
	require.NoError(t, err)

	logger.Debug("period change requested", "range", "Last 7d", "depth", 1)
	logger.With("chart", "c1").Info("props changed")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "orgstats")
	assert.Contains(t, out, "period change requested")
	assert.Contains(t, out, "depth=1")
	assert.Contains(t, out, "chart=c1")
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgstats.log")

	logger, closer, err := New(Options{File: path, Level: "warn"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_NoFileDiscards(t *testing.T) {
	logger, closer, err := New(Options{})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Error("goes nowhere")
	assert.NoError(t, closer.Close())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, _, err := New(Options{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse log level")
}

func TestDefaultFile(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/var/state")
	assert.Equal(t, "/var/state/orgstats/orgstats.log", DefaultFile())
}
