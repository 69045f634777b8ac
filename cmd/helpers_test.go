package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/chris/orgstats/internal/db"
	"github.com/chris/orgstats/pkg/models"
)

// isolate points every config, state and data directory at a temp dir and
// returns a database path inside it
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, key := range []string{"ORGSTATS_DB", "ORGSTATS_ORG", "ORGSTATS_PERIOD", "ORGSTATS_UTC", "ORGSTATS_LOG_FILE", "ORGSTATS_LOG_LEVEL"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return filepath.Join(dir, "events.db")
}

// resetFlags restores every flag of c and its subcommands to its default
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its output
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// seedDB creates an initialized database holding events
func seedDB(t *testing.T, dbPath string, events []models.Event) {
	t.Helper()
	database, err := db.NewForTesting(dbPath)
	require.NoError(t, err)
	defer database.Close()

	if len(events) > 0 {
		require.NoError(t, database.InsertEvents(events))
	}
}

// hourlyEvents records hour+1 events at every hour of Jan 1 2020 UTC
func hourlyEvents(org string) []models.Event {
	var events []models.Event
	for h := 0; h < 24; h++ {
		events = append(events, models.Event{
			Organization: org,
			Category:     "accepted",
			Quantity:     int64(h + 1),
			Timestamp:    time.Date(2020, 1, 1, h, 30, 0, 0, time.UTC).Unix(),
		})
	}
	return events
}
