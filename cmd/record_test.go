package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/orgstats/internal/db"
)

func TestRecord_InsertsEvent(t *testing.T) {
	dbPath := isolate(t)
	seedDB(t, dbPath, nil)

	output, err := execute(t, "record", "--db", dbPath, "--org", "acme",
		"--category", "rejected", "--quantity", "3", "--timestamp", "2020-01-01T03:15:00")
	require.NoError(t, err)
	assert.Equal(t, "Recorded 3 rejected events for acme (ID: 1)\n", output)

	database, err := db.New(dbPath)
	require.NoError(t, err)
	defer database.Close()

	ev, err := database.GetEvent(1)
	require.NoError(t, err)
	assert.Equal(t, "acme", ev.Organization)
	assert.Equal(t, "rejected", ev.Category)
	assert.Equal(t, int64(3), ev.Quantity)
	assert.Equal(t, time.Date(2020, 1, 1, 3, 15, 0, 0, time.UTC).Unix(), ev.Timestamp)
}

func TestRecord_Defaults(t *testing.T) {
	dbPath := isolate(t)
	seedDB(t, dbPath, nil)

	before := time.Now().Unix()
	output, err := execute(t, "record", "--db", dbPath, "--org", "acme")
	require.NoError(t, err)
	assert.Contains(t, output, "Recorded 1 accepted events for acme")

	database, err := db.New(dbPath)
	require.NoError(t, err)
	defer database.Close()

	ev, err := database.GetEvent(1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ev.Timestamp, before)
}

func TestRecord_InvalidInput(t *testing.T) {
	dbPath := isolate(t)
	seedDB(t, dbPath, nil)

	_, err := execute(t, "record", "--db", dbPath, "--org", "acme", "--quantity", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--quantity must be positive")

	_, err = execute(t, "record", "--db", dbPath, "--org", "acme", "--timestamp", "yesterday")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --timestamp")
}

func TestRecord_OrganizationFromConfig(t *testing.T) {
	dbPath := isolate(t)
	seedDB(t, dbPath, nil)

	configDir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "orgstats")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte("org: from-config\n"), 0644))

	output, err := execute(t, "record", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, output, "for from-config")

	// the flag wins over the file
	output, err = execute(t, "record", "--db", dbPath, "--org", "acme")
	require.NoError(t, err)
	assert.Contains(t, output, "for acme")
}

func TestRecord_OrganizationFromGitRemote(t *testing.T) {
	dbPath := isolate(t)
	seedDB(t, dbPath, nil)

	repoDir := filepath.Join(t.TempDir(), "widgets")
	require.NoError(t, os.Mkdir(repoDir, 0755))
	for _, args := range [][]string{
		{"init"},
		{"remote", "add", "origin", "git@github.com:acme/widgets.git"},
	} {
		c := exec.Command("git", args...)
		c.Dir = repoDir
		require.NoError(t, c.Run(), "git %v", args)
	}
	t.Chdir(repoDir)

	output, err := execute(t, "record", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, output, "for acme")
}

func TestRecord_NoOrganization(t *testing.T) {
	dbPath := isolate(t)
	seedDB(t, dbPath, nil)
	t.Chdir(t.TempDir())

	_, err := execute(t, "record", "--db", dbPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no organization")
}

func TestRecord_WritesLogFile(t *testing.T) {
	dbPath := isolate(t)
	seedDB(t, dbPath, nil)
	logPath := filepath.Join(t.TempDir(), "orgstats.log")

	_, err := execute(t, "record", "--db", dbPath, "--org", "acme", "--log-file", logPath, "--log-level", "debug")
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "event recorded")
	assert.Contains(t, string(data), "org=acme")
}
