package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/orgstats/internal/db/migrations"
	"github.com/chris/orgstats/pkg/models"
)

// TestMigrate_NoMigrationNeeded tests that migrate is a no-op when schema is current
func TestMigrate_NoMigrationNeeded(t *testing.T) {
	database := newTestDB(t)

	id, err := database.InsertEvent(&models.Event{Organization: "acme", Category: "error", Quantity: 1, Timestamp: 42})
	require.NoError(t, err)

	require.NoError(t, migrations.Migrate(database.conn))

	ev, err := database.GetEvent(id)
	require.NoError(t, err, "should still be able to retrieve event")
	assert.Equal(t, int64(42), ev.Timestamp)

	version, err := database.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, migrations.Latest(), version)
}

// TestMigrate_FromVersionOne tests that a database created before the
// category index gains it without losing rows
func TestMigrate_FromVersionOne(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "events.db")

	conn, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)

	_, err = conn.Exec(migrations.All[0].SQL)
	require.NoError(t, err)
	_, err = conn.Exec("PRAGMA user_version = 1")
	require.NoError(t, err)
	_, err = conn.Exec("INSERT INTO organizations (slug) VALUES ('acme')")
	require.NoError(t, err)
	_, err = conn.Exec("INSERT INTO events (organization_id, category, quantity, timestamp) VALUES (1, 'error', 7, 1000)")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	database, err := New(dbPath)
	require.NoError(t, err)
	defer database.Close()

	created, err := database.InitSchema()
	require.NoError(t, err)
	assert.False(t, created)

	var name string
	err = database.conn.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_events_org_category_timestamp'",
	).Scan(&name)
	require.NoError(t, err, "category index should exist after migration")

	events, err := database.GetEventsByDateRange("acme", "error", 0, 2000)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(7), events[0].Quantity)
}
