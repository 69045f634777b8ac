package migrations

import (
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed 001_initial_schema.sql
var initialSchemaSQL string

//go:embed 002_event_category_index.sql
var eventCategoryIndexSQL string

// Migration is one schema step. Version is the PRAGMA user_version the
// database reports after the step commits.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// All lists the migrations in version order.
var All = []Migration{
	{Version: 1, Name: "initial schema", SQL: initialSchemaSQL},
	{Version: 2, Name: "event category index", SQL: eventCategoryIndexSQL},
}

// Latest returns the version a fully migrated database reports.
func Latest() int {
	return All[len(All)-1].Version
}

// Migrate applies every migration newer than the database's user_version.
// Each step runs in its own transaction; the first failure rolls back and
// stops.
func Migrate(db *sql.DB) error {
	var current int
	if err := db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range All {
		if m.Version <= current {
			continue
		}
		if err := apply(db, m); err != nil {
			return err
		}
	}

	return nil
}

func apply(db *sql.DB, m Migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration %d (%s): %w", m.Version, m.Name, err)
	}

	if _, err := tx.Exec(m.SQL); err != nil {
		tx.Rollback()
		return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
	}

	// PRAGMA does not accept bound parameters
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to set schema version to %d: %w", m.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}
