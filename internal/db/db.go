package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/chris/orgstats/internal/db/migrations"
	"github.com/chris/orgstats/pkg/models"
)

const defaultDBPath = "~/.local/share/orgstats/events.db"

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	path string
}

// Options configures database connection behavior
type Options struct {
	// SkipSchemaCheck opens the database without verifying schema exists.
	// Use this for init-db command which creates the schema.
	SkipSchemaCheck bool
}

// New creates a new database connection and checks the schema
func New(dbPath string) (*DB, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions creates a new database connection with configurable options
func NewWithOptions(dbPath string, opts Options) (*DB, error) {
	dbPath, err := ResolvePath(dbPath)
	if err != nil {
		return nil, err
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database connection
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set busy timeout first, before any other operations that might need write locks
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Check schema version unless SkipSchemaCheck (used by init-db)
	if !opts.SkipSchemaCheck {
		var version int
		if err := conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to check schema version: %w", err)
		}
		if version == 0 {
			conn.Close()
			return nil, fmt.Errorf("database not initialized, run: orgstats init-db")
		}
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// ResolvePath expands a leading tilde, or returns the default path when
// dbPath is empty.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share
func ResolvePath(dbPath string) (string, error) {
	if dbPath == "" || dbPath == defaultDBPath {
		dataDir := os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get user home directory: %w", err)
			}
			dataDir = filepath.Join(home, ".local/share")
		}
		return filepath.Join(dataDir, "orgstats/events.db"), nil
	}
	if dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(home, dbPath[1:]), nil
	}
	return dbPath, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// NewForTesting creates a new database with schema initialized.
// This is a convenience function for tests.
func NewForTesting(dbPath string) (*DB, error) {
	db, err := NewWithOptions(dbPath, Options{SkipSchemaCheck: true})
	if err != nil {
		return nil, err
	}

	if _, err := db.InitSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// InitSchema runs pending migrations.
// Returns true if the schema was created, false if it already existed.
func (db *DB) InitSchema() (bool, error) {
	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return false, fmt.Errorf("failed to check schema version: %w", err)
	}

	if err := migrations.Migrate(db.conn); err != nil {
		return false, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return version == 0, nil
}

// SchemaVersion returns the current PRAGMA user_version
func (db *DB) SchemaVersion() (int, error) {
	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to check schema version: %w", err)
	}
	return version, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// getOrCreateOrganization returns the ID for an organization slug, creating it if needed
func getOrCreateOrganization(q execer, slug string) (int64, error) {
	// Try to get existing
	var id int64
	err := q.QueryRow("SELECT id FROM organizations WHERE slug = ?", slug).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to query organization: %w", err)
	}

	// Insert new
	result, err := q.Exec("INSERT INTO organizations (slug) VALUES (?)", slug)
	if err != nil {
		// Handle race condition - another connection may have inserted
		err2 := q.QueryRow("SELECT id FROM organizations WHERE slug = ?", slug).Scan(&id)
		if err2 == nil {
			return id, nil
		}
		return 0, fmt.Errorf("failed to insert organization: %w", err)
	}

	return result.LastInsertId()
}

func insertEvent(q execer, ev *models.Event) (int64, error) {
	if ev.Organization == "" {
		return 0, fmt.Errorf("event has no organization")
	}

	orgID, err := getOrCreateOrganization(q, ev.Organization)
	if err != nil {
		return 0, fmt.Errorf("failed to get organization_id: %w", err)
	}

	result, err := q.Exec(`
		INSERT INTO events (organization_id, category, quantity, timestamp)
		VALUES (?, ?, ?, ?)`,
		orgID,
		ev.Category,
		ev.Quantity,
		ev.Timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}

// InsertEvent inserts a single event and returns its ID
func (db *DB) InsertEvent(ev *models.Event) (int64, error) {
	return insertEvent(db.conn, ev)
}

// InsertEvents inserts events in one transaction
func (db *DB) InsertEvents(events []models.Event) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i := range events {
		if _, err := insertEvent(tx, &events[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert event %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

const eventSelect = `
	SELECT e.id, o.slug, e.category, e.quantity, e.timestamp
	FROM events e
	JOIN organizations o ON o.id = e.organization_id`

func scanEvent(scanner interface{ Scan(...any) error }) (*models.Event, error) {
	var ev models.Event
	if err := scanner.Scan(&ev.ID, &ev.Organization, &ev.Category, &ev.Quantity, &ev.Timestamp); err != nil {
		return nil, err
	}
	return &ev, nil
}

// GetEvent retrieves an event by ID
func (db *DB) GetEvent(id int64) (*models.Event, error) {
	row := db.conn.QueryRow(eventSelect+" WHERE e.id = ?", id)
	ev, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return ev, nil
}

// GetEventsByDateRange returns an organization's events with
// startTime <= timestamp <= endTime, oldest first. An empty category matches
// every category.
func (db *DB) GetEventsByDateRange(org, category string, startTime, endTime int64) ([]models.Event, error) {
	query := eventSelect + `
		WHERE o.slug = ? AND e.timestamp >= ? AND e.timestamp <= ?`
	args := []any{org, startTime, endTime}

	if category != "" {
		query += " AND e.category = ?"
		args = append(args, category)
	}
	query += " ORDER BY e.timestamp ASC, e.id ASC"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get events by date range: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// CountEvents returns the number of stored events
func (db *DB) CountEvents() (int, error) {
	var count int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}
	return count, nil
}

// ListOrganizations returns every organization slug, sorted
func (db *DB) ListOrganizations() ([]string, error) {
	rows, err := db.conn.Query("SELECT slug FROM organizations ORDER BY slug")
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// ListCategories returns the distinct categories recorded for an organization
func (db *DB) ListCategories(org string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT DISTINCT e.category
		FROM events e
		JOIN organizations o ON o.id = e.organization_id
		WHERE o.slug = ?
		ORDER BY e.category`, org)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// TableExists checks if the events table exists
func (db *DB) TableExists() (bool, error) {
	var name string
	err := db.conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='events'").Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check table: %w", err)
	}
	return true, nil
}

// GetTableSchema returns the schema of the events table
func (db *DB) GetTableSchema() ([]map[string]any, error) {
	rows, err := db.conn.Query("PRAGMA table_info(events)")
	if err != nil {
		return nil, fmt.Errorf("failed to get table schema: %w", err)
	}
	defer rows.Close()

	var schema []map[string]any
	for rows.Next() {
		var name, colType string
		var placeholder any
		if err := rows.Scan(&placeholder, &name, &colType, &placeholder, &placeholder, &placeholder); err != nil {
			return nil, fmt.Errorf("failed to scan schema row: %w", err)
		}

		schema = append(schema, map[string]any{
			"name": name,
			"type": colType,
		})
	}

	return schema, rows.Err()
}
