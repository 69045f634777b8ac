package params

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Store persists params per organization, one query string per file
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. An empty dir uses DefaultDir.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// DefaultDir returns the state directory
// Uses XDG_STATE_HOME if set, otherwise ~/.local/state
func DefaultDir() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// Fallback to /tmp if we can't get home directory
			return filepath.Join("/tmp", "orgstats", "params")
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "orgstats", "params")
}

// Dir returns the directory the store writes to
func (s *Store) Dir() string {
	return s.dir
}

// Load returns the stored params for an organization
// Returns ok=false if nothing has been stored yet (not an error)
func (s *Store) Load(org string) (Params, bool, error) {
	path := s.path(org)

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Params{}, false, nil
		}
		return Params{}, false, fmt.Errorf("failed to open params file: %w", err)
	}
	defer file.Close()

	var query string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			query = line
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return Params{}, false, fmt.Errorf("failed to read params file: %w", err)
	}
	if query == "" {
		return Params{}, false, nil
	}

	p, err := Parse(query)
	if err != nil {
		return Params{}, false, err
	}
	return p, true, nil
}

// Update replaces the range and zoom keys of the stored params. The utc
// setting already stored is preserved.
func (s *Store) Update(org string, p Params) (Params, error) {
	existing, _, err := s.Load(org)
	if err != nil {
		return Params{}, err
	}
	p.UTC = existing.UTC
	if err := s.Save(org, p); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Save writes params atomically
// Creates parent directory if needed
func (s *Store) Save(org string, p Params) error {
	path := s.path(org)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create params directory: %w", err)
	}

	// Write to temporary file first
	tmpPath := path + ".tmp"
	file, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temporary params file: %w", err)
	}

	if _, err := fmt.Fprintln(file, p.Encode()); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write params file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close params file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename params file: %w", err)
	}

	return nil
}

// Clear deletes the stored params for an organization
// Fails silently if nothing is stored
func (s *Store) Clear(org string) error {
	err := os.Remove(s.path(org))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove params file: %w", err)
	}
	return nil
}

func (s *Store) path(org string) string {
	return filepath.Join(s.dir, url.PathEscape(org)+".query")
}
