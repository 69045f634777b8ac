// Package logging builds the application logger. The terminal UI owns
// stdout, so log output goes to a rotated file or nowhere.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New
type Options struct {
	// File is the log file path. Empty disables logging.
	File string
	// Level is a charmbracelet/log level name ("debug", "info", ...)
	Level string
	// MaxSizeMB is the size at which the file is rotated
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept
	MaxBackups int
}

// DefaultFile returns the log file used when logging is enabled without a
// path. Uses XDG_STATE_HOME if set, otherwise ~/.local/state
func DefaultFile() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "orgstats", "orgstats.log")
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "orgstats", "orgstats.log")
}

// New returns a logger and the closer for its output
func New(opts Options) (*log.Logger, io.Closer, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		lvl, err := log.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse log level: %w", err)
		}
		level = lvl
	}

	if opts.File == "" {
		logger := log.NewWithOptions(io.Discard, log.Options{Level: level})
		return logger, nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = 3
	}

	out := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     28,
	}

	logger := log.NewWithOptions(out, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "orgstats",
	})
	return logger, out, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
