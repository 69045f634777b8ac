package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chris/orgstats/internal/config"
	"github.com/chris/orgstats/internal/git"
	"github.com/chris/orgstats/internal/logging"
)

var (
	dbPath   string
	cfgFile  string
	orgFlag  string
	logFile  string
	logLevel string

	// Set by loadConfig before any command runs
	cfg       *config.Config
	logger    = log.New(io.Discard)
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "orgstats",
	Short: "Per-organization event statistics",
	Long:  "Record per-organization events in SQLite and explore them as zoomable time-series charts",
	Example: heredoc.Doc(`
		$ orgstats init-db
		$ orgstats record --org acme --category accepted --quantity 3
		$ orgstats stats --org acme --period 7d --previous
		$ orgstats chart --org acme
	`),
	Version:            Version,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  loadConfig,
	PersistentPostRunE: closeLogger,
}

// Execute runs the root command
func Execute() {
	err := rootCmd.Execute()
	closeLogger(nil, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate("orgstats version {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&dbPath, "db", "", "Database file path (default: ~/.local/share/orgstats/events.db)")
	flags.StringVar(&cfgFile, "config", "", "Config file (default: ~/.config/orgstats/config.yaml)")
	flags.StringVar(&orgFlag, "org", "", "Organization (default: owner of the git remote)")
	flags.StringVar(&logFile, "log-file", "", "Write debug logs to this file")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig merges flags, environment and the config file, then opens the
// log file
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := closeLogger(cmd, args); err != nil {
		return err
	}

	v := config.New()
	flags := cmd.Root().PersistentFlags()
	for key, name := range map[string]string{
		config.KeyDB:       "db",
		config.KeyOrg:      "org",
		config.KeyLogFile:  "log-file",
		config.KeyLogLevel: "log-level",
	} {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}

	c, err := config.Load(v, config.Options{ConfigFile: cfgFile})
	if err != nil {
		return err
	}
	cfg = c
	dbPath = cfg.DB

	l, closer, err := logging.New(logging.Options{File: cfg.Log.File, Level: cfg.Log.Level})
	if err != nil {
		return err
	}
	logger, logCloser = l, closer
	logger.Debug("config loaded", "file", cfg.File, "db", cfg.DB, "org", cfg.Org)
	return nil
}

func closeLogger(cmd *cobra.Command, args []string) error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

// resolveOrganization returns the configured organization, falling back to
// the owner of the working directory's git remote
func resolveOrganization() (string, error) {
	if cfg != nil && cfg.Org != "" {
		return cfg.Org, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	org, err := git.DetectOrganization(wd)
	if err != nil {
		return "", fmt.Errorf("failed to detect organization: %w", err)
	}
	if org == "" {
		return "", fmt.Errorf("no organization: pass --org, set org in the config file or run inside a repository with a remote")
	}
	logger.Debug("organization detected from git remote", "org", org)
	return org, nil
}

// defaultPeriod returns the configured period used when nothing else picks a
// range
func defaultPeriod() string {
	if cfg != nil && cfg.Period != "" {
		return cfg.Period
	}
	return config.DefaultPeriod
}
