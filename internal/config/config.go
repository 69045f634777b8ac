// Package config loads orgstats settings from a YAML file, ORGSTATS_*
// environment variables and a .env file, with flags taking precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/chris/orgstats/internal/timerange"
)

const (
	EnvPrefix     = "ORGSTATS"
	DefaultPeriod = "14d"
)

// Keys
const (
	KeyDB                   = "db"
	KeyOrg                  = "org"
	KeyPeriod               = "period"
	KeyUTC                  = "utc"
	KeyLogFile              = "log.file"
	KeyLogLevel             = "log.level"
	KeyChartFrames          = "chart.frames"
	KeyChartFrameInterval   = "chart.frame-interval"
	KeyChartIncludePrevious = "chart.include-previous"
)

// Config holds the resolved settings
type Config struct {
	DB     string
	Org    string
	Period string
	UTC    bool
	Log    LogConfig
	Chart  ChartConfig

	// File is the config file that was read, empty if none
	File string
}

type LogConfig struct {
	File  string
	Level string
}

type ChartConfig struct {
	Frames          int
	FrameInterval   time.Duration
	IncludePrevious bool
}

// Options controls where Load looks for settings
type Options struct {
	// ConfigFile is an explicit config file; it must exist
	ConfigFile string
	// EnvFile is a dotenv file loaded into the environment when present
	EnvFile string
}

// New returns a viper instance with defaults and environment binding set up
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPeriod, DefaultPeriod)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyChartFrames, 6)
	v.SetDefault(KeyChartFrameInterval, 40*time.Millisecond)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// DefaultDir returns the directory searched for config.yaml
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "orgstats"), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".config", "orgstats"), nil
}

// Load reads settings into v and resolves them
func Load(v *viper.Viper, opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if opts.ConfigFile != "" {
		path, err := homedir.Expand(opts.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("failed to expand config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return Resolve(v)
}

// Resolve builds a Config from the values already in v
func Resolve(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Org:    v.GetString(KeyOrg),
		Period: v.GetString(KeyPeriod),
		UTC:    v.GetBool(KeyUTC),
		Log: LogConfig{
			Level: v.GetString(KeyLogLevel),
		},
		Chart: ChartConfig{
			Frames:          v.GetInt(KeyChartFrames),
			FrameInterval:   v.GetDuration(KeyChartFrameInterval),
			IncludePrevious: v.GetBool(KeyChartIncludePrevious),
		},
		File: v.ConfigFileUsed(),
	}

	var err error
	if cfg.DB, err = expand(v.GetString(KeyDB)); err != nil {
		return nil, err
	}
	if cfg.Log.File, err = expand(v.GetString(KeyLogFile)); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later
func (c *Config) Validate() error {
	if _, err := timerange.ParsePeriod(c.Period); err != nil {
		return fmt.Errorf("invalid %s: %w", KeyPeriod, err)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid %s: %w", KeyLogLevel, err)
	}
	if c.Chart.Frames < 0 {
		return fmt.Errorf("invalid %s: %d is negative", KeyChartFrames, c.Chart.Frames)
	}
	if c.Chart.FrameInterval <= 0 {
		return fmt.Errorf("invalid %s: must be positive", KeyChartFrameInterval)
	}
	return nil
}

func expand(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand %q: %w", path, err)
	}
	return p, nil
}
