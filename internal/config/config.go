// Package config loads application configuration from an optional
// YAML file with environment variable overrides layered on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sedalabs/scriptscan/internal/scoring"
)

// DefaultPath is where Load looks when no path is given
const DefaultPath = ".scriptscan/config.yaml"

// Config is the full application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Scan     ScanConfig     `yaml:"scan"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Notify   NotifyConfig   `yaml:"notify"`
	Server   ServerConfig   `yaml:"server"`
	GitHub   GitHubConfig   `yaml:"github"`
}

// DatabaseConfig locates the SQLite database
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ScanConfig tunes the periodic scanner
type ScanConfig struct {
	// Interval is a duration string like "2h" or "30m"
	Interval string `yaml:"interval"`

	// OnStart runs a scan pass immediately when the service starts
	OnStart bool `yaml:"on_start"`

	// MaxConcurrentProjects caps project-level scan parallelism
	MaxConcurrentProjects int `yaml:"max_concurrent_projects"`
}

// ScoringConfig mirrors the scoring package's knobs in YAML form
type ScoringConfig struct {
	Strategy       string   `yaml:"strategy"`
	FunctionWeight *float64 `yaml:"function_weight"`
	ImportWeight   *float64 `yaml:"import_weight"`
	Threshold      *float64 `yaml:"threshold"`
}

// NotifyConfig tunes notification delivery
type NotifyConfig struct {
	// PerMinute caps notifications dispatched per minute
	PerMinute int `yaml:"per_minute"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// GitHubConfig configures the GitHub file source
type GitHubConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: ".scriptscan/scriptscan.db"},
		Scan:     ScanConfig{Interval: "2h"},
		Scoring:  ScoringConfig{Strategy: scoring.StrategyStructural},
		Notify:   NotifyConfig{PerMinute: 30},
		Server:   ServerConfig{Addr: ":8090"},
	}
}

// Load reads configuration from path, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers environment variables over the file values
func (c *Config) applyEnv() error {
	if v := os.Getenv("SCRIPTSCAN_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("SCRIPTSCAN_SCAN_INTERVAL"); v != "" {
		c.Scan.Interval = v
	}
	if v := os.Getenv("SCRIPTSCAN_SCAN_ON_START"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SCRIPTSCAN_SCAN_ON_START: %w", err)
		}
		c.Scan.OnStart = b
	}
	if v := os.Getenv("SCRIPTSCAN_API_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SCRIPTSCAN_NOTIFY_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCRIPTSCAN_NOTIFY_PER_MINUTE: %w", err)
		}
		c.Notify.PerMinute = n
	}
	if v := os.Getenv("SCRIPTSCAN_GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	} else if v := os.Getenv("GITHUB_TOKEN"); v != "" && c.GitHub.Token == "" {
		c.GitHub.Token = v
	}
	return nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if _, err := c.ScanInterval(); err != nil {
		return err
	}
	if c.Notify.PerMinute < 0 {
		return fmt.Errorf("notify per_minute must be non-negative (got %d)", c.Notify.PerMinute)
	}
	if _, err := c.ScoringConfig(); err != nil {
		return err
	}
	return nil
}

// ScanInterval parses the configured scan interval
func (c *Config) ScanInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Scan.Interval)
	if err != nil {
		return 0, fmt.Errorf("invalid scan interval %q: %w", c.Scan.Interval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("scan interval must be positive (got %v)", d)
	}
	return d, nil
}

// ScoringConfig resolves the YAML scoring section into the scoring
// package's config. Scoring-specific environment variables take
// precedence over the file, matching the rest of the override order.
func (c *Config) ScoringConfig() (scoring.Config, error) {
	cfg := scoring.DefaultConfig()

	if c.Scoring.Strategy != "" {
		cfg.Strategy = c.Scoring.Strategy
	}
	if c.Scoring.FunctionWeight != nil {
		cfg.FunctionWeight = *c.Scoring.FunctionWeight
	}
	if c.Scoring.ImportWeight != nil {
		cfg.ImportWeight = *c.Scoring.ImportWeight
	}
	if c.Scoring.Threshold != nil {
		cfg.Threshold = *c.Scoring.Threshold
	}

	if v := os.Getenv("SCRIPTSCAN_SCORING_STRATEGY"); v != "" {
		cfg.Strategy = v
	}
	if v := os.Getenv("SCRIPTSCAN_SCORING_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid SCRIPTSCAN_SCORING_THRESHOLD: %w", err)
		}
		cfg.Threshold = f
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
