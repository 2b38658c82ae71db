// Package config loads cascade settings from YAML and CASCADE_* environment
// variables. LLM provider settings stay in the llm package and are env only.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/cascade/internal/analytics"
	"github.com/abhisek/cascade/internal/engine"
)

// Config contains all cascade settings.
type Config struct {
	Game      engine.Rules    `yaml:"game"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Store     StoreConfig     `yaml:"store"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Export    ExportConfig    `yaml:"export"`

	// Catalog is an optional YAML catalog path; empty uses the built-in one.
	Catalog string `yaml:"catalog,omitempty"`
}

// AnalyticsConfig configures learner profiles.
type AnalyticsConfig struct {
	UserID            string `yaml:"user_id"`
	InitialDifficulty int    `yaml:"initial_difficulty"`
}

// StoreConfig selects the event store backend.
type StoreConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// DSN is a file path for sqlite or a connection URL for postgres.
	// Empty with sqlite resolves to the default data path.
	DSN string `yaml:"dsn,omitempty"`
}

// LoggingConfig configures the operational logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	// File receives TUI logs; empty discards them.
	File string `yaml:"file,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint. Empty Listen disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen,omitempty"`
}

// ExportConfig configures S3 exports.
type ExportConfig struct {
	Bucket    string `yaml:"bucket,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"path_style,omitempty"`
}

// Default returns a Config with defaults applied.
func Default() *Config {
	return &Config{
		Game: engine.DefaultRules(),
		Analytics: AnalyticsConfig{
			UserID:            "local",
			InitialDifficulty: analytics.MinDifficulty,
		},
		Store:   StoreConfig{Driver: "sqlite"},
		Logging: LoggingConfig{Level: "info"},
		Export:  ExportConfig{Region: "us-east-1"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/cascade/config.yaml, falling back to
// ~/.config/cascade/config.yaml.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "cascade", "config.yaml"), nil
}

// Load reads configuration in order: defaults, the YAML file at path (or the
// default path when empty; a missing default file is not an error), then
// CASCADE_* environment overrides.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil || explicit {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML config file over the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.Store.DSN = expandEnvVars(cfg.Store.DSN)
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid store driver: %q (valid: sqlite, postgres)", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.Store.DSN == "" {
		return fmt.Errorf("store dsn is required for postgres")
	}
	if d := c.Analytics.InitialDifficulty; d < analytics.MinDifficulty || d > analytics.MaxDifficulty {
		return fmt.Errorf("initial_difficulty must be between %d and %d, got %d",
			analytics.MinDifficulty, analytics.MaxDifficulty, d)
	}
	for name, v := range map[string]int{
		"base_award":             c.Game.BaseAward,
		"tolerance":              c.Game.Tolerance,
		"target_seconds":         c.Game.TargetSeconds,
		"emergency_start_status": c.Game.EmergencyStartStatus,
		"scenario_seconds":       c.Game.ScenarioSeconds,
	} {
		if v < 0 {
			return fmt.Errorf("game.%s must be non-negative, got %d", name, v)
		}
	}
	if c.Game.EmergencyStartStatus > engine.MaxStatus {
		return fmt.Errorf("game.emergency_start_status must be at most %d, got %d",
			engine.MaxStatus, c.Game.EmergencyStartStatus)
	}
	return nil
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("CASCADE_STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("CASCADE_STORE_DSN"); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("CASCADE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CASCADE_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("CASCADE_METRICS_LISTEN"); v != "" {
		c.Metrics.Listen = v
	}
	if v := os.Getenv("CASCADE_USER"); v != "" {
		c.Analytics.UserID = v
	}
	if v := os.Getenv("CASCADE_CATALOG"); v != "" {
		c.Catalog = v
	}
	if v := os.Getenv("CASCADE_TOLERANCE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Game.Tolerance = n
		}
	}
	if v := os.Getenv("CASCADE_EXPORT_BUCKET"); v != "" {
		c.Export.Bucket = v
	}
	if v := os.Getenv("CASCADE_EXPORT_ENDPOINT"); v != "" {
		c.Export.Endpoint = v
	}
	if v := os.Getenv("CASCADE_EXPORT_PATH_STYLE"); v != "" {
		c.Export.PathStyle = v == "true" || v == "1"
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.Export.Region = v
	}
}

// expandEnvVars expands ${VAR} patterns.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
