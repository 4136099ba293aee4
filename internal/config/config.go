package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete onelane configuration
type Config struct {
	Bridge  BridgeConfig  `mapstructure:"bridge"`
	Sim     SimConfig     `mapstructure:"sim"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BridgeConfig controls the shared span
type BridgeConfig struct {
	// Capacity is the maximum number of cars allowed on the span at once
	// (default: 3, min: 1, max: 1024)
	Capacity int `mapstructure:"capacity"`
}

// SimConfig controls the simulation driver
type SimConfig struct {
	// Cars is the number of cars to spawn when neither a scenario file
	// nor a --cars flag provides a plan (default: 20)
	Cars int `mapstructure:"cars"`
	// Seed seeds the random traffic plan and all timing jitter.
	// 0 (default) derives a seed from the clock, so each run differs.
	Seed int64 `mapstructure:"seed"`
	// StaggerMinMs is the minimum pause between consecutive arrivals (in milliseconds)
	StaggerMinMs int `mapstructure:"stagger_min_ms"`
	// StaggerMaxMs is the maximum pause between consecutive arrivals (in milliseconds)
	StaggerMaxMs int `mapstructure:"stagger_max_ms"`
	// DwellMinMs is the minimum time a car sits mid-span (in milliseconds)
	DwellMinMs int `mapstructure:"dwell_min_ms"`
	// DwellMaxMs is the maximum time a car sits mid-span (in milliseconds)
	DwellMaxMs int `mapstructure:"dwell_max_ms"`
	// MaxInFlight caps how many cars may be approaching or crossing at
	// once, 0 = unlimited (default: 0)
	MaxInFlight int `mapstructure:"max_inflight"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// File is the log file path; empty (default) logs to stderr
	File string `mapstructure:"file"`
	// MaxSizeMB rotates the log file once it exceeds this size.
	// 0 disables rotation (default: 10, max: 1024)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is how many rotated files to keep (default: 3, max: 100)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzips rotated backups (default: false)
	Compress bool `mapstructure:"compress"`
}

// StaggerRange returns the arrival stagger bounds as durations
func (c *SimConfig) StaggerRange() (min, max time.Duration) {
	return time.Duration(c.StaggerMinMs) * time.Millisecond,
		time.Duration(c.StaggerMaxMs) * time.Millisecond
}

// DwellRange returns the mid-span dwell bounds as durations
func (c *SimConfig) DwellRange() (min, max time.Duration) {
	return time.Duration(c.DwellMinMs) * time.Millisecond,
		time.Duration(c.DwellMaxMs) * time.Millisecond
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Bridge: BridgeConfig{
			Capacity: 3,
		},
		Sim: SimConfig{
			Cars:         20,
			Seed:         0, // Time-based seed
			StaggerMinMs: 50,
			StaggerMaxMs: 400,
			DwellMinMs:   150,
			DwellMaxMs:   600,
			MaxInFlight:  0, // No limit by default
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "", // Empty means stderr
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Bridge defaults
	viper.SetDefault("bridge.capacity", defaults.Bridge.Capacity)

	// Sim defaults
	viper.SetDefault("sim.cars", defaults.Sim.Cars)
	viper.SetDefault("sim.seed", defaults.Sim.Seed)
	viper.SetDefault("sim.stagger_min_ms", defaults.Sim.StaggerMinMs)
	viper.SetDefault("sim.stagger_max_ms", defaults.Sim.StaggerMaxMs)
	viper.SetDefault("sim.dwell_min_ms", defaults.Sim.DwellMinMs)
	viper.SetDefault("sim.dwell_max_ms", defaults.Sim.DwellMaxMs)
	viper.SetDefault("sim.max_inflight", defaults.Sim.MaxInFlight)

	// Logging defaults
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "onelane")
	}
	// Fall back to ~/.config/onelane
	home, err := os.UserHomeDir()
	if err != nil {
		return ".onelane"
	}
	return filepath.Join(home, ".config", "onelane")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
