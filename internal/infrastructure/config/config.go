package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Roon Relay.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Core      CoreConfig      `yaml:"core"`
	Artwork   ArtworkConfig   `yaml:"artwork"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CoreConfig contains Roon Core connection settings.
//
// Host and Port are optional: when both are set the supervisor connects
// directly instead of waiting for discovery. Reconnect settings govern the
// backoff applied after a lost or failed connection.
type CoreConfig struct {
	Host      string          `yaml:"host"`
	Port      int             `yaml:"port"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
}

// ReconnectConfig contains reconnection backoff settings.
type ReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"` // seconds
	MaxDelay     int `yaml:"max_delay"`     // seconds
	MaxAttempts  int `yaml:"max_attempts"`  // 0 = unlimited
}

// ArtworkConfig contains artwork cache and fetch settings.
type ArtworkConfig struct {
	CacheCapacity int `yaml:"cache_capacity"`
	CacheTTL      int `yaml:"cache_ttl"`     // seconds
	FetchTimeout  int `yaml:"fetch_timeout"` // seconds
	ThumbnailSize int `yaml:"thumbnail_size"`
}

// TelemetryConfig contains optional InfluxDB playback telemetry settings.
type TelemetryConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"` // seconds
}

// LoggingConfig contains logging settings.
//
// Output defaults to stderr: stdout is the wire-protocol channel to the host
// process and must carry nothing but protocol lines.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// A missing config file is not an error: the sidecar must be able to run with
// zero configuration on the pure discovery path. Defaults plus environment
// overrides are used instead.
//
// Environment variables follow the pattern: ROONRELAY_SECTION_KEY
// For example: ROONRELAY_CORE_HOST, ROONRELAY_LOG_LEVEL
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file exists but cannot be parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case os.IsNotExist(err):
		// Run on defaults; env overrides still apply.
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			Reconnect: ReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     30,
				MaxAttempts:  0,
			},
		},
		Artwork: ArtworkConfig{
			CacheCapacity: 100,
			CacheTTL:      3600,
			FetchTimeout:  10,
			ThumbnailSize: 64,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: ROONRELAY_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Core connection (manual, non-discovery path)
	if v := os.Getenv("ROONRELAY_CORE_HOST"); v != "" {
		cfg.Core.Host = v
	}
	if v := os.Getenv("ROONRELAY_CORE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Core.Port = port
		}
	}

	// Logging
	if v := os.Getenv("ROONRELAY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Telemetry token (keep credentials out of the config file)
	if v := os.Getenv("ROONRELAY_TELEMETRY_TOKEN"); v != "" {
		cfg.Telemetry.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Core.Host != "" && (c.Core.Port < 1 || c.Core.Port > 65535) {
		errs = append(errs, "core.port must be between 1 and 65535 when core.host is set")
	}
	if c.Core.Reconnect.InitialDelay < 1 {
		errs = append(errs, "core.reconnect.initial_delay must be at least 1 second")
	}
	if c.Core.Reconnect.MaxDelay < c.Core.Reconnect.InitialDelay {
		errs = append(errs, "core.reconnect.max_delay must be >= initial_delay")
	}

	if c.Artwork.CacheCapacity < 1 {
		errs = append(errs, "artwork.cache_capacity must be at least 1")
	}
	if c.Artwork.CacheTTL < 1 {
		errs = append(errs, "artwork.cache_ttl must be at least 1 second")
	}
	if c.Artwork.FetchTimeout < 1 {
		errs = append(errs, "artwork.fetch_timeout must be at least 1 second")
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.URL == "" {
			errs = append(errs, "telemetry.url is required when telemetry is enabled")
		}
		if c.Telemetry.Token == "" {
			errs = append(errs, "telemetry.token is required when telemetry is enabled (set ROONRELAY_TELEMETRY_TOKEN)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetCacheTTL returns the artwork cache TTL as a Duration.
func (c *Config) GetCacheTTL() time.Duration {
	return time.Duration(c.Artwork.CacheTTL) * time.Second
}

// GetFetchTimeout returns the artwork fetch timeout as a Duration.
func (c *Config) GetFetchTimeout() time.Duration {
	return time.Duration(c.Artwork.FetchTimeout) * time.Second
}

// GetInitialReconnectDelay returns the reconnect initial delay as a Duration.
func (c *Config) GetInitialReconnectDelay() time.Duration {
	return time.Duration(c.Core.Reconnect.InitialDelay) * time.Second
}

// GetMaxReconnectDelay returns the reconnect maximum delay as a Duration.
func (c *Config) GetMaxReconnectDelay() time.Duration {
	return time.Duration(c.Core.Reconnect.MaxDelay) * time.Second
}
