// Package config loads and owns the ledgerlite configuration: where the
// hosted backend lives, how long cached lookups stay fresh, how long a
// session survives offline, and where local snapshots are kept.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file or individual keys are absent.
const (
	DefaultCacheTTL       = 5 * time.Minute
	DefaultGracePeriod    = 10 * time.Minute
	DefaultLiveTimeout    = 10 * time.Second
	DefaultProbeInterval  = 30 * time.Second
	DefaultLiveEndpoint   = "https://api.ledgerlite.app"
	configDirName         = ".ledgerlite"
	configFileName        = "config.yaml"
	snapshotsDirName      = "snapshots"
	syncQueueDirName      = "sync-queue"
	defaultConfigFileMode = 0600
)

// Config is the full application configuration.
type Config struct {
	Live    LiveConfig    `yaml:"live"`
	Cache   CacheConfig   `yaml:"cache"`
	Session SessionConfig `yaml:"session"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// LiveConfig describes the hosted backend boundary.
type LiveConfig struct {
	// Endpoint is the base URL of the hosted data service.
	Endpoint string `yaml:"endpoint"`

	// TimeoutSeconds bounds a single live query. A query that does not
	// resolve within this window is treated as a failure and triggers
	// snapshot fallback.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// ProbeIntervalSeconds is how often the connectivity monitor probes
	// the endpoint while running.
	ProbeIntervalSeconds int `yaml:"probe_interval_seconds"`
}

// CacheConfig controls the in-memory freshness cache.
type CacheConfig struct {
	// TTLSeconds is the maximum age of a cached category lookup.
	TTLSeconds int `yaml:"ttl_seconds"`
}

// SessionConfig controls offline session continuity.
type SessionConfig struct {
	// GracePeriodSeconds is how long an authenticated session stays
	// valid after connectivity loss before re-authentication is forced.
	GracePeriodSeconds int `yaml:"grace_period_seconds"`
}

// StorageConfig locates on-device durable state.
type StorageConfig struct {
	// SnapshotDir holds one snapshot blob per user.
	SnapshotDir string `yaml:"snapshot_dir"`

	// SyncQueueDir holds queued mutations awaiting replay.
	SyncQueueDir string `yaml:"sync_queue_dir"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// New returns a Config populated with defaults rooted in the user's home
// directory.
func New() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, configDirName)

	return &Config{
		Live: LiveConfig{
			Endpoint:             DefaultLiveEndpoint,
			TimeoutSeconds:       int(DefaultLiveTimeout.Seconds()),
			ProbeIntervalSeconds: int(DefaultProbeInterval.Seconds()),
		},
		Cache:   CacheConfig{TTLSeconds: int(DefaultCacheTTL.Seconds())},
		Session: SessionConfig{GracePeriodSeconds: int(DefaultGracePeriod.Seconds())},
		Storage: StorageConfig{
			SnapshotDir:  filepath.Join(base, snapshotsDirName),
			SyncQueueDir: filepath.Join(base, syncQueueDirName),
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, configDirName, configFileName)
}

// Load reads the config file at path and overlays it on the defaults.
// A missing file is not an error; defaults are returned as-is. Environment
// variables override file values (LEDGERLITE_ENDPOINT, LEDGERLITE_LOG_LEVEL).
func Load(path string) (*Config, error) {
	cfg := New()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, unmarshalErr)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if endpoint := os.Getenv("LEDGERLITE_ENDPOINT"); endpoint != "" {
		cfg.Live.Endpoint = endpoint
	}
	if level := os.Getenv("LEDGERLITE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that would produce undefined behavior.
func (c *Config) Validate() error {
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must be >= 0, got %d", c.Cache.TTLSeconds)
	}
	if c.Session.GracePeriodSeconds <= 0 {
		return fmt.Errorf("session.grace_period_seconds must be > 0, got %d", c.Session.GracePeriodSeconds)
	}
	if c.Live.TimeoutSeconds <= 0 {
		return fmt.Errorf("live.timeout_seconds must be > 0, got %d", c.Live.TimeoutSeconds)
	}
	if c.Storage.SnapshotDir == "" {
		return fmt.Errorf("storage.snapshot_dir must not be empty")
	}
	return nil
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// GracePeriod returns the session grace period as a duration.
func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Session.GracePeriodSeconds) * time.Second
}

// LiveTimeout returns the live query timeout as a duration.
func (c *Config) LiveTimeout() time.Duration {
	return time.Duration(c.Live.TimeoutSeconds) * time.Second
}

// ProbeInterval returns the connectivity probe interval as a duration.
func (c *Config) ProbeInterval() time.Duration {
	return time.Duration(c.Live.ProbeIntervalSeconds) * time.Second
}

// EnsureStorageDirs creates the snapshot and sync-queue directories.
func (c *Config) EnsureStorageDirs() error {
	for _, dir := range []string{c.Storage.SnapshotDir, c.Storage.SyncQueueDir} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create storage directory %s: %w", dir, err)
		}
	}
	return nil
}

// Save writes the config back to path, creating the parent directory if
// needed. Used by `ledgerlite config init`.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, defaultConfigFileMode); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
