// Package config loads process configuration from defaults, an optional
// .env file, an optional YAML file and the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/kickoff/internal/domain/injury"
	"github.com/okian/kickoff/pkg/logger"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Storage selects the repository backend: memory or sqlite.
	Storage string `koanf:"storage"`

	// DatabasePath is the sqlite file used when Storage is sqlite.
	DatabasePath string `koanf:"database_path"`

	// InjuryProfile names the injury profile: conservative, default, gritty.
	InjuryProfile string `koanf:"injury_profile"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of simulation workers. One worker runs
	// queued jobs in submission order.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the pending job key cache.
	DedupeSize int `koanf:"dedupe_size"`

	// SeedDemoLeague generates a league and schedules its first season at
	// startup when the store has no leagues.
	SeedDemoLeague bool   `koanf:"seed_demo_league"`
	DemoClubs      int    `koanf:"demo_clubs"`
	DemoSeed       uint32 `koanf:"demo_seed"`

	// CORSAllowedOrigins is a comma separated origin list. Empty allows any.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`

	warnings []string
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      logger.FormatText,
		Addr:           ":9080",
		Storage:        StorageMemory,
		DatabasePath:   "kickoff.db",
		InjuryProfile:  injury.Default,
		QueueSize:      256,
		WorkerCount:    1,
		DedupeSize:     4096,
		SeedDemoLeague: true,
		DemoClubs:      10,
		DemoSeed:       1,
	}
}

// AllowedOrigins splits CORSAllowedOrigins into its entries.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Profile resolves the configured injury profile.
func (c *Config) Profile() injury.Profile {
	p, _ := injury.Parse(c.InjuryProfile)
	return p
}

// Warnings lists settings that were corrected while loading.
func (c *Config) Warnings() []string {
	return c.warnings
}

// Validate checks field ranges and normalises soft errors. An unknown
// injury profile falls back to the default and is reported in Warnings.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case logger.FormatText, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch c.Storage {
	case StorageMemory:
	case StorageSQLite:
		if c.DatabasePath == "" {
			return fmt.Errorf("%w: database_path is required for sqlite", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: storage %q", ErrInvalidConfig, c.Storage)
	}
	if c.QueueSize <= 0 || c.WorkerCount <= 0 || c.DedupeSize <= 0 {
		return fmt.Errorf("%w: queue_size, worker_count and dedupe_size must be positive", ErrInvalidConfig)
	}
	if c.SeedDemoLeague && (c.DemoClubs < 2 || c.DemoClubs%2 != 0) {
		return fmt.Errorf("%w: demo_clubs must be even and at least 2, got %d", ErrInvalidConfig, c.DemoClubs)
	}
	if _, ok := injury.Lookup(c.InjuryProfile); !ok {
		c.warnings = append(c.warnings, fmt.Sprintf("unknown injury profile %q, using %q", c.InjuryProfile, injury.Default))
		c.InjuryProfile = injury.Default
	}
	return nil
}
