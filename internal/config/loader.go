package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment keys read outside the KICKOFF_ prefix mapping.
const (
	EnvConfigFile = "KICKOFF_CONFIG"
	EnvDotFile    = "KICKOFF_ENV_FILE"
	EnvProfile    = "INJURY_PROFILE"
	envPrefix     = "KICKOFF_"
)

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New)
//  2. a .env file (KICKOFF_ENV_FILE, default ".env"), which only fills
//     variables not already set in the environment
//  3. a YAML file if KICKOFF_CONFIG is set
//  4. INJURY_PROFILE
//  5. KICKOFF_* variables, e.g. KICKOFF_QUEUE_SIZE -> queue_size
func Load() (*Config, error) {
	base := New()

	dotfile := os.Getenv(EnvDotFile)
	if dotfile == "" {
		dotfile = ".env"
	}
	if err := godotenv.Load(dotfile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, dotfile, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	if p := os.Getenv(EnvProfile); p != "" {
		if err := k.Set("injury_profile", p); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	// KICKOFF_CONFIG and KICKOFF_ENV_FILE are locations, not settings.
	k.Delete("config")
	k.Delete("env_file")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
