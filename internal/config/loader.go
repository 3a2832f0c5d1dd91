package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TRIATHLON_CONFIG is set
//  3. env (prefix TRIATHLON_), with a .env file loaded first if present
func Load(ctx context.Context) (*Config, error) {
	// Local development keeps its env in a .env file; absence is fine.
	_ = godotenv.Load()

	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("TRIATHLON_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: TRIATHLON_ADDR, TRIATHLON_QUEUE_SIZE, ...
	// Map env keys like TRIATHLON_QUEUE_SIZE -> queue_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("TRIATHLON_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "triathlon_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the service cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.ThrottleMS < 1:
		return fmt.Errorf("%w: throttle_ms must be positive", ErrInvalidConfig)
	case c.TotalDistance <= 0:
		return fmt.Errorf("%w: total_distance must be positive", ErrInvalidConfig)
	}
	return nil
}
