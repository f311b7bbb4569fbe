package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if AGORA_CONFIG is set
//  3. env (prefix AGORA_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("AGORA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: AGORA_ADDR, AGORA_POLL_INTERVAL_SECONDS, ...
	// Map env keys like AGORA_CATALOG_SIZE -> catalog_size (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("AGORA_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "agora_")
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

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.CatalogSize < 1 {
		return nil, fmt.Errorf("%w: catalog_size must be at least 1", ErrInvalidConfig)
	}
	if cfg.PollIntervalSeconds < 1 {
		return nil, fmt.Errorf("%w: poll_interval_seconds must be at least 1", ErrInvalidConfig)
	}
	return &cfg, nil
}
