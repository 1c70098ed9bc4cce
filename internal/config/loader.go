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

// Environment knobs.
const (
	envPrefix = "FUELSENSE_"
	envConfig = "FUELSENSE_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FUELSENSE_CONFIG is set
//  3. env (prefix FUELSENSE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// FUELSENSE_NEWS_TIMEOUT_MS -> news_timeout_ms (flat keys).
	// List values are space separated: FUELSENSE_NEWS_KEYWORDS="fuel car".
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		switch key {
		case "news_keywords", "dashboard_image_urls":
			return key, strings.Fields(value)
		case "config":
			return "", nil
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first configuration value the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ScalerPath == "":
		return fmt.Errorf("%w: scaler_path must not be empty", ErrInvalidConfig)
	case c.ModelPath == "":
		return fmt.Errorf("%w: model_path must not be empty", ErrInvalidConfig)
	case c.NewsTimeoutMS <= 0:
		return fmt.Errorf("%w: news_timeout_ms must be positive", ErrInvalidConfig)
	case c.NewsMaxItems <= 0:
		return fmt.Errorf("%w: news_max_items must be positive", ErrInvalidConfig)
	case c.ImageTimeoutMS <= 0:
		return fmt.Errorf("%w: image_timeout_ms must be positive", ErrInvalidConfig)
	case c.ImageCacheSize <= 0:
		return fmt.Errorf("%w: image_cache_size must be positive", ErrInvalidConfig)
	case c.ImageWarmupWorkers < 0:
		return fmt.Errorf("%w: image_warmup_workers must not be negative", ErrInvalidConfig)
	case c.MaxRequestBytes <= 0:
		return fmt.Errorf("%w: max_request_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}
