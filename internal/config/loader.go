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

const (
	envPrefix  = "GRAPPLE_"
	envConfig  = envPrefix + "CONFIG"
	dotenvFile = ".env"
)

// Load builds a Config by layering, from lowest to highest precedence:
//  1. defaults (New)
//  2. YAML file named by GRAPPLE_CONFIG, if set
//  3. PORT, as set by most container platforms
//  4. GRAPPLE_* environment variables
//
// A .env file in the working directory is loaded into the environment first
// when present; variables already set win over it.
func Load() (*Config, error) {
	if err := godotenv.Load(dotenvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, dotenvFile, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		if err := k.Set("addr", ":"+port); err != nil {
			return nil, fmt.Errorf("%w: PORT: %w", ErrLoadConfig, err)
		}
	}

	// GRAPPLE_ALLOWED_ORIGINS=a,b -> allowed_origins: [a b]
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		if key == "config" {
			return "", nil
		}
		if key == "allowed_origins" {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
