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

const envPrefix = "DEBTSCORE_"

// listKeys accept comma-separated values when set from the environment.
var listKeys = map[string]bool{
	"case_files":          true,
	"balance_bands":       true,
	"identifier_keywords": true,
	"contact_taxonomy":    true,
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if DEBTSCORE_CONFIG is set
//  3. env (prefix DEBTSCORE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// DEBTSCORE_WEIGHT_PAYMENT -> weight_payment. Underscores are kept so the
	// keys match the koanf tags on the struct.
	envProvider := env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(envPrefix))
		if key == "config" {
			return "", nil
		}
		if listKeys[key] {
			parts := strings.Split(value, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return key, out
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	// Lists replace defaults wholesale instead of merging element-wise.
	for key := range listKeys {
		if k.Exists(key) {
			cfg.clearList(key)
		}
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) clearList(key string) {
	switch key {
	case "case_files":
		c.CaseFiles = nil
	case "balance_bands":
		c.BalanceBands = nil
	case "identifier_keywords":
		c.IdentifierKeywords = nil
	case "contact_taxonomy":
		c.ContactTaxonomy = nil
	}
}
