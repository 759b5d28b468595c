package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/whimsicalfrog/frogshop/internal/core/upsell"
)

// Load reads the configuration and validates it.
func Load(configPath, dataDir string) (*Config, error) {
	cfg, err := Read(configPath, dataDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Read builds a Config by layering, low to high: defaults, the YAML file at
// configPath (skipped when empty or missing), then FROGSHOP_ environment
// variables. A double underscore in a variable name separates nested keys.
// The result is not validated.
func Read(configPath, dataDir string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.DataDir = dataDir
	cfg.applyDefaults()
	cfg.Upsell.Weights = layerWeights(k, cfg.Upsell.Weights)
	return &cfg, nil
}

// envKey maps FROGSHOP_UPSELL__CACHE_TTL to upsell.cache_ttl.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

// layerWeights keeps every weight a source set, zero included, and takes
// the rest from the defaults.
func layerWeights(k *koanf.Koanf, w upsell.Weights) upsell.Weights {
	d := upsell.DefaultWeights()
	unset := func(key string) bool { return !k.Exists("upsell.weights." + key) }

	if unset("accessory") {
		w.Accessory = d.Accessory
	}
	if unset("name_overlap_cap") {
		w.NameOverlapCap = d.NameOverlapCap
	}
	if unset("category_overlap_cap") {
		w.CategoryCap = d.CategoryCap
	}
	if unset("budget") {
		w.Budget = d.Budget
	}
	if unset("budget_ratio") {
		w.BudgetRatio = d.BudgetRatio
	}
	if unset("affinity_cap") {
		w.AffinityCap = d.AffinityCap
	}
	if unset("accessory_words") {
		w.AccessoryWords = d.AccessoryWords
	}
	return w
}
