package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*BotConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes after expanding ${VAR} references.
func Parse(data []byte) (*BotConfig, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg BotConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config and applies default values.
func LoadWithDefaults(path string) (*BotConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadAndValidate loads config, applies defaults, and validates.
func LoadAndValidate(path string) (*BotConfig, error) {
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// SplitBaseURL splits a REST URL such as
// "https://api.elections.kalshi.com/trade-api/v2" into the host part and the
// API prefix that request signatures are computed over.
func SplitBaseURL(raw string) (base, prefix string) {
	if idx := strings.Index(raw, "/trade-api/"); idx >= 0 {
		return strings.TrimRight(raw[:idx], "/"), raw[idx:]
	}
	return strings.TrimRight(raw, "/"), DefaultAPIPrefix
}
