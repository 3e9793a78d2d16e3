// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/rfpmatch/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix prefixes every RFPMatch environment variable. A double
// underscore separates nesting levels: RFPMATCH_MODELS__API_KEY sets
// models.api_key.
const EnvPrefix = "RFPMATCH_"

// defaultConfig returns a Config with every optional setting populated.
// Weights are deliberately left zero.
func defaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			CallTimeout: 10 * time.Second,
			Workers:     8,
		},
		Collaborative: CollaborativeConfig{
			MinOverlap:    2,
			CoPurchaseCap: 10,
		},
		Graph: GraphConfig{
			SimilarDecay: 0.8,
		},
		LLM: LLMConfig{
			Temperature: 0,
			MaxTokens:   300,
		},
		Cache: CacheConfig{
			Backend:         "memory",
			Capacity:        10000,
			TTL:             24 * time.Hour,
			Path:            "./data/cache",
			CleanupInterval: time.Minute,
		},
		Database: DatabaseConfig{
			Path:         "./data/orders.duckdb",
			MaxMemory:    "1GB",
			Threads:      0, // 0 = use runtime.NumCPU()
			QueryTimeout: 30 * time.Second,
		},
		GraphStore: GraphStoreConfig{
			Path:         "./data/graph.db",
			QueryTimeout: 10 * time.Second,
		},
		Models: ModelsConfig{
			Provider:       "ollama",
			ChatModel:      "llama3.2",
			EmbeddingModel: "nomic-embed-text",
			Timeout:        60 * time.Second,
			RatePerSecond:  0, // Unlimited
			Burst:          5,
			Breaker: BreakerConfig{
				MaxRequests:  3,
				Interval:     time.Minute,
				Timeout:      30 * time.Second,
				MinRequests:  5,
				FailureRatio: 0.6,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load loads configuration with Koanf v2 from layered sources:
//  1. Defaults
//  2. Config file (optional, see findConfigFile)
//  3. Well-known environment variables (envMappings)
//  4. RFPMATCH_-prefixed environment variables
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	return LoadFile(findConfigFile())
}

// LoadFile is Load with an explicit config file path. An empty path skips
// the file layer.
func LoadFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Well-known names shared with other tools
	if err := k.Load(env.ProviderWithValue("", ".", wellKnownEnvTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Layer 4: RFPMATCH_* variables (highest priority)
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", prefixedEnvTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load %s environment variables: %w", EnvPrefix, err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns CONFIG_PATH if it exists, else the first existing
// entry of DefaultConfigPaths, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps well-known environment variable names to config paths.
var envMappings = map[string]string{
	"openai_api_key":  "models.api_key",
	"openai_base_url": "models.base_url",
	"log_level":       "logging.level",
	"log_format":      "logging.format",
	"log_caller":      "logging.caller",
}

// wellKnownEnvTransform maps the names in envMappings. Other variables and
// empty values return "" and are skipped.
func wellKnownEnvTransform(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	return envMappings[strings.ToLower(key)], value
}

// prefixedEnvTransform converts RFPMATCH_SECTION__FIELD to section.field.
//
// Examples:
//   - RFPMATCH_WEIGHTS__LLM -> weights.llm
//   - RFPMATCH_MODELS__BREAKER__FAILURE_RATIO -> models.breaker.failure_ratio
func prefixedEnvTransform(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	key = strings.TrimPrefix(key, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "__", "."), value
}
