// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package config

import (
	"time"
)

// Config holds all RFPMatch configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values for every optional setting
//  2. Config File: optional YAML file (CONFIG_PATH, config.yaml, config.yml)
//  3. Environment Variables: a short list of well-known names (OPENAI_API_KEY,
//     LOG_LEVEL, ...) followed by RFPMATCH_-prefixed variables, which win
//
// The weights section has no defaults. A configuration that does not set
// all four weights fails validation.
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Weights       WeightsConfig       `koanf:"weights"`
	Engine        EngineConfig        `koanf:"engine"`
	Collaborative CollaborativeConfig `koanf:"collaborative"`
	Graph         GraphConfig         `koanf:"graph"`
	LLM           LLMConfig           `koanf:"llm"`
	Cache         CacheConfig         `koanf:"cache"`
	Database      DatabaseConfig      `koanf:"database"`
	GraphStore    GraphStoreConfig    `koanf:"graph_store"`
	Models        ModelsConfig        `koanf:"models"`
	Logging       LoggingConfig       `koanf:"logging"`
}

// WeightsConfig holds the fusion weights. Each must lie in [0, 1] and the
// four must sum to 1.0 within 0.01.
//
// Environment Variables:
//   - RFPMATCH_WEIGHTS__COLLABORATIVE
//   - RFPMATCH_WEIGHTS__CONTENT_BASED
//   - RFPMATCH_WEIGHTS__KNOWLEDGE_GRAPH
//   - RFPMATCH_WEIGHTS__LLM
type WeightsConfig struct {
	Collaborative  float64 `koanf:"collaborative" validate:"gte=0,lte=1"`
	ContentBased   float64 `koanf:"content_based" validate:"gte=0,lte=1"`
	KnowledgeGraph float64 `koanf:"knowledge_graph" validate:"gte=0,lte=1"`
	LLM            float64 `koanf:"llm" validate:"gte=0,lte=1"`
}

// EngineConfig holds fusion engine operational settings.
type EngineConfig struct {
	// CallTimeout bounds every individual scorer call.
	// Default: 10s
	CallTimeout time.Duration `koanf:"call_timeout" validate:"gte=0"`

	// Workers bounds how many candidates are scored concurrently.
	// Default: 8
	Workers int `koanf:"workers" validate:"gte=0,lte=256"`
}

// CollaborativeConfig holds purchase-history filtering settings.
type CollaborativeConfig struct {
	// MinOverlap is the number of shared purchase categories that makes
	// another buyer similar.
	// Default: 2
	MinOverlap int `koanf:"min_overlap" validate:"gte=1"`

	// CoPurchaseCap normalizes co-purchase counts.
	// Default: 10
	CoPurchaseCap int `koanf:"co_purchase_cap" validate:"gte=1"`
}

// GraphConfig holds knowledge graph scoring settings.
type GraphConfig struct {
	// SimilarDecay multiplies SIMILAR_TO path confidence.
	// Default: 0.8
	SimilarDecay float64 `koanf:"similar_decay" validate:"gt=0,lte=1"`
}

// LLMConfig holds language-model judgment settings.
type LLMConfig struct {
	// Temperature for judgment requests.
	// Default: 0
	Temperature float64 `koanf:"temperature" validate:"gte=0,lte=2"`

	// MaxTokens caps the judgment length.
	// Default: 300
	MaxTokens int `koanf:"max_tokens" validate:"gte=1"`
}

// CacheConfig selects the memoization backend for embeddings, judgments and
// co-purchase counts.
type CacheConfig struct {
	// Backend is none, memory or badger.
	// Default: memory
	Backend string `koanf:"backend" validate:"oneof=none memory badger"`

	// Capacity bounds the in-memory tier.
	// Default: 10000
	Capacity int `koanf:"capacity" validate:"gte=1"`

	// TTL is the lifetime of a cached value.
	// Default: 24h
	TTL time.Duration `koanf:"ttl" validate:"gt=0"`

	// Path is the BadgerDB directory (badger backend only).
	// Default: ./data/cache
	Path string `koanf:"path"`

	// CleanupInterval controls the in-memory expiry sweep.
	// Default: 1m
	CleanupInterval time.Duration `koanf:"cleanup_interval" validate:"gt=0"`
}

// DatabaseConfig holds the DuckDB order store settings.
type DatabaseConfig struct {
	// Path is the DuckDB file. ":memory:" keeps the store in memory.
	// Default: ./data/orders.duckdb
	Path string `koanf:"path" validate:"required"`

	// MaxMemory is the DuckDB memory limit.
	// Default: 1GB
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB worker count (0 = use NumCPU).
	Threads int `koanf:"threads" validate:"gte=0"`

	// QueryTimeout bounds each query.
	// Default: 30s
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gt=0"`
}

// GraphStoreConfig holds the SQLite knowledge graph settings.
type GraphStoreConfig struct {
	// Path is the SQLite file. ":memory:" keeps the graph in memory.
	// Default: ./data/graph.db
	Path string `koanf:"path" validate:"required"`

	// QueryTimeout bounds each query.
	// Default: 10s
	QueryTimeout time.Duration `koanf:"query_timeout" validate:"gt=0"`
}

// ModelsConfig holds the chat and embedding provider settings.
//
// Environment Variables:
//   - OPENAI_API_KEY or RFPMATCH_MODELS__API_KEY
//   - RFPMATCH_MODELS__PROVIDER: openai or ollama
//   - RFPMATCH_MODELS__CHAT_MODEL, RFPMATCH_MODELS__EMBEDDING_MODEL
type ModelsConfig struct {
	// Provider is openai or ollama.
	// Default: ollama
	Provider string `koanf:"provider" validate:"oneof=openai ollama"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways,
	// remote Ollama hosts).
	BaseURL string `koanf:"base_url" validate:"omitempty,http_url"`

	// APIKey authenticates against the provider. Required for openai.
	APIKey string `koanf:"api_key"`

	// ChatModel is used by the LLM judge.
	// Default: llama3.2
	ChatModel string `koanf:"chat_model"`

	// EmbeddingModel is used by the content scorer.
	// Default: nomic-embed-text
	EmbeddingModel string `koanf:"embedding_model"`

	// Timeout bounds a single provider HTTP exchange.
	// Default: 60s
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// RatePerSecond limits outgoing requests (0 = unlimited).
	RatePerSecond float64 `koanf:"rate_per_second" validate:"gte=0"`

	// Burst is the rate limiter bucket size.
	// Default: 5
	Burst int `koanf:"burst" validate:"gte=0"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig holds the provider circuit breaker settings.
type BreakerConfig struct {
	// MaxRequests allowed while half-open.
	// Default: 3
	MaxRequests uint32 `koanf:"max_requests" validate:"gte=1"`

	// Interval resets failure counts while closed.
	// Default: 1m
	Interval time.Duration `koanf:"interval" validate:"gt=0"`

	// Timeout before an open breaker probes again.
	// Default: 30s
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// MinRequests before the failure ratio is evaluated.
	// Default: 5
	MinRequests uint32 `koanf:"min_requests" validate:"gte=1"`

	// FailureRatio at or above which the breaker opens.
	// Default: 0.6
	FailureRatio float64 `koanf:"failure_ratio" validate:"gt=0,lte=1"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format" validate:"oneof=json console"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}
