// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

/*
Package config provides centralized configuration management for RFPMatch.

Configuration is loaded with Koanf v2 from layered sources, each overriding
the previous one:

 1. Built-in defaults for every optional setting
 2. A YAML file: CONFIG_PATH, then config.yaml, config.yml, /etc/rfpmatch/config.yaml
 3. Well-known environment variables: OPENAI_API_KEY, OPENAI_BASE_URL,
    LOG_LEVEL, LOG_FORMAT, LOG_CALLER
 4. RFPMATCH_-prefixed environment variables, with "__" separating levels

# Configuration Structure

  - WeightsConfig: fusion weights (required, no defaults)
  - EngineConfig: per-call timeout and candidate concurrency
  - CollaborativeConfig, GraphConfig, LLMConfig: scorer tuning
  - CacheConfig: memoization backend (none, memory, badger)
  - DatabaseConfig: DuckDB order store
  - GraphStoreConfig: SQLite knowledge graph
  - ModelsConfig: chat and embedding provider, rate limit, circuit breaker
  - LoggingConfig: zerolog level and format

# Example

	weights:
	  collaborative: 0.25
	  content_based: 0.25
	  knowledge_graph: 0.30
	  llm: 0.20
	models:
	  provider: openai
	  chat_model: gpt-4o-mini
	  embedding_model: text-embedding-3-small

The same weight can be set with RFPMATCH_WEIGHTS__LLM=0.20.

# Validation

Load validates struct tags through internal/validation and then the rules
that span fields (weight sum, provider credentials, cache path). Every
failure is a *recommend.ConfigurationError whose Field is the dotted key:

	cfg, err := config.Load()
	if errors.Is(err, recommend.ErrConfiguration) {
	    // fatal
	}

# Component Settings

Config converts itself into the configuration types of each component
(DatabaseSettings, ModelsSettings, CacheSettings, ...), so those packages do
not depend on this one. Redacted returns a copy with the API key masked.
*/
package config
