// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/rfpmatch/internal/cache"
	"github.com/tomtom215/rfpmatch/internal/database"
	"github.com/tomtom215/rfpmatch/internal/graph"
	"github.com/tomtom215/rfpmatch/internal/logging"
	"github.com/tomtom215/rfpmatch/internal/models"
	"github.com/tomtom215/rfpmatch/internal/recommend"
	"github.com/tomtom215/rfpmatch/internal/recommend/algorithms"
)

// FusionWeights returns the validated fusion weights.
func (c *Config) FusionWeights() (recommend.Weights, error) {
	w := c.Weights
	return recommend.NewWeights(w.Collaborative, w.ContentBased, w.KnowledgeGraph, w.LLM)
}

// EngineSettings returns the engine operational parameters.
func (c *Config) EngineSettings() recommend.EngineConfig {
	return recommend.EngineConfig{
		CallTimeout: c.Engine.CallTimeout,
		Workers:     c.Engine.Workers,
	}
}

// CollaborativeSettings returns the collaborative scorer configuration.
func (c *Config) CollaborativeSettings() algorithms.CollaborativeConfig {
	return algorithms.CollaborativeConfig{
		MinOverlap:    c.Collaborative.MinOverlap,
		CoPurchaseCap: c.Collaborative.CoPurchaseCap,
	}
}

// GraphSettings returns the knowledge graph scorer configuration.
func (c *Config) GraphSettings() algorithms.GraphConfig {
	return algorithms.GraphConfig{SimilarDecay: c.Graph.SimilarDecay}
}

// LLMSettings returns the judge configuration.
func (c *Config) LLMSettings() algorithms.LLMConfig {
	return algorithms.LLMConfig{
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
	}
}

// CacheSettings returns the cache store configuration.
func (c *Config) CacheSettings() cache.Config {
	return cache.Config{
		Backend:         cache.Backend(c.Cache.Backend),
		Capacity:        c.Cache.Capacity,
		Path:            c.Cache.Path,
		CleanupInterval: c.Cache.CleanupInterval,
	}
}

// DatabaseSettings returns the DuckDB order store configuration.
func (c *Config) DatabaseSettings() database.Config {
	return database.Config{
		Path:         c.Database.Path,
		Threads:      c.Database.Threads,
		MaxMemory:    c.Database.MaxMemory,
		QueryTimeout: c.Database.QueryTimeout,
	}
}

// GraphStoreSettings returns the SQLite graph store configuration.
func (c *Config) GraphStoreSettings() graph.Config {
	return graph.Config{
		Path:         c.GraphStore.Path,
		QueryTimeout: c.GraphStore.QueryTimeout,
	}
}

// ModelsSettings returns the model client configuration.
func (c *Config) ModelsSettings() models.Config {
	m := c.Models
	return models.Config{
		Provider:       m.Provider,
		BaseURL:        m.BaseURL,
		APIKey:         m.APIKey,
		ChatModel:      m.ChatModel,
		EmbeddingModel: m.EmbeddingModel,
		Timeout:        m.Timeout,
		RatePerSecond:  m.RatePerSecond,
		Burst:          m.Burst,
		Breaker: models.BreakerConfig{
			MaxRequests:  m.Breaker.MaxRequests,
			Interval:     m.Breaker.Interval,
			Timeout:      m.Breaker.Timeout,
			MinRequests:  m.Breaker.MinRequests,
			FailureRatio: m.Breaker.FailureRatio,
		},
	}
}

// LoggingSettings returns the logger configuration writing to stderr.
func (c *Config) LoggingSettings() logging.Config {
	return logging.Config{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		Caller:    c.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	}
}

// Redacted returns a copy safe to print or log.
func (c *Config) Redacted() Config {
	out := *c
	out.Models.APIKey = logging.MaskSecret(c.Models.APIKey)
	return out
}

// RedactedYAML renders Redacted as YAML using the same keys config.yaml
// accepts.
func (c *Config) RedactedYAML() ([]byte, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(c.Redacted(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to flatten configuration: %w", err)
	}
	out, err := k.Marshal(yaml.Parser())
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return out, nil
}
