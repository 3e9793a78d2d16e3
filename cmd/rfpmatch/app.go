// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tomtom215/rfpmatch/internal/cache"
	"github.com/tomtom215/rfpmatch/internal/config"
	"github.com/tomtom215/rfpmatch/internal/database"
	"github.com/tomtom215/rfpmatch/internal/extract"
	"github.com/tomtom215/rfpmatch/internal/graph"
	"github.com/tomtom215/rfpmatch/internal/models"
	"github.com/tomtom215/rfpmatch/internal/recommend"
	"github.com/tomtom215/rfpmatch/internal/recommend/algorithms"
)

// Memo namespaces, also used as cache metric labels.
const (
	namespaceEmbedding  = "embedding"
	namespaceJudgment   = "llm_judgment"
	namespaceCoPurchase = "co_purchase"
)

// app holds every opened resource for one command run.
type app struct {
	orders *database.DB
	graph  *graph.Store
	cache  cache.Store
	engine *recommend.Engine

	closers []func() error
}

// openStores opens the order and graph stores, creating parent directories
// for file-backed databases.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (a *app) openStores(cfg *config.Config, logger zerolog.Logger) error {
	dbCfg := cfg.DatabaseSettings()
	if err := ensureParentDir(dbCfg.Path); err != nil {
		return err
	}
	orders, err := database.Open(dbCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open order store: %w", err)
	}
	a.orders = orders
	a.closers = append(a.closers, orders.Close)

	graphCfg := cfg.GraphStoreSettings()
	if err := ensureParentDir(graphCfg.Path); err != nil {
		return err
	}
	g, err := graph.Open(graphCfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open graph store: %w", err)
	}
	a.graph = g
	a.closers = append(a.closers, g.Close)

	return nil
}

// buildEngine wires the cache, model client and scorers into the engine.
// openStores must have succeeded.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (a *app) buildEngine(cfg *config.Config, logger zerolog.Logger) error {
	weights, err := cfg.FusionWeights()
	if err != nil {
		return err
	}

	cacheCfg := cfg.CacheSettings()
	if cacheCfg.Backend == cache.BackendBadger {
		if err := os.MkdirAll(cacheCfg.Path, 0o750); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	store, closeCache, err := cache.Open(cacheCfg)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	a.cache = store
	a.closers = append(a.closers, closeCache)

	memo := func(namespace string) *cache.Memo {
		return cache.NewMemo(store, namespace, cfg.Cache.TTL, logger)
	}

	client, err := models.New(cfg.ModelsSettings(), logger)
	if err != nil {
		return err
	}

	collaborative, err := algorithms.NewCollaborative(a.orders, cfg.CollaborativeSettings(), memo(namespaceCoPurchase))
	if err != nil {
		return err
	}
	content, err := algorithms.NewContent(client, memo(namespaceEmbedding))
	if err != nil {
		return err
	}
	kg, err := algorithms.NewKnowledgeGraph(a.graph, cfg.GraphSettings())
	if err != nil {
		return err
	}
	judge, err := algorithms.NewLLMJudge(client, memo(namespaceJudgment), cfg.LLMSettings())
	if err != nil {
		return err
	}

	engine, err := recommend.NewEngine(weights, extract.NewSplitter(), recommend.Scorers{
		Collaborative: collaborative,
		Content:       content,
		Graph:         kg,
		LLM:           judge,
	}, cfg.EngineSettings(), logger)
	if err != nil {
		return err
	}
	a.engine = engine

	logger.Debug().
		Interface("weights", engine.Weights()).
		Str("cache_backend", string(cacheCfg.Backend)).
		Msg("engine ready")
	return nil
}

// ping checks that both stores answer.
func (a *app) ping(ctx context.Context) error {
	if err := a.orders.Ping(ctx); err != nil {
		return fmt.Errorf("order store: %w", err)
	}
	if err := a.graph.Ping(ctx); err != nil {
		return fmt.Errorf("graph store: %w", err)
	}
	return nil
}

// cacheStats reports the cache counters. ok is false when caching is off or
// the backend keeps no counters.
func (a *app) cacheStats() (cache.Stats, bool) {
	src, ok := a.cache.(cache.StatsSource)
	if !ok {
		return cache.Stats{}, false
	}
	return src.Stats(), true
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (a *app) logCacheStats(logger zerolog.Logger) {
	stats, ok := a.cacheStats()
	if !ok {
		return
	}
	logger.Debug().
		Int64("hits", stats.Hits).
		Int64("misses", stats.Misses).
		Int64("evictions", stats.Evictions).
		Int64("keys", stats.TotalKeys).
		Float64("hit_rate", stats.HitRate()).
		Msg("cache statistics")
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func ensureParentDir(path string) error {
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return nil
}
