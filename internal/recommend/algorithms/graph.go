// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package algorithms

import (
	"context"

	"github.com/tomtom215/rfpmatch/internal/graph"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

// GraphConfig contains configuration for the knowledge graph scorer.
type GraphConfig struct {
	// SimilarDecay multiplies the confidence of SIMILAR_TO -> USED_FOR paths.
	// Default: 0.8.
	SimilarDecay float64
}

// DefaultGraphConfig returns default knowledge graph configuration.
func DefaultGraphConfig() GraphConfig {
	return GraphConfig{SimilarDecay: 0.8}
}

// KnowledgeGraph scores structural tool/task/safety compatibility.
//
// For each task the best of these path confidences is kept:
//
//	tool -USED_FOR-> task
//	tool -SIMILAR_TO-> tool' -USED_FOR-> task      (x SimilarDecay)
//	tool -PROVIDES-> safety <-REQUIRES- task
//
// The score is the mean over the task set.
type KnowledgeGraph struct {
	store GraphStore
	cfg   GraphConfig
}

// NewKnowledgeGraph creates a knowledge graph scorer.
func NewKnowledgeGraph(store GraphStore, cfg GraphConfig) (*KnowledgeGraph, error) {
	if store == nil {
		return nil, recommend.NewConfigurationError("graph_store", "not configured")
	}
	if cfg.SimilarDecay <= 0 || cfg.SimilarDecay > 1 {
		cfg.SimilarDecay = DefaultGraphConfig().SimilarDecay
	}
	return &KnowledgeGraph{store: store, cfg: cfg}, nil
}

// ExtractTasks maps requirements to task nodes. A task matches when any
// keyword (all of its tokens, for multi-word keywords) or any name token
// appears in the requirement text. Tasks are returned in store order.
func (k *KnowledgeGraph) ExtractTasks(ctx context.Context, reqs []recommend.Requirement) ([]recommend.Task, error) {
	tokens := make(map[string]struct{})
	for _, t := range tokenize(recommend.JoinRequirements(reqs)) {
		tokens[t] = struct{}{}
	}
	if len(tokens) == 0 {
		return []recommend.Task{}, nil
	}

	nodes, err := k.store.Tasks(ctx)
	if err != nil {
		return nil, err
	}

	tasks := make([]recommend.Task, 0)
	for i := range nodes {
		n := &nodes[i]
		if matchesTask(n, tokens) {
			tasks = append(tasks, recommend.Task{ID: n.ID, Name: n.Name, Keywords: n.Keywords})
		}
	}
	return tasks, nil
}

func matchesTask(n *graph.Node, tokens map[string]struct{}) bool {
	for _, kw := range n.Keywords {
		kwTokens := tokenize(kw)
		if len(kwTokens) == 0 {
			continue
		}
		all := true
		for _, t := range kwTokens {
			if _, ok := tokens[t]; !ok {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	for _, t := range tokenize(n.Name) {
		if _, ok := tokens[t]; ok {
			return true
		}
	}
	return false
}

// Score implements recommend.GraphScorer.
func (k *KnowledgeGraph) Score(ctx context.Context, product recommend.Product, tasks []recommend.Task) (float64, error) {
	if len(tasks) == 0 {
		return 0, nil
	}

	toolID, found, err := k.store.ToolNode(ctx, product.ID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}

	edges, err := k.store.OutEdges(ctx, toolID, graph.UsedFor, graph.SimilarTo, graph.Provides)
	if err != nil {
		return 0, err
	}

	best := make(map[string]float64)
	provides := make(map[string]float64)
	keepMax := func(m map[string]float64, key string, v float64) {
		if v > m[key] {
			m[key] = v
		}
	}

	for _, e := range edges {
		switch e.Relation {
		case graph.UsedFor:
			keepMax(best, e.Target, e.Confidence)
		case graph.Provides:
			keepMax(provides, e.Target, e.Confidence)
		case graph.SimilarTo:
			if ContextCancelled(ctx) {
				return 0, ctx.Err()
			}
			hop, err := k.store.OutEdges(ctx, e.Target, graph.UsedFor)
			if err != nil {
				return 0, err
			}
			for _, h := range hop {
				keepMax(best, h.Target, e.Confidence*h.Confidence*k.cfg.SimilarDecay)
			}
		}
	}

	var sum float64
	for _, task := range tasks {
		taskBest := best[task.ID]
		if len(provides) > 0 {
			required, err := k.store.OutEdges(ctx, task.ID, graph.Requires)
			if err != nil {
				return 0, err
			}
			for _, r := range required {
				if p, ok := provides[r.Target]; ok && p*r.Confidence > taskBest {
					taskBest = p * r.Confidence
				}
			}
		}
		sum += clamp01(taskBest)
	}

	return clamp01(sum / float64(len(tasks))), nil
}
