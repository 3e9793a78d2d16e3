// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package algorithms

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/rfpmatch/internal/cache"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

// Content scores textual similarity between a product and the requirements
// as the mean of lexical (term-frequency cosine) and semantic (embedding
// cosine) similarity.
type Content struct {
	embedder Embedder
	memo     *cache.Memo
}

// NewContent creates a content scorer. A nil embedder is a configuration
// error; memo may be nil.
func NewContent(embedder Embedder, memo *cache.Memo) (*Content, error) {
	if embedder == nil {
		return nil, recommend.NewConfigurationError("models.embedding_model", "no embedding model configured")
	}
	return &Content{embedder: embedder, memo: memo}, nil
}

// LexicalSimilarity returns the term-frequency cosine similarity of a and b
// over lower-cased alphanumeric tokens with stop-words removed.
func LexicalSimilarity(a, b string) (float64, error) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, recommend.NewValidationError("text", "lexical similarity needs two non-empty texts")
	}
	return clamp01(tfCosine(termFrequencies(tokenize(a)), termFrequencies(tokenize(b)))), nil
}

// SemanticSimilarity returns the embedding cosine similarity of a and b,
// clamped to [0,1].
func (c *Content) SemanticSimilarity(ctx context.Context, a, b string) (float64, error) {
	if c == nil || c.embedder == nil {
		return 0, recommend.NewConfigurationError("models.embedding_model", "no embedding model configured")
	}
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, recommend.NewValidationError("text", "semantic similarity needs two non-empty texts")
	}

	va, err := c.embed(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := c.embed(ctx, b)
	if err != nil {
		return 0, err
	}

	sim, ok := cosine(va, vb)
	if !ok {
		return 0, recommend.NewValidationError("embedding", fmt.Sprintf("incomparable embeddings (dims %d and %d)", len(va), len(vb)))
	}
	return clamp01(sim), nil
}

// Score implements recommend.ContentScorer.
func (c *Content) Score(ctx context.Context, product recommend.Product, reqs []recommend.Requirement) (float64, error) {
	productText := product.Text()
	if productText == "" {
		return 0, recommend.NewValidationError("product", fmt.Sprintf("product %s has no textual content", product.ID))
	}
	reqText := recommend.JoinRequirements(reqs)
	if reqText == "" {
		return 0, recommend.NewValidationError("requirements", "must not be empty")
	}

	lexical, err := LexicalSimilarity(productText, reqText)
	if err != nil {
		return 0, err
	}
	semantic, err := c.SemanticSimilarity(ctx, productText, reqText)
	if err != nil {
		return 0, err
	}
	return clamp01((lexical + semantic) / 2), nil
}

type embeddingKey struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

func (c *Content) embed(ctx context.Context, text string) ([]float64, error) {
	key := embeddingKey{Model: c.embedder.EmbeddingModelName(), Text: text}
	return cache.Do(ctx, c.memo, key, func(ctx context.Context) ([]float64, error) {
		return c.embedder.Embed(ctx, text)
	})
}
