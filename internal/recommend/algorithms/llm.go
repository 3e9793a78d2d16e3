// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package algorithms

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/rfpmatch/internal/cache"
	"github.com/tomtom215/rfpmatch/internal/models"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

const judgeSystemPrompt = `You are a procurement analyst matching catalog products to a buyer's request for proposal.
Judge how well the product satisfies the requirements, considering function, technical fit and safety.
Respond with a single JSON object and nothing else:
{"score": <number between 0 and 1>, "rationale": "<one or two sentences>"}`

// LLMConfig contains configuration for the language-model judge.
type LLMConfig struct {
	// Temperature for the judgment request.
	// Default: 0.
	Temperature float64

	// MaxTokens caps the judgment length.
	// Default: 300.
	MaxTokens int
}

// DefaultLLMConfig returns default judge configuration.
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{Temperature: 0, MaxTokens: 300}
}

// LLMJudge scores contextual compatibility with one language-model call per
// (product, requirement set). Identical calls are memoized and concurrent
// duplicates collapse into one request.
type LLMJudge struct {
	model ChatModel
	memo  *cache.Memo
	cfg   LLMConfig
}

// NewLLMJudge creates a judge. A nil model is a configuration error; memo
// may be nil.
func NewLLMJudge(model ChatModel, memo *cache.Memo, cfg LLMConfig) (*LLMJudge, error) {
	if model == nil {
		return nil, recommend.NewConfigurationError("models.chat_model", "no language model configured")
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultLLMConfig().MaxTokens
	}
	return &LLMJudge{model: model, memo: memo, cfg: cfg}, nil
}

type judgmentKey struct {
	Model        string            `json:"model"`
	Product      recommend.Product `json:"product"`
	Requirements []string          `json:"requirements"`
}

// Score implements recommend.LLMScorer.
func (j *LLMJudge) Score(ctx context.Context, product recommend.Product, reqs []recommend.Requirement) (recommend.Judgment, error) {
	if product.Text() == "" {
		return recommend.Judgment{}, recommend.NewValidationError("product", fmt.Sprintf("product %s has no textual content", product.ID))
	}
	texts := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if t := strings.TrimSpace(r.Text); t != "" {
			texts = append(texts, t)
		}
	}
	if len(texts) == 0 {
		return recommend.Judgment{}, recommend.NewValidationError("requirements", "must not be empty")
	}

	key := judgmentKey{Model: j.model.ChatModelName(), Product: product, Requirements: texts}
	return cache.Do(ctx, j.memo, key, func(ctx context.Context) (recommend.Judgment, error) {
		resp, err := j.model.Chat(ctx, models.ChatRequest{
			System:      judgeSystemPrompt,
			Messages:    []models.Message{{Role: "user", Content: buildJudgePrompt(product, texts)}},
			JSON:        true,
			Temperature: j.cfg.Temperature,
			MaxTokens:   j.cfg.MaxTokens,
		})
		if err != nil {
			return recommend.Judgment{}, err
		}
		return ParseJudgment(resp.Content)
	})
}

func buildJudgePrompt(p recommend.Product, reqs []string) string {
	var b strings.Builder
	b.WriteString("Requirements:\n")
	for _, r := range reqs {
		b.WriteString("- ")
		b.WriteString(r)
		b.WriteByte('\n')
	}
	b.WriteString("\nProduct:\n")
	fmt.Fprintf(&b, "ID: %s\n", p.ID)
	if p.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", p.Name)
	}
	if p.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", p.Category)
	}
	if p.Brand != "" {
		fmt.Fprintf(&b, "Brand: %s\n", p.Brand)
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
	}
	return b.String()
}

// ParseJudgment extracts the first JSON object from a model response and
// validates its score. A missing, non-numeric, NaN or out-of-range score is
// a *recommend.ValidationError.
func ParseJudgment(content string) (recommend.Judgment, error) {
	raw, ok := firstJudgmentObject(content)
	if !ok {
		return recommend.Judgment{}, recommend.NewValidationError("llm_response", "no JSON object in model response")
	}

	if raw.Score == nil {
		return recommend.Judgment{}, recommend.NewValidationError("llm_response.score", "missing")
	}
	score := *raw.Score
	if math.IsNaN(score) || score < 0 || score > 1 {
		return recommend.Judgment{}, recommend.NewValidationError("llm_response.score", fmt.Sprintf("%v outside [0,1]", score))
	}

	return recommend.Judgment{Score: score, Rationale: strings.TrimSpace(raw.Rationale)}, nil
}

type rawJudgment struct {
	Score     *float64 `json:"score"`
	Rationale string   `json:"rationale"`
}

// firstJudgmentObject decodes the first well-formed JSON object in content,
// skipping any prose or code fences around it.
func firstJudgmentObject(content string) (rawJudgment, bool) {
	for offset := 0; offset < len(content); {
		i := strings.IndexByte(content[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i

		var raw rawJudgment
		if err := json.NewDecoder(strings.NewReader(content[start:])).Decode(&raw); err == nil {
			return raw, true
		}
		offset = start + 1
	}
	return rawJudgment{}, false
}
