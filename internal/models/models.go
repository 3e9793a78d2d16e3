// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package models

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/rfpmatch/internal/recommend"
)

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a provider-neutral chat completion request.
type ChatRequest struct {
	System      string
	Messages    []Message
	JSON        bool // ask the provider for a JSON object response
	Temperature float64
	MaxTokens   int
}

// ChatResponse is a provider-neutral chat completion response.
type ChatResponse struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Config selects and configures a model provider.
type Config struct {
	Provider       string
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string

	// Timeout bounds a single HTTP exchange. Zero uses 60s.
	Timeout time.Duration

	// RatePerSecond limits outgoing requests. Zero disables limiting.
	RatePerSecond float64
	Burst         int

	Breaker BreakerConfig
}

// provider is the wire-level contract implemented per vendor API.
type provider interface {
	name() string
	chat(ctx context.Context, model string, req ChatRequest) (*ChatResponse, error)
	embed(ctx context.Context, model, text string) ([]float64, error)
}

// Client issues chat and embedding requests through a circuit breaker and
// rate limiter. It is safe for concurrent use.
type Client struct {
	provider       provider
	guard          *guard
	chatModel      string
	embeddingModel string
	logger         zerolog.Logger
}

// New builds a Client for cfg.Provider. A missing provider, model or OpenAI
// credential is a *recommend.ConfigurationError.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	var p provider
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, recommend.NewConfigurationError("models.api_key", "required for the openai provider")
		}
		p = newOpenAIProvider(cfg.BaseURL, cfg.APIKey, httpClient)
	case ProviderOllama:
		p = newOllamaProvider(cfg.BaseURL, httpClient)
	case "":
		return nil, recommend.NewConfigurationError("models.provider", "no model provider configured")
	default:
		return nil, recommend.NewConfigurationError("models.provider", fmt.Sprintf("unsupported provider %q", cfg.Provider))
	}

	if cfg.ChatModel == "" && cfg.EmbeddingModel == "" {
		return nil, recommend.NewConfigurationError("models.chat_model", "at least one of chat_model or embedding_model is required")
	}

	return &Client{
		provider:       p,
		guard:          newGuard(p.name(), cfg.RatePerSecond, cfg.Burst, cfg.Breaker, logger),
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		logger:         logger.With().Str("component", "models").Str("provider", p.name()).Logger(),
	}, nil
}

// Chat sends a chat completion request.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if c.chatModel == "" {
		return nil, recommend.NewConfigurationError("models.chat_model", "no chat model configured")
	}
	return castResult[ChatResponse](c.guard.execute(ctx, "chat", func() (interface{}, error) {
		return c.provider.chat(ctx, c.chatModel, req)
	}))
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if c.embeddingModel == "" {
		return nil, recommend.NewConfigurationError("models.embedding_model", "no embedding model configured")
	}
	result, err := c.guard.execute(ctx, "embed", func() (interface{}, error) {
		return c.provider.embed(ctx, c.embeddingModel, text)
	})
	if err != nil {
		return nil, err
	}
	vec, ok := result.([]float64)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return vec, nil
}

// ChatModelName identifies the chat model, e.g. "openai/gpt-4o-mini".
func (c *Client) ChatModelName() string {
	return c.provider.name() + "/" + c.chatModel
}

// EmbeddingModelName identifies the embedding model, e.g. "ollama/nomic-embed-text".
func (c *Client) EmbeddingModelName() string {
	return c.provider.name() + "/" + c.embeddingModel
}

// castResult safely type-casts the circuit breaker result
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}
