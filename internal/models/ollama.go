// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package models

import (
	"context"
	"net/http"
	"strings"

	"github.com/tomtom215/rfpmatch/internal/recommend"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// ollamaProvider speaks the local Ollama REST API.
type ollamaProvider struct {
	baseURL string
	client  *http.Client
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  *ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model           string  `json:"model"`
	Message         Message `json:"message"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func newOllamaProvider(baseURL string, client *http.Client) *ollamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &ollamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (p *ollamaProvider) name() string { return ProviderOllama }

func (p *ollamaProvider) chat(ctx context.Context, model string, req ChatRequest) (*ChatResponse, error) {
	body := ollamaChatRequest{
		Model:    model,
		Messages: withSystem(req.System, req.Messages),
		Stream:   false,
		Options: &ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}
	if req.JSON {
		body.Format = "json"
	}

	var resp ollamaChatResponse
	if err := postJSON(ctx, p.client, p.name(), p.baseURL+"/api/chat", nil, body, &resp); err != nil {
		return nil, err
	}

	return &ChatResponse{
		Content:          resp.Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.PromptEvalCount,
		CompletionTokens: resp.EvalCount,
	}, nil
}

func (p *ollamaProvider) embed(ctx context.Context, model, text string) ([]float64, error) {
	var resp ollamaEmbedResponse
	body := ollamaEmbedRequest{Model: model, Prompt: text}
	if err := postJSON(ctx, p.client, p.name(), p.baseURL+"/api/embeddings", nil, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, recommend.NewValidationError("response", "empty embedding")
	}
	return resp.Embedding, nil
}
