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

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// openAIProvider speaks the OpenAI-compatible REST API.
type openAIProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type openAIChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

type openAIEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func newOpenAIProvider(baseURL, apiKey string, client *http.Client) *openAIProvider {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &openAIProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

func (p *openAIProvider) name() string { return ProviderOpenAI }

func (p *openAIProvider) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.apiKey}
}

func (p *openAIProvider) chat(ctx context.Context, model string, req ChatRequest) (*ChatResponse, error) {
	body := openAIChatRequest{
		Model:       model,
		Messages:    withSystem(req.System, req.Messages),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var resp openAIChatResponse
	if err := postJSON(ctx, p.client, p.name(), p.baseURL+"/chat/completions", p.headers(), body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, recommend.NewValidationError("response", "no choices in chat response")
	}

	return &ChatResponse{
		Content:          resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

func (p *openAIProvider) embed(ctx context.Context, model, text string) ([]float64, error) {
	var resp openAIEmbeddingResponse
	body := openAIEmbeddingRequest{Model: model, Input: text}
	if err := postJSON(ctx, p.client, p.name(), p.baseURL+"/embeddings", p.headers(), body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, recommend.NewValidationError("response", "empty embedding")
	}
	return resp.Data[0].Embedding, nil
}

// withSystem prepends the system prompt as the first message.
func withSystem(system string, msgs []Message) []Message {
	out := make([]Message, 0, len(msgs)+1)
	if system != "" {
		out = append(out, Message{Role: "system", Content: system})
	}
	return append(out, msgs...)
}
