// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package models

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/rfpmatch/internal/metrics"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

func TestNew_Configuration(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"no provider", Config{ChatModel: "m"}, true},
		{"unknown provider", Config{Provider: "bard", ChatModel: "m"}, true},
		{"openai without key", Config{Provider: "openai", ChatModel: "gpt-4o-mini"}, true},
		{"no models", Config{Provider: "ollama"}, true},
		{"openai with key", Config{Provider: "openai", APIKey: "sk-test", ChatModel: "gpt-4o-mini"}, false},
		{"ollama embeddings only", Config{Provider: "Ollama", EmbeddingModel: "nomic-embed-text"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg, zerolog.Nop())
			if tt.wantErr {
				if !errors.Is(err, recommend.ErrConfiguration) {
					t.Errorf("New() error = %v, want ErrConfiguration", err)
				}
				return
			}
			if err != nil || c == nil {
				t.Fatalf("New() = (%v, %v), want client", c, err)
			}
		})
	}
}

func TestOpenAI_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		var req openAIChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q, want gpt-4o-mini", req.Model)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %+v, want json_object", req.ResponseFormat)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v, want system + user", req.Messages)
		}
		_, _ = w.Write([]byte(`{"model":"gpt-4o-mini","choices":[{"message":{"role":"assistant","content":"{\"score\":0.8}"}}],"usage":{"prompt_tokens":12,"completion_tokens":5}}`))
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderOpenAI, BaseURL: srv.URL + "/", APIKey: "sk-test", ChatModel: "gpt-4o-mini"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := c.Chat(context.Background(), ChatRequest{
		System:   "judge",
		Messages: []Message{{Role: "user", Content: "hi"}},
		JSON:     true,
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != `{"score":0.8}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.PromptTokens != 12 || resp.CompletionTokens != 5 {
		t.Errorf("tokens = %d/%d, want 12/5", resp.PromptTokens, resp.CompletionTokens)
	}
	if got := c.ChatModelName(); got != "openai/gpt-4o-mini" {
		t.Errorf("ChatModelName() = %q", got)
	}
}

func TestOpenAI_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s, want /embeddings", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderOpenAI, BaseURL: srv.URL, APIKey: "k", EmbeddingModel: "text-embedding-3-small"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	vec, err := c.Embed(context.Background(), "gloves")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 3 || vec[2] != 0.3 {
		t.Errorf("Embed() = %v, want [0.1 0.2 0.3]", vec)
	}

	if _, err := c.Chat(context.Background(), ChatRequest{}); !errors.Is(err, recommend.ErrConfiguration) {
		t.Errorf("Chat() without chat model error = %v, want ErrConfiguration", err)
	}
}

func TestOllama_ChatAndEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chat":
			var req ollamaChatRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if req.Format != "json" || req.Stream {
				t.Errorf("format = %q stream = %v, want json/false", req.Format, req.Stream)
			}
			_, _ = w.Write([]byte(`{"model":"llama3.1","message":{"role":"assistant","content":"ok"},"prompt_eval_count":3,"eval_count":1}`))
		case "/api/embeddings":
			_, _ = w.Write([]byte(`{"embedding":[1,0]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderOllama, BaseURL: srv.URL, ChatModel: "llama3.1", EmbeddingModel: "nomic-embed-text"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	resp, err := c.Chat(context.Background(), ChatRequest{Messages: []Message{{Role: "user", Content: "x"}}, JSON: true})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Content != "ok" || resp.PromptTokens != 3 {
		t.Errorf("Chat() = %+v", resp)
	}

	vec, err := c.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("len(Embed()) = %d, want 2", len(vec))
	}
	if got := c.EmbeddingModelName(); got != "ollama/nomic-embed-text" {
		t.Errorf("EmbeddingModelName() = %q", got)
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"server error", http.StatusInternalServerError, "boom", recommend.ErrDependencyUnavailable},
		{"bad gateway", http.StatusBadGateway, "", recommend.ErrDependencyUnavailable},
		{"rate limited", http.StatusTooManyRequests, "slow down", recommend.ErrDependencyUnavailable},
		{"unauthorized", http.StatusUnauthorized, "", recommend.ErrConfiguration},
		{"forbidden", http.StatusForbidden, "", recommend.ErrConfiguration},
		{"bad request", http.StatusBadRequest, "bad prompt", recommend.ErrValidation},
		{"malformed body", http.StatusOK, "{not json", recommend.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := New(Config{Provider: ProviderOllama, BaseURL: srv.URL, ChatModel: "m"}, zerolog.Nop())
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			_, err = c.Chat(context.Background(), ChatRequest{})
			if !errors.Is(err, tt.want) {
				t.Errorf("Chat() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := New(Config{Provider: ProviderOllama, BaseURL: url, EmbeddingModel: "m"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = c.Embed(context.Background(), "x")
	if !errors.Is(err, recommend.ErrDependencyUnavailable) {
		t.Errorf("Embed() error = %v, want ErrDependencyUnavailable", err)
	}
}

func TestCircuitBreakerOpens(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := New(Config{
		Provider:  ProviderOllama,
		BaseURL:   srv.URL,
		ChatModel: "m",
		Breaker:   BreakerConfig{MinRequests: 2, FailureRatio: 0.5, Timeout: time.Hour},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	before := testutil.ToFloat64(metrics.CircuitBreakerTransitions.WithLabelValues("models-ollama", "closed", "open"))

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.Chat(ctx, ChatRequest{}); !errors.Is(err, recommend.ErrDependencyUnavailable) {
			t.Fatalf("Chat() #%d error = %v, want ErrDependencyUnavailable", i, err)
		}
	}

	_, err = c.Chat(ctx, ChatRequest{})
	if !errors.Is(err, recommend.ErrDependencyUnavailable) {
		t.Errorf("Chat() with open breaker error = %v, want ErrDependencyUnavailable", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Chat() with open breaker error = %v, want wrapped ErrOpenState", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hits = %d, want 2 (third call short-circuited)", got)
	}

	after := testutil.ToFloat64(metrics.CircuitBreakerTransitions.WithLabelValues("models-ollama", "closed", "open"))
	if after-before != 1 {
		t.Errorf("closed->open transitions delta = %v, want 1", after-before)
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("models-ollama")); got != 2 {
		t.Errorf("breaker state gauge = %v, want 2 (open)", got)
	}
}

func TestCallerCancellationDoesNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Prompt == "slow" {
			<-r.Context().Done()
			return
		}
		_, _ = w.Write([]byte(`{"embedding":[1]}`))
	}))
	defer srv.Close()

	c, err := New(Config{
		Provider:       ProviderOllama,
		BaseURL:        srv.URL,
		EmbeddingModel: "m",
		Breaker:        BreakerConfig{MinRequests: 1, FailureRatio: 0.1, Timeout: time.Hour},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)
		_, err := c.Embed(ctx, "slow")
		cancel()
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Embed() #%d error = %v, want context.Canceled", i, err)
		}
		if errors.Is(err, recommend.ErrDependencyUnavailable) {
			t.Fatalf("Embed() #%d error = %v, want bare cancellation", i, err)
		}
	}

	if _, err := c.Embed(context.Background(), "fast"); err != nil {
		t.Errorf("Embed() after cancellations error = %v, want breaker still closed", err)
	}
}

func TestValidationErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := New(Config{
		Provider:  ProviderOllama,
		BaseURL:   srv.URL,
		ChatModel: "m",
		Breaker:   BreakerConfig{MinRequests: 1, FailureRatio: 0.1},
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		_, err := c.Chat(context.Background(), ChatRequest{})
		if !errors.Is(err, recommend.ErrValidation) {
			t.Fatalf("Chat() #%d error = %v, want ErrValidation", i, err)
		}
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"embedding":[1]}`))
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderOllama, BaseURL: srv.URL, EmbeddingModel: "m", RatePerSecond: 0.01, Burst: 1}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := c.Embed(context.Background(), "first"); err != nil {
		t.Fatalf("Embed() first error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Embed(ctx, "second")
	if !errors.Is(err, recommend.ErrDependencyUnavailable) {
		t.Errorf("Embed() throttled error = %v, want ErrDependencyUnavailable", err)
	}
	if !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("Embed() throttled error = %q, want rate limit mention", err.Error())
	}
}
