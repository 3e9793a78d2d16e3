// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package algorithms

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/rfpmatch/internal/models"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

var (
	testGlove = recommend.Product{
		ID:          "glove-1",
		Name:        "Waterproof Safety Gloves",
		Description: "Nitrile coated, size L",
		Category:    "hand protection",
	}
	testReqs = []recommend.Requirement{{Text: "need waterproof safety gloves size L"}}
)

func TestParseJudgment(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		wantScore     float64
		wantRationale string
		wantField     string
	}{
		{
			name:          "plain object",
			content:       `{"score": 0.8, "rationale": "Matches size and material."}`,
			wantScore:     0.8,
			wantRationale: "Matches size and material.",
		},
		{
			name:          "wrapped in prose and fences",
			content:       "Here you go:\n```json\n{\"score\": 1, \"rationale\": \" exact fit \"}\n```",
			wantScore:     1,
			wantRationale: "exact fit",
		},
		{
			name:      "stray brace before object",
			content:   `score {approx} follows {"score": 0.25, "rationale": "partial"}`,
			wantScore: 0.25, wantRationale: "partial",
		},
		{name: "zero is valid", content: `{"score": 0}`, wantScore: 0},
		{name: "no object", content: "I think it is a good match.", wantField: "llm_response"},
		{name: "missing score", content: `{"rationale": "n/a"}`, wantField: "llm_response.score"},
		{name: "score above range", content: `{"score": 1.5}`, wantField: "llm_response.score"},
		{name: "negative score", content: `{"score": -0.1}`, wantField: "llm_response.score"},
		{name: "non-numeric score", content: `{"score": "high"}`, wantField: "llm_response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJudgment(tt.content)
			if tt.wantField != "" {
				var verr *recommend.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("ParseJudgment() error = %v, want *ValidationError", err)
				}
				if verr.Field != tt.wantField {
					t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.wantField)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseJudgment() error = %v", err)
			}
			if got.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", got.Score, tt.wantScore)
			}
			if got.Rationale != tt.wantRationale {
				t.Errorf("Rationale = %q, want %q", got.Rationale, tt.wantRationale)
			}
		})
	}
}

func TestNewLLMJudge(t *testing.T) {
	if _, err := NewLLMJudge(nil, nil, DefaultLLMConfig()); !errors.Is(err, recommend.ErrConfiguration) {
		t.Errorf("NewLLMJudge(nil) error = %v, want ErrConfiguration", err)
	}
	j, err := NewLLMJudge(fixedChat(`{"score":1}`), nil, LLMConfig{})
	if err != nil {
		t.Fatalf("NewLLMJudge() error = %v", err)
	}
	if j.cfg.MaxTokens != 300 {
		t.Errorf("MaxTokens = %d, want default 300", j.cfg.MaxTokens)
	}
}

func TestLLMJudge_Score(t *testing.T) {
	var captured models.ChatRequest
	chat := &fakeChat{respond: func(req models.ChatRequest) (string, error) {
		captured = req
		return `{"score": 0.9, "rationale": "Waterproof nitrile gloves in size L."}`, nil
	}}
	j, _ := NewLLMJudge(chat, nil, DefaultLLMConfig())

	got, err := j.Score(context.Background(), testGlove, testReqs)
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if got.Score != 0.9 || got.Rationale == "" {
		t.Errorf("Score() = %+v, want score 0.9 with rationale", got)
	}

	if !captured.JSON {
		t.Error("ChatRequest.JSON = false, want true")
	}
	if captured.System == "" || len(captured.Messages) != 1 {
		t.Fatalf("ChatRequest = %+v, want system prompt and one user message", captured)
	}
	prompt := captured.Messages[0].Content
	for _, want := range []string{"need waterproof safety gloves size L", "ID: glove-1", "Category: hand protection"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestLLMJudge_ScoreErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		j, _ := NewLLMJudge(fixedChat(`{"score":1}`), nil, DefaultLLMConfig())
		if _, err := j.Score(ctx, recommend.Product{ID: "blank"}, testReqs); !errors.Is(err, recommend.ErrValidation) {
			t.Errorf("Score(no product text) error = %v, want ErrValidation", err)
		}
		if _, err := j.Score(ctx, testGlove, []recommend.Requirement{{Text: "  "}}); !errors.Is(err, recommend.ErrValidation) {
			t.Errorf("Score(blank requirements) error = %v, want ErrValidation", err)
		}
	})

	t.Run("model unavailable", func(t *testing.T) {
		chat := &fakeChat{respond: func(models.ChatRequest) (string, error) {
			return "", recommend.Unavailable("openai", errStoreDown)
		}}
		j, _ := NewLLMJudge(chat, newTestMemo("judgment"), DefaultLLMConfig())
		if _, err := j.Score(ctx, testGlove, testReqs); !errors.Is(err, recommend.ErrDependencyUnavailable) {
			t.Errorf("Score() error = %v, want ErrDependencyUnavailable", err)
		}
		// Failures are not cached.
		if _, err := j.Score(ctx, testGlove, testReqs); err == nil {
			t.Error("second Score() error = nil, want the model error again")
		}
		if calls := chat.calls.Load(); calls != 2 {
			t.Errorf("Chat calls = %d, want 2", calls)
		}
	})

	t.Run("malformed response", func(t *testing.T) {
		j, _ := NewLLMJudge(fixedChat("not json"), nil, DefaultLLMConfig())
		if _, err := j.Score(ctx, testGlove, testReqs); !errors.Is(err, recommend.ErrValidation) {
			t.Errorf("Score() error = %v, want ErrValidation", err)
		}
	})
}

func TestLLMJudge_Memoized(t *testing.T) {
	chat := fixedChat(`{"score": 0.7, "rationale": "ok"}`)
	j, _ := NewLLMJudge(chat, newTestMemo("judgment"), DefaultLLMConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := j.Score(ctx, testGlove, testReqs)
		if err != nil {
			t.Fatalf("Score() error = %v", err)
		}
		if got.Score != 0.7 || got.Rationale != "ok" {
			t.Errorf("Score() = %+v, want {0.7 ok}", got)
		}
	}
	if calls := chat.calls.Load(); calls != 1 {
		t.Errorf("Chat calls = %d, want 1", calls)
	}

	other := testGlove
	other.ID = "glove-2"
	if _, err := j.Score(ctx, other, testReqs); err != nil {
		t.Fatalf("Score(other) error = %v", err)
	}
	if calls := chat.calls.Load(); calls != 2 {
		t.Errorf("Chat calls after different product = %d, want 2", calls)
	}
}

func TestLLMJudge_ConcurrentDuplicatesCollapse(t *testing.T) {
	chat := fixedChat(`{"score": 0.5}`)
	chat.block = make(chan struct{})
	j, _ := NewLLMJudge(chat, newTestMemo("judgment"), DefaultLLMConfig())

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := j.Score(context.Background(), testGlove, testReqs)
			errs <- err
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(chat.block)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Score() error = %v", err)
		}
	}
	if calls := chat.calls.Load(); calls != 1 {
		t.Errorf("Chat calls = %d, want 1", calls)
	}
}
