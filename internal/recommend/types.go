// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package recommend

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Requirement is a single free-text need extracted from an RFP.
type Requirement struct {
	// Text is the requirement as written by the buyer.
	Text string `json:"text"`
}

// JoinRequirements concatenates requirement texts with a single space.
func JoinRequirements(reqs []Requirement) string {
	parts := make([]string, 0, len(reqs))
	for _, r := range reqs {
		if t := strings.TrimSpace(r.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// Product is a candidate catalog product. Products are owned by the
// catalog store and are read-only here.
type Product struct {
	// ID is the catalog product identifier.
	ID string `json:"id"`

	// Name is the product display name.
	Name string `json:"name"`

	// Description is the free-text product description.
	Description string `json:"description,omitempty"`

	// Category is the catalog category (e.g. "hand protection").
	Category string `json:"category,omitempty"`

	// Brand is the manufacturer or brand name.
	Brand string `json:"brand,omitempty"`
}

// Text returns the product's textual content: name, description, category
// and brand joined by spaces. Empty fields are skipped.
//
//nolint:gocritic // value receiver keeps Product immutable
func (p Product) Text() string {
	fields := []string{p.Name, p.Description, p.Category, p.Brand}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// PurchaseRecord is one line of a historical order.
type PurchaseRecord struct {
	UserID      string    `json:"user_id"`
	ProductID   string    `json:"product_id"`
	Category    string    `json:"category"`
	OrderID     string    `json:"order_id"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// Task is a knowledge-graph Task node matched from requirement text.
type Task struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords,omitempty"`
}

// Judgment is a language-model compatibility judgment.
type Judgment struct {
	Score     float64 `json:"score"`
	Rationale string  `json:"rationale"`
}

// Signal identifies one of the four evidence signals.
type Signal int

const (
	// SignalCollaborative is purchase-history collaborative filtering.
	SignalCollaborative Signal = iota
	// SignalContentBased is lexical + semantic text similarity.
	SignalContentBased
	// SignalKnowledgeGraph is structural tool/task/safety compatibility.
	SignalKnowledgeGraph
	// SignalLLM is contextual language-model judgment.
	SignalLLM
)

// AllSignals lists the signals in breakdown order.
var AllSignals = []Signal{SignalCollaborative, SignalContentBased, SignalKnowledgeGraph, SignalLLM}

// String returns the signal identifier used in logs, metrics and JSON.
func (s Signal) String() string {
	switch s {
	case SignalCollaborative:
		return "collaborative"
	case SignalContentBased:
		return "content_based"
	case SignalKnowledgeGraph:
		return "knowledge_graph"
	case SignalLLM:
		return "llm"
	default:
		return "unknown"
	}
}

// SignalScore is the outcome of one signal for one product. An unavailable
// signal carries the error that made it so and no numeric value.
type SignalScore struct {
	Value     float64
	Available bool
	ErrorKind string
	Error     string
}

// Available creates an available signal score.
func Available(value float64) SignalScore {
	return SignalScore{Value: value, Available: true}
}

// UnavailableScore creates an unavailable signal score from err.
func UnavailableScore(err error) SignalScore {
	s := SignalScore{ErrorKind: ErrorKind(err)}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

// MarshalJSON omits the value of unavailable signals so callers cannot
// mistake them for a numeric zero.
//
//nolint:gocritic // value receiver for json.Marshaler on values
func (s SignalScore) MarshalJSON() ([]byte, error) {
	if s.Available {
		return json.Marshal(struct {
			Value     float64 `json:"value"`
			Available bool    `json:"available"`
		}{Value: s.Value, Available: true})
	}
	return json.Marshal(struct {
		Available bool   `json:"available"`
		ErrorKind string `json:"error_kind"`
		Error     string `json:"error"`
	}{Available: false, ErrorKind: s.ErrorKind, Error: s.Error})
}

// Breakdown holds the per-signal scores for one product.
type Breakdown struct {
	Collaborative  SignalScore `json:"collaborative"`
	ContentBased   SignalScore `json:"content_based"`
	KnowledgeGraph SignalScore `json:"knowledge_graph"`
	LLM            SignalScore `json:"llm"`
}

// Get returns the score for s.
//
//nolint:gocritic // value receiver for read access
func (b Breakdown) Get(s Signal) SignalScore {
	switch s {
	case SignalCollaborative:
		return b.Collaborative
	case SignalContentBased:
		return b.ContentBased
	case SignalKnowledgeGraph:
		return b.KnowledgeGraph
	case SignalLLM:
		return b.LLM
	default:
		return SignalScore{ErrorKind: KindInternal, Error: "unknown signal"}
	}
}

func (b *Breakdown) set(s Signal, score SignalScore) {
	switch s {
	case SignalCollaborative:
		b.Collaborative = score
	case SignalContentBased:
		b.ContentBased = score
	case SignalKnowledgeGraph:
		b.KnowledgeGraph = score
	case SignalLLM:
		b.LLM = score
	}
}

// AvailableCount returns how many signals are available.
//
//nolint:gocritic // value receiver for read access
func (b Breakdown) AvailableCount() int {
	n := 0
	for _, s := range AllSignals {
		if b.Get(s).Available {
			n++
		}
	}
	return n
}

// ScoredProduct is the fused outcome for a single product.
type ScoredProduct struct {
	Product    Product   `json:"product"`
	FusedScore float64   `json:"fused_score"`
	Coverage   float64   `json:"coverage"`
	Breakdown  Breakdown `json:"breakdown"`
	Rationale  string    `json:"rationale,omitempty"`
}

// RankedItem is one entry of a recommendation result.
type RankedItem struct {
	ProductID string `json:"product_id"`
	Rank      int    `json:"rank"`

	// FusedScore is the weighted sum of available signals, in [0, 1].
	FusedScore float64 `json:"fused_score"`

	// Coverage is the total weight of the signals that were available.
	// A value below 1.0 marks a ranking computed on partial evidence.
	Coverage float64 `json:"coverage"`

	Breakdown Breakdown `json:"breakdown"`
	Product   Product   `json:"product"`

	// Rationale is the language-model explanation, when available.
	Rationale string `json:"rationale,omitempty"`
}

// ExcludedItem is a candidate dropped because none of its signals could be
// computed.
type ExcludedItem struct {
	ProductID string    `json:"product_id"`
	Breakdown Breakdown `json:"breakdown"`
}

// Request is a recommendation request.
type Request struct {
	// RFPText is the buyer's free-text request.
	RFPText string `json:"rfp_text"`

	// Candidates is the set of products to rank.
	Candidates []Product `json:"candidates"`

	// UserID identifies the buyer. Optional; empty means cold start.
	UserID string `json:"user_id,omitempty"`

	// RequestID is a tracing identifier. Generated when empty.
	RequestID string `json:"request_id,omitempty"`
}

// Result is a ranked recommendation with explainability data.
type Result struct {
	RequestID    string         `json:"request_id"`
	Items        []RankedItem   `json:"items"`
	Excluded     []ExcludedItem `json:"excluded,omitempty"`
	Requirements []Requirement  `json:"requirements"`
	Tasks        []Task         `json:"tasks,omitempty"`

	// Partial is set when the request was canceled before every candidate
	// finished scoring. Items then only contains completed candidates.
	Partial bool `json:"partial"`

	Metadata ResultMetadata `json:"metadata"`
}

// ResultMetadata contains timing and diagnostic information.
type ResultMetadata struct {
	UserID     string    `json:"user_id,omitempty"`
	Candidates int       `json:"candidates"`
	Weights    Weights   `json:"weights"`
	LatencyMS  int64     `json:"latency_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// RequirementExtractor turns RFP text into requirements.
type RequirementExtractor interface {
	Extract(ctx context.Context, rfpText string) ([]Requirement, error)
}

// CollaborativeScorer scores a product by purchase-history overlap.
type CollaborativeScorer interface {
	Score(ctx context.Context, productID, userID string) (float64, error)
}

// ContentScorer scores textual similarity between a product and requirements.
type ContentScorer interface {
	Score(ctx context.Context, product Product, reqs []Requirement) (float64, error)
}

// GraphScorer scores structural compatibility through the knowledge graph.
type GraphScorer interface {
	// ExtractTasks maps requirements to known Task nodes.
	ExtractTasks(ctx context.Context, reqs []Requirement) ([]Task, error)

	// Score scores product against the extracted tasks.
	Score(ctx context.Context, product Product, tasks []Task) (float64, error)
}

// LLMScorer scores contextual compatibility with a language-model judgment.
type LLMScorer interface {
	Score(ctx context.Context, product Product, reqs []Requirement) (Judgment, error)
}

// Scorers bundles the four signal collaborators of the engine.
type Scorers struct {
	Collaborative CollaborativeScorer
	Content       ContentScorer
	Graph         GraphScorer
	LLM           LLMScorer
}
