// RFPMatch - Hybrid Product Recommendation for RFP Quotations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rfpmatch

package algorithms

import (
	"context"
	"errors"
	"hash/fnv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/rfpmatch/internal/cache"
	"github.com/tomtom215/rfpmatch/internal/graph"
	"github.com/tomtom215/rfpmatch/internal/models"
	"github.com/tomtom215/rfpmatch/internal/recommend"
)

var errStoreDown = errors.New("connection refused")

// fakeOrderStore is an in-memory OrderStore with call counters.
type fakeOrderStore struct {
	history    map[string][]recommend.PurchaseRecord
	similar    []string
	buyers     int
	coPurchase int
	err        error

	coCalls atomic.Int32
}

func (f *fakeOrderStore) PurchaseHistory(_ context.Context, userID string) ([]recommend.PurchaseRecord, error) {
	if f.err != nil {
		return nil, recommend.Unavailable("order_store", f.err)
	}
	h := f.history[userID]
	if h == nil {
		h = []recommend.PurchaseRecord{}
	}
	return h, nil
}

func (f *fakeOrderStore) UsersSharingCategories(_ context.Context, _ string, _ []string, _ int) ([]string, error) {
	if f.err != nil {
		return nil, recommend.Unavailable("order_store", f.err)
	}
	if f.similar == nil {
		return []string{}, nil
	}
	return f.similar, nil
}

func (f *fakeOrderStore) CountBuyers(_ context.Context, _ string, _ []string) (int, error) {
	if f.err != nil {
		return 0, recommend.Unavailable("order_store", f.err)
	}
	return f.buyers, nil
}

func (f *fakeOrderStore) CoPurchaseCount(_ context.Context, _ string, _ []string) (int, error) {
	f.coCalls.Add(1)
	if f.err != nil {
		return 0, recommend.Unavailable("order_store", f.err)
	}
	return f.coPurchase, nil
}

// failingGraphStore fails every query.
type failingGraphStore struct{}

func (failingGraphStore) Tasks(context.Context) ([]graph.Node, error) {
	return nil, recommend.Unavailable("graph_store", errStoreDown)
}

func (failingGraphStore) ToolNode(context.Context, string) (string, bool, error) {
	return "", false, recommend.Unavailable("graph_store", errStoreDown)
}

func (failingGraphStore) OutEdges(context.Context, string, ...graph.Relation) ([]graph.Edge, error) {
	return nil, recommend.Unavailable("graph_store", errStoreDown)
}

// hashEmbedder embeds text as a hashed bag of tokens. Texts sharing tokens
// get positive cosine similarity; identical texts get exactly 1.
type hashEmbedder struct {
	dims  int
	err   error
	calls atomic.Int32
}

func newHashEmbedder() *hashEmbedder { return &hashEmbedder{dims: 64} }

func (h *hashEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	h.calls.Add(1)
	if h.err != nil {
		return nil, h.err
	}
	vec := make([]float64, h.dims)
	for _, tok := range tokenize(text) {
		f := fnv.New32a()
		_, _ = f.Write([]byte(tok))
		vec[int(f.Sum32()%uint32(h.dims))]++
	}
	return vec, nil
}

func (h *hashEmbedder) EmbeddingModelName() string { return "test/hash" }

// fakeChat answers every request through respond.
type fakeChat struct {
	respond func(req models.ChatRequest) (string, error)
	block   chan struct{}
	calls   atomic.Int32
}

func (f *fakeChat) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	content, err := f.respond(req)
	if err != nil {
		return nil, err
	}
	return &models.ChatResponse{Content: content, Model: "fake"}, nil
}

func (f *fakeChat) ChatModelName() string { return "test/fake" }

func fixedChat(content string) *fakeChat {
	return &fakeChat{respond: func(models.ChatRequest) (string, error) { return content, nil }}
}

// newTestMemo returns a memo backed by a fresh memory store.
func newTestMemo(namespace string) *cache.Memo {
	return cache.NewMemo(cache.NewMemory(1000, time.Minute), namespace, time.Hour, zerolog.Nop())
}
