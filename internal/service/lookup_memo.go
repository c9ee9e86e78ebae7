package service

import (
	"context"
	"sync"

	"github.com/inkwellhq/inkwell/internal/domain"
)

type memoContextKey struct{}

// LookupMemo deduplicates user lookups within a single request. It is
// created fresh per request and discarded with the request context, so
// entries can never leak across requests.
type LookupMemo struct {
	mu      sync.Mutex
	entries map[uint]*domain.UserPublicView
}

func NewLookupMemo() *LookupMemo {
	return &LookupMemo{entries: make(map[uint]*domain.UserPublicView)}
}

func (m *LookupMemo) Get(subject uint) (*domain.UserPublicView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[subject]
	return v, ok
}

func (m *LookupMemo) Set(subject uint, view *domain.UserPublicView) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[subject] = view
}

func WithLookupMemo(ctx context.Context, memo *LookupMemo) context.Context {
	return context.WithValue(ctx, memoContextKey{}, memo)
}

func LookupMemoFromContext(ctx context.Context) (*LookupMemo, bool) {
	m, ok := ctx.Value(memoContextKey{}).(*LookupMemo)
	return m, ok
}
