package grantmock

import (
	"context"
	"sync"

	"lendledger/internal/confidential"
	domain "lendledger/internal/domain/grant"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn func(ctx context.Context, g *domain.AccessGrant) error
	ExistsFn func(ctx context.Context, field confidential.FieldID, viewer string) (bool, error)
}

func (m *Repo) Create(ctx context.Context, g *domain.AccessGrant) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, g)
	}
	return nil
}

func (m *Repo) Exists(ctx context.Context, field confidential.FieldID, viewer string) (bool, error) {
	if m.ExistsFn != nil {
		return m.ExistsFn(ctx, field, viewer)
	}
	return false, context.Canceled
}

// Store is a working map-backed Repository for tests that need real grant
// bookkeeping rather than scripted responses.
type Store struct {
	mu     sync.Mutex
	grants map[confidential.FieldID]map[string]bool
}

func NewStore() *Store {
	return &Store{grants: make(map[confidential.FieldID]map[string]bool)}
}

func (s *Store) Create(_ context.Context, g *domain.AccessGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grants[g.Field] == nil {
		s.grants[g.Field] = make(map[string]bool)
	}
	s.grants[g.Field][g.Viewer] = true
	return nil
}

func (s *Store) Exists(_ context.Context, field confidential.FieldID, viewer string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grants[field][viewer], nil
}
