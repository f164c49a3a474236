package grant

import (
	"context"

	"lendledger/internal/confidential"
)

// Engine is the access-control decision point for confidential fields. It
// answers "may viewer see field" and records new grants; who is allowed to
// grant is the caller's business, not the engine's.
type Engine struct {
	repo Repository
}

func NewEngine(repo Repository) *Engine {
	return &Engine{repo: repo}
}

// IsGranted implements confidential.Authorizer. The wildcard row is checked
// before the per-viewer row.
func (e *Engine) IsGranted(ctx context.Context, field confidential.FieldID, viewer string) (bool, error) {
	ok, err := e.repo.Exists(ctx, field, PublicViewer)
	if err != nil || ok {
		return ok, err
	}
	return e.repo.Exists(ctx, field, viewer)
}

// Grant gives viewer access to field. Idempotent.
func (e *Engine) Grant(ctx context.Context, field confidential.FieldID, viewer string) error {
	return e.repo.Create(ctx, &AccessGrant{Field: field, Viewer: viewer})
}

// GrantPublic opens field to every viewer.
func (e *Engine) GrantPublic(ctx context.Context, field confidential.FieldID) error {
	return e.Grant(ctx, field, PublicViewer)
}
