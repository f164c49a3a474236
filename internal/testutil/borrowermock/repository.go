package borrowermock

import (
	"context"

	domain "lendledger/internal/domain/borrower"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                 func(ctx context.Context, p *domain.Profile) error
	GetByIdentityFn          func(ctx context.Context, identity string) (*domain.Profile, error)
	GetByIdentityForUpdateFn func(ctx context.Context, identity string) (*domain.Profile, error)
	SaveFn                   func(ctx context.Context, p *domain.Profile) error
}

func (m *Repo) Create(ctx context.Context, p *domain.Profile) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByIdentity(ctx context.Context, identity string) (*domain.Profile, error) {
	if m.GetByIdentityFn != nil {
		return m.GetByIdentityFn(ctx, identity)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIdentityForUpdate(ctx context.Context, identity string) (*domain.Profile, error) {
	if m.GetByIdentityForUpdateFn != nil {
		return m.GetByIdentityForUpdateFn(ctx, identity)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, p *domain.Profile) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}
