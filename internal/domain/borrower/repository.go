package borrower

import "context"

type Repository interface {
	Create(ctx context.Context, p *Profile) error
	GetByIdentity(ctx context.Context, identity string) (*Profile, error)
	// GetByIdentityForUpdate locks the row for the duration of the surrounding tx.
	GetByIdentityForUpdate(ctx context.Context, identity string) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}
