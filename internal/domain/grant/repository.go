package grant

import (
	"context"

	"lendledger/internal/confidential"
)

type Repository interface {
	// Create stores a grant; storing the same (field, viewer) twice is a no-op.
	Create(ctx context.Context, g *AccessGrant) error
	Exists(ctx context.Context, field confidential.FieldID, viewer string) (bool, error)
}
