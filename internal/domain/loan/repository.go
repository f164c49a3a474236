package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uint64) (*Loan, error)
	// GetByIDForUpdate locks the row for the duration of the surrounding tx.
	GetByIDForUpdate(ctx context.Context, id uint64) (*Loan, error)
	Save(ctx context.Context, l *Loan) error
	IDsByBorrower(ctx context.Context, borrower string) ([]uint64, error)
	IDsByLender(ctx context.Context, lender string) ([]uint64, error)
}
