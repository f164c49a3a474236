package loanmock

import (
	"context"

	domain "lendledger/internal/domain/loan"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Fill in the function fields a test needs; nil mutation funcs are no-ops,
// nil getters fail loudly with context.Canceled.
type Repo struct {
	CreateFn           func(ctx context.Context, l *domain.Loan) error
	GetByIDFn          func(ctx context.Context, id uint64) (*domain.Loan, error)
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*domain.Loan, error)
	SaveFn             func(ctx context.Context, l *domain.Loan) error
	IDsByBorrowerFn    func(ctx context.Context, borrower string) ([]uint64, error)
	IDsByLenderFn      func(ctx context.Context, lender string) ([]uint64, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Loan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) IDsByBorrower(ctx context.Context, borrower string) ([]uint64, error) {
	if m.IDsByBorrowerFn != nil {
		return m.IDsByBorrowerFn(ctx, borrower)
	}
	return nil, context.Canceled
}

func (m *Repo) IDsByLender(ctx context.Context, lender string) ([]uint64, error) {
	if m.IDsByLenderFn != nil {
		return m.IDsByLenderFn(ctx, lender)
	}
	return nil, context.Canceled
}
