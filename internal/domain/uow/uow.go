package uow

import (
	"context"

	"lendledger/internal/domain/borrower"
	"lendledger/internal/domain/grant"
	"lendledger/internal/domain/loan"
)

type Repos struct {
	Loans     loan.Repository
	Borrowers borrower.Repository
	Grants    grant.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in. A missing id
	// fails with loan.ErrNotFound before fn runs.
	WithinLoanTx(ctx context.Context, loanID uint64, fn func(r Repos, l *loan.Loan) error) error
}
