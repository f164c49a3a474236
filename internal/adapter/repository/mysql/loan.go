package mysql

import (
	"context"

	loanDomain "lendledger/internal/domain/loan"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByID(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	return &out, res.Error
}

// GetByIDForUpdate locks the row for the rest of the transaction. SQLite
// has no FOR UPDATE and serializes writers anyway, so the clause is
// mysql-only.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*loanDomain.Loan, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out loanDomain.Loan
	res := q.Where("id = ?", id).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) IDsByBorrower(ctx context.Context, borrower string) ([]uint64, error) {
	var ids []uint64
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("borrower = ?", borrower).
		Order("id ASC").
		Pluck("id", &ids)
	return ids, res.Error
}

func (r *LoanRepository) IDsByLender(ctx context.Context, lender string) ([]uint64, error) {
	var ids []uint64
	res := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Where("lender = ?", lender).
		Order("id ASC").
		Pluck("id", &ids)
	return ids, res.Error
}
