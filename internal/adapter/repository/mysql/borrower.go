package mysql

import (
	"context"

	borrowerDomain "lendledger/internal/domain/borrower"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BorrowerRepository struct{ db *gorm.DB }

func NewBorrowerRepository(db *gorm.DB) *BorrowerRepository { return &BorrowerRepository{db: db} }

func (r *BorrowerRepository) Create(ctx context.Context, p *borrowerDomain.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *BorrowerRepository) Save(ctx context.Context, p *borrowerDomain.Profile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *BorrowerRepository) GetByIdentity(ctx context.Context, identity string) (*borrowerDomain.Profile, error) {
	var out borrowerDomain.Profile
	res := r.db.WithContext(ctx).Where("identity = ?", identity).First(&out)
	return &out, res.Error
}

func (r *BorrowerRepository) GetByIdentityForUpdate(ctx context.Context, identity string) (*borrowerDomain.Profile, error) {
	q := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "mysql" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out borrowerDomain.Profile
	res := q.Where("identity = ?", identity).First(&out)
	return &out, res.Error
}
