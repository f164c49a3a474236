package mysql

import (
	"context"

	"lendledger/internal/confidential"
	grantDomain "lendledger/internal/domain/grant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GrantRepository struct{ db *gorm.DB }

func NewGrantRepository(db *gorm.DB) *GrantRepository { return &GrantRepository{db: db} }

// Create absorbs replays of the same (field, viewer) pair on the unique
// index, so granting twice is a no-op rather than an error.
func (r *GrantRepository) Create(ctx context.Context, g *grantDomain.AccessGrant) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(g).Error
}

func (r *GrantRepository) Exists(ctx context.Context, field confidential.FieldID, viewer string) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&grantDomain.AccessGrant{}).
		Where("field = ? AND viewer = ?", field, viewer).
		Count(&n)
	return n > 0, res.Error
}
