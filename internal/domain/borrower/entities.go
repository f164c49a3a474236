package borrower

import (
	"time"
)

// Credit scores live in the standard 300-850 band.
const (
	MinScore uint64 = 300
	MaxScore uint64 = 850

	RepayReward    uint64 = 5
	DefaultPenalty uint64 = 20

	// An adjustment is committed only when the adjusted score stays inside
	// [MinAdjusted, MaxAdjusted]; out-of-band results leave the score
	// untouched for that event. A repayment at 845 is therefore a no-op,
	// it does not climb to 850.
	MaxAdjusted uint64 = MaxScore - RepayReward    // 845
	MinAdjusted uint64 = MinScore + DefaultPenalty // 320
)

// Profile is created once per identity and never deleted; deactivation is
// the only way to take a borrower out of circulation.
type Profile struct {
	Identity             string    `gorm:"primaryKey;size:32;column:identity" json:"identity"`
	EncScore             []byte    `gorm:"type:blob;column:enc_score" json:"-"`
	TotalLoans           uint64    `gorm:"column:total_loans" json:"total_loans"`
	SuccessfulRepayments uint64    `gorm:"column:successful_repayments" json:"successful_repayments"`
	IsActive             bool      `gorm:"column:is_active" json:"is_active"`
	CreatedAt            time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime;column:updated_at" json:"-"`
}

func (Profile) TableName() string { return "borrower_profiles" }
