package loan

import (
	"time"
)

type Status string

const (
	StatusRequested Status = "requested"
	StatusFunded    Status = "funded"
	StatusRepaid    Status = "repaid"
	StatusDefaulted Status = "defaulted"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Term limits. Amounts are in base units, rates in basis points.
const (
	MinAmount   uint64 = 1_000
	MaxAmount   uint64 = 1_000_000_000
	MaxRateBps  uint64 = 10_000
	MaxDuration        = 365 * 24 * time.Hour
)

// Loan is an archival record: rows are never deleted, status only moves
// forward. The auto-increment id doubles as the public loan id (1-based;
// 0 is the null sentinel).
type Loan struct {
	ID              uint64     `gorm:"primaryKey;column:id" json:"loan_id"`
	Borrower        string     `gorm:"size:32;column:borrower;index:idx_loans_borrower" json:"borrower"`
	Lender          *string    `gorm:"size:32;column:lender;index:idx_loans_lender" json:"lender,omitempty"`
	EncAmount       []byte     `gorm:"type:blob;column:enc_amount" json:"-"`
	EncRateBps      []byte     `gorm:"type:blob;column:enc_rate_bps" json:"-"`
	DurationSeconds uint64     `gorm:"column:duration_seconds" json:"duration_seconds"`
	Status          Status     `gorm:"type:enum('requested','funded','repaid','defaulted');default:'requested';column:status" json:"status"`
	Visibility      Visibility `gorm:"type:enum('public','private');default:'public';column:visibility" json:"visibility"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	FundedAt        *time.Time `gorm:"column:funded_at" json:"funded_at,omitempty"`
	DueAt           *time.Time `gorm:"column:due_at" json:"due_at,omitempty"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime;column:updated_at" json:"-"`
}

func (Loan) TableName() string { return "loans" }

func (l *Loan) Duration() time.Duration {
	return time.Duration(l.DurationSeconds) * time.Second
}
