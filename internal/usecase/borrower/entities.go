package borrower

import (
	"time"
)

type RegisterInput struct {
	Identity    string `json:"identity"`
	CreditScore uint64 `json:"credit_score"`
	MakePublic  bool   `json:"make_public"`
}

type ProfileDTO struct {
	Identity             string    `json:"identity"`
	TotalLoans           uint64    `json:"total_loans"`
	SuccessfulRepayments uint64    `json:"successful_repayments"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
}
