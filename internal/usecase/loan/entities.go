package loan

import (
	"time"
)

type RequestInput struct {
	Borrower        string `json:"borrower"`
	Amount          uint64 `json:"amount"`
	RateBps         uint64 `json:"rate_bps"`
	DurationSeconds uint64 `json:"duration_seconds"`
	Private         bool   `json:"private"`
}

// PublicInfoDTO is the view anyone may see: term amounts never appear here.
type PublicInfoDTO struct {
	LoanID          uint64     `json:"loan_id"`
	Borrower        string     `json:"borrower"`
	Lender          *string    `json:"lender,omitempty"`
	DurationSeconds uint64     `json:"duration_seconds"`
	Status          string     `json:"status"`
	Visibility      string     `json:"visibility"`
	CreatedAt       time.Time  `json:"created_at"`
	FundedAt        *time.Time `json:"funded_at,omitempty"`
	DueAt           *time.Time `json:"due_at,omitempty"`
}

// TermsDTO is the grant-gated view of what was actually agreed.
type TermsDTO struct {
	LoanID  uint64 `json:"loan_id"`
	Amount  uint64 `json:"amount"`
	RateBps uint64 `json:"rate_bps"`
}
