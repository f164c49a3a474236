// Package event defines the closed set of domain events the ledger emits.
// Payloads never carry plaintext confidential values; score updates expose
// only the direction and whether the clamp let the change through.
package event

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeBorrowerRegistered Type = "borrower.registered"
	TypeLoanRequested      Type = "loan.requested"
	TypeLoanFunded         Type = "loan.funded"
	TypeLoanRepaid         Type = "loan.repaid"
	TypeLoanDefaulted      Type = "loan.defaulted"
	TypeCreditScoreUpdated Type = "credit_score.updated"
)

// Reasons carried by CreditScoreUpdated.
const (
	ReasonRepayment = "repayment"
	ReasonDefault   = "default"
)

// Payload is one of the event structs below; the set is closed.
type Payload interface {
	Kind() Type
}

type BorrowerRegistered struct {
	Identity   string `json:"identity"`
	MadePublic bool   `json:"made_public"`
}

func (BorrowerRegistered) Kind() Type { return TypeBorrowerRegistered }

type LoanRequested struct {
	LoanID   uint64 `json:"loan_id"`
	Borrower string `json:"borrower"`
	Private  bool   `json:"private"`
}

func (LoanRequested) Kind() Type { return TypeLoanRequested }

type LoanFunded struct {
	LoanID uint64    `json:"loan_id"`
	Lender string    `json:"lender"`
	DueAt  time.Time `json:"due_at"`
}

func (LoanFunded) Kind() Type { return TypeLoanFunded }

type LoanRepaid struct {
	LoanID   uint64 `json:"loan_id"`
	Borrower string `json:"borrower"`
}

func (LoanRepaid) Kind() Type { return TypeLoanRepaid }

type LoanDefaulted struct {
	LoanID uint64 `json:"loan_id"`
	Lender string `json:"lender"`
}

func (LoanDefaulted) Kind() Type { return TypeLoanDefaulted }

type CreditScoreUpdated struct {
	Identity string `json:"identity"`
	Reason   string `json:"reason"`
	Applied  bool   `json:"applied"`
}

func (CreditScoreUpdated) Kind() Type { return TypeCreditScoreUpdated }

// Envelope is the wire form handed to sinks.
type Envelope struct {
	ID         string    `json:"id"`
	Kind       Type      `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    Payload   `json:"payload"`
}

func Wrap(p Payload) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Kind:       p.Kind(),
		OccurredAt: time.Now().UTC(),
		Payload:    p,
	}
}

// Sink receives committed-transition events. A nil Sink means no observers.
type Sink interface {
	Emit(ctx context.Context, e Envelope) error
}
