// Package settlement moves value between identities. The ledger consumes
// the Gateway interface only, so vault implementations are interchangeable;
// any gateway error aborts the loan transition it was called from.
package settlement

import (
	"context"
	"errors"
)

// EscrowAccount is the system-held account the emergency sweep drains.
const EscrowAccount = "00000000000000000000000000000000"

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoValue           = errors.New("zero-value amount")
)

type Gateway interface {
	// Transfer debits from and credits to atomically. Uncovered transfers
	// fail with ErrInsufficientFunds and move nothing.
	Transfer(ctx context.Context, from, to string, amount uint64) error
	Deposit(ctx context.Context, id string, amount uint64) error
	Balance(ctx context.Context, id string) (uint64, error)
}
