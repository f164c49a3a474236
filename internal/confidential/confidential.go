// Package confidential implements the sealed-field primitive: numeric values
// encrypted under a BFV scheme, combined homomorphically, and disclosed only
// after an access-control check. Every value is bound to a FieldID at
// encryption time and the binding travels with the stored blob, so a blob
// lifted from one record cannot be replayed under another.
package confidential

import (
	"context"
	"errors"
	"strconv"
)

// FieldID names one confidential field. Loan fields derive from the numeric
// loan id, score fields from the borrower identity.
type FieldID string

func LoanAmountField(loanID uint64) FieldID {
	return FieldID("loan/" + strconv.FormatUint(loanID, 10) + "/amount")
}

func LoanRateField(loanID uint64) FieldID {
	return FieldID("loan/" + strconv.FormatUint(loanID, 10) + "/rate")
}

func ScoreField(identity string) FieldID {
	return FieldID("borrower/" + identity + "/score")
}

// Authorizer is consulted before any plaintext leaves the keeper.
type Authorizer interface {
	IsGranted(ctx context.Context, field FieldID, viewer string) (bool, error)
}

var (
	ErrNotAuthorized = errors.New("viewer has no grant on this field")
	ErrIntegrity     = errors.New("ciphertext does not match its field binding")
	ErrValueTooLarge = errors.New("value exceeds the plaintext modulus")
)
