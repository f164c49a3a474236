package borrower

import "errors"

var (
	ErrNotFound           = errors.New("borrower profile not found")
	ErrAlreadyRegistered  = errors.New("borrower already registered")
	ErrInvalidCreditScore = errors.New("credit score outside 300-850")
	ErrInactive           = errors.New("borrower is not active")
	ErrNotAdmin           = errors.New("caller is not the administrative identity")
)
