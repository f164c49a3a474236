package loan

import "errors"

var (
	ErrNotFound            = errors.New("loan not found")
	ErrNotRequestable      = errors.New("loan is not awaiting funding")
	ErrNotFunded           = errors.New("loan is not funded")
	ErrSelfFunding         = errors.New("borrower cannot fund their own loan")
	ErrNoValueSent         = errors.New("no value sent")
	ErrNotBorrower         = errors.New("caller is not the loan borrower")
	ErrNotLender           = errors.New("caller is not the loan lender")
	ErrOverdue             = errors.New("loan is past its due date")
	ErrNotYetOverdue       = errors.New("loan is not yet past its due date")
	ErrNotPrivate          = errors.New("loan is not private")
	ErrNotAuthorizedToView = errors.New("no view grant for this private loan")
	ErrAmountOutOfRange    = errors.New("amount outside allowed range")
	ErrRateTooHigh         = errors.New("interest rate exceeds 10000 bps")
	ErrDurationInvalid     = errors.New("duration outside allowed range")
	ErrRepaymentTooSmall   = errors.New("repayment below amount owed")
)
