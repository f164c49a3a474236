package http

import (
	"errors"
	"net/http"
	"strconv"

	"lendledger/internal/confidential"
	borrowerDomain "lendledger/internal/domain/borrower"
	loanDomain "lendledger/internal/domain/loan"
	"lendledger/internal/settlement"
	"lendledger/pkg/identity"

	"github.com/labstack/echo/v4"
)

// HeaderActorID carries the caller identity. Upstream auth is trusted to
// have bound it; the ledger only checks the shape.
const HeaderActorID = "Ld-Actor-Id"

func actor(c echo.Context) (string, bool) {
	id := c.Request().Header.Get(HeaderActorID)
	return id, identity.IsValid(id)
}

func noActor(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing or invalid Ld-Actor-Id header"})
}

func loanIDParam(c echo.Context) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param("loan_id"), 10, 64)
	return n, err == nil
}

type errStatus struct {
	target  error
	status  int
	message string
}

var errStatuses = []errStatus{
	{loanDomain.ErrNotFound, http.StatusNotFound, "loan not found"},
	{borrowerDomain.ErrNotFound, http.StatusNotFound, "borrower not found"},

	{borrowerDomain.ErrAlreadyRegistered, http.StatusConflict, "borrower already registered"},
	{loanDomain.ErrNotRequestable, http.StatusConflict, "loan not in a fundable state"},
	{loanDomain.ErrNotFunded, http.StatusConflict, "loan not in a funded state"},
	{loanDomain.ErrOverdue, http.StatusConflict, "loan is past its due date"},
	{loanDomain.ErrNotYetOverdue, http.StatusConflict, "loan is not overdue yet"},

	{loanDomain.ErrNotBorrower, http.StatusForbidden, "only the borrower may do this"},
	{loanDomain.ErrNotLender, http.StatusForbidden, "only the lender may do this"},
	{loanDomain.ErrSelfFunding, http.StatusForbidden, "borrower cannot fund their own loan"},
	{loanDomain.ErrNotAuthorizedToView, http.StatusForbidden, "loan terms not disclosed to caller"},
	{confidential.ErrNotAuthorized, http.StatusForbidden, "field not disclosed to caller"},
	{borrowerDomain.ErrNotAdmin, http.StatusForbidden, "admin only"},

	{settlement.ErrInsufficientFunds, http.StatusPaymentRequired, "insufficient funds"},

	{borrowerDomain.ErrInvalidCreditScore, http.StatusBadRequest, "credit score outside the 300-850 band"},
	{borrowerDomain.ErrInactive, http.StatusBadRequest, "borrower is not active"},
	{loanDomain.ErrAmountOutOfRange, http.StatusBadRequest, "amount outside the accepted range"},
	{loanDomain.ErrRateTooHigh, http.StatusBadRequest, "rate above 10000 basis points"},
	{loanDomain.ErrDurationInvalid, http.StatusBadRequest, "duration must be between 1 second and 365 days"},
	{loanDomain.ErrNoValueSent, http.StatusBadRequest, "sent value must be positive"},
	{loanDomain.ErrRepaymentTooSmall, http.StatusBadRequest, "sent value below the amount owed"},
	{loanDomain.ErrNotPrivate, http.StatusBadRequest, "loan is not private"},
	{settlement.ErrNoValue, http.StatusBadRequest, "sent value must be positive"},
}

// domainError maps sentinel errors onto HTTP statuses. Anything outside the
// table is an internal fault and stays opaque to the client.
func domainError(c echo.Context, err error) error {
	for _, m := range errStatuses {
		if errors.Is(err, m.target) {
			return c.JSON(m.status, ErrorResponse{Error: m.message})
		}
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
