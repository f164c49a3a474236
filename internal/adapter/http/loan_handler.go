package http

import (
	"context"
	"net/http"

	"lendledger/internal/usecase/loan"
	"lendledger/pkg/identity"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type requestLoanReq struct {
	Amount          uint64 `json:"amount"`
	RateBps         uint64 `json:"rate_bps"`
	DurationSeconds uint64 `json:"duration_seconds"`
	Private         bool   `json:"private"`
}

// RequestLoan opens a loan for the calling borrower. Term bounds are a
// domain concern; the handler only shapes the envelope.
func (h *LoanHandler) RequestLoan(c echo.Context) error {
	caller, ok := actor(c)
	if !ok {
		return noActor(c)
	}
	var req requestLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := h.uc.Request(c.Request().Context(), loan.RequestInput{
		Borrower:        caller,
		Amount:          req.Amount,
		RateBps:         req.RateBps,
		DurationSeconds: req.DurationSeconds,
		Private:         req.Private,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, ok := loanIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	dto, err := h.uc.PublicInfo(c.Request().Context(), id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Terms discloses the sealed amount and rate to the calling viewer.
func (h *LoanHandler) Terms(c echo.Context) error {
	viewer, ok := actor(c)
	if !ok {
		return noActor(c)
	}
	id, ok := loanIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	dto, err := h.uc.Terms(c.Request().Context(), id, viewer)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Repayment discloses principal+interest to the calling viewer.
func (h *LoanHandler) Repayment(c echo.Context) error {
	viewer, ok := actor(c)
	if !ok {
		return noActor(c)
	}
	id, ok := loanIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	owed, err := h.uc.RepaymentDue(c.Request().Context(), id, viewer)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"loan_id":       id,
		"repayment_due": owed,
	})
}

type sentValueReq struct {
	SentValue uint64 `json:"sent_value"`
}

func (h *LoanHandler) Fund(c echo.Context) error {
	caller, ok := actor(c)
	if !ok {
		return noActor(c)
	}
	id, ok := loanIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	var req sentValueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := h.uc.Fund(c.Request().Context(), caller, id, req.SentValue)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	caller, ok := actor(c)
	if !ok {
		return noActor(c)
	}
	id, ok := loanIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	var req sentValueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	dto, err := h.uc.Repay(c.Request().Context(), caller, id, req.SentValue)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Default(c echo.Context) error {
	caller, ok := actor(c)
	if !ok {
		return noActor(c)
	}
	id, ok := loanIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	dto, err := h.uc.MarkDefault(c.Request().Context(), caller, id)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type grantViewReq struct {
	Viewer string `json:"viewer" validate:"required,hex32"`
}

// GrantView lets the borrower of a private loan open its terms to a viewer.
func (h *LoanHandler) GrantView(c echo.Context) error {
	caller, ok := actor(c)
	if !ok {
		return noActor(c)
	}
	id, ok := loanIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id path param"})
	}
	var req grantViewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.uc.GrantView(c.Request().Context(), caller, id, req.Viewer); err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"loan_id": id,
		"viewer":  req.Viewer,
	})
}

func (h *LoanHandler) BorrowerLoans(c echo.Context) error {
	return h.loanList(c, h.uc.BorrowerLoans)
}

func (h *LoanHandler) LenderLoans(c echo.Context) error {
	return h.loanList(c, h.uc.LenderLoans)
}

func (h *LoanHandler) loanList(c echo.Context, list func(ctx context.Context, identity string) ([]uint64, error)) error {
	ident := c.Param("identity")
	if !identity.IsValid(ident) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid identity path param"})
	}
	ids, err := list(c.Request().Context(), ident)
	if err != nil {
		return domainError(c, err)
	}
	if ids == nil {
		ids = []uint64{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"identity": ident,
		"loan_ids": ids,
		"count":    len(ids),
	})
}

// Sweep drains the escrow account to the admin caller.
func (h *LoanHandler) Sweep(c echo.Context) error {
	caller, ok := actor(c)
	if !ok {
		return noActor(c)
	}
	swept, err := h.uc.EmergencySweep(c.Request().Context(), caller)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"swept": swept})
}
