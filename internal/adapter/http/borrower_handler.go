package http

import (
	"net/http"

	"lendledger/internal/usecase/borrower"
	"lendledger/pkg/identity"

	"github.com/labstack/echo/v4"
)

type BorrowerHandler struct{ uc *borrower.Usecase }

func NewBorrowerHandler(uc *borrower.Usecase) *BorrowerHandler { return &BorrowerHandler{uc: uc} }

type registerReq struct {
	CreditScore uint64 `json:"credit_score" validate:"required"`
	MakePublic  bool   `json:"make_public"`
}

// Register creates the caller's profile with a sealed credit score.
func (h *BorrowerHandler) Register(c echo.Context) error {
	caller, ok := actor(c)
	if !ok {
		return noActor(c)
	}
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Register(c.Request().Context(), borrower.RegisterInput{
		Identity:    caller,
		CreditScore: req.CreditScore,
		MakePublic:  req.MakePublic,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *BorrowerHandler) Get(c echo.Context) error {
	ident := c.Param("identity")
	if !identity.IsValid(ident) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid identity path param"})
	}
	dto, err := h.uc.Get(c.Request().Context(), ident)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// RevealScore discloses the sealed score to the calling viewer, subject to
// the grant table.
func (h *BorrowerHandler) RevealScore(c echo.Context) error {
	viewer, ok := actor(c)
	if !ok {
		return noActor(c)
	}
	ident := c.Param("identity")
	if !identity.IsValid(ident) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid identity path param"})
	}
	score, err := h.uc.RevealScore(c.Request().Context(), ident, viewer)
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"identity":     ident,
		"credit_score": score,
	})
}

func (h *BorrowerHandler) Pause(c echo.Context) error   { return h.setActive(c, false) }
func (h *BorrowerHandler) Unpause(c echo.Context) error { return h.setActive(c, true) }

func (h *BorrowerHandler) setActive(c echo.Context, active bool) error {
	caller, ok := actor(c)
	if !ok {
		return noActor(c)
	}
	ident := c.Param("identity")
	if !identity.IsValid(ident) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid identity path param"})
	}
	var err error
	if active {
		err = h.uc.Unpause(c.Request().Context(), caller, ident)
	} else {
		err = h.uc.Pause(c.Request().Context(), caller, ident)
	}
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"identity":  ident,
		"is_active": active,
	})
}
