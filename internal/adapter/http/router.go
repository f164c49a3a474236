package http

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// NewRouter assembles the echo engine every deployment serves: request
// validator, base middleware, and the full route table. Extra middleware
// (the idempotency layer in the shipped binary) runs after Logger/Recover.
func NewRouter(bh *BorrowerHandler, lh *LoanHandler, extra ...echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	e.Use(echomw.Logger(), echomw.Recover())
	for _, m := range extra {
		e.Use(m)
	}

	e.GET("/health", Health)

	e.POST("/borrowers", bh.Register)
	e.GET("/borrowers/:identity", bh.Get)
	e.GET("/borrowers/:identity/score", bh.RevealScore)
	e.GET("/borrowers/:identity/loans", lh.BorrowerLoans)
	e.GET("/lenders/:identity/loans", lh.LenderLoans)

	e.POST("/loans", lh.RequestLoan)
	e.GET("/loans/:loan_id", lh.GetLoan)
	e.GET("/loans/:loan_id/terms", lh.Terms)
	e.GET("/loans/:loan_id/repayment", lh.Repayment)
	e.POST("/loans/:loan_id/fund", lh.Fund)
	e.POST("/loans/:loan_id/repay", lh.Repay)
	e.POST("/loans/:loan_id/default", lh.Default)
	e.POST("/loans/:loan_id/grants", lh.GrantView)

	e.POST("/admin/borrowers/:identity/pause", bh.Pause)
	e.POST("/admin/borrowers/:identity/unpause", bh.Unpause)
	e.POST("/admin/sweep", lh.Sweep)

	return e
}
