package loan

import (
	"context"
	"errors"

	domain "lendledger/internal/domain/loan"

	"gorm.io/gorm"
)

// PublicInfo returns the unrestricted view of a loan. Term amounts are never
// part of it.
func (u *Usecase) PublicInfo(ctx context.Context, loanID uint64) (*PublicInfoDTO, error) {
	l, err := u.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	return toPublicInfo(l), nil
}

// Terms discloses the sealed amount and rate to a granted viewer.
func (u *Usecase) Terms(ctx context.Context, loanID uint64, viewer string) (*TermsDTO, error) {
	l, err := u.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	amountCT, rateCT, err := loanTerms(l)
	if err != nil {
		return nil, err
	}
	amount, err := u.keeper.Reveal(ctx, amountCT, viewer)
	if err != nil {
		return nil, err
	}
	rate, err := u.keeper.Reveal(ctx, rateCT, viewer)
	if err != nil {
		return nil, err
	}
	return &TermsDTO{LoanID: l.ID, Amount: amount, RateBps: rate}, nil
}

// RepaymentDue discloses principal+interest to a viewer granted on both term
// fields.
func (u *Usecase) RepaymentDue(ctx context.Context, loanID uint64, viewer string) (uint64, error) {
	l, err := u.getLoan(ctx, loanID)
	if err != nil {
		return 0, err
	}
	amountCT, rateCT, err := loanTerms(l)
	if err != nil {
		return 0, err
	}
	return u.keeper.RepaymentAmount(ctx, amountCT, rateCT, viewer)
}

func (u *Usecase) BorrowerLoans(ctx context.Context, identity string) ([]uint64, error) {
	return u.loanRepo.IDsByBorrower(ctx, identity)
}

func (u *Usecase) LenderLoans(ctx context.Context, identity string) ([]uint64, error) {
	return u.loanRepo.IDsByLender(ctx, identity)
}

func (u *Usecase) getLoan(ctx context.Context, loanID uint64) (*domain.Loan, error) {
	l, err := u.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}
