package loan

import (
	"context"
	"errors"
	"log"
	"time"

	"lendledger/internal/confidential"
	domainBorrower "lendledger/internal/domain/borrower"
	"lendledger/internal/domain/event"
	"lendledger/internal/domain/grant"
	domain "lendledger/internal/domain/loan"
	"lendledger/internal/domain/uow"
	"lendledger/internal/settlement"

	"gorm.io/gorm"
)

type Usecase struct {
	loanRepo domain.Repository
	uow      uow.UnitOfWork
	keeper   *confidential.Keeper
	gateway  settlement.Gateway
	admin    string
	sink     event.Sink
	now      func() time.Time
}

// NewUsecase: pass the loan repo for lock-free queries and a UoW for the
// lifecycle transitions. sink may be nil.
func NewUsecase(loans domain.Repository, tx uow.UnitOfWork, keeper *confidential.Keeper, gw settlement.Gateway, admin string, sink event.Sink) *Usecase {
	return &Usecase{
		loanRepo: loans,
		uow:      tx,
		keeper:   keeper,
		gateway:  gw,
		admin:    admin,
		sink:     sink,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Request opens a loan in the requested state. The auto-increment id names
// the term fields, so the row is inserted first and the sealed terms are
// attached in the same transaction.
func (u *Usecase) Request(ctx context.Context, in RequestInput) (*PublicInfoDTO, error) {
	var dto *PublicInfoDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Borrowers.GetByIdentityForUpdate(ctx, in.Borrower)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Unregistered borrowers are simply inactive ones.
				return domainBorrower.ErrInactive
			}
			return err
		}
		if !p.IsActive {
			return domainBorrower.ErrInactive
		}
		if in.Amount < domain.MinAmount || in.Amount > domain.MaxAmount {
			return domain.ErrAmountOutOfRange
		}
		if in.RateBps > domain.MaxRateBps {
			return domain.ErrRateTooHigh
		}
		if in.DurationSeconds == 0 || time.Duration(in.DurationSeconds)*time.Second > domain.MaxDuration {
			return domain.ErrDurationInvalid
		}

		visibility := domain.VisibilityPublic
		if in.Private {
			visibility = domain.VisibilityPrivate
		}
		l := &domain.Loan{
			Borrower:        in.Borrower,
			DurationSeconds: in.DurationSeconds,
			Status:          domain.StatusRequested,
			Visibility:      visibility,
			CreatedAt:       u.now(),
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}

		amountField := confidential.LoanAmountField(l.ID)
		rateField := confidential.LoanRateField(l.ID)
		amountCT, err := u.keeper.Encrypt(amountField, in.Amount)
		if err != nil {
			return err
		}
		rateCT, err := u.keeper.Encrypt(rateField, in.RateBps)
		if err != nil {
			return err
		}
		if l.EncAmount, err = confidential.MarshalField(amountCT); err != nil {
			return err
		}
		if l.EncRateBps, err = confidential.MarshalField(rateCT); err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		p.TotalLoans++
		if err := r.Borrowers.Save(ctx, p); err != nil {
			return err
		}

		eng := grant.NewEngine(r.Grants)
		for _, f := range []confidential.FieldID{amountField, rateField} {
			if err := eng.Grant(ctx, f, in.Borrower); err != nil {
				return err
			}
			if !in.Private {
				if err := eng.GrantPublic(ctx, f); err != nil {
					return err
				}
			}
		}

		dto = toPublicInfo(l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.emit(ctx, event.LoanRequested{LoanID: dto.LoanID, Borrower: in.Borrower, Private: in.Private})
	return dto, nil
}

// Fund moves a requested loan to funded. The lender's value travels first;
// a failed transfer aborts the transition with the row untouched.
func (u *Usecase) Fund(ctx context.Context, lender string, loanID uint64, sentValue uint64) (*PublicInfoDTO, error) {
	var dto *PublicInfoDTO
	var due time.Time
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Status != domain.StatusRequested {
			return domain.ErrNotRequestable
		}
		if lender == l.Borrower {
			return domain.ErrSelfFunding
		}
		if sentValue == 0 {
			return domain.ErrNoValueSent
		}
		if l.Visibility == domain.VisibilityPrivate && lender != u.admin {
			ok, err := termsGranted(ctx, grant.NewEngine(r.Grants), l.ID, lender)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrNotAuthorizedToView
			}
		}

		if err := u.gateway.Transfer(ctx, lender, l.Borrower, sentValue); err != nil {
			return err
		}

		now := u.now()
		d := now.Add(l.Duration())
		l.Lender = &lender
		l.FundedAt = &now
		l.DueAt = &d
		l.Status = domain.StatusFunded
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		// The lender now holds the terms they funded.
		eng := grant.NewEngine(r.Grants)
		if err := eng.Grant(ctx, confidential.LoanAmountField(l.ID), lender); err != nil {
			return err
		}
		if err := eng.Grant(ctx, confidential.LoanRateField(l.ID), lender); err != nil {
			return err
		}

		due = d
		dto = toPublicInfo(l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.emit(ctx, event.LoanFunded{LoanID: loanID, Lender: lender, DueAt: due})
	return dto, nil
}

// Repay settles a funded loan on or before its due date. The sent value is
// checked against principal+interest without decrypting either term.
func (u *Usecase) Repay(ctx context.Context, caller string, loanID uint64, sentValue uint64) (*PublicInfoDTO, error) {
	var dto *PublicInfoDTO
	var borrowerID string
	var scoreApplied bool
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Status != domain.StatusFunded {
			return domain.ErrNotFunded
		}
		if caller != l.Borrower {
			return domain.ErrNotBorrower
		}
		if u.now().After(*l.DueAt) {
			return domain.ErrOverdue
		}
		if sentValue == 0 {
			return domain.ErrNoValueSent
		}
		amountCT, rateCT, err := loanTerms(l)
		if err != nil {
			return err
		}
		if u.keeper.CompareRepayment(sentValue, amountCT, rateCT) < 0 {
			return domain.ErrRepaymentTooSmall
		}

		if err := u.gateway.Transfer(ctx, l.Borrower, *l.Lender, sentValue); err != nil {
			return err
		}

		l.Status = domain.StatusRepaid
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		p, err := r.Borrowers.GetByIdentityForUpdate(ctx, l.Borrower)
		if err != nil {
			return err
		}
		p.SuccessfulRepayments++
		if scoreApplied, err = u.adjustScore(p, true); err != nil {
			return err
		}
		if err := r.Borrowers.Save(ctx, p); err != nil {
			return err
		}

		borrowerID = l.Borrower
		dto = toPublicInfo(l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.emit(ctx, event.LoanRepaid{LoanID: loanID, Borrower: borrowerID})
	u.emit(ctx, event.CreditScoreUpdated{Identity: borrowerID, Reason: event.ReasonRepayment, Applied: scoreApplied})
	return dto, nil
}

// MarkDefault records a missed repayment once the due date has passed.
// No value moves; the borrower's score takes the penalty.
func (u *Usecase) MarkDefault(ctx context.Context, caller string, loanID uint64) (*PublicInfoDTO, error) {
	var dto *PublicInfoDTO
	var borrowerID, lenderID string
	var scoreApplied bool
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if l.Status != domain.StatusFunded {
			return domain.ErrNotFunded
		}
		if caller != *l.Lender && caller != u.admin {
			return domain.ErrNotLender
		}
		if !u.now().After(*l.DueAt) {
			return domain.ErrNotYetOverdue
		}

		l.Status = domain.StatusDefaulted
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		p, err := r.Borrowers.GetByIdentityForUpdate(ctx, l.Borrower)
		if err != nil {
			return err
		}
		var aerr error
		if scoreApplied, aerr = u.adjustScore(p, false); aerr != nil {
			return aerr
		}
		if err := r.Borrowers.Save(ctx, p); err != nil {
			return err
		}

		borrowerID, lenderID = l.Borrower, *l.Lender
		dto = toPublicInfo(l)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.emit(ctx, event.LoanDefaulted{LoanID: loanID, Lender: lenderID})
	u.emit(ctx, event.CreditScoreUpdated{Identity: borrowerID, Reason: event.ReasonDefault, Applied: scoreApplied})
	return dto, nil
}

// GrantView lets the borrower of a private loan open its terms to a viewer.
// Idempotent; grants survive terminal states.
func (u *Usecase) GrantView(ctx context.Context, caller string, loanID uint64, viewer string) error {
	return u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domain.Loan) error {
		if caller != l.Borrower {
			return domain.ErrNotBorrower
		}
		if l.Visibility != domain.VisibilityPrivate {
			return domain.ErrNotPrivate
		}
		eng := grant.NewEngine(r.Grants)
		if err := eng.Grant(ctx, confidential.LoanAmountField(l.ID), viewer); err != nil {
			return err
		}
		return eng.Grant(ctx, confidential.LoanRateField(l.ID), viewer)
	})
}

// adjustScore applies the repayment reward or default penalty to the sealed
// score. The candidate is committed only when it stays inside the adjusted
// band; out-of-band candidates leave the score untouched and report
// applied=false.
func (u *Usecase) adjustScore(p *domainBorrower.Profile, reward bool) (applied bool, err error) {
	field := confidential.ScoreField(p.Identity)
	ct, err := confidential.UnmarshalField(field, p.EncScore)
	if err != nil {
		return false, err
	}

	var cand *confidential.Ciphertext
	if reward {
		cand = u.keeper.AddPlain(ct, domainBorrower.RepayReward)
		if u.keeper.Compare(cand, domainBorrower.MaxAdjusted) > 0 {
			return false, nil
		}
	} else {
		cand = u.keeper.SubPlain(ct, domainBorrower.DefaultPenalty)
		if u.keeper.Compare(cand, domainBorrower.MinAdjusted) < 0 {
			return false, nil
		}
	}

	if p.EncScore, err = confidential.MarshalField(cand); err != nil {
		return false, err
	}
	return true, nil
}

// termsGranted reports whether viewer holds grants on both term fields of
// the loan. A grant on only one field does not open the loan.
func termsGranted(ctx context.Context, eng *grant.Engine, loanID uint64, viewer string) (bool, error) {
	for _, f := range []confidential.FieldID{confidential.LoanAmountField(loanID), confidential.LoanRateField(loanID)} {
		ok, err := eng.IsGranted(ctx, f, viewer)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// loanTerms reopens the stored term ciphertexts for a loan row.
func loanTerms(l *domain.Loan) (amount, rate *confidential.Ciphertext, err error) {
	if amount, err = confidential.UnmarshalField(confidential.LoanAmountField(l.ID), l.EncAmount); err != nil {
		return nil, nil, err
	}
	if rate, err = confidential.UnmarshalField(confidential.LoanRateField(l.ID), l.EncRateBps); err != nil {
		return nil, nil, err
	}
	return amount, rate, nil
}

func (u *Usecase) emit(ctx context.Context, p event.Payload) {
	if u.sink == nil {
		return
	}
	if err := u.sink.Emit(ctx, event.Wrap(p)); err != nil {
		log.Printf("event %s dropped: %v", p.Kind(), err)
	}
}

func toPublicInfo(l *domain.Loan) *PublicInfoDTO {
	return &PublicInfoDTO{
		LoanID:          l.ID,
		Borrower:        l.Borrower,
		Lender:          l.Lender,
		DurationSeconds: l.DurationSeconds,
		Status:          string(l.Status),
		Visibility:      string(l.Visibility),
		CreatedAt:       l.CreatedAt,
		FundedAt:        l.FundedAt,
		DueAt:           l.DueAt,
	}
}
