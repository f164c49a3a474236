package borrower

import (
	"context"
	"errors"
	"log"

	"lendledger/internal/confidential"
	domain "lendledger/internal/domain/borrower"
	"lendledger/internal/domain/event"
	"lendledger/internal/domain/grant"
	"lendledger/internal/domain/uow"

	"gorm.io/gorm"
)

type Usecase struct {
	repo   domain.Repository
	uow    uow.UnitOfWork
	keeper *confidential.Keeper
	admin  string
	sink   event.Sink
}

// NewUsecase: sink may be nil when nobody observes events.
func NewUsecase(repo domain.Repository, tx uow.UnitOfWork, keeper *confidential.Keeper, admin string, sink event.Sink) *Usecase {
	return &Usecase{repo: repo, uow: tx, keeper: keeper, admin: admin, sink: sink}
}

// Register creates the one permanent profile a borrower ever gets. The score
// is sealed before the row exists; the borrower self-grants on the score
// field, plus the wildcard when they opt into a public score.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*ProfileDTO, error) {
	if in.CreditScore < domain.MinScore || in.CreditScore > domain.MaxScore {
		return nil, domain.ErrInvalidCreditScore
	}

	var dto *ProfileDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		_, err := r.Borrowers.GetByIdentity(ctx, in.Identity)
		if err == nil {
			// Paused profiles are permanent too: still a duplicate.
			return domain.ErrAlreadyRegistered
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		field := confidential.ScoreField(in.Identity)
		ct, err := u.keeper.Encrypt(field, in.CreditScore)
		if err != nil {
			return err
		}
		blob, err := confidential.MarshalField(ct)
		if err != nil {
			return err
		}

		p := &domain.Profile{
			Identity: in.Identity,
			EncScore: blob,
			IsActive: true,
		}
		if err := r.Borrowers.Create(ctx, p); err != nil {
			return err
		}

		eng := grant.NewEngine(r.Grants)
		if err := eng.Grant(ctx, field, in.Identity); err != nil {
			return err
		}
		if in.MakePublic {
			if err := eng.GrantPublic(ctx, field); err != nil {
				return err
			}
		}

		dto = toDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.emit(ctx, event.BorrowerRegistered{Identity: in.Identity, MadePublic: in.MakePublic})
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, identity string) (*ProfileDTO, error) {
	p, err := u.repo.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return toDTO(p), nil
}

// RevealScore releases the plaintext score to viewer, subject to the grant
// engine behind the keeper.
func (u *Usecase) RevealScore(ctx context.Context, identity, viewer string) (uint64, error) {
	p, err := u.repo.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	ct, err := confidential.UnmarshalField(confidential.ScoreField(identity), p.EncScore)
	if err != nil {
		return 0, err
	}
	return u.keeper.Reveal(ctx, ct, viewer)
}

// Pause takes a borrower out of circulation; existing loans are unaffected.
func (u *Usecase) Pause(ctx context.Context, caller, identity string) error {
	return u.setActive(ctx, caller, identity, false)
}

func (u *Usecase) Unpause(ctx context.Context, caller, identity string) error {
	return u.setActive(ctx, caller, identity, true)
}

func (u *Usecase) setActive(ctx context.Context, caller, identity string, active bool) error {
	if caller != u.admin {
		return domain.ErrNotAdmin
	}
	return u.uow.WithinTx(ctx, func(r uow.Repos) error {
		p, err := r.Borrowers.GetByIdentityForUpdate(ctx, identity)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if p.IsActive == active {
			return nil
		}
		p.IsActive = active
		return r.Borrowers.Save(ctx, p)
	})
}

func (u *Usecase) emit(ctx context.Context, p event.Payload) {
	if u.sink == nil {
		return
	}
	if err := u.sink.Emit(ctx, event.Wrap(p)); err != nil {
		log.Printf("event %s dropped: %v", p.Kind(), err)
	}
}

func toDTO(p *domain.Profile) *ProfileDTO {
	return &ProfileDTO{
		Identity:             p.Identity,
		TotalLoans:           p.TotalLoans,
		SuccessfulRepayments: p.SuccessfulRepayments,
		IsActive:             p.IsActive,
		CreatedAt:            p.CreatedAt,
	}
}
