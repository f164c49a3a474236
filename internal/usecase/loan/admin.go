package loan

import (
	"context"

	domainBorrower "lendledger/internal/domain/borrower"
	"lendledger/internal/settlement"
)

// EmergencySweep drains the escrow account to the administrative identity
// and reports the amount moved. A zero balance sweeps nothing.
func (u *Usecase) EmergencySweep(ctx context.Context, caller string) (uint64, error) {
	if caller != u.admin {
		return 0, domainBorrower.ErrNotAdmin
	}
	bal, err := u.gateway.Balance(ctx, settlement.EscrowAccount)
	if err != nil {
		return 0, err
	}
	if bal == 0 {
		return 0, nil
	}
	if err := u.gateway.Transfer(ctx, settlement.EscrowAccount, u.admin, bal); err != nil {
		return 0, err
	}
	return bal, nil
}
