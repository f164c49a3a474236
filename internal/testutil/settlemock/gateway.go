package settlemock

import (
	"context"
)

// Gateway is a function-backed mock that satisfies settlement.Gateway.
type Gateway struct {
	TransferFn func(ctx context.Context, from, to string, amount uint64) error
	DepositFn  func(ctx context.Context, id string, amount uint64) error
	BalanceFn  func(ctx context.Context, id string) (uint64, error)
}

func (m *Gateway) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if m.TransferFn != nil {
		return m.TransferFn(ctx, from, to, amount)
	}
	return nil
}

func (m *Gateway) Deposit(ctx context.Context, id string, amount uint64) error {
	if m.DepositFn != nil {
		return m.DepositFn(ctx, id, amount)
	}
	return nil
}

func (m *Gateway) Balance(ctx context.Context, id string) (uint64, error) {
	if m.BalanceFn != nil {
		return m.BalanceFn(ctx, id)
	}
	return 0, context.Canceled
}
