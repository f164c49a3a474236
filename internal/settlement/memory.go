package settlement

import (
	"context"
	"sync"
)

// MemoryVault keeps balances in process memory. Suitable for single-node
// runs and tests.
type MemoryVault struct {
	mu       sync.Mutex
	balances map[string]uint64
}

func NewMemoryVault() *MemoryVault {
	return &MemoryVault{balances: make(map[string]uint64)}
}

func (v *MemoryVault) Transfer(_ context.Context, from, to string, amount uint64) error {
	if amount == 0 {
		return ErrNoValue
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.balances[from] < amount {
		return ErrInsufficientFunds
	}
	v.balances[from] -= amount
	v.balances[to] += amount
	return nil
}

func (v *MemoryVault) Deposit(_ context.Context, id string, amount uint64) error {
	if amount == 0 {
		return ErrNoValue
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.balances[id] += amount
	return nil
}

func (v *MemoryVault) Balance(_ context.Context, id string) (uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balances[id], nil
}
