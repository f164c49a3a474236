package settlement

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// transferScript checks the source balance and moves the amount in one
// atomic step, so concurrent transfers can never overdraw an account.
var transferScript = redis.NewScript(`
local bal = tonumber(redis.call("GET", KEYS[1]) or "0")
local amount = tonumber(ARGV[1])
if bal < amount then
  return 0
end
redis.call("DECRBY", KEYS[1], amount)
redis.call("INCRBY", KEYS[2], amount)
return 1
`)

// RedisVault stores balances in Redis under vault:<identity>.
type RedisVault struct {
	rdb *redis.Client
}

func NewRedisVault(rdb *redis.Client) *RedisVault {
	return &RedisVault{rdb: rdb}
}

func (v *RedisVault) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if amount == 0 {
		return ErrNoValue
	}
	ok, err := transferScript.Run(ctx, v.rdb, []string{balanceKey(from), balanceKey(to)}, int64(amount)).Int64()
	if err != nil {
		return err
	}
	if ok == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

func (v *RedisVault) Deposit(ctx context.Context, id string, amount uint64) error {
	if amount == 0 {
		return ErrNoValue
	}
	return v.rdb.IncrBy(ctx, balanceKey(id), int64(amount)).Err()
}

func (v *RedisVault) Balance(ctx context.Context, id string) (uint64, error) {
	n, err := v.rdb.Get(ctx, balanceKey(id)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func balanceKey(id string) string { return "vault:" + id }
