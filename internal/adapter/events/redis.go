package events

import (
	"context"
	"encoding/json"

	"lendledger/internal/domain/event"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher fans committed ledger events out on a pub/sub channel.
// Offline subscribers miss events; the ledger rows stay the source of
// truth.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: channel}
}

func (p *RedisPublisher) Emit(ctx context.Context, e event.Envelope) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.rdb.Publish(ctx, p.channel, payload).Err()
}

var _ event.Sink = (*RedisPublisher)(nil)
