package anchor

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSource stores confirmed orders under <prefix>:<transaction_id>.
type RedisSource struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisSource creates an anchor source backed by Redis.
func NewRedisSource(rdb *redis.Client, prefix string) *RedisSource {
	if prefix == "" {
		prefix = "ondc:on_confirm"
	}
	return &RedisSource{rdb: rdb, prefix: prefix}
}

func (r *RedisSource) key(transactionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, transactionID)
}

// Get returns the on_confirm recorded for transactionID.
func (r *RedisSource) Get(ctx context.Context, transactionID string) (*Anchor, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("%w: empty transaction id", ErrNotFound)
	}
	// redis.Nil means nothing was confirmed for this transaction.
	raw, err := r.rdb.Get(ctx, r.key(transactionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, transactionID)
	}
	if err != nil {
		return nil, fmt.Errorf("anchor: redis get: %w", err)
	}
	return Parse(raw)
}

// Put stores raw under its own context.transaction_id. TTL 0, no expiry.
func (r *RedisSource) Put(ctx context.Context, raw []byte) (*Anchor, error) {
	a, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if a.TransactionID == "" {
		return nil, errors.New("anchor: on_confirm context has no transaction_id")
	}
	if err := r.rdb.Set(ctx, r.key(a.TransactionID), raw, 0).Err(); err != nil {
		return nil, fmt.Errorf("anchor: redis set: %w", err)
	}
	return a, nil
}
