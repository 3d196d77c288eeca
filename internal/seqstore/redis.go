package seqstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultMaxRetries = 5

// RedisStore keeps each scope's map as a JSON string under <prefix>:<scope>.
// Update uses WATCH/MULTI so a concurrent writer forces a retry instead of a
// lost update.
type RedisStore struct {
	rdb        *redis.Client
	prefix     string
	maxRetries int
}

// NewRedisStore stores maps under prefix (default "ondc:seq"), retrying a
// lost WATCH up to maxRetries times.
func NewRedisStore(rdb *redis.Client, prefix string, maxRetries int) *RedisStore {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	if prefix == "" {
		prefix = "ondc:seq"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, maxRetries: maxRetries}
}

func (r *RedisStore) key(scope string) string {
	return r.prefix + ":" + SanitizeScope(scope)
}

func (r *RedisStore) Load(ctx context.Context, scope string) (Timestamps, error) {
	raw, err := r.rdb.Get(ctx, r.key(scope)).Bytes()
	return decodeRedis(raw, err)
}

func (r *RedisStore) Update(ctx context.Context, scope string, fn func(Timestamps) error) (Timestamps, error) {
	key := r.key(scope)
	var out Timestamps

	txf := func(tx *redis.Tx) error {
		ts, err := decodeRedis(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		if err := fn(ts); err != nil {
			return err
		}
		data, err := json.Marshal(ts)
		if err != nil {
			return err
		}
		// redis/go-redis/v9: TxPipelined queues SET inside MULTI/EXEC; EXEC
		// fails with TxFailedErr if the watched key changed since GET.
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			out = ts
		}
		return err
	}

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out.Clone(), nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			zap.S().Debugf("seqstore: redis key %s changed during update, retry %d", key, attempt+1)
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: key %s after %d attempts", ErrConflict, key, r.maxRetries)
}

func decodeRedis(raw []byte, err error) (Timestamps, error) {
	if errors.Is(err, redis.Nil) {
		return Timestamps{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("seqstore: redis get: %w", err)
	}
	ts := Timestamps{}
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil, fmt.Errorf("seqstore: decode redis value: %w", err)
	}
	return ts, nil
}
