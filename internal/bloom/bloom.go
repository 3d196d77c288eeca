// Package bloom skips redelivered Kafka requests using a RedisBloom filter.
package bloom

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultKey       = "ondc:messages"
	DefaultErrorRate = 0.001
	DefaultCapacity  = 1_000_000
)

// Client is a redis.Cmdable that can also send raw commands such as BF.ADD.
type Client interface {
	redis.Cmdable
	Do(ctx context.Context, args ...any) *redis.Cmd
}

// Filter is a RedisBloom filter of message ids.
type Filter struct {
	client    Client
	key       string
	errorRate float64
	capacity  int64
}

// NewFilter falls back to the Default* settings for zero or out of range values.
func NewFilter(client Client, key string, errorRate float64, capacity int64) *Filter {
	if key == "" {
		key = DefaultKey
	}
	if errorRate <= 0 || errorRate >= 1 {
		errorRate = DefaultErrorRate
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Filter{client: client, key: key, errorRate: errorRate, capacity: capacity}
}

// Reserve creates the filter. An existing filter is not an error.
func (f *Filter) Reserve(ctx context.Context) {
	if err := f.client.Do(ctx, "BF.RESERVE", f.key, f.errorRate, f.capacity).Err(); err != nil {
		zap.S().Infof("bloom: reserve %s (may already exist): %v", f.key, err)
	}
}

// SeenMessage adds id and reports whether it was probably present already.
// Redis failures count as not seen so a message is never dropped for them.
func (f *Filter) SeenMessage(ctx context.Context, id string) bool {
	if f == nil || id == "" {
		return false
	}
	res := f.client.Do(ctx, "BF.ADD", f.key, id)
	if res.Err() != nil {
		zap.S().Warnf("bloom: BF.ADD error: %v", res.Err())
		return false
	}
	// BF.ADD answers 1/0 or true/false depending on the server version.
	val, err := res.Int()
	if err != nil {
		added, boolErr := res.Bool()
		if boolErr != nil {
			zap.S().Warnf("bloom: BF.ADD type error (not int or bool): %v", err)
			return false
		}
		return !added
	}
	return val == 0
}
