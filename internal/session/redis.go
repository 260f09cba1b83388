package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/and161185/socialclient/internal/errs"
)

// redisCmdable is the subset of *redis.Client used by Redis; tests substitute a fake.
type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis stores slots as plain keys under a prefix, without expiry.
type Redis struct {
	rdb    redisCmdable
	prefix string
}

var _ Slot = (*Redis)(nil)

// NewRedis connects to redisURL and pings it. The returned func closes the client.
func NewRedis(ctx context.Context, redisURL, prefix string) (*Redis, func() error, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, nil, err
	}
	opt.PoolSize = 2
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return NewRedisWithClient(client, prefix), client.Close, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(c redisCmdable, prefix string) *Redis {
	return &Redis{rdb: c, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.ErrNotFound
	}
	return b, err
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.prefix+key).Err()
}
