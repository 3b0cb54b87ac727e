package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// KeyLocker grants short exclusive leases on string keys. The booking engine
// uses it to serialize reservation attempts on a (tutor, date, slot) key.
type KeyLocker interface {
	// Acquire blocks until the lease is held or ctx expires. The returned
	// release func is safe to call more than once.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// RedisKeyLocker implements KeyLocker with SET NX leases so exclusion holds
// across every instance of the service sharing the Redis.
type RedisKeyLocker struct {
	Client *redis.Client
}

// releaseScript deletes the lease only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

const lockRetryDelay = 20 * time.Millisecond

func NewRedisKeyLocker(client *redis.Client) *RedisKeyLocker {
	return &RedisKeyLocker{Client: client}
}

func (l *RedisKeyLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.New().String()
	for {
		ok, err := l.Client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lease on %s: %w", key, err)
		}
		if ok {
			release := func() {
				relCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_, _ = releaseScript.Run(relCtx, l.Client, []string{key}, token).Result()
			}
			return release, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for lease on %s: %w", key, ctx.Err())
		case <-time.After(lockRetryDelay):
		}
	}
}
