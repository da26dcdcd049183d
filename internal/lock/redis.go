package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultLockTTL   = 10 * time.Second
	defaultLockRetry = 25 * time.Millisecond
	releaseTimeout   = 2 * time.Second
)

// only the holder's token may delete the key
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisLocker struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
	log    *zap.Logger
}

type RedisOption func(*redisLocker)

func WithTTL(ttl time.Duration) RedisOption {
	return func(l *redisLocker) { l.ttl = ttl }
}

func WithRetryInterval(d time.Duration) RedisOption {
	return func(l *redisLocker) { l.retry = d }
}

func WithLogger(log *zap.Logger) RedisOption {
	return func(l *redisLocker) { l.log = log }
}

// NewRedisLocker returns a Locker shared by every process using the same Redis.
// Keys expire after the TTL so a crashed holder cannot wedge an account. The
// TTL is not renewed while the lock is held, so a critical section that runs
// longer than the TTL loses mutual exclusion; releasing such a lock logs a
// warning. Keep the TTL well above the longest order transaction.
func NewRedisLocker(rdb redis.UniversalClient, opts ...RedisOption) Locker {
	l := &redisLocker{
		rdb:    rdb,
		prefix: "orchid-shop:lock:",
		ttl:    defaultLockTTL,
		retry:  defaultLockRetry,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("acquire lock %s: %w", key, ctxErr)
			}
			return nil, fmt.Errorf("redis setnx %s: %w", fullKey, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
		case <-timer.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// the request context may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			deleted, err := releaseScript.Run(releaseCtx, l.rdb, []string{fullKey}, token).Int()
			switch {
			case err != nil:
				l.log.Error("release lock failed", zap.String("key", key), zap.Error(err))
			case deleted == 0:
				l.log.Warn("lock expired before release", zap.String("key", key), zap.Duration("ttl", l.ttl))
			}
		})
	}, nil
}
