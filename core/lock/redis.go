package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// RedisLocker is a Locker shared by every process using the same Redis.
type RedisLocker struct {
	rdb       redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// NewRedisLocker creates a RedisLocker. An empty prefix becomes "lock:".
func NewRedisLocker(rdb redis.UniversalClient, keyPrefix string, ttl time.Duration) *RedisLocker {
	if keyPrefix == "" {
		keyPrefix = "lock:"
	}
	return &RedisLocker{rdb: rdb, keyPrefix: keyPrefix, ttl: ttl}
}

// Acquire implements Locker with SET NX and a random token.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (Lock, error) {
	lockKey := l.keyPrefix + key
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLockNotAcquired
	}
	return &redisLock{rdb: l.rdb, key: lockKey, token: token}, nil
}

// Close closes the underlying Redis client.
func (l *RedisLocker) Close() error {
	return l.rdb.Close()
}

type redisLock struct {
	rdb   redis.UniversalClient
	key   string
	token string
}

func (r *redisLock) Release(ctx context.Context) error {
	deleted, err := releaseScript.Run(ctx, r.rdb, []string{r.key}, r.token).Int64()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrLockNotHeld
	}
	return nil
}
