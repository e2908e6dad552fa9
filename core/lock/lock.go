package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockNotAcquired is returned when another holder owns the key.
	ErrLockNotAcquired = errors.New("lock not acquired")
	// ErrLockNotHeld is returned when releasing a lock that expired or was taken over.
	ErrLockNotHeld = errors.New("lock not held")
)

const (
	// BackendMemory guards runs within a single process.
	BackendMemory = "memory"
	// BackendRedis guards runs across every instance sharing the Redis server.
	BackendRedis = "redis"
)

// Locker hands out non-blocking exclusive locks by key.
type Locker interface {
	// Acquire takes the lock for key or fails with ErrLockNotAcquired without waiting.
	Acquire(ctx context.Context, key string) (Lock, error)
}

// Lock is a held lock.
type Lock interface {
	// Release gives the lock back. Releasing twice returns ErrLockNotHeld.
	Release(ctx context.Context) error
}

// Config holds configuration for the run guard.
type Config struct {
	// Backend is memory or redis.
	Backend string `mapstructure:"backend" default:"memory"`
	// RedisAddr is the host:port of the Redis server.
	RedisAddr string `mapstructure:"redis_addr" default:"localhost:6379"`
	// RedisPassword authenticates against Redis.
	RedisPassword string `mapstructure:"redis_password" default:""`
	// RedisDB selects the Redis database.
	RedisDB int `mapstructure:"redis_db" default:"0"`
	// KeyPrefix namespaces lock keys in Redis.
	KeyPrefix string `mapstructure:"key_prefix" default:"reconciler:lock:"`
	// TTLSeconds bounds how long a crashed holder can keep a Redis lock.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"900"`
}

// TTL returns the Redis lock expiry, defaulting to 15 minutes.
func (c Config) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// New builds the configured Locker. The Redis backend is pinged before use.
func New(ctx context.Context, cfg Config) (Locker, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryLocker(), nil
	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisLocker(rdb, cfg.KeyPrefix, cfg.TTL()), nil
	default:
		return nil, fmt.Errorf("unknown lock backend %q", cfg.Backend)
	}
}
