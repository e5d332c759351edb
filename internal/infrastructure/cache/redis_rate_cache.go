package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	appcurrency "github.com/erp/ledger/internal/application/currency"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// RedisRateCache caches resolved exchange rates in Redis so rate lookups are
// shared across instances.
type RedisRateCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRateCache creates a new Redis-backed rate cache
func NewRedisRateCache(cfg RedisConfig, ttl time.Duration) (*RedisRateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRateCacheWithClient(client, "", ttl), nil
}

// NewRedisRateCacheWithClient creates a cache with an existing Redis client
func NewRedisRateCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisRateCache {
	if keyPrefix == "" {
		keyPrefix = "fx:rate:"
	}
	if ttl <= 0 {
		ttl = defaultRateTTL
	}
	return &RedisRateCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Get returns the cached rate or ErrCacheMiss
func (c *RedisRateCache) Get(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (decimal.Decimal, error) {
	val, err := c.client.Get(ctx, c.keyPrefix+rateKey(tenantID, from, to, date)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return decimal.Decimal{}, appcurrency.ErrCacheMiss
		}
		return decimal.Decimal{}, fmt.Errorf("failed to read rate from cache: %w", err)
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		// A corrupt entry behaves like a miss so resolution falls through
		// to the repository.
		return decimal.Decimal{}, appcurrency.ErrCacheMiss
	}
	return rate, nil
}

// Set stores a resolved rate with the configured TTL
func (c *RedisRateCache) Set(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time, rate decimal.Decimal) error {
	key := c.keyPrefix + rateKey(tenantID, from, to, date)
	if err := c.client.Set(ctx, key, rate.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache rate: %w", err)
	}
	return nil
}
