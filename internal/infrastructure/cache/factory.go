package cache

import (
	"fmt"

	appcurrency "github.com/erp/ledger/internal/application/currency"
	"github.com/erp/ledger/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RateCacheFactory creates rate caches based on configuration
type RateCacheFactory struct {
	cacheConfig config.CacheConfig
	redisConfig config.RedisConfig
	logger      *zap.Logger
}

// RateCacheFactoryOption is a functional option for configuring the factory
type RateCacheFactoryOption func(*RateCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RateCacheFactoryOption {
	return func(f *RateCacheFactory) {
		f.logger = logger
	}
}

// NewRateCacheFactory creates a new factory
func NewRateCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...RateCacheFactoryOption) *RateCacheFactory {
	f := &RateCacheFactory{
		cacheConfig: cacheCfg,
		redisConfig: redisCfg,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache creates the configured cache backend, falling back to the
// in-memory cache when Redis is unreachable.
func (f *RateCacheFactory) CreateCache() (appcurrency.RateCache, error) {
	switch f.cacheConfig.Backend {
	case "redis":
		cache, err := NewRedisRateCache(RedisConfig{
			Host:     f.redisConfig.Host,
			Port:     f.redisConfig.Port,
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		}, f.cacheConfig.RateTTL)
		if err != nil {
			f.logger.Warn("redis rate cache unavailable, using in-memory cache", zap.Error(err))
			return NewInMemoryRateCache(f.cacheConfig.RateTTL), nil
		}
		return cache, nil
	case "memory", "":
		return NewInMemoryRateCache(f.cacheConfig.RateTTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", f.cacheConfig.Backend)
	}
}
