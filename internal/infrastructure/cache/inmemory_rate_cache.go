package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	appcurrency "github.com/erp/ledger/internal/application/currency"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultRateTTL = time.Hour

// InMemoryRateCache caches resolved exchange rates in process memory. It is
// suitable for single-instance deployments and testing; distributed
// deployments should use the Redis cache so every instance sees the same
// resolved rate.
type InMemoryRateCache struct {
	mu      sync.RWMutex
	entries map[string]rateEntry
	ttl     time.Duration
}

type rateEntry struct {
	rate      decimal.Decimal
	expiresAt time.Time
}

// NewInMemoryRateCache creates a new in-memory rate cache
func NewInMemoryRateCache(ttl time.Duration) *InMemoryRateCache {
	if ttl <= 0 {
		ttl = defaultRateTTL
	}
	return &InMemoryRateCache{
		entries: make(map[string]rateEntry),
		ttl:     ttl,
	}
}

// Get returns the cached rate or ErrCacheMiss
func (c *InMemoryRateCache) Get(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (decimal.Decimal, error) {
	key := rateKey(tenantID, from, to, date)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return decimal.Decimal{}, appcurrency.ErrCacheMiss
	}
	return entry.rate, nil
}

// Set stores a resolved rate
func (c *InMemoryRateCache) Set(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time, rate decimal.Decimal) error {
	key := rateKey(tenantID, from, to, date)

	c.mu.Lock()
	c.entries[key] = rateEntry{rate: rate, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Len returns the number of live entries, for tests and stats
func (c *InMemoryRateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// rateKey builds the cache key tenant:from:to:date
func rateKey(tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", tenantID, from, to, date.Format("2006-01-02"))
}
