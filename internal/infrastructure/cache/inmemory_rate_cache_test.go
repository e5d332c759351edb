package cache

import (
	"context"
	"testing"
	"time"

	appcurrency "github.com/erp/ledger/internal/application/currency"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRateCache(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	date := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	t.Run("set then get", func(t *testing.T) {
		c := NewInMemoryRateCache(time.Minute)
		rate := decimal.RequireFromString("3.6725")

		require.NoError(t, c.Set(ctx, tenantID, valueobject.USD, valueobject.AED, date, rate))

		got, err := c.Get(ctx, tenantID, valueobject.USD, valueobject.AED, date)
		require.NoError(t, err)
		assert.True(t, got.Equal(rate))
	})

	t.Run("miss on unknown pair", func(t *testing.T) {
		c := NewInMemoryRateCache(time.Minute)
		_, err := c.Get(ctx, tenantID, valueobject.EUR, valueobject.AED, date)
		assert.ErrorIs(t, err, appcurrency.ErrCacheMiss)
	})

	t.Run("keys are tenant scoped", func(t *testing.T) {
		c := NewInMemoryRateCache(time.Minute)
		require.NoError(t, c.Set(ctx, tenantID, valueobject.USD, valueobject.AED, date, decimal.NewFromInt(4)))

		_, err := c.Get(ctx, uuid.New(), valueobject.USD, valueobject.AED, date)
		assert.ErrorIs(t, err, appcurrency.ErrCacheMiss)
	})

	t.Run("keys are date scoped", func(t *testing.T) {
		c := NewInMemoryRateCache(time.Minute)
		require.NoError(t, c.Set(ctx, tenantID, valueobject.USD, valueobject.AED, date, decimal.NewFromInt(4)))

		_, err := c.Get(ctx, tenantID, valueobject.USD, valueobject.AED, date.AddDate(0, 0, 1))
		assert.ErrorIs(t, err, appcurrency.ErrCacheMiss)
	})

	t.Run("expired entries miss and are evicted", func(t *testing.T) {
		c := NewInMemoryRateCache(time.Nanosecond)
		require.NoError(t, c.Set(ctx, tenantID, valueobject.USD, valueobject.AED, date, decimal.NewFromInt(4)))

		time.Sleep(time.Millisecond)
		_, err := c.Get(ctx, tenantID, valueobject.USD, valueobject.AED, date)
		assert.ErrorIs(t, err, appcurrency.ErrCacheMiss)
		assert.Equal(t, 0, c.Len())
	})
}
