package currency

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// RateFilter narrows exchange rate queries
type RateFilter struct {
	shared.Filter
	FromCurrency  valueobject.Currency
	ToCurrency    valueobject.Currency
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time
	Source        *RateSource
}

// ExchangeRateRepository persists append-only exchange rate records
type ExchangeRateRepository interface {
	Save(ctx context.Context, rate *ExchangeRate) error
	// FindEffective returns the most recent rate for the pair whose effective
	// date is on or before the given date, or NOT_FOUND.
	FindEffective(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, asOf time.Time) (*ExchangeRate, error)
	List(ctx context.Context, tenantID uuid.UUID, filter RateFilter) (*shared.Paginated[ExchangeRate], error)
}
