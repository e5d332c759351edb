package currency

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateSource records where an exchange rate came from
type RateSource string

const (
	RateSourceManual   RateSource = "MANUAL"   // Entered by an operator
	RateSourceFallback RateSource = "FALLBACK" // Taken from the static reference table
)

// IsValid checks if the rate source is valid
func (s RateSource) IsValid() bool {
	return s == RateSourceManual || s == RateSourceFallback
}

// ExchangeRate is an append-only record of a conversion rate effective on a
// given date. Rates are never updated in place; a correction is a new record
// with a later effective date.
type ExchangeRate struct {
	shared.BaseEntity
	TenantID      uuid.UUID            `json:"tenant_id"`
	FromCurrency  valueobject.Currency `json:"from_currency"`
	ToCurrency    valueobject.Currency `json:"to_currency"`
	Rate          decimal.Decimal      `json:"rate"`
	EffectiveDate time.Time            `json:"effective_date"`
	Source        RateSource           `json:"source"`
	CreatedBy     *uuid.UUID           `json:"created_by,omitempty"`
}

// NewExchangeRate creates a new exchange rate record
func NewExchangeRate(tenantID uuid.UUID, from, to valueobject.Currency, rate decimal.Decimal, effectiveDate time.Time, source RateSource, createdBy *uuid.UUID) (*ExchangeRate, error) {
	if !from.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Currency code %q is not valid", from))
	}
	if !to.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Currency code %q is not valid", to))
	}
	if from == to {
		return nil, shared.NewDomainError("INVALID_CURRENCY_PAIR", "From and to currencies must differ")
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_RATE", "Exchange rate must be positive")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_RATE_SOURCE", fmt.Sprintf("Rate source %q is not valid", source))
	}
	if effectiveDate.IsZero() {
		effectiveDate = time.Now()
	}

	return &ExchangeRate{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		FromCurrency:  from,
		ToCurrency:    to,
		Rate:          rate,
		EffectiveDate: effectiveDate.Truncate(24 * time.Hour),
		Source:        source,
		CreatedBy:     createdBy,
	}, nil
}

// Inverse returns the reciprocal rate for the reversed pair
func (r *ExchangeRate) Inverse() decimal.Decimal {
	return decimal.NewFromInt(1).Div(r.Rate)
}

// PairKey returns a stable key for the currency pair, e.g. "USD/AED"
func (r *ExchangeRate) PairKey() string {
	return fmt.Sprintf("%s/%s", r.FromCurrency, r.ToCurrency)
}
