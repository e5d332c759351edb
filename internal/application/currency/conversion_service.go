package currency

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/currency"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RateCache caches resolved rates per tenant, pair and effective date. Misses
// return ErrCacheMiss; implementations must never fabricate rates.
type RateCache interface {
	Get(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (decimal.Decimal, error)
	Set(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time, rate decimal.Decimal) error
}

// ErrCacheMiss is returned by RateCache implementations when no entry exists
var ErrCacheMiss = errors.New("rate cache miss")

// ConversionResult carries a converted amount plus its audit trail
type ConversionResult struct {
	OriginalAmount  decimal.Decimal      `json:"original_amount"`
	FromCurrency    valueobject.Currency `json:"from_currency"`
	ConvertedAmount decimal.Decimal      `json:"converted_amount"`
	ToCurrency      valueobject.Currency `json:"to_currency"`
	Rate            decimal.Decimal      `json:"rate"`
	RateDate        time.Time            `json:"rate_date"`
	Source          currency.RateSource  `json:"source,omitempty"`
}

// ConversionService resolves exchange rates and converts amounts. Resolution
// order: cache, stored rate, stored inverse rate, static fallback table. When
// none of these covers the pair the conversion fails with RATE_UNAVAILABLE
// rather than silently assuming parity.
type ConversionService struct {
	rateRepo currency.ExchangeRateRepository
	cache    RateCache
	logger   *zap.Logger
}

// NewConversionService creates a new ConversionService
func NewConversionService(rateRepo currency.ExchangeRateRepository, cache RateCache, logger *zap.Logger) *ConversionService {
	return &ConversionService{
		rateRepo: rateRepo,
		cache:    cache,
		logger:   logger,
	}
}

// Convert converts an amount between currencies using the rate effective on
// the given date. The converted amount is rounded to the target currency's
// canonical decimal places.
func (s *ConversionService) Convert(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, from, to valueobject.Currency, asOf time.Time) (*ConversionResult, error) {
	if !from.IsValid() || !to.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Both currency codes must be valid ISO 4217 codes")
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}
	date := asOf.Truncate(24 * time.Hour)

	if from == to {
		return s.result(amount, from, to, amount, decimal.NewFromInt(1), date, "")
	}

	rate, source, err := s.resolveRate(ctx, tenantID, from, to, date)
	if err != nil {
		return nil, err
	}

	converted := amount.Mul(rate)
	places, err := to.DecimalPlaces()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}

	return s.result(amount, from, to, converted.Round(places), rate, date, source)
}

// GetRate resolves the effective rate for a pair without converting an amount
func (s *ConversionService) GetRate(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, asOf time.Time) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}
	rate, _, err := s.resolveRate(ctx, tenantID, from, to, asOf.Truncate(24*time.Hour))
	return rate, err
}

// RecordRate stores an operator-entered rate and refreshes the cache
func (s *ConversionService) RecordRate(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, rate decimal.Decimal, effectiveDate time.Time, createdBy *uuid.UUID) (*currency.ExchangeRate, error) {
	record, err := currency.NewExchangeRate(tenantID, from, to, rate, effectiveDate, currency.RateSourceManual, createdBy)
	if err != nil {
		return nil, err
	}
	if err := s.rateRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, tenantID, from, to, record.EffectiveDate, record.Rate); err != nil {
		s.logger.Warn("failed to cache exchange rate",
			zap.String("pair", record.PairKey()),
			zap.Error(err))
	}

	s.logger.Info("exchange rate recorded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("pair", record.PairKey()),
		zap.String("rate", record.Rate.String()))

	return record, nil
}

// ListRates returns stored rates matching the filter
func (s *ConversionService) ListRates(ctx context.Context, tenantID uuid.UUID, filter currency.RateFilter) (*shared.Paginated[currency.ExchangeRate], error) {
	return s.rateRepo.List(ctx, tenantID, filter)
}

func (s *ConversionService) resolveRate(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time) (decimal.Decimal, currency.RateSource, error) {
	if cached, err := s.cache.Get(ctx, tenantID, from, to, date); err == nil {
		return cached, "", nil
	} else if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("rate cache lookup failed", zap.Error(err))
	}

	if stored, err := s.rateRepo.FindEffective(ctx, tenantID, from, to, date); err == nil {
		s.cacheRate(ctx, tenantID, from, to, date, stored.Rate)
		return stored.Rate, stored.Source, nil
	} else if !isNotFound(err) {
		return decimal.Decimal{}, "", err
	}

	if stored, err := s.rateRepo.FindEffective(ctx, tenantID, to, from, date); err == nil {
		rate := stored.Inverse()
		s.cacheRate(ctx, tenantID, from, to, date, rate)
		return rate, stored.Source, nil
	} else if !isNotFound(err) {
		return decimal.Decimal{}, "", err
	}

	if rate, ok := currency.FallbackRate(from, to); ok {
		// Persist the fallback so the choice of rate is auditable.
		record, err := currency.NewExchangeRate(tenantID, from, to, rate, date, currency.RateSourceFallback, nil)
		if err == nil {
			if saveErr := s.rateRepo.Save(ctx, record); saveErr != nil {
				s.logger.Warn("failed to persist fallback rate",
					zap.String("pair", record.PairKey()),
					zap.Error(saveErr))
			}
		}
		s.cacheRate(ctx, tenantID, from, to, date, rate)
		s.logger.Info("fallback exchange rate used",
			zap.String("tenant_id", tenantID.String()),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.String("rate", rate.String()))
		return rate, currency.RateSourceFallback, nil
	}

	return decimal.Decimal{}, "", shared.ErrRateUnavailable
}

func (s *ConversionService) cacheRate(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, date time.Time, rate decimal.Decimal) {
	if err := s.cache.Set(ctx, tenantID, from, to, date, rate); err != nil {
		s.logger.Warn("failed to cache exchange rate", zap.Error(err))
	}
}

func (s *ConversionService) result(amount decimal.Decimal, from, to valueobject.Currency, converted, rate decimal.Decimal, date time.Time, source currency.RateSource) (*ConversionResult, error) {
	return &ConversionResult{
		OriginalAmount:  amount,
		FromCurrency:    from,
		ConvertedAmount: converted,
		ToCurrency:      to,
		Rate:            rate,
		RateDate:        date,
		Source:          source,
	}, nil
}

func isNotFound(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de) && de.Code == "NOT_FOUND"
}
