package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/currency"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExchangeRateRepository implements ExchangeRateRepository using GORM
type GormExchangeRateRepository struct {
	db *gorm.DB
}

// NewGormExchangeRateRepository creates a new GormExchangeRateRepository
func NewGormExchangeRateRepository(db *Database) *GormExchangeRateRepository {
	return &GormExchangeRateRepository{db: db.DB}
}

// Save appends a new rate record. Rates are never updated in place.
func (r *GormExchangeRateRepository) Save(ctx context.Context, rate *currency.ExchangeRate) error {
	model := models.ExchangeRateModelFromDomain(rate)
	return conn(ctx, r.db).Create(model).Error
}

// FindEffective returns the most recent rate for the pair whose effective date
// is on or before the given date
func (r *GormExchangeRateRepository) FindEffective(ctx context.Context, tenantID uuid.UUID, from, to valueobject.Currency, asOf time.Time) (*currency.ExchangeRate, error) {
	var model models.ExchangeRateModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND from_currency = ? AND to_currency = ? AND effective_date <= ?",
			tenantID, from.String(), to.String(), asOf).
		Order("effective_date DESC, created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns rate records for a tenant matching the filter, paginated
func (r *GormExchangeRateRepository) List(ctx context.Context, tenantID uuid.UUID, filter currency.RateFilter) (*shared.Paginated[currency.ExchangeRate], error) {
	base := conn(ctx, r.db).Model(&models.ExchangeRateModel{}).
		Where("tenant_id = ?", tenantID)
	base = r.applyRateFilter(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Filter)
	orderBy := ValidateSortField(filter.OrderBy, ExchangeRateSortFields, "effective_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var rateModels []models.ExchangeRateModel
	if err := base.
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rateModels).Error; err != nil {
		return nil, err
	}

	rates := make([]currency.ExchangeRate, len(rateModels))
	for i, model := range rateModels {
		rates[i] = *model.ToDomain()
	}
	result := shared.NewPaginated(rates, total, page, pageSize)
	return &result, nil
}

// applyRateFilter applies filter options to the query
func (r *GormExchangeRateRepository) applyRateFilter(query *gorm.DB, filter currency.RateFilter) *gorm.DB {
	if filter.FromCurrency != "" {
		query = query.Where("from_currency = ?", filter.FromCurrency.String())
	}
	if filter.ToCurrency != "" {
		query = query.Where("to_currency = ?", filter.ToCurrency.String())
	}
	if filter.EffectiveFrom != nil {
		query = query.Where("effective_date >= ?", *filter.EffectiveFrom)
	}
	if filter.EffectiveTo != nil {
		query = query.Where("effective_date <= ?", *filter.EffectiveTo)
	}
	if filter.Source != nil {
		query = query.Where("source = ?", *filter.Source)
	}
	return query
}

// Ensure GormExchangeRateRepository implements ExchangeRateRepository
var _ currency.ExchangeRateRepository = (*GormExchangeRateRepository)(nil)
