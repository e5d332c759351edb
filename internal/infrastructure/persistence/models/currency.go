package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/currency"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExchangeRateModel is the persistence model for the ExchangeRate entity.
// Rates are append-only; the effective date index serves most-recent lookups.
type ExchangeRateModel struct {
	BaseModel
	TenantID      uuid.UUID           `gorm:"type:uuid;not null;index:idx_rate_lookup,priority:1"`
	FromCurrency  string              `gorm:"type:varchar(3);not null;index:idx_rate_lookup,priority:2"`
	ToCurrency    string              `gorm:"type:varchar(3);not null;index:idx_rate_lookup,priority:3"`
	Rate          decimal.Decimal     `gorm:"type:decimal(18,8);not null"`
	EffectiveDate time.Time           `gorm:"not null;index:idx_rate_lookup,priority:4"`
	Source        currency.RateSource `gorm:"type:varchar(20);not null;default:'MANUAL'"`
	CreatedBy     *uuid.UUID          `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ExchangeRateModel) TableName() string {
	return "exchange_rates"
}

// ToDomain converts the persistence model to a domain ExchangeRate entity.
func (m *ExchangeRateModel) ToDomain() *currency.ExchangeRate {
	return &currency.ExchangeRate{
		BaseEntity:    m.BaseModel.ToDomain(),
		TenantID:      m.TenantID,
		FromCurrency:  valueobject.Currency(m.FromCurrency),
		ToCurrency:    valueobject.Currency(m.ToCurrency),
		Rate:          m.Rate,
		EffectiveDate: m.EffectiveDate,
		Source:        m.Source,
		CreatedBy:     m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain ExchangeRate entity.
func (m *ExchangeRateModel) FromDomain(r *currency.ExchangeRate) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TenantID = r.TenantID
	m.FromCurrency = r.FromCurrency.String()
	m.ToCurrency = r.ToCurrency.String()
	m.Rate = r.Rate
	m.EffectiveDate = r.EffectiveDate
	m.Source = r.Source
	m.CreatedBy = r.CreatedBy
}

// ExchangeRateModelFromDomain creates a new persistence model from a domain ExchangeRate.
func ExchangeRateModelFromDomain(r *currency.ExchangeRate) *ExchangeRateModel {
	m := &ExchangeRateModel{}
	m.FromDomain(r)
	return m
}
