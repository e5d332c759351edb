package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxRecordModel is the persistence model for the TaxRecord entity.
type TaxRecordModel struct {
	BaseModel
	TenantID        uuid.UUID        `gorm:"type:uuid;not null;index:idx_tax_record_period,priority:1"`
	Direction       tax.TaxDirection `gorm:"type:varchar(10);not null;index"`
	SourceID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	SourceNumber    string           `gorm:"type:varchar(50)"`
	Description     string           `gorm:"type:varchar(500)"`
	TaxableAmount   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	TaxRate         decimal.Decimal  `gorm:"type:decimal(8,4);not null"`
	TaxAmount       decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	CurrencyCode    string           `gorm:"type:varchar(3);not null"`
	ReverseCharge   bool             `gorm:"not null;default:false"`
	TransactionDate time.Time        `gorm:"not null;index:idx_tax_record_period,priority:2"`
}

// TableName returns the table name for GORM
func (TaxRecordModel) TableName() string {
	return "tax_records"
}

// ToDomain converts the persistence model to a domain TaxRecord entity.
func (m *TaxRecordModel) ToDomain() *tax.TaxRecord {
	return &tax.TaxRecord{
		BaseEntity:      m.BaseModel.ToDomain(),
		TenantID:        m.TenantID,
		Direction:       m.Direction,
		SourceID:        m.SourceID,
		SourceNumber:    m.SourceNumber,
		Description:     m.Description,
		TaxableAmount:   m.TaxableAmount,
		TaxRate:         m.TaxRate,
		TaxAmount:       m.TaxAmount,
		CurrencyCode:    valueobject.Currency(m.CurrencyCode),
		ReverseCharge:   m.ReverseCharge,
		TransactionDate: m.TransactionDate,
	}
}

// FromDomain populates the persistence model from a domain TaxRecord entity.
func (m *TaxRecordModel) FromDomain(r *tax.TaxRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TenantID = r.TenantID
	m.Direction = r.Direction
	m.SourceID = r.SourceID
	m.SourceNumber = r.SourceNumber
	m.Description = r.Description
	m.TaxableAmount = r.TaxableAmount
	m.TaxRate = r.TaxRate
	m.TaxAmount = r.TaxAmount
	m.CurrencyCode = r.CurrencyCode.String()
	m.ReverseCharge = r.ReverseCharge
	m.TransactionDate = r.TransactionDate
}

// TaxRecordModelFromDomain creates a new persistence model from a domain TaxRecord.
func TaxRecordModelFromDomain(r *tax.TaxRecord) *TaxRecordModel {
	m := &TaxRecordModel{}
	m.FromDomain(r)
	return m
}

// TaxReturnModel is the persistence model for the TaxReturn aggregate root.
type TaxReturnModel struct {
	TenantAggregateModel
	Period           string           `gorm:"type:varchar(7);not null;uniqueIndex:idx_tax_return_tenant_period,priority:2"`
	CurrencyCode     string           `gorm:"type:varchar(3);not null"`
	OutputTax        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	InputTax         decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ReverseChargeTax decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	NetTaxDue        decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	TaxableSales     decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	TaxablePurchases decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ZeroRatedSales   decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	ExemptSales      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	RecordCount      int              `gorm:"not null;default:0"`
	Status           tax.ReturnStatus `gorm:"type:varchar(10);not null;default:'DRAFT';index"`
	FiledAt          *time.Time
	FiledBy          *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (TaxReturnModel) TableName() string {
	return "tax_returns"
}

// ToDomain converts the persistence model to a domain TaxReturn entity.
func (m *TaxReturnModel) ToDomain() *tax.TaxReturn {
	return &tax.TaxReturn{
		TenantAggregateRoot: m.ToDomainTenantAggregateRoot(),
		Period:              m.Period,
		CurrencyCode:        valueobject.Currency(m.CurrencyCode),
		OutputTax:           m.OutputTax,
		InputTax:            m.InputTax,
		ReverseChargeTax:    m.ReverseChargeTax,
		NetTaxDue:           m.NetTaxDue,
		TaxableSales:        m.TaxableSales,
		TaxablePurchases:    m.TaxablePurchases,
		ZeroRatedSales:      m.ZeroRatedSales,
		ExemptSales:         m.ExemptSales,
		RecordCount:         m.RecordCount,
		Status:              m.Status,
		FiledAt:             m.FiledAt,
		FiledBy:             m.FiledBy,
	}
}

// FromDomain populates the persistence model from a domain TaxReturn entity.
func (m *TaxReturnModel) FromDomain(r *tax.TaxReturn) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Period = r.Period
	m.CurrencyCode = r.CurrencyCode.String()
	m.OutputTax = r.OutputTax
	m.InputTax = r.InputTax
	m.ReverseChargeTax = r.ReverseChargeTax
	m.NetTaxDue = r.NetTaxDue
	m.TaxableSales = r.TaxableSales
	m.TaxablePurchases = r.TaxablePurchases
	m.ZeroRatedSales = r.ZeroRatedSales
	m.ExemptSales = r.ExemptSales
	m.RecordCount = r.RecordCount
	m.Status = r.Status
	m.FiledAt = r.FiledAt
	m.FiledBy = r.FiledBy
}

// TaxReturnModelFromDomain creates a new persistence model from a domain TaxReturn.
func TaxReturnModelFromDomain(r *tax.TaxReturn) *TaxReturnModel {
	m := &TaxReturnModel{}
	m.FromDomain(r)
	return m
}
