package tax

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxDirection separates tax collected on sales from tax paid on purchases
type TaxDirection string

const (
	TaxDirectionOutput TaxDirection = "OUTPUT" // Collected on sales
	TaxDirectionInput  TaxDirection = "INPUT"  // Paid on purchases, recoverable
)

// IsValid checks if the tax direction is valid
func (d TaxDirection) IsValid() bool {
	return d == TaxDirectionOutput || d == TaxDirectionInput
}

// TaxCategory classifies zero-rate output records for return line items
type TaxCategory string

const (
	TaxCategoryStandard  TaxCategory = "STANDARD"
	TaxCategoryZeroRated TaxCategory = "ZERO_RATED"
	TaxCategoryExempt    TaxCategory = "EXEMPT"
)

// TaxRecord is one taxable transaction captured for period aggregation. Records
// are written when invoices and supplier bills post and are never mutated.
type TaxRecord struct {
	shared.BaseEntity
	TenantID        uuid.UUID            `json:"tenant_id"`
	Direction       TaxDirection         `json:"direction"`
	SourceID        uuid.UUID            `json:"source_id"` // Invoice or supplier bill
	SourceNumber    string               `json:"source_number"`
	Description     string               `json:"description"`
	TaxableAmount   decimal.Decimal      `json:"taxable_amount"`
	TaxRate         decimal.Decimal      `json:"tax_rate"` // Percent
	TaxAmount       decimal.Decimal      `json:"tax_amount"`
	CurrencyCode    valueobject.Currency `json:"currency_code"`
	ReverseCharge   bool                 `json:"reverse_charge"`
	TransactionDate time.Time            `json:"transaction_date"`
}

// NewTaxRecordParams groups the inputs required to capture a tax record
type NewTaxRecordParams struct {
	TenantID        uuid.UUID
	Direction       TaxDirection
	SourceID        uuid.UUID
	SourceNumber    string
	Description     string
	TaxableAmount   decimal.Decimal
	TaxRate         decimal.Decimal
	TaxAmount       decimal.Decimal
	CurrencyCode    valueobject.Currency
	ReverseCharge   bool
	TransactionDate time.Time
}

// NewTaxRecord creates a new immutable tax record
func NewTaxRecord(p NewTaxRecordParams) (*TaxRecord, error) {
	if !p.Direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_TAX_DIRECTION", fmt.Sprintf("Tax direction %q is not valid", p.Direction))
	}
	if p.SourceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Source document ID cannot be empty")
	}
	if p.TaxableAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Taxable amount must not be negative")
	}
	if p.TaxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must not be negative")
	}
	if p.TaxAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Tax amount must not be negative")
	}
	if !p.CurrencyCode.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Currency code %q is not valid", p.CurrencyCode))
	}

	txDate := p.TransactionDate
	if txDate.IsZero() {
		txDate = time.Now()
	}

	return &TaxRecord{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        p.TenantID,
		Direction:       p.Direction,
		SourceID:        p.SourceID,
		SourceNumber:    p.SourceNumber,
		Description:     p.Description,
		TaxableAmount:   p.TaxableAmount,
		TaxRate:         p.TaxRate,
		TaxAmount:       p.TaxAmount,
		CurrencyCode:    p.CurrencyCode,
		ReverseCharge:   p.ReverseCharge,
		TransactionDate: txDate,
	}, nil
}

// Category classifies the record for return line items. Zero-rate output
// records are exempt when the description marks the supply as exempt,
// otherwise zero-rated.
func (r *TaxRecord) Category() TaxCategory {
	if !r.TaxRate.IsZero() {
		return TaxCategoryStandard
	}
	if strings.Contains(strings.ToLower(r.Description), "exempt") {
		return TaxCategoryExempt
	}
	return TaxCategoryZeroRated
}

// Period returns the YYYY-MM period key of the transaction date
func (r *TaxRecord) Period() string {
	return r.TransactionDate.Format("2006-01")
}
