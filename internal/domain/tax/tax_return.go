package tax

import (
	"fmt"
	"regexp"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnStatus represents the filing status of a tax return
type ReturnStatus string

const (
	ReturnStatusDraft ReturnStatus = "DRAFT"
	ReturnStatusFiled ReturnStatus = "FILED"
)

// IsValid checks if the return status is valid
func (s ReturnStatus) IsValid() bool {
	return s == ReturnStatusDraft || s == ReturnStatusFiled
}

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidatePeriod checks a YYYY-MM period key
func ValidatePeriod(period string) error {
	if !periodPattern.MatchString(period) {
		return shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Period %q must be in YYYY-MM format", period))
	}
	return nil
}

// PeriodBounds returns the half-open [start, end) time range of a period key
func PeriodBounds(period string) (time.Time, time.Time, error) {
	if err := ValidatePeriod(period); err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, time.Time{}, shared.NewDomainError("INVALID_PERIOD", fmt.Sprintf("Period %q must be in YYYY-MM format", period))
	}
	return start, start.AddDate(0, 1, 0), nil
}

// TaxReturn aggregates a tenant's tax records for one period. At most one
// return exists per tenant and period; regenerating a DRAFT replaces its
// figures, while a FILED return is frozen.
type TaxReturn struct {
	shared.TenantAggregateRoot
	Period           string               `json:"period"` // YYYY-MM
	CurrencyCode     valueobject.Currency `json:"currency_code"`
	OutputTax        decimal.Decimal      `json:"output_tax"`
	InputTax         decimal.Decimal      `json:"input_tax"`
	ReverseChargeTax decimal.Decimal      `json:"reverse_charge_tax"`
	NetTaxDue        decimal.Decimal      `json:"net_tax_due"`
	TaxableSales     decimal.Decimal      `json:"taxable_sales"`
	TaxablePurchases decimal.Decimal      `json:"taxable_purchases"`
	ZeroRatedSales   decimal.Decimal      `json:"zero_rated_sales"`
	ExemptSales      decimal.Decimal      `json:"exempt_sales"`
	RecordCount      int                  `json:"record_count"`
	Status           ReturnStatus         `json:"status"`
	FiledAt          *time.Time           `json:"filed_at,omitempty"`
	FiledBy          *uuid.UUID           `json:"filed_by,omitempty"`
}

// ReturnFigures holds the aggregated amounts applied to a return
type ReturnFigures struct {
	OutputTax        decimal.Decimal
	InputTax         decimal.Decimal
	ReverseChargeTax decimal.Decimal
	TaxableSales     decimal.Decimal
	TaxablePurchases decimal.Decimal
	ZeroRatedSales   decimal.Decimal
	ExemptSales      decimal.Decimal
	RecordCount      int
}

// NewTaxReturn creates a new draft return for the period
func NewTaxReturn(tenantID uuid.UUID, period string, currencyCode valueobject.Currency, figures ReturnFigures) (*TaxReturn, error) {
	if err := ValidatePeriod(period); err != nil {
		return nil, err
	}
	if !currencyCode.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Currency code %q is not valid", currencyCode))
	}

	ret := &TaxReturn{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Period:              period,
		CurrencyCode:        currencyCode,
		Status:              ReturnStatusDraft,
	}
	ret.applyFigures(figures)
	return ret, nil
}

// Regenerate replaces the figures of a draft return
func (r *TaxReturn) Regenerate(figures ReturnFigures) error {
	if r.Status == ReturnStatusFiled {
		return shared.NewDomainError("RETURN_FILED", "Cannot regenerate a filed return")
	}
	r.applyFigures(figures)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()
	return nil
}

// File freezes the return
func (r *TaxReturn) File(filedBy *uuid.UUID) error {
	if r.Status == ReturnStatusFiled {
		return shared.NewDomainError("RETURN_FILED", "Return is already filed")
	}
	now := time.Now()
	r.Status = ReturnStatusFiled
	r.FiledAt = &now
	r.FiledBy = filedBy
	r.UpdatedAt = now
	r.IncrementVersion()
	return nil
}

// applyFigures sets the aggregated amounts and derives net tax due as
// output - input + reverse charge.
func (r *TaxReturn) applyFigures(f ReturnFigures) {
	r.OutputTax = f.OutputTax
	r.InputTax = f.InputTax
	r.ReverseChargeTax = f.ReverseChargeTax
	r.NetTaxDue = f.OutputTax.Sub(f.InputTax).Add(f.ReverseChargeTax)
	r.TaxableSales = f.TaxableSales
	r.TaxablePurchases = f.TaxablePurchases
	r.ZeroRatedSales = f.ZeroRatedSales
	r.ExemptSales = f.ExemptSales
	r.RecordCount = f.RecordCount
}

// IsRefundable returns true when input tax exceeds output plus reverse charge
func (r *TaxReturn) IsRefundable() bool {
	return r.NetTaxDue.IsNegative()
}
