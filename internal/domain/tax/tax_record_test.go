package tax

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(t *testing.T, direction TaxDirection, rate, amount, taxable, description string) *TaxRecord {
	t.Helper()
	rec, err := NewTaxRecord(NewTaxRecordParams{
		TenantID:        uuid.New(),
		Direction:       direction,
		SourceID:        uuid.New(),
		SourceNumber:    "INV-20260815-00007",
		Description:     description,
		TaxableAmount:   decimal.RequireFromString(taxable),
		TaxRate:         decimal.RequireFromString(rate),
		TaxAmount:       decimal.RequireFromString(amount),
		CurrencyCode:    valueobject.AED,
		TransactionDate: time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return rec
}

func TestNewTaxRecord(t *testing.T) {
	rec := newTestRecord(t, TaxDirectionOutput, "5", "50.00", "1000.00", "VAT on sales")
	assert.Equal(t, "2026-08", rec.Period())

	_, err := NewTaxRecord(NewTaxRecordParams{
		TenantID:      uuid.New(),
		Direction:     TaxDirection("SIDEWAYS"),
		SourceID:      uuid.New(),
		TaxableAmount: decimal.Zero,
		CurrencyCode:  valueobject.AED,
	})
	assert.Error(t, err)

	_, err = NewTaxRecord(NewTaxRecordParams{
		TenantID:      uuid.New(),
		Direction:     TaxDirectionOutput,
		SourceID:      uuid.Nil,
		TaxableAmount: decimal.Zero,
		CurrencyCode:  valueobject.AED,
	})
	assert.Error(t, err)
}

func TestTaxRecordCategory(t *testing.T) {
	t.Run("standard when rate is positive", func(t *testing.T) {
		rec := newTestRecord(t, TaxDirectionOutput, "5", "50.00", "1000.00", "VAT on sales")
		assert.Equal(t, TaxCategoryStandard, rec.Category())
	})

	t.Run("exempt when description marks the supply exempt", func(t *testing.T) {
		rec := newTestRecord(t, TaxDirectionOutput, "0", "0", "1000.00", "Exempt financial services")
		assert.Equal(t, TaxCategoryExempt, rec.Category())

		rec = newTestRecord(t, TaxDirectionOutput, "0", "0", "1000.00", "residential lease (EXEMPT)")
		assert.Equal(t, TaxCategoryExempt, rec.Category())
	})

	t.Run("zero rated otherwise", func(t *testing.T) {
		rec := newTestRecord(t, TaxDirectionOutput, "0", "0", "1000.00", "Export of goods")
		assert.Equal(t, TaxCategoryZeroRated, rec.Category())
	})
}

func TestValidatePeriod(t *testing.T) {
	assert.NoError(t, ValidatePeriod("2026-01"))
	assert.NoError(t, ValidatePeriod("2026-12"))
	assert.Error(t, ValidatePeriod("2026-13"))
	assert.Error(t, ValidatePeriod("2026-1"))
	assert.Error(t, ValidatePeriod("202601"))
	assert.Error(t, ValidatePeriod(""))
}

func TestPeriodBounds(t *testing.T) {
	start, end, err := PeriodBounds("2026-08")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), end)

	start, end, err = PeriodBounds("2026-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), end)
	assert.True(t, start.Before(end))
}
