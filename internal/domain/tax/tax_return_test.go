package tax

import (
	"testing"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFigures() ReturnFigures {
	return ReturnFigures{
		OutputTax:        decimal.RequireFromString("500.00"),
		InputTax:         decimal.RequireFromString("180.00"),
		ReverseChargeTax: decimal.RequireFromString("20.00"),
		TaxableSales:     decimal.RequireFromString("10000.00"),
		TaxablePurchases: decimal.RequireFromString("3600.00"),
		ZeroRatedSales:   decimal.RequireFromString("1200.00"),
		ExemptSales:      decimal.RequireFromString("800.00"),
		RecordCount:      42,
	}
}

func TestNewTaxReturn(t *testing.T) {
	t.Run("derives net tax due", func(t *testing.T) {
		ret, err := NewTaxReturn(uuid.New(), "2026-08", valueobject.AED, testFigures())
		require.NoError(t, err)

		// 500 - 180 + 20
		assert.True(t, ret.NetTaxDue.Equal(decimal.RequireFromString("340.00")))
		assert.Equal(t, ReturnStatusDraft, ret.Status)
		assert.False(t, ret.IsRefundable())
	})

	t.Run("negative net is refundable", func(t *testing.T) {
		figures := testFigures()
		figures.InputTax = decimal.RequireFromString("600.00")
		ret, err := NewTaxReturn(uuid.New(), "2026-08", valueobject.AED, figures)
		require.NoError(t, err)

		assert.True(t, ret.NetTaxDue.IsNegative())
		assert.True(t, ret.IsRefundable())
	})

	t.Run("rejects malformed period", func(t *testing.T) {
		_, err := NewTaxReturn(uuid.New(), "08-2026", valueobject.AED, testFigures())
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_PERIOD", de.Code)
	})
}

func TestTaxReturnRegenerate(t *testing.T) {
	ret, err := NewTaxReturn(uuid.New(), "2026-08", valueobject.AED, testFigures())
	require.NoError(t, err)

	figures := testFigures()
	figures.OutputTax = decimal.RequireFromString("700.00")
	require.NoError(t, ret.Regenerate(figures))
	assert.True(t, ret.NetTaxDue.Equal(decimal.RequireFromString("540.00")))

	require.NoError(t, ret.File(nil))
	err = ret.Regenerate(testFigures())
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "RETURN_FILED", de.Code)
}

func TestTaxReturnFile(t *testing.T) {
	ret, err := NewTaxReturn(uuid.New(), "2026-08", valueobject.AED, testFigures())
	require.NoError(t, err)

	filedBy := uuid.New()
	require.NoError(t, ret.File(&filedBy))
	assert.Equal(t, ReturnStatusFiled, ret.Status)
	require.NotNil(t, ret.FiledAt)
	assert.Equal(t, filedBy, *ret.FiledBy)

	assert.Error(t, ret.File(&filedBy))
}
