package billing

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T, subtotal, tax, discount string) *Invoice {
	t.Helper()
	due := time.Now().AddDate(0, 1, 0)
	inv, err := NewInvoice(NewInvoiceParams{
		TenantID:       uuid.New(),
		InvoiceNumber:  "INV-20260828-00001",
		CustomerID:     uuid.New(),
		CustomerName:   "Al Haramain Trading LLC",
		Type:           InvoiceTypeStandard,
		Subtotal:       decimal.RequireFromString(subtotal),
		TaxAmount:      decimal.RequireFromString(tax),
		DiscountAmount: decimal.RequireFromString(discount),
		CurrencyCode:   valueobject.AED,
		DueDate:        &due,
	})
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("computes total and balance", func(t *testing.T) {
		inv := newTestInvoice(t, "1000.00", "50.00", "25.00")

		assert.True(t, inv.TotalAmount.Equal(decimal.RequireFromString("1025.00")))
		assert.True(t, inv.BalanceDue.Equal(inv.TotalAmount))
		assert.True(t, inv.PaidAmount.IsZero())
		assert.Equal(t, InvoiceStatusPending, inv.Status)
		assert.Len(t, inv.GetDomainEvents(), 1)
	})

	t.Run("rejects empty invoice number", func(t *testing.T) {
		_, err := NewInvoice(NewInvoiceParams{
			CustomerID:   uuid.New(),
			CustomerName: "Customer",
			Type:         InvoiceTypeStandard,
			CurrencyCode: valueobject.AED,
		})
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_INVOICE_NUMBER", de.Code)
	})

	t.Run("rejects negative total after discount", func(t *testing.T) {
		_, err := NewInvoice(NewInvoiceParams{
			InvoiceNumber:  "INV-1",
			CustomerID:     uuid.New(),
			CustomerName:   "Customer",
			Type:           InvoiceTypeStandard,
			Subtotal:       decimal.RequireFromString("100.00"),
			DiscountAmount: decimal.RequireFromString("150.00"),
			CurrencyCode:   valueobject.AED,
		})
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_AMOUNT", de.Code)
	})

	t.Run("rejects invalid currency", func(t *testing.T) {
		_, err := NewInvoice(NewInvoiceParams{
			InvoiceNumber: "INV-1",
			CustomerID:    uuid.New(),
			CustomerName:  "Customer",
			Type:          InvoiceTypeStandard,
			Subtotal:      decimal.RequireFromString("100.00"),
			CurrencyCode:  valueobject.Currency("XXX"),
		})
		require.Error(t, err)
	})
}

func TestInvoiceApplyPayment(t *testing.T) {
	t.Run("partial payment keeps balance invariant", func(t *testing.T) {
		inv := newTestInvoice(t, "1000.00", "0", "0")

		err := inv.ApplyPayment(decimal.RequireFromString("400.00"))
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
		assert.True(t, inv.PaidAmount.Equal(decimal.RequireFromString("400.00")))
		assert.True(t, inv.BalanceDue.Equal(decimal.RequireFromString("600.00")))
		assert.True(t, inv.BalanceDue.Equal(inv.TotalAmount.Sub(inv.PaidAmount)))
	})

	t.Run("full payment marks paid", func(t *testing.T) {
		inv := newTestInvoice(t, "1000.00", "0", "0")

		require.NoError(t, inv.ApplyPayment(decimal.RequireFromString("600.00")))
		require.NoError(t, inv.ApplyPayment(decimal.RequireFromString("400.00")))

		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.BalanceDue.IsZero())
		require.NotNil(t, inv.PaidAt)
	})

	t.Run("rejects overpayment", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")

		err := inv.ApplyPayment(decimal.RequireFromString("100.01"))
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "EXCEEDS_BALANCE_DUE", de.Code)
		assert.Contains(t, de.Message, "100.01")
		assert.Contains(t, de.Message, "100.00")
	})

	t.Run("rejects payment on paid invoice", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")
		require.NoError(t, inv.ApplyPayment(decimal.RequireFromString("100.00")))

		err := inv.ApplyPayment(decimal.RequireFromString("1.00"))
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVOICE_ALREADY_PAID", de.Code)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")
		assert.Error(t, inv.ApplyPayment(decimal.Zero))
		assert.Error(t, inv.ApplyPayment(decimal.RequireFromString("-5.00")))
	})

	t.Run("partial payment under installment plan keeps installment status", func(t *testing.T) {
		inv := newTestInvoice(t, "1200.00", "0", "0")
		require.NoError(t, inv.EnterInstallmentPlan())

		require.NoError(t, inv.ApplyPayment(decimal.RequireFromString("100.00")))
		assert.Equal(t, InvoiceStatusInstallment, inv.Status)

		require.NoError(t, inv.ApplyPayment(decimal.RequireFromString("1100.00")))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("increments version on each application", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")
		v0 := inv.Version
		require.NoError(t, inv.ApplyPayment(decimal.RequireFromString("10.00")))
		assert.Equal(t, v0+1, inv.Version)
	})
}

func TestInvoiceCancel(t *testing.T) {
	t.Run("cancels pending invoice", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")

		require.NoError(t, inv.Cancel("duplicate entry"))

		assert.Equal(t, InvoiceStatusCancelled, inv.Status)
		assert.True(t, inv.BalanceDue.Equal(inv.TotalAmount.Sub(inv.PaidAmount)))
		assert.True(t, inv.BalanceDue.Equal(decimal.RequireFromString("100.00")))
		assert.Equal(t, "duplicate entry", inv.CancelReason)
		require.NotNil(t, inv.CancelledAt)
	})

	t.Run("rejects cancel with payments", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")
		require.NoError(t, inv.ApplyPayment(decimal.RequireFromString("10.00")))

		err := inv.Cancel("changed mind")
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "HAS_PAYMENTS", de.Code)
	})

	t.Run("rejects cancel while under installment plan", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")
		require.NoError(t, inv.EnterInstallmentPlan())

		err := inv.Cancel("changed mind")
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "HAS_INSTALLMENT_PLAN", de.Code)
	})

	t.Run("rejects cancel of cancelled invoice", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")
		require.NoError(t, inv.Cancel("first"))
		assert.Error(t, inv.Cancel("second"))
	})
}

func TestInvoiceInstallmentTransitions(t *testing.T) {
	t.Run("enter and revert restores prior status", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")

		require.NoError(t, inv.EnterInstallmentPlan())
		assert.Equal(t, InvoiceStatusInstallment, inv.Status)
		assert.Equal(t, InvoiceStatusPending, inv.PriorStatus)

		require.NoError(t, inv.RevertFromInstallmentPlan(false))
		assert.Equal(t, InvoiceStatusPending, inv.Status)
		assert.Empty(t, inv.PriorStatus)
	})

	t.Run("revert with partial collections lands on partially paid", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")
		require.NoError(t, inv.EnterInstallmentPlan())
		require.NoError(t, inv.ApplyPayment(decimal.RequireFromString("30.00")))

		require.NoError(t, inv.RevertFromInstallmentPlan(false))
		assert.Equal(t, InvoiceStatusPartiallyPaid, inv.Status)
	})

	t.Run("revert after plan completion marks paid", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")
		require.NoError(t, inv.EnterInstallmentPlan())

		require.NoError(t, inv.RevertFromInstallmentPlan(true))
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
		assert.True(t, inv.BalanceDue.IsZero())
	})

	t.Run("rejects double plan entry", func(t *testing.T) {
		inv := newTestInvoice(t, "100.00", "0", "0")
		require.NoError(t, inv.EnterInstallmentPlan())

		err := inv.EnterInstallmentPlan()
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "PLAN_EXISTS", de.Code)
	})
}

func TestInvoiceOverdue(t *testing.T) {
	inv := newTestInvoice(t, "100.00", "0", "0")
	past := time.Now().AddDate(0, 0, -45)
	inv.DueDate = &past

	assert.True(t, inv.IsOverdue(time.Now()))
	assert.Equal(t, 45, inv.DaysOverdue(time.Now()))

	require.NoError(t, inv.ApplyPayment(decimal.RequireFromString("100.00")))
	assert.False(t, inv.IsOverdue(time.Now()))
}
