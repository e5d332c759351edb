package billing

import (
	"context"
	"testing"
	"time"

	appcurrency "github.com/erp/ledger/internal/application/currency"
	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type invoiceFixture struct {
	svc             *InvoiceService
	invoiceRepo     *MockInvoiceRepository
	paymentRepo     *MockPaymentRepository
	lateFeeRepo     *MockLateFeeRepository
	planRepo        *MockInstallmentPlanRepository
	taxRecordRepo   *MockTaxRecordRepository
	converter       *MockCurrencyConverter
	customerLookup  *MockCustomerLookup
	numberGen       *MockNumberGenerator
	accountResolver *MockAccountResolver
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		invoiceRepo:     new(MockInvoiceRepository),
		paymentRepo:     new(MockPaymentRepository),
		lateFeeRepo:     new(MockLateFeeRepository),
		planRepo:        new(MockInstallmentPlanRepository),
		taxRecordRepo:   new(MockTaxRecordRepository),
		converter:       new(MockCurrencyConverter),
		customerLookup:  new(MockCustomerLookup),
		numberGen:       new(MockNumberGenerator),
		accountResolver: new(MockAccountResolver),
	}
	f.svc = NewInvoiceService(
		f.invoiceRepo, f.paymentRepo, f.lateFeeRepo, f.planRepo, f.taxRecordRepo,
		f.converter, f.customerLookup, f.numberGen, f.accountResolver,
		passthroughTxManager{}, zap.NewNop(),
	)
	return f
}

func fixtureInvoice(t *testing.T, tenantID uuid.UUID, total string) *billing.Invoice {
	t.Helper()
	due := time.Now().AddDate(0, 1, 0)
	inv, err := billing.NewInvoice(billing.NewInvoiceParams{
		TenantID:      tenantID,
		InvoiceNumber: "INV-20260828-00001",
		CustomerID:    uuid.New(),
		CustomerName:  "Gulf Coast Retail FZE",
		Type:          billing.InvoiceTypeStandard,
		Subtotal:      decimal.RequireFromString(total),
		CurrencyCode:  valueobject.AED,
		DueDate:       &due,
	})
	require.NoError(t, err)
	return inv
}

func TestCreateInvoice(t *testing.T) {
	t.Run("creates invoice and output tax record", func(t *testing.T) {
		f := newInvoiceFixture()
		tenantID := uuid.New()
		customerID := uuid.New()

		f.customerLookup.On("FindByIDForTenant", mock.Anything, tenantID, customerID).
			Return(&billing.CustomerRef{ID: customerID, Name: "Gulf Coast Retail FZE", Active: true}, nil)
		f.numberGen.On("NextInvoiceNumber", mock.Anything, tenantID).
			Return("INV-20260828-00042", nil)
		f.invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.taxRecordRepo.On("Save", mock.Anything, mock.MatchedBy(func(r *tax.TaxRecord) bool {
			return r.Direction == tax.TaxDirectionOutput && r.TaxAmount.Equal(decimal.RequireFromString("50.00"))
		})).Return(nil)

		invoice, err := f.svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
			TenantID:     tenantID,
			CustomerID:   customerID,
			Subtotal:     decimal.RequireFromString("1000.00"),
			TaxRate:      decimal.RequireFromString("5"),
			TaxAmount:    decimal.RequireFromString("50.00"),
			CurrencyCode: valueobject.AED,
		})
		require.NoError(t, err)

		assert.Equal(t, "INV-20260828-00042", invoice.InvoiceNumber)
		assert.True(t, invoice.TotalAmount.Equal(decimal.RequireFromString("1050.00")))
		f.taxRecordRepo.AssertExpectations(t)
	})

	t.Run("rejects inactive customer", func(t *testing.T) {
		f := newInvoiceFixture()
		tenantID := uuid.New()
		customerID := uuid.New()

		f.customerLookup.On("FindByIDForTenant", mock.Anything, tenantID, customerID).
			Return(&billing.CustomerRef{ID: customerID, Name: "Dormant LLC", Active: false}, nil)

		_, err := f.svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
			TenantID:   tenantID,
			CustomerID: customerID,
			Subtotal:   decimal.RequireFromString("100.00"),
		})
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "CUSTOMER_INACTIVE", de.Code)
		f.invoiceRepo.AssertNotCalled(t, "Save")
	})

	t.Run("propagates unknown customer", func(t *testing.T) {
		f := newInvoiceFixture()
		tenantID := uuid.New()
		customerID := uuid.New()

		f.customerLookup.On("FindByIDForTenant", mock.Anything, tenantID, customerID).
			Return(nil, shared.ErrNotFound)

		_, err := f.svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
			TenantID:   tenantID,
			CustomerID: customerID,
			Subtotal:   decimal.RequireFromString("100.00"),
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestApplyPayment(t *testing.T) {
	t.Run("same currency payment without fees", func(t *testing.T) {
		f := newInvoiceFixture()
		tenantID := uuid.New()
		invoice := fixtureInvoice(t, tenantID, "1000.00")

		f.invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
		f.accountResolver.On("ResolveForMethod", mock.Anything, tenantID, billing.PaymentMethodCash).
			Return("1010", nil)
		f.numberGen.On("NextPaymentNumber", mock.Anything, tenantID).Return("PAY-20260828-00001", nil)
		f.paymentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

		result, err := f.svc.ApplyPayment(context.Background(), ApplyPaymentRequest{
			TenantID:  tenantID,
			InvoiceID: invoice.ID,
			Amount:    decimal.RequireFromString("400.00"),
			Method:    billing.PaymentMethodCash,
		})
		require.NoError(t, err)

		assert.Equal(t, billing.InvoiceStatusPartiallyPaid, result.Invoice.Status)
		assert.True(t, result.Invoice.BalanceDue.Equal(decimal.RequireFromString("600.00")))
		assert.Equal(t, "1010", result.AccountCode)
		assert.Equal(t, 0, result.WaivedFees)
		f.converter.AssertNotCalled(t, "Convert")
	})

	t.Run("converts foreign currency payments", func(t *testing.T) {
		f := newInvoiceFixture()
		tenantID := uuid.New()
		invoice := fixtureInvoice(t, tenantID, "1000.00")

		f.invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
		f.converter.On("Convert", mock.Anything, tenantID, decimal.RequireFromString("100.00"),
			valueobject.USD, valueobject.AED, mock.Anything).
			Return(&appcurrency.ConversionResult{
				ConvertedAmount: decimal.RequireFromString("367.25"),
				Rate:            decimal.RequireFromString("3.6725"),
			}, nil)
		f.accountResolver.On("ResolveForMethod", mock.Anything, tenantID, billing.PaymentMethodCard).
			Return("1020", nil)
		f.numberGen.On("NextPaymentNumber", mock.Anything, tenantID).Return("PAY-20260828-00002", nil)
		f.paymentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

		result, err := f.svc.ApplyPayment(context.Background(), ApplyPaymentRequest{
			TenantID:     tenantID,
			InvoiceID:    invoice.ID,
			Amount:       decimal.RequireFromString("100.00"),
			CurrencyCode: valueobject.USD,
			Method:       billing.PaymentMethodCard,
		})
		require.NoError(t, err)

		assert.True(t, result.Payment.Amount.Equal(decimal.RequireFromString("367.25")))
		assert.True(t, result.Payment.OriginalAmount.Equal(decimal.RequireFromString("100.00")))
		assert.Equal(t, valueobject.USD, result.Payment.OriginalCurrency)
		assert.True(t, result.Payment.WasConverted())
		assert.True(t, result.Invoice.PaidAmount.Equal(decimal.RequireFromString("367.25")))
	})

	t.Run("fails loudly when no rate is available", func(t *testing.T) {
		f := newInvoiceFixture()
		tenantID := uuid.New()
		invoice := fixtureInvoice(t, tenantID, "1000.00")

		f.invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
		f.converter.On("Convert", mock.Anything, tenantID, mock.Anything,
			valueobject.Currency("CHF"), valueobject.AED, mock.Anything).
			Return(nil, shared.ErrRateUnavailable)

		_, err := f.svc.ApplyPayment(context.Background(), ApplyPaymentRequest{
			TenantID:     tenantID,
			InvoiceID:    invoice.ID,
			Amount:       decimal.RequireFromString("100.00"),
			CurrencyCode: valueobject.Currency("CHF"),
			Method:       billing.PaymentMethodCash,
		})
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "RATE_UNAVAILABLE", de.Code)
		assert.True(t, invoice.PaidAmount.IsZero())
		f.paymentRepo.AssertNotCalled(t, "Save")
	})

	t.Run("waives covered late fees oldest first", func(t *testing.T) {
		f := newInvoiceFixture()
		tenantID := uuid.New()
		invoice := fixtureInvoice(t, tenantID, "1000.00")

		oldFee, err := billing.NewLateFeeCharge(tenantID, invoice.ID, decimal.RequireFromString("20.00"), "30 days overdue")
		require.NoError(t, err)
		newFee, err := billing.NewLateFeeCharge(tenantID, invoice.ID, decimal.RequireFromString("500.00"), "60 days overdue")
		require.NoError(t, err)

		f.invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
		f.lateFeeRepo.On("ListOpenByInvoice", mock.Anything, tenantID, invoice.ID).
			Return([]billing.LateFeeCharge{*oldFee, *newFee}, nil)
		f.accountResolver.On("ResolveForMethod", mock.Anything, tenantID, billing.PaymentMethodCash).
			Return("1010", nil)
		f.numberGen.On("NextPaymentNumber", mock.Anything, tenantID).Return("PAY-20260828-00003", nil)
		f.paymentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.lateFeeRepo.On("SaveAll", mock.Anything, mock.MatchedBy(func(fees []*billing.LateFeeCharge) bool {
			return len(fees) == 1 && fees[0].Status == billing.LateFeeStatusWaived
		})).Return(nil)
		f.invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

		result, err := f.svc.ApplyPayment(context.Background(), ApplyPaymentRequest{
			TenantID:        tenantID,
			InvoiceID:       invoice.ID,
			Amount:          decimal.RequireFromString("100.00"),
			Method:          billing.PaymentMethodCash,
			ApplyToLateFees: true,
		})
		require.NoError(t, err)

		assert.Equal(t, 1, result.WaivedFees)
		assert.True(t, result.LateFeeAmount.Equal(decimal.RequireFromString("20.00")))
		assert.True(t, result.Payment.PrincipalAmount().Equal(decimal.RequireFromString("80.00")))
		// The invoice balance moves by the full payment amount.
		assert.True(t, result.Invoice.PaidAmount.Equal(decimal.RequireFromString("100.00")))
		f.lateFeeRepo.AssertExpectations(t)
	})

	t.Run("leaves open fees untouched unless requested", func(t *testing.T) {
		f := newInvoiceFixture()
		tenantID := uuid.New()
		invoice := fixtureInvoice(t, tenantID, "1000.00")

		f.invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
		f.accountResolver.On("ResolveForMethod", mock.Anything, tenantID, billing.PaymentMethodCash).
			Return("1010", nil)
		f.numberGen.On("NextPaymentNumber", mock.Anything, tenantID).Return("PAY-20260828-00005", nil)
		f.paymentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

		result, err := f.svc.ApplyPayment(context.Background(), ApplyPaymentRequest{
			TenantID:  tenantID,
			InvoiceID: invoice.ID,
			Amount:    decimal.RequireFromString("100.00"),
			Method:    billing.PaymentMethodCash,
		})
		require.NoError(t, err)

		assert.Equal(t, 0, result.WaivedFees)
		assert.True(t, result.LateFeeAmount.IsZero())
		assert.True(t, result.Payment.PrincipalAmount().Equal(decimal.RequireFromString("100.00")))
		f.lateFeeRepo.AssertNotCalled(t, "ListOpenByInvoice")
		f.lateFeeRepo.AssertNotCalled(t, "SaveAll")
	})

	t.Run("advances an active installment plan", func(t *testing.T) {
		f := newInvoiceFixture()
		tenantID := uuid.New()
		invoice := fixtureInvoice(t, tenantID, "900.00")

		plan, installments, err := billing.NewInstallmentPlan(billing.NewInstallmentPlanParams{
			TenantID:             tenantID,
			Invoice:              invoice,
			NumberOfInstallments: 3,
			Frequency:            billing.FrequencyMonthly,
			StartDate:            time.Now(),
		})
		require.NoError(t, err)
		require.NoError(t, invoice.EnterInstallmentPlan())

		f.invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
		f.accountResolver.On("ResolveForMethod", mock.Anything, tenantID, billing.PaymentMethodBankTransfer).
			Return("1030", nil)
		f.numberGen.On("NextPaymentNumber", mock.Anything, tenantID).Return("PAY-20260828-00004", nil)
		f.paymentRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.planRepo.On("FindActiveByInvoice", mock.Anything, tenantID, invoice.ID).Return(plan, nil)
		f.planRepo.On("ListInstallments", mock.Anything, tenantID, plan.ID).Return(installments, nil)
		f.planRepo.On("SaveInstallment", mock.Anything, mock.MatchedBy(func(in *billing.Installment) bool {
			return in.Sequence == 1 && in.Status == billing.InstallmentStatusPaid
		})).Return(nil)
		f.planRepo.On("SaveWithLock", mock.Anything, plan).Return(nil)
		f.invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

		result, err := f.svc.ApplyPayment(context.Background(), ApplyPaymentRequest{
			TenantID:  tenantID,
			InvoiceID: invoice.ID,
			Amount:    decimal.RequireFromString("300.00"),
			Method:    billing.PaymentMethodBankTransfer,
		})
		require.NoError(t, err)

		assert.Equal(t, billing.InvoiceStatusInstallment, result.Invoice.Status)
		assert.True(t, plan.RemainingBalance.Equal(decimal.RequireFromString("600.00")))
		f.planRepo.AssertExpectations(t)
	})

	t.Run("rejects overpayment", func(t *testing.T) {
		f := newInvoiceFixture()
		tenantID := uuid.New()
		invoice := fixtureInvoice(t, tenantID, "100.00")

		f.invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)

		_, err := f.svc.ApplyPayment(context.Background(), ApplyPaymentRequest{
			TenantID:  tenantID,
			InvoiceID: invoice.ID,
			Amount:    decimal.RequireFromString("150.00"),
			Method:    billing.PaymentMethodCash,
		})
		require.Error(t, err)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "EXCEEDS_BALANCE_DUE", de.Code)
	})
}

func TestCancelInvoice(t *testing.T) {
	f := newInvoiceFixture()
	tenantID := uuid.New()
	invoice := fixtureInvoice(t, tenantID, "100.00")

	f.invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
	f.invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	cancelled, err := f.svc.CancelInvoice(context.Background(), tenantID, invoice.ID, "duplicate")
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusCancelled, cancelled.Status)
}

func TestRecordLateFee(t *testing.T) {
	f := newInvoiceFixture()
	tenantID := uuid.New()
	invoice := fixtureInvoice(t, tenantID, "100.00")

	f.invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
	f.lateFeeRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	fee, err := f.svc.RecordLateFee(context.Background(), tenantID, invoice.ID,
		decimal.RequireFromString("25.00"), "30 days overdue")
	require.NoError(t, err)
	assert.Equal(t, billing.LateFeeStatusPending, fee.Status)

	require.NoError(t, invoice.ApplyPayment(decimal.RequireFromString("100.00")))
	_, err = f.svc.RecordLateFee(context.Background(), tenantID, invoice.ID,
		decimal.RequireFromString("25.00"), "30 days overdue")
	assert.Error(t, err)
}
