package billing

import (
	"context"
	"time"

	appcurrency "github.com/erp/ledger/internal/application/currency"
	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumberForTenant(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) List(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) (*shared.Paginated[billing.Invoice], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[billing.Invoice]), args.Error(1)
}

func (m *MockInvoiceRepository) ListOutstanding(ctx context.Context, tenantID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) List(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentFilter) (*shared.Paginated[billing.Payment], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[billing.Payment]), args.Error(1)
}

type MockLateFeeRepository struct {
	mock.Mock
}

func (m *MockLateFeeRepository) Save(ctx context.Context, fee *billing.LateFeeCharge) error {
	return m.Called(ctx, fee).Error(0)
}

func (m *MockLateFeeRepository) SaveAll(ctx context.Context, fees []*billing.LateFeeCharge) error {
	return m.Called(ctx, fees).Error(0)
}

func (m *MockLateFeeRepository) ListOpenByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.LateFeeCharge, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.LateFeeCharge), args.Error(1)
}

func (m *MockLateFeeRepository) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.LateFeeCharge, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.LateFeeCharge), args.Error(1)
}

type MockInstallmentPlanRepository struct {
	mock.Mock
}

func (m *MockInstallmentPlanRepository) Save(ctx context.Context, plan *billing.InstallmentPlan, installments []billing.Installment) error {
	return m.Called(ctx, plan, installments).Error(0)
}

func (m *MockInstallmentPlanRepository) SaveWithLock(ctx context.Context, plan *billing.InstallmentPlan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *MockInstallmentPlanRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.InstallmentPlan, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.InstallmentPlan), args.Error(1)
}

func (m *MockInstallmentPlanRepository) FindActiveByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*billing.InstallmentPlan, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.InstallmentPlan), args.Error(1)
}

func (m *MockInstallmentPlanRepository) List(ctx context.Context, tenantID uuid.UUID, filter billing.PlanFilter) (*shared.Paginated[billing.InstallmentPlan], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[billing.InstallmentPlan]), args.Error(1)
}

func (m *MockInstallmentPlanRepository) ListInstallments(ctx context.Context, tenantID, planID uuid.UUID) ([]billing.Installment, error) {
	args := m.Called(ctx, tenantID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Installment), args.Error(1)
}

func (m *MockInstallmentPlanRepository) SaveInstallment(ctx context.Context, installment *billing.Installment) error {
	return m.Called(ctx, installment).Error(0)
}

func (m *MockInstallmentPlanRepository) CountPaidInstallments(ctx context.Context, tenantID, planID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, planID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInstallmentPlanRepository) ReplaceSchedule(ctx context.Context, tenantID, planID uuid.UUID, installments []billing.Installment) error {
	return m.Called(ctx, tenantID, planID, installments).Error(0)
}

func (m *MockInstallmentPlanRepository) Delete(ctx context.Context, tenantID, planID uuid.UUID) error {
	return m.Called(ctx, tenantID, planID).Error(0)
}

type MockTaxRecordRepository struct {
	mock.Mock
}

func (m *MockTaxRecordRepository) Save(ctx context.Context, record *tax.TaxRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockTaxRecordRepository) SaveAll(ctx context.Context, records []*tax.TaxRecord) error {
	return m.Called(ctx, records).Error(0)
}

func (m *MockTaxRecordRepository) ListByPeriod(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]tax.TaxRecord, error) {
	args := m.Called(ctx, tenantID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tax.TaxRecord), args.Error(1)
}

func (m *MockTaxRecordRepository) List(ctx context.Context, tenantID uuid.UUID, filter tax.RecordFilter) (*shared.Paginated[tax.TaxRecord], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[tax.TaxRecord]), args.Error(1)
}

type MockCurrencyConverter struct {
	mock.Mock
}

func (m *MockCurrencyConverter) Convert(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, from, to valueobject.Currency, asOf time.Time) (*appcurrency.ConversionResult, error) {
	args := m.Called(ctx, tenantID, amount, from, to, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcurrency.ConversionResult), args.Error(1)
}

type MockCustomerLookup struct {
	mock.Mock
}

func (m *MockCustomerLookup) FindByIDForTenant(ctx context.Context, tenantID, customerID uuid.UUID) (*billing.CustomerRef, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.CustomerRef), args.Error(1)
}

type MockNumberGenerator struct {
	mock.Mock
}

func (m *MockNumberGenerator) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockNumberGenerator) NextPaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

type MockAccountResolver struct {
	mock.Mock
}

func (m *MockAccountResolver) ResolveForMethod(ctx context.Context, tenantID uuid.UUID, method billing.PaymentMethod) (string, error) {
	args := m.Called(ctx, tenantID, method)
	return args.String(0), args.Error(1)
}

// passthroughTxManager runs the callback directly, no transaction semantics
type passthroughTxManager struct{}

func (passthroughTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
