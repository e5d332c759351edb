package billing

import (
	"context"
	"errors"
	"time"

	appcurrency "github.com/erp/ledger/internal/application/currency"
	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CurrencyConverter converts payment amounts into the invoice currency
type CurrencyConverter interface {
	Convert(ctx context.Context, tenantID uuid.UUID, amount decimal.Decimal, from, to valueobject.Currency, asOf time.Time) (*appcurrency.ConversionResult, error)
}

// InvoiceService orchestrates the receivables ledger: issuing invoices,
// applying payments and cancelling documents. Every mutation runs inside a
// transaction and persists aggregates with optimistic locking.
type InvoiceService struct {
	invoiceRepo     billing.InvoiceRepository
	paymentRepo     billing.PaymentRepository
	lateFeeRepo     billing.LateFeeRepository
	planRepo        billing.InstallmentPlanRepository
	taxRecordRepo   tax.TaxRecordRepository
	converter       CurrencyConverter
	customerLookup  billing.CustomerLookup
	numberGen       billing.NumberGenerator
	accountResolver billing.AccountResolver
	txm             shared.TransactionManager
	logger          *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	lateFeeRepo billing.LateFeeRepository,
	planRepo billing.InstallmentPlanRepository,
	taxRecordRepo tax.TaxRecordRepository,
	converter CurrencyConverter,
	customerLookup billing.CustomerLookup,
	numberGen billing.NumberGenerator,
	accountResolver billing.AccountResolver,
	txm shared.TransactionManager,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:     invoiceRepo,
		paymentRepo:     paymentRepo,
		lateFeeRepo:     lateFeeRepo,
		planRepo:        planRepo,
		taxRecordRepo:   taxRecordRepo,
		converter:       converter,
		customerLookup:  customerLookup,
		numberGen:       numberGen,
		accountResolver: accountResolver,
		txm:             txm,
		logger:          logger,
	}
}

// CreateInvoiceRequest represents a request to issue an invoice
type CreateInvoiceRequest struct {
	TenantID          uuid.UUID
	CustomerID        uuid.UUID
	SourceOrderID     *uuid.UUID
	SourceOrderNumber string
	Type              billing.InvoiceType
	Subtotal          decimal.Decimal
	TaxRate           decimal.Decimal
	TaxAmount         decimal.Decimal
	DiscountAmount    decimal.Decimal
	CurrencyCode      valueobject.Currency
	IssueDate         time.Time
	DueDate           *time.Time
	ReverseCharge     bool
	Remark            string
}

// CreateInvoice issues a new invoice and captures its output tax record
func (s *InvoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (*billing.Invoice, error) {
	customer, err := s.customerLookup.FindByIDForTenant(ctx, req.TenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if !customer.Active {
		return nil, shared.NewDomainError("CUSTOMER_INACTIVE", "Cannot invoice an inactive customer")
	}

	invoiceType := req.Type
	if invoiceType == "" {
		invoiceType = billing.InvoiceTypeStandard
	}
	currencyCode := req.CurrencyCode
	if currencyCode == "" {
		currencyCode = valueobject.DefaultCurrency
	}

	var invoice *billing.Invoice
	err = s.txm.WithinTx(ctx, func(ctx context.Context) error {
		number, err := s.numberGen.NextInvoiceNumber(ctx, req.TenantID)
		if err != nil {
			return err
		}

		invoice, err = billing.NewInvoice(billing.NewInvoiceParams{
			TenantID:          req.TenantID,
			InvoiceNumber:     number,
			CustomerID:        customer.ID,
			CustomerName:      customer.Name,
			SourceOrderID:     req.SourceOrderID,
			SourceOrderNumber: req.SourceOrderNumber,
			Type:              invoiceType,
			Subtotal:          req.Subtotal,
			TaxAmount:         req.TaxAmount,
			DiscountAmount:    req.DiscountAmount,
			CurrencyCode:      currencyCode,
			IssueDate:         req.IssueDate,
			DueDate:           req.DueDate,
			Remark:            req.Remark,
		})
		if err != nil {
			return err
		}

		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return err
		}

		record, err := tax.NewTaxRecord(tax.NewTaxRecordParams{
			TenantID:        req.TenantID,
			Direction:       tax.TaxDirectionOutput,
			SourceID:        invoice.ID,
			SourceNumber:    invoice.InvoiceNumber,
			Description:     req.Remark,
			TaxableAmount:   req.Subtotal.Sub(req.DiscountAmount),
			TaxRate:         req.TaxRate,
			TaxAmount:       req.TaxAmount,
			CurrencyCode:    currencyCode,
			ReverseCharge:   req.ReverseCharge,
			TransactionDate: invoice.IssueDate,
		})
		if err != nil {
			return err
		}
		return s.taxRecordRepo.Save(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice created",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total", invoice.TotalAmount.String()))

	return invoice, nil
}

// ApplyPaymentRequest represents a request to apply a payment to an invoice
type ApplyPaymentRequest struct {
	TenantID        uuid.UUID
	InvoiceID       uuid.UUID
	Amount          decimal.Decimal
	CurrencyCode    valueobject.Currency
	Method          billing.PaymentMethod
	PaymentDate     time.Time
	TransactionRef  string
	Notes           string
	ApplyToLateFees bool
	OperatorID      *uuid.UUID
}

// ApplyPaymentResult is the outcome of a payment application
type ApplyPaymentResult struct {
	Payment       *billing.Payment `json:"payment"`
	Invoice       *billing.Invoice `json:"invoice"`
	WaivedFees    int              `json:"waived_fees"`
	LateFeeAmount decimal.Decimal  `json:"late_fee_amount"`
	AccountCode   string           `json:"account_code"`
}

// ApplyPayment converts the payment into the invoice currency, waives open
// late fees oldest-first when ApplyToLateFees is set, applies the full amount
// to the invoice balance and advances any active installment plan. The whole
// sequence is atomic.
func (s *InvoiceService) ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (*ApplyPaymentResult, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !req.Method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	var result *ApplyPaymentResult
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, req.TenantID, req.InvoiceID)
		if err != nil {
			return err
		}

		amount := req.Amount
		rate := decimal.NewFromInt(1)
		originalCurrency := req.CurrencyCode
		if originalCurrency == "" {
			originalCurrency = invoice.CurrencyCode
		}
		if originalCurrency != invoice.CurrencyCode {
			conversion, err := s.converter.Convert(ctx, req.TenantID, req.Amount, originalCurrency, invoice.CurrencyCode, paymentDate)
			if err != nil {
				return err
			}
			amount = conversion.ConvertedAmount
			rate = conversion.Rate
		}

		var waived []*billing.LateFeeCharge
		feeTotal := decimal.Zero
		if req.ApplyToLateFees {
			openFees, err := s.lateFeeRepo.ListOpenByInvoice(ctx, req.TenantID, invoice.ID)
			if err != nil {
				return err
			}
			waived, feeTotal = billing.AllocateLateFees(openFees, amount)
		}

		if err := invoice.ApplyPayment(amount); err != nil {
			return err
		}

		accountCode, err := s.accountResolver.ResolveForMethod(ctx, req.TenantID, req.Method)
		if err != nil {
			return err
		}

		number, err := s.numberGen.NextPaymentNumber(ctx, req.TenantID)
		if err != nil {
			return err
		}
		payment, err := billing.NewPayment(billing.NewPaymentParams{
			TenantID:         req.TenantID,
			InvoiceID:        invoice.ID,
			PaymentNumber:    number,
			Amount:           amount,
			CurrencyCode:     invoice.CurrencyCode,
			Method:           req.Method,
			OriginalAmount:   req.Amount,
			OriginalCurrency: originalCurrency,
			ExchangeRate:     rate,
			LateFeeAmount:    feeTotal,
			TransactionRef:   req.TransactionRef,
			Notes:            req.Notes,
			PaymentDate:      paymentDate,
			CreatedBy:        req.OperatorID,
		})
		if err != nil {
			return err
		}
		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return err
		}

		for _, fee := range waived {
			if err := fee.Waive(payment.ID); err != nil {
				return err
			}
		}
		if len(waived) > 0 {
			if err := s.lateFeeRepo.SaveAll(ctx, waived); err != nil {
				return err
			}
		}

		if err := s.advancePlan(ctx, invoice, amount); err != nil {
			return err
		}

		if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
			return err
		}

		result = &ApplyPaymentResult{
			Payment:       payment,
			Invoice:       invoice,
			WaivedFees:    len(waived),
			LateFeeAmount: feeTotal,
			AccountCode:   accountCode,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment applied",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("payment_number", result.Payment.PaymentNumber),
		zap.String("amount", result.Payment.Amount.String()),
		zap.Int("waived_fees", result.WaivedFees))

	return result, nil
}

// advancePlan pushes a collected amount through the invoice's active plan,
// marking covered installments paid in schedule order.
func (s *InvoiceService) advancePlan(ctx context.Context, invoice *billing.Invoice, amount decimal.Decimal) error {
	if invoice.Status != billing.InvoiceStatusInstallment && invoice.Status != billing.InvoiceStatusPaid {
		return nil
	}

	plan, err := s.planRepo.FindActiveByInvoice(ctx, invoice.TenantID, invoice.ID)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	if err := plan.ApplyCollection(amount); err != nil {
		return err
	}

	installments, err := s.planRepo.ListInstallments(ctx, invoice.TenantID, plan.ID)
	if err != nil {
		return err
	}
	remaining := amount
	for i := range installments {
		in := &installments[i]
		if in.Status == billing.InstallmentStatusPaid {
			continue
		}
		if in.Amount.GreaterThan(remaining) {
			break
		}
		remaining = remaining.Sub(in.Amount)
		if err := in.MarkPaid(); err != nil {
			return err
		}
		if err := s.planRepo.SaveInstallment(ctx, in); err != nil {
			return err
		}
	}

	if err := s.planRepo.SaveWithLock(ctx, plan); err != nil {
		return err
	}

	if plan.Status == billing.PlanStatusCompleted && invoice.Status == billing.InvoiceStatusInstallment {
		return invoice.RevertFromInstallmentPlan(true)
	}
	return nil
}

// GetInvoice returns an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*billing.Invoice, error) {
	return s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
}

// ListInvoices returns invoices matching the filter
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter billing.InvoiceFilter) (*shared.Paginated[billing.Invoice], error) {
	return s.invoiceRepo.List(ctx, tenantID, filter)
}

// ListPayments returns the payments recorded against an invoice
func (s *InvoiceService) ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	if _, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByInvoice(ctx, tenantID, invoiceID)
}

// SearchPayments returns payments matching the filter across all invoices
func (s *InvoiceService) SearchPayments(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentFilter) (*shared.Paginated[billing.Payment], error) {
	return s.paymentRepo.List(ctx, tenantID, filter)
}

// ListLateFees returns the late fee charges recorded against an invoice
func (s *InvoiceService) ListLateFees(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.LateFeeCharge, error) {
	if _, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID); err != nil {
		return nil, err
	}
	return s.lateFeeRepo.ListByInvoice(ctx, tenantID, invoiceID)
}

// CancelInvoice cancels an unpaid invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID, reason string) (*billing.Invoice, error) {
	var invoice *billing.Invoice
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := invoice.Cancel(reason); err != nil {
			return err
		}
		return s.invoiceRepo.SaveWithLock(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("reason", reason))

	return invoice, nil
}

// RecordLateFee accrues a late fee charge on an overdue invoice
func (s *InvoiceService) RecordLateFee(ctx context.Context, tenantID, invoiceID uuid.UUID, amount decimal.Decimal, reason string) (*billing.LateFeeCharge, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.Status.IsOutstanding() {
		return nil, shared.NewDomainError("INVALID_STATE", "Late fees can only accrue on outstanding invoices")
	}

	fee, err := billing.NewLateFeeCharge(tenantID, invoiceID, amount, reason)
	if err != nil {
		return nil, err
	}
	if err := s.lateFeeRepo.Save(ctx, fee); err != nil {
		return nil, err
	}
	return fee, nil
}

func isNotFound(err error) bool {
	var de *shared.DomainError
	return errors.As(err, &de) && de.Code == "NOT_FOUND"
}
