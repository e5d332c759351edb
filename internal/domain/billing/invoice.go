package billing

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "PENDING"        // Issued, no payment applied yet
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID" // 0 < paid < total
	InvoiceStatusInstallment   InvoiceStatus = "INSTALLMENT"    // Balance scheduled under an installment plan
	InvoiceStatusPaid          InvoiceStatus = "PAID"           // Balance due is zero
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"      // Cancelled before any payment
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPartiallyPaid, InvoiceStatusInstallment,
		InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// CanApplyPayment returns true if payments can be applied in this status
func (s InvoiceStatus) CanApplyPayment() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPartiallyPaid || s == InvoiceStatusInstallment
}

// IsOutstanding returns true if the status counts toward receivables aging
func (s InvoiceStatus) IsOutstanding() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPartiallyPaid || s == InvoiceStatusInstallment
}

// InvoiceType represents the commercial type of an invoice
type InvoiceType string

const (
	InvoiceTypeStandard   InvoiceType = "STANDARD"
	InvoiceTypeProforma   InvoiceType = "PROFORMA"
	InvoiceTypeRecurring  InvoiceType = "RECURRING"
	InvoiceTypePartial    InvoiceType = "PARTIAL"
	InvoiceTypeCreditNote InvoiceType = "CREDIT_NOTE"
	InvoiceTypeDebitNote  InvoiceType = "DEBIT_NOTE"
)

// IsValid checks if the invoice type is valid
func (t InvoiceType) IsValid() bool {
	switch t {
	case InvoiceTypeStandard, InvoiceTypeProforma, InvoiceTypeRecurring,
		InvoiceTypePartial, InvoiceTypeCreditNote, InvoiceTypeDebitNote:
		return true
	}
	return false
}

// Invoice is the aggregate root of the receivables ledger. It tracks money owed
// by a customer and enforces the balance invariant
// BalanceDue == TotalAmount - PaidAmount at every observable instant.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber     string               `json:"invoice_number"`
	CustomerID        uuid.UUID            `json:"customer_id"`
	CustomerName      string               `json:"customer_name"`
	SourceOrderID     *uuid.UUID           `json:"source_order_id,omitempty"`
	SourceOrderNumber string               `json:"source_order_number,omitempty"`
	Type              InvoiceType          `json:"type"`
	Subtotal          decimal.Decimal      `json:"subtotal"`
	TaxAmount         decimal.Decimal      `json:"tax_amount"`
	DiscountAmount    decimal.Decimal      `json:"discount_amount"`
	TotalAmount       decimal.Decimal      `json:"total_amount"`
	CurrencyCode      valueobject.Currency `json:"currency_code"`
	PaidAmount        decimal.Decimal      `json:"paid_amount"`
	BalanceDue        decimal.Decimal      `json:"balance_due"`
	IssueDate         time.Time            `json:"issue_date"`
	DueDate           *time.Time           `json:"due_date,omitempty"`
	Status            InvoiceStatus        `json:"status"`
	// PriorStatus remembers the status before an installment plan was attached
	// so cancelling the plan can restore it.
	PriorStatus  InvoiceStatus `json:"prior_status,omitempty"`
	Remark       string        `json:"remark,omitempty"`
	PaidAt       *time.Time    `json:"paid_at,omitempty"`
	CancelledAt  *time.Time    `json:"cancelled_at,omitempty"`
	CancelReason string        `json:"cancel_reason,omitempty"`
}

// NewInvoiceParams groups the inputs required to issue an invoice
type NewInvoiceParams struct {
	TenantID          uuid.UUID
	InvoiceNumber     string
	CustomerID        uuid.UUID
	CustomerName      string
	SourceOrderID     *uuid.UUID
	SourceOrderNumber string
	Type              InvoiceType
	Subtotal          decimal.Decimal
	TaxAmount         decimal.Decimal
	DiscountAmount    decimal.Decimal
	CurrencyCode      valueobject.Currency
	IssueDate         time.Time
	DueDate           *time.Time
	Remark            string
}

// NewInvoice creates a new invoice in PENDING status
func NewInvoice(p NewInvoiceParams) (*Invoice, error) {
	if p.InvoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(p.InvoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if p.CustomerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if p.CustomerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !p.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_INVOICE_TYPE", fmt.Sprintf("Invoice type %q is not valid", p.Type))
	}
	if !p.CurrencyCode.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Currency code %q is not valid", p.CurrencyCode))
	}
	if p.Subtotal.IsNegative() || p.TaxAmount.IsNegative() || p.DiscountAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Subtotal, tax and discount must not be negative")
	}

	total := p.Subtotal.Add(p.TaxAmount).Sub(p.DiscountAmount)
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must not be negative")
	}

	issueDate := p.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(p.TenantID),
		InvoiceNumber:       p.InvoiceNumber,
		CustomerID:          p.CustomerID,
		CustomerName:        p.CustomerName,
		SourceOrderID:       p.SourceOrderID,
		SourceOrderNumber:   p.SourceOrderNumber,
		Type:                p.Type,
		Subtotal:            p.Subtotal,
		TaxAmount:           p.TaxAmount,
		DiscountAmount:      p.DiscountAmount,
		TotalAmount:         total,
		CurrencyCode:        p.CurrencyCode,
		PaidAmount:          decimal.Zero,
		BalanceDue:          total,
		IssueDate:           issueDate,
		DueDate:             p.DueDate,
		Status:              InvoiceStatusPending,
		Remark:              p.Remark,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))

	return inv, nil
}

// ApplyPayment applies a payment amount (already in the invoice currency) to
// the invoice. The amount must not exceed the current balance due.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if !inv.Status.CanApplyPayment() {
		if inv.Status == InvoiceStatusPaid {
			return shared.NewDomainError("INVOICE_ALREADY_PAID", "Invoice is already fully paid")
		}
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(inv.BalanceDue) {
		return shared.NewDomainError("EXCEEDS_BALANCE_DUE",
			fmt.Sprintf("Payment amount %s exceeds balance due %s",
				amount.StringFixed(2), inv.BalanceDue.StringFixed(2)))
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.BalanceDue = inv.TotalAmount.Sub(inv.PaidAmount)

	if inv.BalanceDue.LessThanOrEqual(decimal.Zero) {
		now := time.Now()
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else if inv.Status != InvoiceStatusInstallment {
		inv.Status = InvoiceStatusPartiallyPaid
		inv.AddDomainEvent(NewInvoicePartiallyPaidEvent(inv, amount))
	}

	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// Cancel cancels the invoice. Only unpaid invoices may be cancelled.
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if inv.PaidAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot cancel an invoice with existing payments")
	}
	if inv.Status == InvoiceStatusInstallment {
		return shared.NewDomainError("HAS_INSTALLMENT_PLAN", "Cancel the installment plan before cancelling the invoice")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))

	return nil
}

// EnterInstallmentPlan transitions the invoice into INSTALLMENT status,
// remembering the prior status for reversion.
func (inv *Invoice) EnterInstallmentPlan() error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot create a plan for invoice in %s status", inv.Status))
	}
	if inv.Status == InvoiceStatusInstallment {
		return shared.NewDomainError("PLAN_EXISTS", "Invoice already has an installment plan")
	}
	if inv.BalanceDue.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_STATE", "Invoice has no outstanding balance to schedule")
	}

	inv.PriorStatus = inv.Status
	inv.Status = InvoiceStatusInstallment
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// RevertFromInstallmentPlan restores the invoice after its plan is cancelled
// or deleted. When the plan completed, the invoice is marked PAID instead.
func (inv *Invoice) RevertFromInstallmentPlan(planCompleted bool) error {
	if inv.Status != InvoiceStatusInstallment {
		return shared.NewDomainError("INVALID_STATE", "Invoice is not under an installment plan")
	}

	now := time.Now()
	if planCompleted {
		inv.Status = InvoiceStatusPaid
		inv.PaidAmount = inv.TotalAmount
		inv.BalanceDue = decimal.Zero
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else {
		prior := inv.PriorStatus
		if prior == "" {
			prior = InvoiceStatusPending
		}
		// Re-derive from paid amount: a plan may have collected part of the balance.
		if inv.PaidAmount.GreaterThan(decimal.Zero) {
			prior = InvoiceStatusPartiallyPaid
		}
		inv.Status = prior
	}
	inv.PriorStatus = ""
	inv.UpdatedAt = now
	inv.IncrementVersion()

	return nil
}

// SetDueDate updates the due date
func (inv *Invoice) SetDueDate(dueDate *time.Time) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify due date for invoice in terminal state")
	}
	inv.DueDate = dueDate
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
	return nil
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsCancelled returns true if the invoice is cancelled
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == InvoiceStatusCancelled
}

// IsOverdue returns true if the invoice is past due date with balance outstanding
func (inv *Invoice) IsOverdue(asOf time.Time) bool {
	if !inv.Status.IsOutstanding() || inv.DueDate == nil {
		return false
	}
	return asOf.After(*inv.DueDate)
}

// DaysOverdue returns the number of whole days past due as of the given time
// (0 if not overdue or without a due date).
func (inv *Invoice) DaysOverdue(asOf time.Time) int {
	if inv.DueDate == nil {
		return 0
	}
	days := int(asOf.Sub(*inv.DueDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// GetTotalAmountMoney returns the total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.TotalAmount, inv.CurrencyCode)
	return m
}

// GetBalanceDueMoney returns the balance due as Money
func (inv *Invoice) GetBalanceDueMoney() valueobject.Money {
	m, _ := valueobject.NewMoney(inv.BalanceDue, inv.CurrencyCode)
	return m
}
