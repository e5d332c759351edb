package billing

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "CASH"
	PaymentMethodCard          PaymentMethod = "CARD"
	PaymentMethodBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentMethodDigitalWallet PaymentMethod = "DIGITAL_WALLET"
	PaymentMethodCheque        PaymentMethod = "CHEQUE"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer,
		PaymentMethodDigitalWallet, PaymentMethodCheque:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment records money applied to an invoice. Payments are immutable once
// created; corrections are modeled as new payments or external reversals.
type Payment struct {
	shared.BaseEntity
	TenantID      uuid.UUID            `json:"tenant_id"`
	InvoiceID     uuid.UUID            `json:"invoice_id"`
	PaymentNumber string               `json:"payment_number"`
	Amount        decimal.Decimal      `json:"amount"` // In the invoice currency
	CurrencyCode  valueobject.Currency `json:"currency_code"`
	Method        PaymentMethod        `json:"method"`
	// Original requested amount and currency before conversion, kept for audit.
	OriginalAmount   decimal.Decimal      `json:"original_amount"`
	OriginalCurrency valueobject.Currency `json:"original_currency"`
	ExchangeRate     decimal.Decimal      `json:"exchange_rate"`
	LateFeeAmount    decimal.Decimal      `json:"late_fee_amount"`
	TransactionRef   string               `json:"transaction_ref,omitempty"`
	Notes            string               `json:"notes,omitempty"`
	PaymentDate      time.Time            `json:"payment_date"`
	CreatedBy        *uuid.UUID           `json:"created_by,omitempty"`
}

// NewPaymentParams groups the inputs required to record a payment
type NewPaymentParams struct {
	TenantID         uuid.UUID
	InvoiceID        uuid.UUID
	PaymentNumber    string
	Amount           decimal.Decimal
	CurrencyCode     valueobject.Currency
	Method           PaymentMethod
	OriginalAmount   decimal.Decimal
	OriginalCurrency valueobject.Currency
	ExchangeRate     decimal.Decimal
	LateFeeAmount    decimal.Decimal
	TransactionRef   string
	Notes            string
	PaymentDate      time.Time
	CreatedBy        *uuid.UUID
}

// NewPayment creates a new immutable payment record
func NewPayment(p NewPaymentParams) (*Payment, error) {
	if p.InvoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if p.PaymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_NUMBER", "Payment number cannot be empty")
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !p.Method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}

	paymentDate := p.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	rate := p.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	originalAmount := p.OriginalAmount
	if originalAmount.IsZero() {
		originalAmount = p.Amount
	}
	originalCurrency := p.OriginalCurrency
	if originalCurrency == "" {
		originalCurrency = p.CurrencyCode
	}

	return &Payment{
		BaseEntity:       shared.NewBaseEntity(),
		TenantID:         p.TenantID,
		InvoiceID:        p.InvoiceID,
		PaymentNumber:    p.PaymentNumber,
		Amount:           p.Amount,
		CurrencyCode:     p.CurrencyCode,
		Method:           p.Method,
		OriginalAmount:   originalAmount,
		OriginalCurrency: originalCurrency,
		ExchangeRate:     rate,
		LateFeeAmount:    p.LateFeeAmount,
		TransactionRef:   p.TransactionRef,
		Notes:            p.Notes,
		PaymentDate:      paymentDate,
		CreatedBy:        p.CreatedBy,
	}, nil
}

// WasConverted returns true if the payment was requested in a different currency
func (p *Payment) WasConverted() bool {
	return p.OriginalCurrency != p.CurrencyCode
}

// PrincipalAmount returns the portion of the payment applied to the invoice
// balance rather than to late fees.
func (p *Payment) PrincipalAmount() decimal.Decimal {
	return p.Amount.Sub(p.LateFeeAmount)
}
