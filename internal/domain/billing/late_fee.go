package billing

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LateFeeStatus represents the status of a late fee charge
type LateFeeStatus string

const (
	LateFeeStatusPending LateFeeStatus = "PENDING" // Accrued, not yet applied
	LateFeeStatusApplied LateFeeStatus = "APPLIED" // Applied to the customer account
	LateFeeStatusWaived  LateFeeStatus = "WAIVED"  // Covered by a payment or written off
)

// IsValid checks if the late fee status is valid
func (s LateFeeStatus) IsValid() bool {
	return s == LateFeeStatusPending || s == LateFeeStatusApplied || s == LateFeeStatusWaived
}

// IsOpen returns true if the fee can still be allocated against a payment
func (s LateFeeStatus) IsOpen() bool {
	return s == LateFeeStatusPending || s == LateFeeStatusApplied
}

// LateFeeCharge is a chargeable amount accrued on an overdue invoice. It is
// created by an external overdue-detection process and waived here when a
// payment covers it.
type LateFeeCharge struct {
	shared.BaseEntity
	TenantID          uuid.UUID       `json:"tenant_id"`
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	Amount            decimal.Decimal `json:"amount"`
	Status            LateFeeStatus   `json:"status"`
	Reason            string          `json:"reason,omitempty"`
	WaivedAt          *time.Time      `json:"waived_at,omitempty"`
	WaivedByPaymentID *uuid.UUID      `json:"waived_by_payment_id,omitempty"`
}

// NewLateFeeCharge creates a new pending late fee charge
func NewLateFeeCharge(tenantID, invoiceID uuid.UUID, amount decimal.Decimal, reason string) (*LateFeeCharge, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Late fee amount must be positive")
	}
	return &LateFeeCharge{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		InvoiceID:  invoiceID,
		Amount:     amount,
		Status:     LateFeeStatusPending,
		Reason:     reason,
	}, nil
}

// Waive marks the fee as fully waived by the given payment
func (f *LateFeeCharge) Waive(paymentID uuid.UUID) error {
	if !f.Status.IsOpen() {
		return shared.NewDomainError("INVALID_STATE", "Late fee is already waived")
	}
	now := time.Now()
	f.Status = LateFeeStatusWaived
	f.WaivedAt = &now
	f.WaivedByPaymentID = &paymentID
	f.UpdatedAt = now
	return nil
}

// AllocateLateFees allocates a payment budget across open late fees. The fees
// must be ordered oldest-first; allocation stops at the first fee the remaining
// budget cannot fully cover, since partial waivers are not supported. Returns
// the fees to waive and the total allocated.
func AllocateLateFees(fees []LateFeeCharge, budget decimal.Decimal) ([]*LateFeeCharge, decimal.Decimal) {
	waived := make([]*LateFeeCharge, 0, len(fees))
	allocated := decimal.Zero
	remaining := budget

	for i := range fees {
		fee := &fees[i]
		if !fee.Status.IsOpen() {
			continue
		}
		if fee.Amount.GreaterThan(remaining) {
			break
		}
		remaining = remaining.Sub(fee.Amount)
		allocated = allocated.Add(fee.Amount)
		waived = append(waived, fee)
	}

	return waived, allocated
}
