package billing

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Installment count limits
const (
	MinInstallments = 2
	MaxInstallments = 24
)

// PlanStatus represents the status of an installment plan
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "ACTIVE"
	PlanStatusCompleted PlanStatus = "COMPLETED"
	PlanStatusCancelled PlanStatus = "CANCELLED"
	PlanStatusDefaulted PlanStatus = "DEFAULTED"
)

// IsValid checks if the plan status is valid
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusActive, PlanStatusCompleted, PlanStatusCancelled, PlanStatusDefaulted:
		return true
	}
	return false
}

// IsTerminal returns true if the plan is in a terminal state
func (s PlanStatus) IsTerminal() bool {
	return s == PlanStatusCompleted || s == PlanStatusCancelled
}

// PlanFrequency represents how often installments fall due
type PlanFrequency string

const (
	FrequencyWeekly   PlanFrequency = "WEEKLY"
	FrequencyBiweekly PlanFrequency = "BIWEEKLY"
	FrequencyMonthly  PlanFrequency = "MONTHLY"
)

// IsValid checks if the frequency is valid
func (f PlanFrequency) IsValid() bool {
	return f == FrequencyWeekly || f == FrequencyBiweekly || f == FrequencyMonthly
}

// Advance returns the date advanced by n periods of this frequency
func (f PlanFrequency) Advance(from time.Time, periods int) time.Time {
	switch f {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7*periods)
	case FrequencyBiweekly:
		return from.AddDate(0, 0, 14*periods)
	default:
		return from.AddDate(0, periods, 0)
	}
}

// MonthsEquivalent converts an installment count into an approximate number of
// months for simple-interest computation (WEEKLY: count/4, BIWEEKLY: count/2).
func (f PlanFrequency) MonthsEquivalent(count int) decimal.Decimal {
	n := decimal.NewFromInt(int64(count))
	switch f {
	case FrequencyWeekly:
		return n.Div(decimal.NewFromInt(4))
	case FrequencyBiweekly:
		return n.Div(decimal.NewFromInt(2))
	default:
		return n
	}
}

// InstallmentStatus represents the status of a single installment
type InstallmentStatus string

const (
	InstallmentStatusPending InstallmentStatus = "PENDING"
	InstallmentStatusPaid    InstallmentStatus = "PAID"
	InstallmentStatusLate    InstallmentStatus = "LATE"
)

// IsValid checks if the installment status is valid
func (s InstallmentStatus) IsValid() bool {
	return s == InstallmentStatusPending || s == InstallmentStatusPaid || s == InstallmentStatusLate
}

// Installment is one scheduled payment of an installment plan
type Installment struct {
	shared.BaseEntity
	TenantID uuid.UUID         `json:"tenant_id"`
	PlanID   uuid.UUID         `json:"plan_id"`
	Sequence int               `json:"sequence"`
	DueDate  time.Time         `json:"due_date"`
	Amount   decimal.Decimal   `json:"amount"`
	Status   InstallmentStatus `json:"status"`
	PaidAt   *time.Time        `json:"paid_at,omitempty"`
}

// MarkPaid marks the installment as paid
func (i *Installment) MarkPaid() error {
	if i.Status == InstallmentStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Installment is already paid")
	}
	now := time.Now()
	i.Status = InstallmentStatusPaid
	i.PaidAt = &now
	i.UpdatedAt = now
	return nil
}

// InstallmentPlan splits an invoice's outstanding balance into a fixed number
// of periodic payments, optionally inflated by simple interest.
//
// The interest model is a simple-interest approximation, not amortized or
// compound interest: interest = total * (annualRate/100/12) * months, where
// months is derived from the installment count and frequency.
type InstallmentPlan struct {
	shared.TenantAggregateRoot
	InvoiceID            uuid.UUID            `json:"invoice_id"`
	CustomerID           uuid.UUID            `json:"customer_id"`
	PlanName             string               `json:"plan_name"`
	NumberOfInstallments int                  `json:"number_of_installments"`
	Frequency            PlanFrequency        `json:"frequency"`
	CurrencyCode         valueobject.Currency `json:"currency_code"`
	TotalAmount          decimal.Decimal      `json:"total_amount"` // balance due + fee + interest
	InstallmentAmount    decimal.Decimal      `json:"installment_amount"`
	ProcessingFee        decimal.Decimal      `json:"processing_fee"`
	InterestRate         *decimal.Decimal     `json:"interest_rate,omitempty"` // annual, percent
	InterestAmount       decimal.Decimal      `json:"interest_amount"`
	StartDate            time.Time            `json:"start_date"`
	EndDate              time.Time            `json:"end_date"`
	RemainingBalance     decimal.Decimal      `json:"remaining_balance"`
	Status               PlanStatus           `json:"status"`
	AutoPay              bool                 `json:"auto_pay"`
	PaymentMethodHint    PaymentMethod        `json:"payment_method_hint,omitempty"`
	CancelledAt          *time.Time           `json:"cancelled_at,omitempty"`
	CancelReason         string               `json:"cancel_reason,omitempty"`
}

// NewInstallmentPlanParams groups the inputs required to create a plan
type NewInstallmentPlanParams struct {
	TenantID             uuid.UUID
	Invoice              *Invoice
	PlanName             string
	NumberOfInstallments int
	Frequency            PlanFrequency
	StartDate            time.Time
	ProcessingFee        decimal.Decimal
	InterestRate         *decimal.Decimal
	AutoPay              bool
	PaymentMethodHint    PaymentMethod
}

// NewInstallmentPlan derives a plan and its installment schedule from an
// invoice's outstanding balance. The final installment absorbs any rounding
// remainder so the installments always sum to the plan total exactly.
func NewInstallmentPlan(p NewInstallmentPlanParams) (*InstallmentPlan, []Installment, error) {
	if p.Invoice == nil {
		return nil, nil, shared.NewDomainError("INVALID_INVOICE", "Invoice is required")
	}
	if p.NumberOfInstallments < MinInstallments || p.NumberOfInstallments > MaxInstallments {
		return nil, nil, shared.NewDomainError("INVALID_INSTALLMENT_COUNT",
			fmt.Sprintf("Number of installments must be between %d and %d, got %d",
				MinInstallments, MaxInstallments, p.NumberOfInstallments))
	}
	if !p.Frequency.IsValid() {
		return nil, nil, shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Frequency %q is not valid", p.Frequency))
	}
	if p.ProcessingFee.IsNegative() {
		return nil, nil, shared.NewDomainError("INVALID_AMOUNT", "Processing fee must not be negative")
	}
	if p.InterestRate != nil && p.InterestRate.IsNegative() {
		return nil, nil, shared.NewDomainError("INVALID_AMOUNT", "Interest rate must not be negative")
	}
	if p.StartDate.IsZero() {
		return nil, nil, shared.NewDomainError("INVALID_START_DATE", "Start date is required")
	}
	if p.Invoice.Status.IsTerminal() {
		return nil, nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot create a plan for invoice in %s status", p.Invoice.Status))
	}
	if p.Invoice.BalanceDue.LessThanOrEqual(decimal.Zero) {
		return nil, nil, shared.NewDomainError("INVALID_STATE", "Invoice has no outstanding balance to schedule")
	}

	count := p.NumberOfInstallments
	principal := p.Invoice.BalanceDue.Add(p.ProcessingFee)

	interest := decimal.Zero
	if p.InterestRate != nil && p.InterestRate.IsPositive() {
		months := p.Frequency.MonthsEquivalent(count)
		monthlyRate := p.InterestRate.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
		interest = principal.Mul(monthlyRate).Mul(months).Round(2)
	}

	total := principal.Add(interest)
	per := total.Div(decimal.NewFromInt(int64(count))).Round(2)
	last := total.Sub(per.Mul(decimal.NewFromInt(int64(count - 1))))

	plan := &InstallmentPlan{
		TenantAggregateRoot:  shared.NewTenantAggregateRoot(p.TenantID),
		InvoiceID:            p.Invoice.ID,
		CustomerID:           p.Invoice.CustomerID,
		PlanName:             p.PlanName,
		NumberOfInstallments: count,
		Frequency:            p.Frequency,
		CurrencyCode:         p.Invoice.CurrencyCode,
		TotalAmount:          total,
		InstallmentAmount:    per,
		ProcessingFee:        p.ProcessingFee,
		InterestRate:         p.InterestRate,
		InterestAmount:       interest,
		StartDate:            p.StartDate,
		EndDate:              p.Frequency.Advance(p.StartDate, count),
		RemainingBalance:     total,
		Status:               PlanStatusActive,
		AutoPay:              p.AutoPay,
		PaymentMethodHint:    p.PaymentMethodHint,
	}

	installments := make([]Installment, count)
	for i := 0; i < count; i++ {
		amount := per
		if i == count-1 {
			amount = last
		}
		installments[i] = Installment{
			BaseEntity: shared.NewBaseEntity(),
			TenantID:   p.TenantID,
			PlanID:     plan.ID,
			Sequence:   i + 1,
			DueDate:    p.Frequency.Advance(p.StartDate, i+1),
			Amount:     amount,
			Status:     InstallmentStatusPending,
		}
	}

	plan.AddDomainEvent(NewInstallmentPlanCreatedEvent(plan))

	return plan, installments, nil
}

// Reschedule regenerates the plan with a new count, frequency and start date.
// Only allowed while no installment has been paid. The principal (balance plus
// processing fee) is kept; interest is recomputed for the new shape.
func (pl *InstallmentPlan) Reschedule(count int, freq PlanFrequency, startDate time.Time) ([]Installment, error) {
	if pl.Status != PlanStatusActive {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reschedule plan in %s status", pl.Status))
	}
	if count < MinInstallments || count > MaxInstallments {
		return nil, shared.NewDomainError("INVALID_INSTALLMENT_COUNT",
			fmt.Sprintf("Number of installments must be between %d and %d, got %d",
				MinInstallments, MaxInstallments, count))
	}
	if !freq.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Frequency %q is not valid", freq))
	}
	if startDate.IsZero() {
		startDate = pl.StartDate
	}

	principal := pl.TotalAmount.Sub(pl.InterestAmount)
	interest := decimal.Zero
	if pl.InterestRate != nil && pl.InterestRate.IsPositive() {
		months := freq.MonthsEquivalent(count)
		monthlyRate := pl.InterestRate.Div(decimal.NewFromInt(100)).Div(decimal.NewFromInt(12))
		interest = principal.Mul(monthlyRate).Mul(months).Round(2)
	}

	total := principal.Add(interest)
	per := total.Div(decimal.NewFromInt(int64(count))).Round(2)
	last := total.Sub(per.Mul(decimal.NewFromInt(int64(count - 1))))

	pl.NumberOfInstallments = count
	pl.Frequency = freq
	pl.TotalAmount = total
	pl.InstallmentAmount = per
	pl.InterestAmount = interest
	pl.StartDate = startDate
	pl.EndDate = freq.Advance(startDate, count)
	pl.RemainingBalance = total
	pl.UpdatedAt = time.Now()
	pl.IncrementVersion()

	installments := make([]Installment, count)
	for i := 0; i < count; i++ {
		amount := per
		if i == count-1 {
			amount = last
		}
		installments[i] = Installment{
			BaseEntity: shared.NewBaseEntity(),
			TenantID:   pl.TenantID,
			PlanID:     pl.ID,
			Sequence:   i + 1,
			DueDate:    freq.Advance(startDate, i+1),
			Amount:     amount,
			Status:     InstallmentStatusPending,
		}
	}

	return installments, nil
}

// ApplyCollection reduces the remaining balance after a payment against the
// parent invoice, completing the plan when the balance reaches zero.
func (pl *InstallmentPlan) ApplyCollection(amount decimal.Decimal) error {
	if pl.Status != PlanStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot collect against plan in %s status", pl.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Collection amount must be positive")
	}

	pl.RemainingBalance = pl.RemainingBalance.Sub(amount)
	if pl.RemainingBalance.LessThanOrEqual(decimal.Zero) {
		pl.RemainingBalance = decimal.Zero
		pl.Status = PlanStatusCompleted
		pl.AddDomainEvent(NewInstallmentPlanCompletedEvent(pl))
	}
	pl.UpdatedAt = time.Now()
	pl.IncrementVersion()

	return nil
}

// Cancel transitions the plan to the given terminal status. Cancellation
// proper (CANCELLED) is blocked once any installment has been paid; the caller
// passes hasPaidInstallments from a repository check inside the transaction.
func (pl *InstallmentPlan) Cancel(target PlanStatus, reason string, hasPaidInstallments bool) error {
	if pl.Status.IsTerminal() {
		if pl.Status == target {
			return nil // idempotent against the same target status
		}
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Plan is already %s", pl.Status))
	}
	if target != PlanStatusCancelled && target != PlanStatusCompleted {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel plan to %s status", target))
	}
	if target == PlanStatusCancelled && hasPaidInstallments {
		return shared.NewDomainError("HAS_PAID_INSTALLMENTS", "Cannot cancel a plan with paid installments")
	}

	now := time.Now()
	pl.Status = target
	pl.CancelledAt = &now
	pl.CancelReason = reason
	if target == PlanStatusCompleted {
		pl.RemainingBalance = decimal.Zero
	}
	pl.UpdatedAt = now
	pl.IncrementVersion()

	pl.AddDomainEvent(NewInstallmentPlanCancelledEvent(pl, target))

	return nil
}

// MarkDefaulted flags the plan as defaulted
func (pl *InstallmentPlan) MarkDefaulted(reason string) error {
	if pl.Status != PlanStatusActive {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot default plan in %s status", pl.Status))
	}
	pl.Status = PlanStatusDefaulted
	pl.CancelReason = reason
	pl.UpdatedAt = time.Now()
	pl.IncrementVersion()
	return nil
}

// SetAutoPay updates the auto-pay flag
func (pl *InstallmentPlan) SetAutoPay(autoPay bool) {
	pl.AutoPay = autoPay
	pl.UpdatedAt = time.Now()
	pl.IncrementVersion()
}

// SetPaymentMethodHint updates the preferred collection method
func (pl *InstallmentPlan) SetPaymentMethodHint(method PaymentMethod) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	pl.PaymentMethodHint = method
	pl.UpdatedAt = time.Now()
	pl.IncrementVersion()
	return nil
}

// IsActive returns true if the plan is active
func (pl *InstallmentPlan) IsActive() bool {
	return pl.Status == PlanStatusActive
}
