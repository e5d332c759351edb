package billing

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentPlanCreatedEvent is raised when an invoice balance is scheduled
type InstallmentPlanCreatedEvent struct {
	shared.BaseDomainEvent
	PlanID               uuid.UUID       `json:"plan_id"`
	InvoiceID            uuid.UUID       `json:"invoice_id"`
	CustomerID           uuid.UUID       `json:"customer_id"`
	NumberOfInstallments int             `json:"number_of_installments"`
	Frequency            PlanFrequency   `json:"frequency"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	StartDate            time.Time       `json:"start_date"`
	EndDate              time.Time       `json:"end_date"`
}

// EventType returns the event type name
func (e *InstallmentPlanCreatedEvent) EventType() string {
	return "InstallmentPlanCreated"
}

// NewInstallmentPlanCreatedEvent creates a new InstallmentPlanCreatedEvent
func NewInstallmentPlanCreatedEvent(pl *InstallmentPlan) *InstallmentPlanCreatedEvent {
	return &InstallmentPlanCreatedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent("InstallmentPlanCreated", "InstallmentPlan", pl.ID, pl.TenantID),
		PlanID:               pl.ID,
		InvoiceID:            pl.InvoiceID,
		CustomerID:           pl.CustomerID,
		NumberOfInstallments: pl.NumberOfInstallments,
		Frequency:            pl.Frequency,
		TotalAmount:          pl.TotalAmount,
		StartDate:            pl.StartDate,
		EndDate:              pl.EndDate,
	}
}

// InstallmentPlanCompletedEvent is raised when the remaining balance reaches zero
type InstallmentPlanCompletedEvent struct {
	shared.BaseDomainEvent
	PlanID    uuid.UUID `json:"plan_id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
}

// EventType returns the event type name
func (e *InstallmentPlanCompletedEvent) EventType() string {
	return "InstallmentPlanCompleted"
}

// NewInstallmentPlanCompletedEvent creates a new InstallmentPlanCompletedEvent
func NewInstallmentPlanCompletedEvent(pl *InstallmentPlan) *InstallmentPlanCompletedEvent {
	return &InstallmentPlanCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InstallmentPlanCompleted", "InstallmentPlan", pl.ID, pl.TenantID),
		PlanID:          pl.ID,
		InvoiceID:       pl.InvoiceID,
	}
}

// InstallmentPlanCancelledEvent is raised when a plan is cancelled or closed early
type InstallmentPlanCancelledEvent struct {
	shared.BaseDomainEvent
	PlanID       uuid.UUID  `json:"plan_id"`
	InvoiceID    uuid.UUID  `json:"invoice_id"`
	TargetStatus PlanStatus `json:"target_status"`
	CancelReason string     `json:"cancel_reason"`
}

// EventType returns the event type name
func (e *InstallmentPlanCancelledEvent) EventType() string {
	return "InstallmentPlanCancelled"
}

// NewInstallmentPlanCancelledEvent creates a new InstallmentPlanCancelledEvent
func NewInstallmentPlanCancelledEvent(pl *InstallmentPlan, target PlanStatus) *InstallmentPlanCancelledEvent {
	return &InstallmentPlanCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InstallmentPlanCancelled", "InstallmentPlan", pl.ID, pl.TenantID),
		PlanID:          pl.ID,
		InvoiceID:       pl.InvoiceID,
		TargetStatus:    target,
		CancelReason:    pl.CancelReason,
	}
}
