package billing

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter narrows invoice queries. All fields are optional; zero values
// are ignored. Filters compose as AND conditions.
type InvoiceFilter struct {
	shared.Filter
	CustomerID    *uuid.UUID
	Status        []InvoiceStatus
	Type          *InvoiceType
	CurrencyCode  string
	IssuedFrom    *time.Time
	IssuedTo      *time.Time
	DueFrom       *time.Time
	DueTo         *time.Time
	OverdueAsOf   *time.Time // Outstanding invoices with DueDate before this
	SourceOrderID *uuid.UUID
}

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *Invoice) error
	// SaveWithLock persists the invoice only if the stored version matches,
	// returning OPTIMISTIC_LOCK_ERROR on a concurrent modification.
	SaveWithLock(ctx context.Context, invoice *Invoice) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindByNumberForTenant(ctx context.Context, tenantID uuid.UUID, invoiceNumber string) (*Invoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) (*shared.Paginated[Invoice], error)
	// ListOutstanding returns all invoices carrying a balance due for the
	// tenant, unpaginated, for aging aggregation.
	ListOutstanding(ctx context.Context, tenantID uuid.UUID) ([]Invoice, error)
}

// PaymentFilter narrows payment queries
type PaymentFilter struct {
	shared.Filter
	InvoiceID *uuid.UUID
	Method    *PaymentMethod
	PaidFrom  *time.Time
	PaidTo    *time.Time
}

// PaymentRepository persists immutable payment records
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Payment, error)
	List(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (*shared.Paginated[Payment], error)
}

// LateFeeRepository persists late fee charges
type LateFeeRepository interface {
	Save(ctx context.Context, fee *LateFeeCharge) error
	SaveAll(ctx context.Context, fees []*LateFeeCharge) error
	// ListOpenByInvoice returns PENDING and APPLIED fees ordered oldest-first.
	ListOpenByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]LateFeeCharge, error)
	ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]LateFeeCharge, error)
}

// PlanFilter narrows installment plan queries
type PlanFilter struct {
	shared.Filter
	InvoiceID  *uuid.UUID
	CustomerID *uuid.UUID
	Status     []PlanStatus
}

// InstallmentPlanRepository persists installment plans and their schedules
type InstallmentPlanRepository interface {
	Save(ctx context.Context, plan *InstallmentPlan, installments []Installment) error
	SaveWithLock(ctx context.Context, plan *InstallmentPlan) error
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*InstallmentPlan, error)
	FindActiveByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InstallmentPlan, error)
	List(ctx context.Context, tenantID uuid.UUID, filter PlanFilter) (*shared.Paginated[InstallmentPlan], error)
	ListInstallments(ctx context.Context, tenantID, planID uuid.UUID) ([]Installment, error)
	SaveInstallment(ctx context.Context, installment *Installment) error
	// CountPaidInstallments counts installments of the plan in PAID status.
	CountPaidInstallments(ctx context.Context, tenantID, planID uuid.UUID) (int64, error)
	// ReplaceSchedule deletes the pending schedule and writes a new one.
	ReplaceSchedule(ctx context.Context, tenantID, planID uuid.UUID, installments []Installment) error
	Delete(ctx context.Context, tenantID, planID uuid.UUID) error
}
