package billing

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InstallmentService manages installment plans over invoice balances
type InstallmentService struct {
	invoiceRepo billing.InvoiceRepository
	planRepo    billing.InstallmentPlanRepository
	txm         shared.TransactionManager
	logger      *zap.Logger
}

// NewInstallmentService creates a new InstallmentService
func NewInstallmentService(
	invoiceRepo billing.InvoiceRepository,
	planRepo billing.InstallmentPlanRepository,
	txm shared.TransactionManager,
	logger *zap.Logger,
) *InstallmentService {
	return &InstallmentService{
		invoiceRepo: invoiceRepo,
		planRepo:    planRepo,
		txm:         txm,
		logger:      logger,
	}
}

// CreatePlanRequest represents a request to schedule an invoice balance
type CreatePlanRequest struct {
	TenantID             uuid.UUID
	InvoiceID            uuid.UUID
	PlanName             string
	NumberOfInstallments int
	Frequency            billing.PlanFrequency
	StartDate            time.Time
	ProcessingFee        decimal.Decimal
	InterestRate         *decimal.Decimal
	AutoPay              bool
	PaymentMethodHint    billing.PaymentMethod
}

// PlanWithSchedule pairs a plan with its installment schedule
type PlanWithSchedule struct {
	Plan         *billing.InstallmentPlan `json:"plan"`
	Installments []billing.Installment    `json:"installments"`
}

// CreatePlan schedules an invoice's outstanding balance into installments.
// The invoice transitions to INSTALLMENT status in the same transaction.
func (s *InstallmentService) CreatePlan(ctx context.Context, req CreatePlanRequest) (*PlanWithSchedule, error) {
	var result *PlanWithSchedule
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, req.TenantID, req.InvoiceID)
		if err != nil {
			return err
		}

		if existing, err := s.planRepo.FindActiveByInvoice(ctx, req.TenantID, req.InvoiceID); err == nil && existing != nil {
			return shared.NewDomainError("PLAN_EXISTS", "Invoice already has an active installment plan")
		} else if err != nil && !isNotFound(err) {
			return err
		}

		plan, installments, err := billing.NewInstallmentPlan(billing.NewInstallmentPlanParams{
			TenantID:             req.TenantID,
			Invoice:              invoice,
			PlanName:             req.PlanName,
			NumberOfInstallments: req.NumberOfInstallments,
			Frequency:            req.Frequency,
			StartDate:            req.StartDate,
			ProcessingFee:        req.ProcessingFee,
			InterestRate:         req.InterestRate,
			AutoPay:              req.AutoPay,
			PaymentMethodHint:    req.PaymentMethodHint,
		})
		if err != nil {
			return err
		}

		if err := invoice.EnterInstallmentPlan(); err != nil {
			return err
		}

		if err := s.planRepo.Save(ctx, plan, installments); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
			return err
		}

		result = &PlanWithSchedule{Plan: plan, Installments: installments}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("installment plan created",
		zap.String("tenant_id", req.TenantID.String()),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.Int("installments", req.NumberOfInstallments),
		zap.String("total", result.Plan.TotalAmount.String()))

	return result, nil
}

// UpdatePlanRequest represents changes to an existing plan. Nil fields are
// left untouched. Reshaping the schedule (count, frequency or start date)
// is only allowed while no installment has been paid.
type UpdatePlanRequest struct {
	TenantID             uuid.UUID
	PlanID               uuid.UUID
	PlanName             *string
	NumberOfInstallments *int
	Frequency            *billing.PlanFrequency
	StartDate            *time.Time
	AutoPay              *bool
	PaymentMethodHint    *billing.PaymentMethod
}

// UpdatePlan applies plan changes, regenerating the schedule when reshaped
func (s *InstallmentService) UpdatePlan(ctx context.Context, req UpdatePlanRequest) (*PlanWithSchedule, error) {
	var result *PlanWithSchedule
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		plan, err := s.planRepo.FindByIDForTenant(ctx, req.TenantID, req.PlanID)
		if err != nil {
			return err
		}

		if req.PlanName != nil {
			plan.PlanName = *req.PlanName
		}
		if req.AutoPay != nil {
			plan.SetAutoPay(*req.AutoPay)
		}
		if req.PaymentMethodHint != nil {
			if err := plan.SetPaymentMethodHint(*req.PaymentMethodHint); err != nil {
				return err
			}
		}

		reshaped := req.NumberOfInstallments != nil || req.Frequency != nil || req.StartDate != nil
		if reshaped {
			paid, err := s.planRepo.CountPaidInstallments(ctx, req.TenantID, plan.ID)
			if err != nil {
				return err
			}
			if paid > 0 {
				return shared.NewDomainError("HAS_PAID_INSTALLMENTS", "Cannot reshape a plan with paid installments")
			}

			count := plan.NumberOfInstallments
			if req.NumberOfInstallments != nil {
				count = *req.NumberOfInstallments
			}
			freq := plan.Frequency
			if req.Frequency != nil {
				freq = *req.Frequency
			}
			start := plan.StartDate
			if req.StartDate != nil {
				start = *req.StartDate
			}

			installments, err := plan.Reschedule(count, freq, start)
			if err != nil {
				return err
			}
			if err := s.planRepo.ReplaceSchedule(ctx, req.TenantID, plan.ID, installments); err != nil {
				return err
			}
			if err := s.planRepo.SaveWithLock(ctx, plan); err != nil {
				return err
			}
			result = &PlanWithSchedule{Plan: plan, Installments: installments}
			return nil
		}

		if err := s.planRepo.SaveWithLock(ctx, plan); err != nil {
			return err
		}
		installments, err := s.planRepo.ListInstallments(ctx, req.TenantID, plan.ID)
		if err != nil {
			return err
		}
		result = &PlanWithSchedule{Plan: plan, Installments: installments}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CancelPlan cancels an active plan and restores the invoice status. Plans
// with paid installments cannot be cancelled.
func (s *InstallmentService) CancelPlan(ctx context.Context, tenantID, planID uuid.UUID, reason string) (*billing.InstallmentPlan, error) {
	var plan *billing.InstallmentPlan
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		plan, err = s.planRepo.FindByIDForTenant(ctx, tenantID, planID)
		if err != nil {
			return err
		}

		paid, err := s.planRepo.CountPaidInstallments(ctx, tenantID, planID)
		if err != nil {
			return err
		}
		if err := plan.Cancel(billing.PlanStatusCancelled, reason, paid > 0); err != nil {
			return err
		}

		invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, plan.InvoiceID)
		if err != nil {
			return err
		}
		if err := invoice.RevertFromInstallmentPlan(false); err != nil {
			return err
		}

		if err := s.planRepo.SaveWithLock(ctx, plan); err != nil {
			return err
		}
		return s.invoiceRepo.SaveWithLock(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("installment plan cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan_id", planID.String()),
		zap.String("reason", reason))

	return plan, nil
}

// DeletePlan removes a plan that has collected nothing, restoring the invoice
func (s *InstallmentService) DeletePlan(ctx context.Context, tenantID, planID uuid.UUID) error {
	err := s.txm.WithinTx(ctx, func(ctx context.Context) error {
		plan, err := s.planRepo.FindByIDForTenant(ctx, tenantID, planID)
		if err != nil {
			return err
		}

		paid, err := s.planRepo.CountPaidInstallments(ctx, tenantID, planID)
		if err != nil {
			return err
		}
		if paid > 0 {
			return shared.NewDomainError("HAS_PAID_INSTALLMENTS", "Cannot delete a plan with paid installments")
		}

		if plan.IsActive() {
			invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, plan.InvoiceID)
			if err != nil {
				return err
			}
			if err := invoice.RevertFromInstallmentPlan(false); err != nil {
				return err
			}
			if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
				return err
			}
		}

		return s.planRepo.Delete(ctx, tenantID, planID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("installment plan deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan_id", planID.String()))

	return nil
}

// GetPlan returns a plan with its schedule
func (s *InstallmentService) GetPlan(ctx context.Context, tenantID, planID uuid.UUID) (*PlanWithSchedule, error) {
	plan, err := s.planRepo.FindByIDForTenant(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	installments, err := s.planRepo.ListInstallments(ctx, tenantID, planID)
	if err != nil {
		return nil, err
	}
	return &PlanWithSchedule{Plan: plan, Installments: installments}, nil
}

// ListPlans returns plans matching the filter
func (s *InstallmentService) ListPlans(ctx context.Context, tenantID uuid.UUID, filter billing.PlanFilter) (*shared.Paginated[billing.InstallmentPlan], error) {
	return s.planRepo.List(ctx, tenantID, filter)
}
