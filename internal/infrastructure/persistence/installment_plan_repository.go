package persistence

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInstallmentPlanRepository implements InstallmentPlanRepository using GORM
type GormInstallmentPlanRepository struct {
	db *gorm.DB
}

// NewGormInstallmentPlanRepository creates a new GormInstallmentPlanRepository
func NewGormInstallmentPlanRepository(db *Database) *GormInstallmentPlanRepository {
	return &GormInstallmentPlanRepository{db: db.DB}
}

// Save persists a plan together with its installment schedule
func (r *GormInstallmentPlanRepository) Save(ctx context.Context, plan *billing.InstallmentPlan, installments []billing.Installment) error {
	db := conn(ctx, r.db)
	if err := db.Save(models.InstallmentPlanModelFromDomain(plan)).Error; err != nil {
		return err
	}
	if len(installments) == 0 {
		return nil
	}
	installmentModels := make([]*models.InstallmentModel, len(installments))
	for i := range installments {
		installmentModels[i] = models.InstallmentModelFromDomain(&installments[i])
	}
	return db.Save(installmentModels).Error
}

// SaveWithLock saves the plan with optimistic locking. Select("*") forces
// GORM to write zero-valued fields such as auto_pay=false.
func (r *GormInstallmentPlanRepository) SaveWithLock(ctx context.Context, plan *billing.InstallmentPlan) error {
	model := models.InstallmentPlanModelFromDomain(plan)
	result := conn(ctx, r.db).
		Model(model).
		Where("id = ? AND version = ?", plan.ID, plan.Version-1).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// FindByIDForTenant finds a plan by ID for a specific tenant
func (r *GormInstallmentPlanRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.InstallmentPlan, error) {
	var model models.InstallmentPlanModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByInvoice finds the ACTIVE plan attached to an invoice, if any
func (r *GormInstallmentPlanRepository) FindActiveByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*billing.InstallmentPlan, error) {
	var model models.InstallmentPlanModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND invoice_id = ? AND status = ?", tenantID, invoiceID, billing.PlanStatusActive).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// List returns plans for a tenant matching the filter, paginated
func (r *GormInstallmentPlanRepository) List(ctx context.Context, tenantID uuid.UUID, filter billing.PlanFilter) (*shared.Paginated[billing.InstallmentPlan], error) {
	base := conn(ctx, r.db).Model(&models.InstallmentPlanModel{}).
		Where("tenant_id = ?", tenantID)
	base = r.applyPlanFilter(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Filter)
	orderBy := ValidateSortField(filter.OrderBy, InstallmentPlanSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var planModels []models.InstallmentPlanModel
	if err := base.
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&planModels).Error; err != nil {
		return nil, err
	}

	plans := make([]billing.InstallmentPlan, len(planModels))
	for i, model := range planModels {
		plans[i] = *model.ToDomain()
	}
	result := shared.NewPaginated(plans, total, page, pageSize)
	return &result, nil
}

// ListInstallments returns the schedule of a plan ordered by sequence
func (r *GormInstallmentPlanRepository) ListInstallments(ctx context.Context, tenantID, planID uuid.UUID) ([]billing.Installment, error) {
	var installmentModels []models.InstallmentModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND plan_id = ?", tenantID, planID).
		Order("sequence ASC").
		Find(&installmentModels).Error; err != nil {
		return nil, err
	}
	installments := make([]billing.Installment, len(installmentModels))
	for i, model := range installmentModels {
		installments[i] = *model.ToDomain()
	}
	return installments, nil
}

// SaveInstallment persists a single installment
func (r *GormInstallmentPlanRepository) SaveInstallment(ctx context.Context, installment *billing.Installment) error {
	model := models.InstallmentModelFromDomain(installment)
	return conn(ctx, r.db).Save(model).Error
}

// CountPaidInstallments counts installments of the plan in PAID status
func (r *GormInstallmentPlanRepository) CountPaidInstallments(ctx context.Context, tenantID, planID uuid.UUID) (int64, error) {
	var count int64
	if err := conn(ctx, r.db).
		Model(&models.InstallmentModel{}).
		Where("tenant_id = ? AND plan_id = ? AND status = ?", tenantID, planID, billing.InstallmentStatusPaid).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ReplaceSchedule deletes the pending schedule and writes a new one
func (r *GormInstallmentPlanRepository) ReplaceSchedule(ctx context.Context, tenantID, planID uuid.UUID, installments []billing.Installment) error {
	db := conn(ctx, r.db)
	if err := db.
		Where("tenant_id = ? AND plan_id = ?", tenantID, planID).
		Delete(&models.InstallmentModel{}).Error; err != nil {
		return err
	}
	if len(installments) == 0 {
		return nil
	}
	installmentModels := make([]*models.InstallmentModel, len(installments))
	for i := range installments {
		installmentModels[i] = models.InstallmentModelFromDomain(&installments[i])
	}
	return db.Create(installmentModels).Error
}

// Delete removes a plan and its schedule
func (r *GormInstallmentPlanRepository) Delete(ctx context.Context, tenantID, planID uuid.UUID) error {
	db := conn(ctx, r.db)
	if err := db.
		Where("tenant_id = ? AND plan_id = ?", tenantID, planID).
		Delete(&models.InstallmentModel{}).Error; err != nil {
		return err
	}
	result := db.Delete(&models.InstallmentPlanModel{}, "tenant_id = ? AND id = ?", tenantID, planID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyPlanFilter applies filter options to the query
func (r *GormInstallmentPlanRepository) applyPlanFilter(query *gorm.DB, filter billing.PlanFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("plan_name ILIKE ?", searchPattern)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if len(filter.Status) > 0 {
		query = query.Where("status IN ?", filter.Status)
	}
	return query
}

// Ensure GormInstallmentPlanRepository implements InstallmentPlanRepository
var _ billing.InstallmentPlanRepository = (*GormInstallmentPlanRepository)(nil)
