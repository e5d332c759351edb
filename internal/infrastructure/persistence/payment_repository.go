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

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *Database) *GormPaymentRepository {
	return &GormPaymentRepository{db: db.DB}
}

// Save creates a payment record. Payments are immutable; Save is only called
// once per payment.
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return conn(ctx, r.db).Create(model).Error
}

// FindByIDForTenant finds a payment by ID for a specific tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
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

// ListByInvoice returns all payments applied to an invoice, oldest first
func (r *GormPaymentRepository) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("payment_date ASC, created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// List returns payments for a tenant matching the filter, paginated
func (r *GormPaymentRepository) List(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentFilter) (*shared.Paginated[billing.Payment], error) {
	base := conn(ctx, r.db).Model(&models.PaymentModel{}).
		Where("tenant_id = ?", tenantID)
	base = r.applyPaymentFilter(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Filter)
	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "payment_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var paymentModels []models.PaymentModel
	if err := base.
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	result := shared.NewPaginated(payments, total, page, pageSize)
	return &result, nil
}

// applyPaymentFilter applies filter options to the query
func (r *GormPaymentRepository) applyPaymentFilter(query *gorm.DB, filter billing.PaymentFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("payment_number ILIKE ? OR transaction_ref ILIKE ?", searchPattern, searchPattern)
	}
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.PaidFrom != nil {
		query = query.Where("payment_date >= ?", *filter.PaidFrom)
	}
	if filter.PaidTo != nil {
		query = query.Where("payment_date <= ?", *filter.PaidTo)
	}
	return query
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
