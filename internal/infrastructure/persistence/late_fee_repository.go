package persistence

import (
	"context"

	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLateFeeRepository implements LateFeeRepository using GORM
type GormLateFeeRepository struct {
	db *gorm.DB
}

// NewGormLateFeeRepository creates a new GormLateFeeRepository
func NewGormLateFeeRepository(db *Database) *GormLateFeeRepository {
	return &GormLateFeeRepository{db: db.DB}
}

// Save creates or updates a late fee charge
func (r *GormLateFeeRepository) Save(ctx context.Context, fee *billing.LateFeeCharge) error {
	model := models.LateFeeModelFromDomain(fee)
	return conn(ctx, r.db).Save(model).Error
}

// SaveAll persists a batch of late fee charges in one statement batch
func (r *GormLateFeeRepository) SaveAll(ctx context.Context, fees []*billing.LateFeeCharge) error {
	if len(fees) == 0 {
		return nil
	}
	feeModels := make([]*models.LateFeeModel, len(fees))
	for i, fee := range fees {
		feeModels[i] = models.LateFeeModelFromDomain(fee)
	}
	return conn(ctx, r.db).Save(feeModels).Error
}

// ListOpenByInvoice returns PENDING and APPLIED fees ordered oldest-first.
// The ordering drives the waive-allocation precedence.
func (r *GormLateFeeRepository) ListOpenByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.LateFeeCharge, error) {
	var feeModels []models.LateFeeModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND invoice_id = ? AND status IN ?", tenantID, invoiceID,
			[]billing.LateFeeStatus{billing.LateFeeStatusPending, billing.LateFeeStatusApplied}).
		Order("created_at ASC").
		Find(&feeModels).Error; err != nil {
		return nil, err
	}
	return lateFeeModelsToDomain(feeModels), nil
}

// ListByInvoice returns all late fee charges for an invoice
func (r *GormLateFeeRepository) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.LateFeeCharge, error) {
	var feeModels []models.LateFeeModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("created_at ASC").
		Find(&feeModels).Error; err != nil {
		return nil, err
	}
	return lateFeeModelsToDomain(feeModels), nil
}

func lateFeeModelsToDomain(feeModels []models.LateFeeModel) []billing.LateFeeCharge {
	fees := make([]billing.LateFeeCharge, len(feeModels))
	for i, model := range feeModels {
		fees[i] = *model.ToDomain()
	}
	return fees
}

// Ensure GormLateFeeRepository implements LateFeeRepository
var _ billing.LateFeeRepository = (*GormLateFeeRepository)(nil)
