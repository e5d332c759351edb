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

// GormCustomerLookup resolves customer references from the customers table,
// which is owned by the partner context and read-only here.
type GormCustomerLookup struct {
	db *gorm.DB
}

// NewGormCustomerLookup creates a new GormCustomerLookup
func NewGormCustomerLookup(db *Database) *GormCustomerLookup {
	return &GormCustomerLookup{db: db.DB}
}

// FindByIDForTenant returns the customer projection for a tenant
func (l *GormCustomerLookup) FindByIDForTenant(ctx context.Context, tenantID, customerID uuid.UUID) (*billing.CustomerRef, error) {
	var model models.CustomerModel
	if err := conn(ctx, l.db).
		Where("tenant_id = ? AND id = ?", tenantID, customerID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &billing.CustomerRef{
		ID:     model.ID,
		Name:   model.Name,
		Email:  model.Email,
		Active: model.Status == "ACTIVE",
	}, nil
}

// Ensure GormCustomerLookup implements CustomerLookup
var _ billing.CustomerLookup = (*GormCustomerLookup)(nil)
