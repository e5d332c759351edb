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

// AccountMappingModel maps a payment method to a ledger account code per
// tenant. Seeded by the migration with the default chart of accounts.
type AccountMappingModel struct {
	models.BaseModel
	TenantID    uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_account_mapping_tenant_method,priority:1"`
	Method      billing.PaymentMethod `gorm:"type:varchar(20);not null;uniqueIndex:idx_account_mapping_tenant_method,priority:2"`
	AccountCode string                `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (AccountMappingModel) TableName() string {
	return "account_mappings"
}

// defaultAccountCodes is the fallback chart used when a tenant has no
// explicit mapping row.
var defaultAccountCodes = map[billing.PaymentMethod]string{
	billing.PaymentMethodCash:          "1010",
	billing.PaymentMethodCard:          "1020",
	billing.PaymentMethodBankTransfer:  "1030",
	billing.PaymentMethodDigitalWallet: "1040",
	billing.PaymentMethodCheque:        "1050",
}

// GormAccountResolver resolves ledger account codes for payment posting.
// Tenant-specific mappings override the default chart.
type GormAccountResolver struct {
	db *gorm.DB
}

// NewGormAccountResolver creates a new GormAccountResolver
func NewGormAccountResolver(db *Database) *GormAccountResolver {
	return &GormAccountResolver{db: db.DB}
}

// ResolveForMethod returns the ledger account code for a payment method
func (r *GormAccountResolver) ResolveForMethod(ctx context.Context, tenantID uuid.UUID, method billing.PaymentMethod) (string, error) {
	var model AccountMappingModel
	err := conn(ctx, r.db).
		Where("tenant_id = ? AND method = ?", tenantID, method).
		First(&model).Error
	if err == nil {
		return model.AccountCode, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	code, ok := defaultAccountCodes[method]
	if !ok {
		return "", shared.ErrAccountUnresolved
	}
	return code, nil
}

// Ensure GormAccountResolver implements AccountResolver
var _ billing.AccountResolver = (*GormAccountResolver)(nil)
