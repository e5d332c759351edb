package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/tax"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaxRecordRepository implements TaxRecordRepository using GORM
type GormTaxRecordRepository struct {
	db *gorm.DB
}

// NewGormTaxRecordRepository creates a new GormTaxRecordRepository
func NewGormTaxRecordRepository(db *Database) *GormTaxRecordRepository {
	return &GormTaxRecordRepository{db: db.DB}
}

// Save creates a tax record. Records are immutable once written.
func (r *GormTaxRecordRepository) Save(ctx context.Context, record *tax.TaxRecord) error {
	model := models.TaxRecordModelFromDomain(record)
	return conn(ctx, r.db).Create(model).Error
}

// SaveAll persists a batch of tax records
func (r *GormTaxRecordRepository) SaveAll(ctx context.Context, records []*tax.TaxRecord) error {
	if len(records) == 0 {
		return nil
	}
	recordModels := make([]*models.TaxRecordModel, len(records))
	for i, record := range records {
		recordModels[i] = models.TaxRecordModelFromDomain(record)
	}
	return conn(ctx, r.db).Create(recordModels).Error
}

// ListByPeriod returns all records whose transaction date falls in [start, end)
func (r *GormTaxRecordRepository) ListByPeriod(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]tax.TaxRecord, error) {
	var recordModels []models.TaxRecordModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND transaction_date >= ? AND transaction_date < ?", tenantID, start, end).
		Order("transaction_date ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]tax.TaxRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// List returns tax records for a tenant matching the filter, paginated
func (r *GormTaxRecordRepository) List(ctx context.Context, tenantID uuid.UUID, filter tax.RecordFilter) (*shared.Paginated[tax.TaxRecord], error) {
	base := conn(ctx, r.db).Model(&models.TaxRecordModel{}).
		Where("tenant_id = ?", tenantID)
	base = r.applyRecordFilter(base, filter)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter.Filter)
	orderBy := ValidateSortField(filter.OrderBy, TaxRecordSortFields, "transaction_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var recordModels []models.TaxRecordModel
	if err := base.
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]tax.TaxRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	result := shared.NewPaginated(records, total, page, pageSize)
	return &result, nil
}

// applyRecordFilter applies filter options to the query
func (r *GormTaxRecordRepository) applyRecordFilter(query *gorm.DB, filter tax.RecordFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("source_number ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}
	if filter.Direction != nil {
		query = query.Where("direction = ?", *filter.Direction)
	}
	if filter.SourceID != nil {
		query = query.Where("source_id = ?", *filter.SourceID)
	}
	if filter.ReverseCharge != nil {
		query = query.Where("reverse_charge = ?", *filter.ReverseCharge)
	}
	if filter.From != nil {
		query = query.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("transaction_date < ?", *filter.To)
	}
	return query
}

// GormTaxReturnRepository implements TaxReturnRepository using GORM
type GormTaxReturnRepository struct {
	db *gorm.DB
}

// NewGormTaxReturnRepository creates a new GormTaxReturnRepository
func NewGormTaxReturnRepository(db *Database) *GormTaxReturnRepository {
	return &GormTaxReturnRepository{db: db.DB}
}

// Save creates or updates a tax return
func (r *GormTaxReturnRepository) Save(ctx context.Context, ret *tax.TaxReturn) error {
	model := models.TaxReturnModelFromDomain(ret)
	return conn(ctx, r.db).Save(model).Error
}

// SaveWithLock saves the return with optimistic locking. Select("*") forces
// GORM to write zero-valued fields.
func (r *GormTaxReturnRepository) SaveWithLock(ctx context.Context, ret *tax.TaxReturn) error {
	model := models.TaxReturnModelFromDomain(ret)
	result := conn(ctx, r.db).
		Model(model).
		Where("id = ? AND version = ?", ret.ID, ret.Version-1).
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

// FindByPeriod finds the return for a tenant and period
func (r *GormTaxReturnRepository) FindByPeriod(ctx context.Context, tenantID uuid.UUID, period string) (*tax.TaxReturn, error) {
	var model models.TaxReturnModel
	if err := conn(ctx, r.db).
		Where("tenant_id = ? AND period = ?", tenantID, period).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a tax return by ID for a specific tenant
func (r *GormTaxReturnRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*tax.TaxReturn, error) {
	var model models.TaxReturnModel
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

// List returns tax returns for a tenant, paginated
func (r *GormTaxReturnRepository) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[tax.TaxReturn], error) {
	base := conn(ctx, r.db).Model(&models.TaxReturnModel{}).
		Where("tenant_id = ?", tenantID)
	if filter.Search != "" {
		base = base.Where("period LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	page, pageSize := normalizePage(filter)
	orderBy := ValidateSortField(filter.OrderBy, TaxReturnSortFields, "period")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var returnModels []models.TaxReturnModel
	if err := base.
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&returnModels).Error; err != nil {
		return nil, err
	}

	returns := make([]tax.TaxReturn, len(returnModels))
	for i, model := range returnModels {
		returns[i] = *model.ToDomain()
	}
	result := shared.NewPaginated(returns, total, page, pageSize)
	return &result, nil
}

// Ensure the GORM repositories implement the domain interfaces
var (
	_ tax.TaxRecordRepository = (*GormTaxRecordRepository)(nil)
	_ tax.TaxReturnRepository = (*GormTaxReturnRepository)(nil)
)
