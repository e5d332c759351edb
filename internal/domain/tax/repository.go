package tax

import (
	"context"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// RecordFilter narrows tax record queries
type RecordFilter struct {
	shared.Filter
	Direction     *TaxDirection
	SourceID      *uuid.UUID
	ReverseCharge *bool
	From          *time.Time
	To            *time.Time
}

// TaxRecordRepository persists immutable tax records
type TaxRecordRepository interface {
	Save(ctx context.Context, record *TaxRecord) error
	SaveAll(ctx context.Context, records []*TaxRecord) error
	// ListByPeriod returns all records whose transaction date falls in
	// [start, end), unpaginated, for return aggregation.
	ListByPeriod(ctx context.Context, tenantID uuid.UUID, start, end time.Time) ([]TaxRecord, error)
	List(ctx context.Context, tenantID uuid.UUID, filter RecordFilter) (*shared.Paginated[TaxRecord], error)
}

// TaxReturnRepository persists period tax returns
type TaxReturnRepository interface {
	Save(ctx context.Context, ret *TaxReturn) error
	SaveWithLock(ctx context.Context, ret *TaxReturn) error
	FindByPeriod(ctx context.Context, tenantID uuid.UUID, period string) (*TaxReturn, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*TaxReturn, error)
	List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[TaxReturn], error)
}
