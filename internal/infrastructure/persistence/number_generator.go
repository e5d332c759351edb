package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/billing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNumberGenerator issues sequential document numbers from a per-tenant,
// per-day counter row. The upsert increments the counter atomically, so two
// concurrent transactions can never take the same number; the loser of the
// row lock simply waits and gets the next value.
type GormNumberGenerator struct {
	db *gorm.DB
}

// NewGormNumberGenerator creates a new GormNumberGenerator
func NewGormNumberGenerator(db *Database) *GormNumberGenerator {
	return &GormNumberGenerator{db: db.DB}
}

// NextInvoiceNumber generates the next invoice number, format INV-YYYYMMDD-XXXXX
func (g *GormNumberGenerator) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return g.nextNumber(ctx, tenantID, "INV")
}

// NextPaymentNumber generates the next payment number, format PAY-YYYYMMDD-XXXXX
func (g *GormNumberGenerator) NextPaymentNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return g.nextNumber(ctx, tenantID, "PAY")
}

func (g *GormNumberGenerator) nextNumber(ctx context.Context, tenantID uuid.UUID, docType string) (string, error) {
	date := time.Now().Format("20060102")

	var seq int64
	err := conn(ctx, g.db).Raw(`
		INSERT INTO document_sequences (tenant_id, doc_type, seq_date, last_number)
		VALUES (?, ?, ?, 1)
		ON CONFLICT (tenant_id, doc_type, seq_date)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number`,
		tenantID, docType, date,
	).Scan(&seq).Error
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%s-%05d", docType, date, seq), nil
}

// Ensure GormNumberGenerator implements NumberGenerator
var _ billing.NumberGenerator = (*GormNumberGenerator)(nil)
