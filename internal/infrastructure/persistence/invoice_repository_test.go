package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoice(t *testing.T, tenantID uuid.UUID) *billing.Invoice {
	t.Helper()
	due := time.Now().AddDate(0, 1, 0)
	inv, err := billing.NewInvoice(billing.NewInvoiceParams{
		TenantID:      tenantID,
		InvoiceNumber: "INV-20260828-00001",
		CustomerID:    uuid.New(),
		CustomerName:  "Acme Trading LLC",
		Type:          billing.InvoiceTypeStandard,
		Subtotal:      decimal.NewFromInt(1000),
		TaxAmount:     decimal.NewFromInt(50),
		CurrencyCode:  valueobject.AED,
		DueDate:       &due,
	})
	require.NoError(t, err)
	return inv
}

func TestGormInvoiceRepository_FindByIDForTenant(t *testing.T) {
	t.Run("maps missing row to not found", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		id := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE tenant_id = \$1 AND id = \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		repo := NewGormInvoiceRepository(db)
		_, err := repo.FindByIDForTenant(context.Background(), tenantID, id)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	t.Run("returns optimistic lock error when no row matches the version", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		inv := testInvoice(t, tenantID)
		require.NoError(t, inv.ApplyPayment(decimal.NewFromInt(100)))

		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewGormInvoiceRepository(db)
		err := repo.SaveWithLock(context.Background(), inv)

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", de.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("succeeds when the stored version matches", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		inv := testInvoice(t, tenantID)
		require.NoError(t, inv.ApplyPayment(decimal.NewFromInt(100)))

		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewGormInvoiceRepository(db)
		err := repo.SaveWithLock(context.Background(), inv)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
