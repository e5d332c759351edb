package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/billing"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormAccountResolver_ResolveForMethod(t *testing.T) {
	columns := []string{"id", "created_at", "updated_at", "tenant_id", "method", "account_code"}

	t.Run("tenant mapping overrides the default chart", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		now := time.Now()
		mock.ExpectQuery(`SELECT \* FROM "account_mappings"`).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(uuid.New().String(), now, now, tenantID.String(), "CASH", "2010"))

		resolver := NewGormAccountResolver(db)
		code, err := resolver.ResolveForMethod(context.Background(), tenantID, billing.PaymentMethodCash)

		require.NoError(t, err)
		assert.Equal(t, "2010", code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("falls back to the default chart", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "account_mappings"`).
			WillReturnRows(sqlmock.NewRows(columns))

		resolver := NewGormAccountResolver(db)
		code, err := resolver.ResolveForMethod(context.Background(), uuid.New(), billing.PaymentMethodBankTransfer)

		require.NoError(t, err)
		assert.Equal(t, "1030", code)
	})

	t.Run("unmapped method resolves to an error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "account_mappings"`).
			WillReturnRows(sqlmock.NewRows(columns))

		resolver := NewGormAccountResolver(db)
		_, err := resolver.ResolveForMethod(context.Background(), uuid.New(), billing.PaymentMethod("BARTER"))

		assert.ErrorIs(t, err, shared.ErrAccountUnresolved)
	})
}
