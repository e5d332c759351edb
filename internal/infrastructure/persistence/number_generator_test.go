package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormNumberGenerator(t *testing.T) {
	today := time.Now().Format("20060102")

	t.Run("first invoice number of the day", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		mock.ExpectQuery(`INSERT INTO document_sequences`).
			WithArgs(tenantID, "INV", today).
			WillReturnRows(sqlmock.NewRows([]string{"last_number"}).AddRow(1))

		gen := NewGormNumberGenerator(db)
		number, err := gen.NextInvoiceNumber(context.Background(), tenantID)

		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV-%s-00001", today), number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments the tenant counter", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		mock.ExpectQuery(`INSERT INTO document_sequences`).
			WithArgs(tenantID, "PAY", today).
			WillReturnRows(sqlmock.NewRows([]string{"last_number"}).AddRow(42))

		gen := NewGormNumberGenerator(db)
		number, err := gen.NextPaymentNumber(context.Background(), tenantID)

		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("PAY-%s-00042", today), number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
