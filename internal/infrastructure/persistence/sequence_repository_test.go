package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockSequenceRepository creates a GormSequenceRepository with a mocked SQL connection
func newMockSequenceRepository(t *testing.T) (*GormSequenceRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSequenceRepository(gormDB), mock, mockDB
}

func TestGormSequenceRepository_Next(t *testing.T) {
	t.Run("draws consecutive values from the counter", func(t *testing.T) {
		repo, mock, mockDB := newMockSequenceRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`INSERT INTO number_sequences .* ON CONFLICT .* RETURNING value`).
			WithArgs(tenantID, "INV", 2026).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1)))
		mock.ExpectQuery(`INSERT INTO number_sequences .* ON CONFLICT .* RETURNING value`).
			WithArgs(tenantID, "INV", 2026).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(2)))

		first, err := repo.Next(context.Background(), tenantID, shared.SeriesInvoice, 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(1), first)

		second, err := repo.Next(context.Background(), tenantID, shared.SeriesInvoice, 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(2), second)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("series and year address separate counters", func(t *testing.T) {
		repo, mock, mockDB := newMockSequenceRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`INSERT INTO number_sequences`).
			WithArgs(tenantID, "RCP", 2026).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1)))
		mock.ExpectQuery(`INSERT INTO number_sequences`).
			WithArgs(tenantID, "RCP", 2027).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1)))

		_, err := repo.Next(context.Background(), tenantID, shared.SeriesReceipt, 2026)
		require.NoError(t, err)
		_, err = repo.Next(context.Background(), tenantID, shared.SeriesReceipt, 2027)
		require.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFormatDocumentNumber(t *testing.T) {
	assert.Equal(t, "INV2026-00001", shared.FormatDocumentNumber(shared.SeriesInvoice, 2026, 1))
	assert.Equal(t, "RCP2026-00042", shared.FormatDocumentNumber(shared.SeriesReceipt, 2026, 42))
	assert.Equal(t, "LB2027-12345", shared.FormatDocumentNumber(shared.SeriesLayby, 2027, 12345))
}
