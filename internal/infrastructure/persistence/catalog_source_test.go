package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/higiplas/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockCatalogSource creates a GormCatalogSource with a mocked SQL connection
func newMockCatalogSource(t *testing.T) (*GormCatalogSource, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormCatalogSource(gormDB), mock, mockDB
}

func TestGormCatalogSource_FetchAll(t *testing.T) {
	t.Run("maps active products to entries with derived fields", func(t *testing.T) {
		source, mock, mockDB := newMockCatalogSource(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		productID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "code", "name", "selling_price", "status"}).
			AddRow(productID, tenantID, "ALC001", "Alcool 96% 1L", decimal.NewFromInt(12), "active").
			AddRow(uuid.New(), tenantID, "", "Esponja Dupla Face", decimal.Zero, "active")

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE tenant_id = \$1 AND status = \$2 ORDER BY id`).
			WithArgs(tenantID, "active").
			WillReturnRows(rows)

		entries, err := source.FetchAll(context.Background(), tenantID)

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, productID, entries[0].ID)
		assert.Equal(t, "ALC001", entries[0].Code)
		assert.Equal(t, "ALCOOL 96 1L", entries[0].NormalizedName)
		assert.Equal(t, []string{"ESPONJA", "DUPLA", "FACE"}, entries[1].Keywords)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty catalog yields empty slice", func(t *testing.T) {
		source, mock, mockDB := newMockCatalogSource(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE tenant_id = \$1 AND status = \$2 ORDER BY id`).
			WithArgs(tenantID, "active").
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code", "name", "selling_price", "status"}))

		entries, err := source.FetchAll(context.Background(), tenantID)

		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("store failure wraps ErrCatalogUnavailable", func(t *testing.T) {
		source, mock, mockDB := newMockCatalogSource(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "products"`).
			WithArgs(tenantID, "active").
			WillReturnError(errors.New("connection refused"))

		_, err := source.FetchAll(context.Background(), tenantID)

		require.Error(t, err)
		assert.ErrorIs(t, err, catalog.ErrCatalogUnavailable)
	})
}
