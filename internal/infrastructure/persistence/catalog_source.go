package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/higiplas/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRow mirrors the matchable columns of the products table owned by
// the product CRUD layer. This package only ever reads it.
type ProductRow struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	TenantID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code         string          `gorm:"type:varchar(50)"`
	Name         string          `gorm:"type:varchar(200);not null"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status       string          `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProductRow) TableName() string {
	return "products"
}

// GormCatalogSource implements catalog.Source against the products table.
type GormCatalogSource struct {
	db *gorm.DB
}

// NewGormCatalogSource creates a new GormCatalogSource
func NewGormCatalogSource(db *gorm.DB) *GormCatalogSource {
	return &GormCatalogSource{db: db}
}

// FetchAll returns every active product of the tenant as a catalog entry
// with derived fields populated. Store failures are wrapped in
// catalog.ErrCatalogUnavailable.
func (s *GormCatalogSource) FetchAll(ctx context.Context, tenantID uuid.UUID) ([]catalog.Entry, error) {
	var rows []ProductRow
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND status = ?", tenantID, "active").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrCatalogUnavailable, err)
	}

	entries := make([]catalog.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, catalog.NewEntry(row.ID, row.Code, row.Name, row.SellingPrice))
	}
	return entries, nil
}

// Ensure GormCatalogSource implements catalog.Source
var _ catalog.Source = (*GormCatalogSource)(nil)
