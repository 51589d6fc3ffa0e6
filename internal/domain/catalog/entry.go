package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is a read-only view of a product used for matching.
// NormalizedName and Keywords are caches derived from Name; the product
// store remains the system of record.
type Entry struct {
	ID           uuid.UUID
	Code         string
	Name         string
	SellingPrice decimal.Decimal

	NormalizedName string
	Keywords       []string
}

// NewEntry creates an entry with its derived fields populated.
func NewEntry(id uuid.UUID, code, name string, sellingPrice decimal.Decimal) Entry {
	e := Entry{
		ID:           id,
		Code:         code,
		Name:         name,
		SellingPrice: sellingPrice,
	}
	e.Refresh()
	return e
}

// Refresh recomputes the derived fields from Name. Must be called whenever
// Name changes; the derived fields are never authoritative.
func (e *Entry) Refresh() {
	e.NormalizedName = Normalize(e.Name)
	e.Keywords = Keywords(e.Name)
}

// HasCode returns true if the entry carries a product code.
func (e *Entry) HasCode() bool {
	return e.Code != ""
}
