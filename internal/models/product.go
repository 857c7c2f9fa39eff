package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpiryHorizonDays is the fixed near-expiry window.
const ExpiryHorizonDays = 30

// ProductFilter holds the list-page filter criteria for product queries.
type ProductFilter struct {
	Query      string     `json:"query,omitempty"`       // Substring match on name
	CategoryID *uuid.UUID `json:"category_id,omitempty"` // Filter by category
	SupplierID *uuid.UUID `json:"supplier_id,omitempty"` // Filter by associated supplier
	LowStock   bool       `json:"low_stock,omitempty"`   // quantity_in_stock <= reorder_level
	NearExpiry bool       `json:"near_expiry,omitempty"` // expiry_date within ExpiryHorizon of AsOf
	AsOf       time.Time  `json:"as_of,omitempty"`       // Reference date for the near-expiry filter
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}

type Product struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	CategoryID      uuid.UUID       `json:"category_id" db:"category_id"`
	BatchNumber     string          `json:"batch_number" db:"batch_number"`
	QuantityInStock int             `json:"quantity_in_stock" db:"quantity_in_stock"`
	ReorderLevel    int             `json:"reorder_level" db:"reorder_level"`
	UnitPrice       decimal.Decimal `json:"unit_price" db:"unit_price"`
	ExpiryDate      time.Time       `json:"expiry_date" db:"expiry_date"`
	Image           *string         `json:"image" db:"image"`
	Description     *string         `json:"description" db:"description"`
	AssignedTo      *uuid.UUID      `json:"assigned_to" db:"assigned_to"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`

	Suppliers []*Supplier `json:"suppliers,omitempty" db:"-"` // Loaded from product_suppliers
}

// IsLowStock reports whether the product is at or below its reorder level.
func (p *Product) IsLowStock() bool {
	return p.QuantityInStock <= p.ReorderLevel
}

// IsExpiringSoon reports whether the product expires within horizonDays of asOf.
func (p *Product) IsExpiringSoon(asOf time.Time, horizonDays int) bool {
	return !p.ExpiryDate.After(asOf.AddDate(0, 0, horizonDays))
}
