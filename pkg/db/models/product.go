package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item. SKUs are generated, never
// client-supplied, and rows are soft deleted via the active flag.
type Product struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	SKU         string          `gorm:"column:sku;not null;uniqueIndex"`
	Description string          `gorm:"column:description;not null"`
	Category    *string         `gorm:"column:category"`
	Subcategory *string         `gorm:"column:subcategory"`
	Brand       *string         `gorm:"column:brand"`
	Origin      *string         `gorm:"column:origin"`
	UOM         *string         `gorm:"column:uom"`
	VendorCode  *string         `gorm:"column:vendor_code"`
	Barcode     *string         `gorm:"column:barcode"`
	RRP         decimal.Decimal `gorm:"column:rrp;type:numeric(12,2);not null;default:0"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
