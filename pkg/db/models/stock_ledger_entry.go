package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLedgerEntry holds the on-hand quantity and aggregate cost basis
// for one product at one business entity. Quantity never goes negative.
type StockLedgerEntry struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID        int64           `gorm:"column:product_id;not null;uniqueIndex:idx_stock_product_entity"`
	BusinessEntityID int64           `gorm:"column:business_entity_id;not null;uniqueIndex:idx_stock_product_entity"`
	Quantity         int             `gorm:"column:quantity;not null;default:0"`
	TotalCostBasis   decimal.Decimal `gorm:"column:total_cost_basis;type:numeric(14,4);not null;default:0"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
