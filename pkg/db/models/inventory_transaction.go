package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryTransaction is the append-only record of a stock movement.
// Rows are written for every transfer, including ones between external
// entities that never touch the ledger.
type InventoryTransaction struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID        int64           `gorm:"column:product_id;not null;index"`
	Quantity         int             `gorm:"column:quantity;not null"`
	CostPricePerUnit decimal.Decimal `gorm:"column:cost_price_per_unit;type:numeric(12,2);not null"`
	SourceID         int64           `gorm:"column:source_id;not null;index"`
	DestinationID    int64           `gorm:"column:destination_id;not null;index"`
	InsertedAt       time.Time       `gorm:"column:inserted_at;not null;index"`
}
