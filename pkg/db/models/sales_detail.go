package models

import (
	"github.com/shopspring/decimal"
)

// SalesDetail is one line of a sales transaction.
type SalesDetail struct {
	ID                 int64           `gorm:"column:id;primaryKey;autoIncrement"`
	SalesTransactionID int64           `gorm:"column:sales_transaction_id;not null;index"`
	ProductID          int64           `gorm:"column:product_id;not null"`
	Quantity           int             `gorm:"column:quantity;not null"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
}
