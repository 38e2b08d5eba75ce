package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesTransaction is a committed point-of-sale ticket. Subtotal, tax
// and total are derived from the detail lines and recomputed on any
// line change, never patched directly.
type SalesTransaction struct {
	ID               int64           `gorm:"column:id;primaryKey;autoIncrement"`
	BusinessEntityID int64           `gorm:"column:business_entity_id;not null;index"`
	TaxPolicyID      int64           `gorm:"column:tax_policy_id;not null"`
	Subtotal         decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	TaxAmount        decimal.Decimal `gorm:"column:tax_amount;type:numeric(12,2);not null"`
	Total            decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	TransactionDate  time.Time       `gorm:"column:transaction_date;not null;index"`
	Details          []SalesDetail   `gorm:"foreignKey:SalesTransactionID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
