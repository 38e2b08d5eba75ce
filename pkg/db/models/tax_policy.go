package models

import (
	"time"

	"github.com/retailpulse/retailpulse-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// TaxPolicy is the persisted rate for a tax type, created lazily with
// the configured default on first use.
type TaxPolicy struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	TaxType   enums.TaxType   `gorm:"column:tax_type;not null;uniqueIndex"`
	Rate      decimal.Decimal `gorm:"column:rate;type:numeric(6,4);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
