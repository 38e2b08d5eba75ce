package models

import (
	"time"

	"github.com/retailpulse/retailpulse-backend/pkg/enums"
)

// BusinessEntity is a party stock can move between. External entities
// sit outside the tracked network, so transfers touching them only
// mutate the internal side of the ledger.
type BusinessEntity struct {
	ID        int64                    `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string                   `gorm:"column:name;not null"`
	Location  *string                  `gorm:"column:location"`
	Type      enums.BusinessEntityType `gorm:"column:type;not null"`
	External  bool                     `gorm:"column:external;not null;default:false"`
	IsActive  bool                     `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
