package models

// SKUCounter is a named monotonic counter backing SKU generation.
// Incremented inside the product-create transaction.
type SKUCounter struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement"`
	Name    string `gorm:"column:name;not null;uniqueIndex"`
	Counter int64  `gorm:"column:counter;not null;default:0"`
}
