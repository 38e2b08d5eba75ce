package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// maxReportRows caps a single extract so an unbounded time range cannot
// buffer the whole table into one spreadsheet.
const maxReportRows = 10000

// Filter narrows the inventory movement extract.
type Filter struct {
	ProductID        *int64
	BusinessEntityID *int64
	From             *time.Time
	To               *time.Time
}

// InventoryRow is one movement joined with product and entity names.
type InventoryRow struct {
	InsertedAt         time.Time       `gorm:"column:inserted_at"`
	ProductSKU         string          `gorm:"column:product_sku"`
	ProductDescription string          `gorm:"column:product_description"`
	Quantity           int             `gorm:"column:quantity"`
	CostPricePerUnit   decimal.Decimal `gorm:"column:cost_price_per_unit"`
	SourceName         string          `gorm:"column:source_name"`
	DestinationName    string          `gorm:"column:destination_name"`
}

// SalesRow is one committed sales line joined with product and entity names.
type SalesRow struct {
	TransactionDate    time.Time       `gorm:"column:transaction_date"`
	SalesTransactionID int64           `gorm:"column:sales_transaction_id"`
	EntityName         string          `gorm:"column:entity_name"`
	ProductSKU         string          `gorm:"column:product_sku"`
	ProductDescription string          `gorm:"column:product_description"`
	Quantity           int             `gorm:"column:quantity"`
	UnitPrice          decimal.Decimal `gorm:"column:unit_price"`
}

// Repository runs the read-only extract queries behind report rendering.
type Repository interface {
	InventoryRows(ctx context.Context, filter Filter) ([]InventoryRow, error)
	SalesRows(ctx context.Context, from, to *time.Time) ([]SalesRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a report repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InventoryRows(ctx context.Context, filter Filter) ([]InventoryRow, error) {
	q := r.db.WithContext(ctx).
		Table("inventory_transactions AS it").
		Select("it.inserted_at, p.sku AS product_sku, p.description AS product_description, it.quantity, it.cost_price_per_unit, src.name AS source_name, dst.name AS destination_name").
		Joins("JOIN products p ON p.id = it.product_id").
		Joins("JOIN business_entities src ON src.id = it.source_id").
		Joins("JOIN business_entities dst ON dst.id = it.destination_id")

	if filter.ProductID != nil {
		q = q.Where("it.product_id = ?", *filter.ProductID)
	}
	if filter.BusinessEntityID != nil {
		q = q.Where("it.source_id = ? OR it.destination_id = ?", *filter.BusinessEntityID, *filter.BusinessEntityID)
	}
	if filter.From != nil {
		q = q.Where("it.inserted_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("it.inserted_at <= ?", *filter.To)
	}

	var rows []InventoryRow
	if err := q.Order("it.inserted_at ASC, it.id ASC").
		Limit(maxReportRows).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) SalesRows(ctx context.Context, from, to *time.Time) ([]SalesRow, error) {
	q := r.db.WithContext(ctx).
		Table("sales_details AS sd").
		Select("st.transaction_date, sd.sales_transaction_id, be.name AS entity_name, p.sku AS product_sku, p.description AS product_description, sd.quantity, sd.unit_price").
		Joins("JOIN sales_transactions st ON st.id = sd.sales_transaction_id").
		Joins("JOIN business_entities be ON be.id = st.business_entity_id").
		Joins("JOIN products p ON p.id = sd.product_id")

	if from != nil {
		q = q.Where("st.transaction_date >= ?", *from)
	}
	if to != nil {
		q = q.Where("st.transaction_date <= ?", *to)
	}

	var rows []SalesRow
	if err := q.Order("st.transaction_date ASC, sd.id ASC").
		Limit(maxReportRows).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
