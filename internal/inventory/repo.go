package inventory

import (
	"context"
	"time"

	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/retailpulse/retailpulse-backend/pkg/pagination"
	"gorm.io/gorm"
)

// HistoryFilter narrows the transaction history query.
type HistoryFilter struct {
	ProductID        *int64
	BusinessEntityID *int64
	From             *time.Time
	To               *time.Time
	Page             pagination.Params
}

// TransactionRecord is a history row joined with product and entity names.
type TransactionRecord struct {
	Transaction        models.InventoryTransaction
	ProductSKU         string
	ProductDescription string
	SourceName         string
	DestinationName    string
}

// Repository manages persistence for inventory transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.InventoryTransaction) error
	ListWithProduct(ctx context.Context, filter HistoryFilter) ([]TransactionRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory transaction repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, txn *models.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

type historyRow struct {
	models.InventoryTransaction
	ProductSKU         string `gorm:"column:product_sku"`
	ProductDescription string `gorm:"column:product_description"`
	SourceName         string `gorm:"column:source_name"`
	DestinationName    string `gorm:"column:destination_name"`
}

func (r *repository) ListWithProduct(ctx context.Context, filter HistoryFilter) ([]TransactionRecord, error) {
	q := r.db.WithContext(ctx).
		Table("inventory_transactions AS it").
		Select("it.*, p.sku AS product_sku, p.description AS product_description, src.name AS source_name, dst.name AS destination_name").
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

	cursor, err := pagination.ParseCursor(filter.Page.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid history cursor")
	}
	if cursor != nil {
		q = q.Where("it.inserted_at < ? OR (it.inserted_at = ? AND it.id < ?)",
			cursor.InsertedAt, cursor.InsertedAt, cursor.ID)
	}

	var rows []historyRow
	if err := q.Order("it.inserted_at DESC, it.id DESC").
		Limit(pagination.LimitWithBuffer(filter.Page.Limit)).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]TransactionRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, TransactionRecord{
			Transaction:        row.InventoryTransaction,
			ProductSKU:         row.ProductSKU,
			ProductDescription: row.ProductDescription,
			SourceName:         row.SourceName,
			DestinationName:    row.DestinationName,
		})
	}
	return records, nil
}
