package sales

import (
	"context"
	"errors"

	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository manages persistence for sales transactions and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.SalesTransaction) error
	Save(ctx context.Context, txn *models.SalesTransaction) error
	ReplaceDetails(ctx context.Context, txnID int64, details []models.SalesDetail) error
	FindByID(ctx context.Context, id int64) (*models.SalesTransaction, error)
	ListByEntity(ctx context.Context, businessEntityID int64) ([]models.SalesTransaction, error)
	ListDetailRecords(ctx context.Context, txnID int64) ([]DetailRecord, error)
}

// DetailRecord is a sales line joined with its product for read surfaces.
type DetailRecord struct {
	Detail             models.SalesDetail
	ProductSKU         string
	ProductDescription string
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, txn *models.SalesTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) Save(ctx context.Context, txn *models.SalesTransaction) error {
	return r.db.WithContext(ctx).Omit("Details").Save(txn).Error
}

// ReplaceDetails swaps the full line set for a transaction.
func (r *repository) ReplaceDetails(ctx context.Context, txnID int64, details []models.SalesDetail) error {
	if err := r.db.WithContext(ctx).
		Where("sales_transaction_id = ?", txnID).
		Delete(&models.SalesDetail{}).Error; err != nil {
		return err
	}
	for i := range details {
		details[i].ID = 0
		details[i].SalesTransactionID = txnID
	}
	return r.db.WithContext(ctx).Create(&details).Error
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.SalesTransaction, error) {
	var txn models.SalesTransaction
	if err := r.db.WithContext(ctx).
		Preload("Details").
		First(&txn, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *repository) ListByEntity(ctx context.Context, businessEntityID int64) ([]models.SalesTransaction, error) {
	var txns []models.SalesTransaction
	if err := r.db.WithContext(ctx).
		Preload("Details").
		Where("business_entity_id = ?", businessEntityID).
		Order("transaction_date DESC, id DESC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}

type detailRow struct {
	models.SalesDetail
	ProductSKU         string `gorm:"column:product_sku"`
	ProductDescription string `gorm:"column:product_description"`
}

func (r *repository) ListDetailRecords(ctx context.Context, txnID int64) ([]DetailRecord, error) {
	var rows []detailRow
	if err := r.db.WithContext(ctx).
		Table("sales_details AS sd").
		Select("sd.*, p.sku AS product_sku, p.description AS product_description").
		Joins("JOIN products p ON p.id = sd.product_id").
		Where("sd.sales_transaction_id = ?", txnID).
		Order("sd.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]DetailRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, DetailRecord{
			Detail:             row.SalesDetail,
			ProductSKU:         row.ProductSKU,
			ProductDescription: row.ProductDescription,
		})
	}
	return records, nil
}
