package stockledger

import (
	"context"
	"errors"

	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for stock ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context, productID, businessEntityID int64) (*models.StockLedgerEntry, error)
	GetForUpdate(ctx context.Context, productID, businessEntityID int64) (*models.StockLedgerEntry, error)
	Create(ctx context.Context, entry *models.StockLedgerEntry) error
	Save(ctx context.Context, entry *models.StockLedgerEntry) error
	ListByProduct(ctx context.Context, productID int64) ([]models.StockLedgerEntry, error)
	ListByEntity(ctx context.Context, businessEntityID int64) ([]models.StockLedgerEntry, error)
	AnyPositiveForProduct(ctx context.Context, productID int64) (bool, error)
	AnyPositiveForEntity(ctx context.Context, businessEntityID int64) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context, productID, businessEntityID int64) (*models.StockLedgerEntry, error) {
	return r.find(ctx, productID, businessEntityID, false)
}

// GetForUpdate locks the row until the surrounding transaction ends, so
// the balance check and the write in Debit see the same state.
func (r *repository) GetForUpdate(ctx context.Context, productID, businessEntityID int64) (*models.StockLedgerEntry, error) {
	return r.find(ctx, productID, businessEntityID, true)
}

func (r *repository) find(ctx context.Context, productID, businessEntityID int64, forUpdate bool) (*models.StockLedgerEntry, error) {
	q := r.db.WithContext(ctx).
		Where("product_id = ? AND business_entity_id = ?", productID, businessEntityID)
	// sqlite has no row locks; its writes serialize on the file anyway.
	if forUpdate && r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var entry models.StockLedgerEntry
	if err := q.First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Create(ctx context.Context, entry *models.StockLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) Save(ctx context.Context, entry *models.StockLedgerEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repository) ListByProduct(ctx context.Context, productID int64) ([]models.StockLedgerEntry, error) {
	var entries []models.StockLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("business_entity_id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByEntity(ctx context.Context, businessEntityID int64) ([]models.StockLedgerEntry, error) {
	var entries []models.StockLedgerEntry
	if err := r.db.WithContext(ctx).
		Where("business_entity_id = ?", businessEntityID).
		Order("product_id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) AnyPositiveForProduct(ctx context.Context, productID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockLedgerEntry{}).
		Where("product_id = ? AND quantity > 0", productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) AnyPositiveForEntity(ctx context.Context, businessEntityID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockLedgerEntry{}).
		Where("business_entity_id = ? AND quantity > 0", businessEntityID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
