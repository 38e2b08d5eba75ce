package products

import (
	"context"
	"fmt"

	"github.com/retailpulse/retailpulse-backend/pkg/db"
	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes catalog management. SKUs are generated server-side
// and deletion is a reversible active-flag flip guarded by stock.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, includeInactive bool) ([]models.Product, error)
	Update(ctx context.Context, id int64, input UpdateProductInput) (*models.Product, error)
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) (*models.Product, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Description string
	Category    *string
	Subcategory *string
	Brand       *string
	Origin      *string
	UOM         *string
	VendorCode  *string
	Barcode     *string
	RRP         decimal.Decimal
}

// UpdateProductInput holds optional mutation values; nil fields keep
// the stored value.
type UpdateProductInput struct {
	Description *string
	Category    *string
	Subcategory *string
	Brand       *string
	Origin      *string
	UOM         *string
	VendorCode  *string
	Barcode     *string
	RRP         *decimal.Decimal
}

type stockChecker interface {
	HoldsPositiveStockForProduct(ctx context.Context, productID int64) (bool, error)
}

type service struct {
	repo     Repository
	dbClient *db.Client
	stock    stockChecker
}

// NewService constructs a product service instance.
func NewService(repo Repository, dbClient *db.Client, stock stockChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock checker required")
	}
	return &service{repo: repo, dbClient: dbClient, stock: stock}, nil
}

// Create generates the next SKU and inserts the product in one
// transaction.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*models.Product, error) {
	if input.Description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if input.RRP.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rrp cannot be negative")
	}

	var product *models.Product
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		number, err := txRepo.NextSKUNumber(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: next sku number")
		}

		product = &models.Product{
			SKU:         fmt.Sprintf("RP%d", number),
			Description: input.Description,
			Category:    input.Category,
			Subcategory: input.Subcategory,
			Brand:       input.Brand,
			Origin:      input.Origin,
			UOM:         input.UOM,
			VendorCode:  input.VendorCode,
			Barcode:     input.Barcode,
			RRP:         input.RRP,
			IsActive:    true,
		}
		if err := txRepo.Create(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return product, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", id))
	}
	return product, nil
}

func (s *service) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	product, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product by sku")
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %q not found", sku))
	}
	return product, nil
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	products, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	return products, nil
}

// Update merges the provided fields into the stored product. Inactive
// products are immutable until restored.
func (s *service) Update(ctx context.Context, id int64, input UpdateProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("product %d is inactive", id))
	}

	if input.Description != nil {
		if *input.Description == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "description cannot be empty")
		}
		product.Description = *input.Description
	}
	if input.Category != nil {
		product.Category = input.Category
	}
	if input.Subcategory != nil {
		product.Subcategory = input.Subcategory
	}
	if input.Brand != nil {
		product.Brand = input.Brand
	}
	if input.Origin != nil {
		product.Origin = input.Origin
	}
	if input.UOM != nil {
		product.UOM = input.UOM
	}
	if input.VendorCode != nil {
		product.VendorCode = input.VendorCode
	}
	if input.Barcode != nil {
		product.Barcode = input.Barcode
	}
	if input.RRP != nil {
		if input.RRP.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rrp cannot be negative")
		}
		product.RRP = *input.RRP
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return product, nil
}

// SoftDelete deactivates a product. Refused while any entity still
// holds a positive quantity of it.
func (s *service) SoftDelete(ctx context.Context, id int64) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !product.IsActive {
		return nil
	}

	held, err := s.stock.HoldsPositiveStockForProduct(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check product stock")
	}
	if held {
		return pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("product %d still holds stock and cannot be deleted", id))
	}

	product.IsActive = false
	if err := s.repo.Save(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: deactivate product")
	}
	return nil
}

// Restore reactivates a soft-deleted product.
func (s *service) Restore(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.IsActive {
		return product, nil
	}

	product.IsActive = true
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: restore product")
	}
	return product, nil
}
