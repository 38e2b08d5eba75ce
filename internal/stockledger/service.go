package stockledger

import (
	"context"
	"fmt"

	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes the stock ledger. Credit and Debit mutate balances
// and must run inside the caller's transaction via WithTx; the engines
// that own the enclosing transaction are the only writers.
type Service interface {
	WithTx(tx *gorm.DB) Service
	GetBalance(ctx context.Context, productID, businessEntityID int64) (*models.StockLedgerEntry, error)
	Credit(ctx context.Context, productID, businessEntityID int64, qty int, unitCost decimal.Decimal) (*models.StockLedgerEntry, error)
	Debit(ctx context.Context, productID, businessEntityID int64, qty int, unitCost decimal.Decimal) (*models.StockLedgerEntry, error)
	ListByProduct(ctx context.Context, productID int64) ([]models.StockLedgerEntry, error)
	ListByEntity(ctx context.Context, businessEntityID int64) ([]models.StockLedgerEntry, error)
	HoldsPositiveStockForProduct(ctx context.Context, productID int64) (bool, error)
	HoldsPositiveStockForEntity(ctx context.Context, businessEntityID int64) (bool, error)
}

type service struct {
	repo Repository
}

// NewService wires a stock ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

// GetBalance returns the ledger row, or nil when the product has never
// held stock at the entity.
func (s *service) GetBalance(ctx context.Context, productID, businessEntityID int64) (*models.StockLedgerEntry, error) {
	return s.repo.Get(ctx, productID, businessEntityID)
}

func (s *service) Credit(ctx context.Context, productID, businessEntityID int64, qty int, unitCost decimal.Decimal) (*models.StockLedgerEntry, error) {
	if err := validateMovement(qty, unitCost); err != nil {
		return nil, err
	}

	entry, err := s.repo.GetForUpdate(ctx, productID, businessEntityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load ledger entry")
	}
	if entry == nil {
		entry = &models.StockLedgerEntry{
			ProductID:        productID,
			BusinessEntityID: businessEntityID,
			Quantity:         qty,
			TotalCostBasis:   unitCost.Mul(decimal.NewFromInt(int64(qty))),
		}
		if err := s.repo.Create(ctx, entry); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert ledger entry")
		}
		return entry, nil
	}

	entry.Quantity += qty
	entry.TotalCostBasis = entry.TotalCostBasis.Add(unitCost.Mul(decimal.NewFromInt(int64(qty))))
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update ledger entry")
	}
	return entry, nil
}

func (s *service) Debit(ctx context.Context, productID, businessEntityID int64, qty int, unitCost decimal.Decimal) (*models.StockLedgerEntry, error) {
	if err := validateMovement(qty, unitCost); err != nil {
		return nil, err
	}

	entry, err := s.repo.GetForUpdate(ctx, productID, businessEntityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load ledger entry")
	}

	onHand := 0
	if entry != nil {
		onHand = entry.Quantity
	}
	if onHand < qty {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock on hand").
			WithDetails(map[string]any{
				"product_id":         productID,
				"business_entity_id": businessEntityID,
				"requested":          qty,
				"on_hand":            onHand,
			})
	}

	entry.Quantity -= qty
	entry.TotalCostBasis = entry.TotalCostBasis.Sub(unitCost.Mul(decimal.NewFromInt(int64(qty))))
	if err := s.repo.Save(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update ledger entry")
	}
	return entry, nil
}

func (s *service) ListByProduct(ctx context.Context, productID int64) ([]models.StockLedgerEntry, error) {
	return s.repo.ListByProduct(ctx, productID)
}

func (s *service) ListByEntity(ctx context.Context, businessEntityID int64) ([]models.StockLedgerEntry, error) {
	return s.repo.ListByEntity(ctx, businessEntityID)
}

func (s *service) HoldsPositiveStockForProduct(ctx context.Context, productID int64) (bool, error) {
	return s.repo.AnyPositiveForProduct(ctx, productID)
}

func (s *service) HoldsPositiveStockForEntity(ctx context.Context, businessEntityID int64) (bool, error) {
	return s.repo.AnyPositiveForEntity(ctx, businessEntityID)
}

func validateMovement(qty int, unitCost decimal.Decimal) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if unitCost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative")
	}
	return nil
}
