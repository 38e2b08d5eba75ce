package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/retailpulse/retailpulse-backend/internal/stockledger"
	"github.com/retailpulse/retailpulse-backend/pkg/clock"
	"github.com/retailpulse/retailpulse-backend/pkg/db"
	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/retailpulse/retailpulse-backend/pkg/metrics"
	"github.com/retailpulse/retailpulse-backend/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service records stock transfers between business entities.
type Service interface {
	RecordTransfer(ctx context.Context, input RecordTransferInput) (*models.InventoryTransaction, error)
	ListHistory(ctx context.Context, filter HistoryFilter) ([]TransactionRecord, *string, error)
}

// RecordTransferInput captures one stock movement.
type RecordTransferInput struct {
	ProductID        int64
	Quantity         int
	CostPricePerUnit decimal.Decimal
	SourceID         int64
	DestinationID    int64
}

type productReader interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
}

type entityReader interface {
	FindByID(ctx context.Context, id int64) (*models.BusinessEntity, error)
}

type service struct {
	repo        Repository
	dbClient    *db.Client
	stock       stockledger.Service
	productRepo productReader
	entityRepo  entityReader
	clk         clock.Clock
	pos         *metrics.POSMetrics
}

// NewService wires the transfer engine. The metrics handle may be nil.
func NewService(repo Repository, dbClient *db.Client, stock stockledger.Service, productRepo productReader, entityRepo entityReader, clk clock.Clock, pos *metrics.POSMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock ledger service required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if entityRepo == nil {
		return nil, fmt.Errorf("business entity repository required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock required")
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		stock:       stock,
		productRepo: productRepo,
		entityRepo:  entityRepo,
		clk:         clk,
		pos:         pos,
	}, nil
}

// RecordTransfer validates the movement, applies the ledger debit and
// credit, and appends the immutable transaction row. The mutations run
// in one DB transaction; a failed debit rolls everything back. External
// endpoints skip their ledger side but the row is always written.
func (s *service) RecordTransfer(ctx context.Context, input RecordTransferInput) (*models.InventoryTransaction, error) {
	source, destination, err := s.validateTransfer(ctx, input)
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
			s.pos.IncStockRejected("transfer")
		}
		return nil, err
	}

	txn := &models.InventoryTransaction{
		ID:               uuid.New(),
		ProductID:        input.ProductID,
		Quantity:         input.Quantity,
		CostPricePerUnit: input.CostPricePerUnit,
		SourceID:         input.SourceID,
		DestinationID:    input.DestinationID,
		InsertedAt:       s.clk.Now(),
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txStock := s.stock.WithTx(tx)

		if !source.External {
			if _, err := txStock.Debit(ctx, input.ProductID, input.SourceID, input.Quantity, input.CostPricePerUnit); err != nil {
				return err
			}
		}
		if !destination.External {
			if _, err := txStock.Credit(ctx, input.ProductID, input.DestinationID, input.Quantity, input.CostPricePerUnit); err != nil {
				return err
			}
		}

		if err := s.repo.WithTx(tx).Create(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert inventory transaction")
		}
		return nil
	}); err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
			s.pos.IncStockRejected("transfer")
			return nil, err
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record transfer")
	}

	s.pos.IncTransfer("recorded")
	return txn, nil
}

func (s *service) validateTransfer(ctx context.Context, input RecordTransferInput) (*models.BusinessEntity, *models.BusinessEntity, error) {
	product, err := s.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if product == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", input.ProductID))
	}
	if !product.IsActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeProductInactive, fmt.Sprintf("product %d is inactive", input.ProductID))
	}

	source, err := s.loadEntity(ctx, input.SourceID)
	if err != nil {
		return nil, nil, err
	}
	destination, err := s.loadEntity(ctx, input.DestinationID)
	if err != nil {
		return nil, nil, err
	}

	if input.SourceID == input.DestinationID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "source and destination must differ")
	}
	if input.Quantity <= 0 {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.CostPricePerUnit.IsNegative() {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "cost price cannot be negative")
	}

	return source, destination, nil
}

func (s *service) loadEntity(ctx context.Context, id int64) (*models.BusinessEntity, error) {
	entity, err := s.entityRepo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load business entity")
	}
	if entity == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("business entity %d not found", id))
	}
	if !entity.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeEntityInactive, fmt.Sprintf("business entity %d is inactive", id))
	}
	return entity, nil
}

// ListHistory returns a page of history records plus the cursor for the
// next page when more rows remain.
func (s *service) ListHistory(ctx context.Context, filter HistoryFilter) ([]TransactionRecord, *string, error) {
	records, err := s.repo.ListWithProduct(ctx, filter)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, nil, err
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list inventory transactions")
	}

	limit := pagination.NormalizeLimit(filter.Page.Limit)
	if len(records) <= limit {
		return records, nil, nil
	}

	records = records[:limit]
	last := records[len(records)-1].Transaction
	next := pagination.EncodeCursor(pagination.Cursor{InsertedAt: last.InsertedAt, ID: last.ID})
	return records, &next, nil
}
