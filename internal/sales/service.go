package sales

import (
	"context"
	"fmt"

	"github.com/retailpulse/retailpulse-backend/internal/stockledger"
	"github.com/retailpulse/retailpulse-backend/internal/taxes"
	"github.com/retailpulse/retailpulse-backend/pkg/clock"
	"github.com/retailpulse/retailpulse-backend/pkg/db"
	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	"github.com/retailpulse/retailpulse-backend/pkg/enums"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/retailpulse/retailpulse-backend/pkg/metrics"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the sales transaction engine: committed tickets with
// derived tax-inclusive totals, stock deduction, and the suspend/resume
// flow for parked carts.
type Service interface {
	Create(ctx context.Context, businessEntityID int64, lines []LineInput) (*models.SalesTransaction, error)
	Update(ctx context.Context, id int64, lines []LineInput) (*models.SalesTransaction, error)
	Get(ctx context.Context, id int64) (*models.SalesTransaction, error)
	GetFull(ctx context.Context, id int64) (*models.SalesTransaction, []DetailRecord, error)
	ListByEntity(ctx context.Context, businessEntityID int64) ([]models.SalesTransaction, error)
	CalculateTax(ctx context.Context, lines []LineInput) (*TaxPreview, error)
	Suspend(ctx context.Context, businessEntityID int64, lines []LineInput) ([]Memento, error)
	ListSuspended(businessEntityID int64) []Memento
	RestoreSuspended(businessEntityID int64, mementoID string) (Memento, []Memento, error)
}

// TaxPreview is the result of a tax calculation with no side effects on
// stock or persisted transactions.
type TaxPreview struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
	TaxType   enums.TaxType
	TaxRate   decimal.Decimal
	Lines     []LineInput
}

type entityReader interface {
	FindByID(ctx context.Context, id int64) (*models.BusinessEntity, error)
}

type service struct {
	repo       Repository
	dbClient   *db.Client
	stock      stockledger.Service
	taxes      taxes.Service
	entityRepo entityReader
	store      *SuspendStore
	clk        clock.Clock
	pos        *metrics.POSMetrics
}

// NewService wires the sales engine. The metrics handle may be nil.
func NewService(repo Repository, dbClient *db.Client, stock stockledger.Service, taxSvc taxes.Service, entityRepo entityReader, store *SuspendStore, clk clock.Clock, pos *metrics.POSMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock ledger service required")
	}
	if taxSvc == nil {
		return nil, fmt.Errorf("tax service required")
	}
	if entityRepo == nil {
		return nil, fmt.Errorf("business entity repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("suspend store required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock required")
	}
	return &service{
		repo:       repo,
		dbClient:   dbClient,
		stock:      stock,
		taxes:      taxSvc,
		entityRepo: entityRepo,
		store:      store,
		clk:        clk,
		pos:        pos,
	}, nil
}

// Create commits a new transaction: totals derived from the lines,
// stock debited per line, everything in one DB transaction.
func (s *service) Create(ctx context.Context, businessEntityID int64, lines []LineInput) (*models.SalesTransaction, error) {
	if _, err := s.loadEntity(ctx, businessEntityID); err != nil {
		return nil, err
	}
	if err := ValidateLines(lines); err != nil {
		return nil, err
	}

	var txn *models.SalesTransaction
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		policy, err := s.taxes.WithTx(tx).Resolve(ctx, enums.TaxTypeGST)
		if err != nil {
			return err
		}

		txStock := s.stock.WithTx(tx)
		// Sales move quantity only; the cost basis laid down by
		// transfers stays with the holding entity.
		for _, line := range lines {
			if _, err := txStock.Debit(ctx, line.ProductID, businessEntityID, line.Quantity, decimal.Zero); err != nil {
				return err
			}
		}

		totals := ComputeTotals(lines, policy.Rate)
		txn = &models.SalesTransaction{
			BusinessEntityID: businessEntityID,
			TaxPolicyID:      policy.ID,
			Subtotal:         totals.Subtotal,
			TaxAmount:        totals.TaxAmount,
			Total:            totals.Total,
			TransactionDate:  s.clk.Now(),
			Details:          detailsFromLines(lines),
		}
		if err := s.repo.WithTx(tx).Create(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert sales transaction")
		}
		return nil
	}); err != nil {
		return nil, s.commitError(err, "create")
	}

	s.pos.IncSaleCommitted("create")
	return txn, nil
}

// Update replaces the line set of an existing transaction. Old lines
// are credited back before the new ones are debited, so a product kept
// across the edit only needs stock for the difference.
func (s *service) Update(ctx context.Context, id int64, lines []LineInput) (*models.SalesTransaction, error) {
	if err := ValidateLines(lines); err != nil {
		return nil, err
	}

	var txn *models.SalesTransaction
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		existing, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sales transaction")
		}
		if existing == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("sales transaction %d not found", id))
		}

		policy, err := s.taxes.WithTx(tx).Get(ctx, existing.TaxPolicyID)
		if err != nil {
			return err
		}

		txStock := s.stock.WithTx(tx)
		for _, detail := range existing.Details {
			if _, err := txStock.Credit(ctx, detail.ProductID, existing.BusinessEntityID, detail.Quantity, decimal.Zero); err != nil {
				return err
			}
		}
		for _, line := range lines {
			if _, err := txStock.Debit(ctx, line.ProductID, existing.BusinessEntityID, line.Quantity, decimal.Zero); err != nil {
				return err
			}
		}

		totals := ComputeTotals(lines, policy.Rate)
		existing.Subtotal = totals.Subtotal
		existing.TaxAmount = totals.TaxAmount
		existing.Total = totals.Total
		if err := txRepo.ReplaceDetails(ctx, existing.ID, detailsFromLines(lines)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace sales details")
		}
		if err := txRepo.Save(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update sales transaction")
		}
		txn = existing
		return nil
	}); err != nil {
		return nil, s.commitError(err, "update")
	}

	reloaded, err := s.repo.FindByID(ctx, txn.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reload sales transaction")
	}

	s.pos.IncSaleCommitted("update")
	return reloaded, nil
}

func (s *service) Get(ctx context.Context, id int64) (*models.SalesTransaction, error) {
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sales transaction")
	}
	if txn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("sales transaction %d not found", id))
	}
	return txn, nil
}

// GetFull loads the transaction plus its lines joined with product data.
func (s *service) GetFull(ctx context.Context, id int64) (*models.SalesTransaction, []DetailRecord, error) {
	txn, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.repo.ListDetailRecords(ctx, id)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sales details")
	}
	return txn, records, nil
}

func (s *service) ListByEntity(ctx context.Context, businessEntityID int64) ([]models.SalesTransaction, error) {
	txns, err := s.repo.ListByEntity(ctx, businessEntityID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list sales transactions")
	}
	return txns, nil
}

// CalculateTax previews the totals for a line set. No stock is touched
// and nothing is persisted beyond the lazily created tax policy row.
func (s *service) CalculateTax(ctx context.Context, lines []LineInput) (*TaxPreview, error) {
	if err := ValidateLines(lines); err != nil {
		return nil, err
	}

	policy, err := s.taxes.Resolve(ctx, enums.TaxTypeGST)
	if err != nil {
		return nil, err
	}

	totals := ComputeTotals(lines, policy.Rate)
	return &TaxPreview{
		Subtotal:  totals.Subtotal,
		TaxAmount: totals.TaxAmount,
		Total:     totals.Total,
		TaxType:   policy.TaxType,
		TaxRate:   policy.Rate,
		Lines:     lines,
	}, nil
}

// Suspend snapshots a transient transaction for the entity and parks
// it. Stock is untouched; the ticket only affects the ledger if it is
// later restored and committed through Create.
func (s *service) Suspend(ctx context.Context, businessEntityID int64, lines []LineInput) ([]Memento, error) {
	if _, err := s.loadEntity(ctx, businessEntityID); err != nil {
		return nil, err
	}
	if err := ValidateLines(lines); err != nil {
		return nil, err
	}

	policy, err := s.taxes.Resolve(ctx, enums.TaxTypeGST)
	if err != nil {
		return nil, err
	}

	totals := ComputeTotals(lines, policy.Rate)
	transient := &models.SalesTransaction{
		BusinessEntityID: businessEntityID,
		TaxPolicyID:      policy.ID,
		Subtotal:         totals.Subtotal,
		TaxAmount:        totals.TaxAmount,
		Total:            totals.Total,
		TransactionDate:  s.clk.Now(),
		Details:          detailsFromLines(lines),
	}

	memento := Snapshot(transient, policy, s.clk)
	return s.store.Append(businessEntityID, memento), nil
}

func (s *service) ListSuspended(businessEntityID int64) []Memento {
	return s.store.List(businessEntityID)
}

// RestoreSuspended removes the memento from the store and hands it
// back; committing the restored ticket is a separate Create call.
func (s *service) RestoreSuspended(businessEntityID int64, mementoID string) (Memento, []Memento, error) {
	return s.store.Remove(businessEntityID, mementoID)
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

func (s *service) commitError(err error, operation string) error {
	if pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		s.pos.IncStockRejected(operation)
		return err
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, operation+" sales transaction")
}

func detailsFromLines(lines []LineInput) []models.SalesDetail {
	details := make([]models.SalesDetail, 0, len(lines))
	for _, line := range lines {
		details = append(details, models.SalesDetail{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return details
}
