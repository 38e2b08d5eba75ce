package sales

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailpulse/retailpulse-backend/pkg/clock"
	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	"github.com/retailpulse/retailpulse-backend/pkg/enums"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// mementoVersion guards the snapshot shape; bump it when fields change
// so stale snapshots are rejected instead of silently misread.
const mementoVersion = 1

// Memento is a suspended transaction snapshot. Money travels as decimal
// strings so restoring loses nothing to binary float conversion.
type Memento struct {
	ID               string        `json:"id"`
	Version          int           `json:"version"`
	BusinessEntityID int64         `json:"business_entity_id"`
	Subtotal         string        `json:"subtotal"`
	TaxAmount        string        `json:"tax_amount"`
	Total            string        `json:"total"`
	TaxType          enums.TaxType `json:"tax_type"`
	TaxRate          string        `json:"tax_rate"`
	Lines            []MementoLine `json:"lines"`
	SuspendedAt      time.Time     `json:"suspended_at"`
}

// MementoLine is one snapshotted sales line.
type MementoLine struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// Snapshot captures a transaction and its tax policy into a memento.
func Snapshot(txn *models.SalesTransaction, policy *models.TaxPolicy, clk clock.Clock) Memento {
	lines := make([]MementoLine, 0, len(txn.Details))
	for _, detail := range txn.Details {
		lines = append(lines, MementoLine{
			ProductID: detail.ProductID,
			Quantity:  detail.Quantity,
			UnitPrice: detail.UnitPrice.String(),
		})
	}
	return Memento{
		ID:               uuid.NewString(),
		Version:          mementoVersion,
		BusinessEntityID: txn.BusinessEntityID,
		Subtotal:         txn.Subtotal.String(),
		TaxAmount:        txn.TaxAmount.String(),
		Total:            txn.Total.String(),
		TaxType:          policy.TaxType,
		TaxRate:          policy.Rate.String(),
		Lines:            lines,
		SuspendedAt:      clk.Now(),
	}
}

// RestoreTransaction rebuilds the transient transaction a memento holds.
// The result carries no ID; committing it goes through Create.
func RestoreTransaction(m Memento) (*models.SalesTransaction, error) {
	if m.Version != mementoVersion {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("unsupported snapshot version %d", m.Version))
	}

	subtotal, err := decimal.NewFromString(m.Subtotal)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid snapshot subtotal")
	}
	taxAmount, err := decimal.NewFromString(m.TaxAmount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid snapshot tax amount")
	}
	total, err := decimal.NewFromString(m.Total)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid snapshot total")
	}

	details := make([]models.SalesDetail, 0, len(m.Lines))
	for _, line := range m.Lines {
		price, err := decimal.NewFromString(line.UnitPrice)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid snapshot unit price")
		}
		details = append(details, models.SalesDetail{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: price,
		})
	}

	return &models.SalesTransaction{
		BusinessEntityID: m.BusinessEntityID,
		Subtotal:         subtotal,
		TaxAmount:        taxAmount,
		Total:            total,
		TransactionDate:  m.SuspendedAt,
		Details:          details,
	}, nil
}
