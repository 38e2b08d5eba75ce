package sales

import (
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

// LineInput is one requested sales line.
type LineInput struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Totals is the derived money state of a transaction.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ValidateLines rejects empty sets, non-positive quantities and
// negative prices.
func ValidateLines(lines []LineInput) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one line is required")
	}
	for _, line := range lines {
		if line.ProductID <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line product id is required")
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "line unit price cannot be negative")
		}
	}
	return nil
}

// ComputeTotals derives subtotal, tax and total from the lines and the
// tax rate. Line products stay exact; only the three outputs are
// rounded, to two decimal places half-up.
func ComputeTotals(lines []LineInput, rate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(rate).Round(2)
	total := subtotal.Add(tax).Round(2)
	return Totals{Subtotal: subtotal, TaxAmount: tax, Total: total}
}
