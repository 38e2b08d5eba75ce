package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailpulse/retailpulse-backend/internal/stockledger"
	"github.com/retailpulse/retailpulse-backend/internal/taxes"
	"github.com/retailpulse/retailpulse-backend/pkg/clock"
	"github.com/retailpulse/retailpulse-backend/pkg/config"
	"github.com/retailpulse/retailpulse-backend/pkg/db"
	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	"github.com/retailpulse/retailpulse-backend/pkg/enums"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type fakeEntities map[int64]*models.BusinessEntity

func (f fakeEntities) FindByID(_ context.Context, id int64) (*models.BusinessEntity, error) {
	return f[id], nil
}

type fixture struct {
	svc    Service
	stock  stockledger.Service
	client *db.Client
	store  *SuspendStore
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.DBConfig{
		Driver: "sqlite",
		DSN:    "file:sales_" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if err := client.DB().AutoMigrate(
		&models.Product{},
		&models.BusinessEntity{},
		&models.StockLedgerEntry{},
		&models.TaxPolicy{},
		&models.SalesTransaction{},
		&models.SalesDetail{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	products := []*models.Product{
		{ID: 1, SKU: "RP1", Description: "two-dollar widget", IsActive: true},
		{ID: 2, SKU: "RP2", Description: "premium widget", IsActive: true},
		{ID: 3, SKU: "RP3", Description: "deluxe widget", IsActive: true},
	}
	for _, p := range products {
		if err := client.DB().Create(p).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	stock, err := stockledger.NewService(stockledger.NewRepository(client.DB()))
	if err != nil {
		t.Fatalf("stock service: %v", err)
	}
	taxSvc, err := taxes.NewService(taxes.NewRepository(client.DB()), decimal.RequireFromString("0.09"))
	if err != nil {
		t.Fatalf("tax service: %v", err)
	}

	entities := fakeEntities{
		11: {ID: 11, Name: "Main Street Shop", Type: enums.BusinessEntityTypeShop, IsActive: true},
		13: {ID: 13, Name: "Closed Shop", Type: enums.BusinessEntityTypeShop, IsActive: false},
	}

	store := NewSuspendStore()
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, err := NewService(
		NewRepository(client.DB()),
		client,
		stock,
		taxSvc,
		entities,
		store,
		clock.Fixed{Instant: now},
		nil,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	return &fixture{svc: svc, stock: stock, client: client, store: store, now: now}
}

func (f *fixture) creditStock(t *testing.T, productID int64, qty int) {
	t.Helper()
	if _, err := f.stock.Credit(context.Background(), productID, 11, qty, decimal.RequireFromString("1.00")); err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func (f *fixture) balance(t *testing.T, productID int64) int {
	t.Helper()
	entry, err := f.stock.GetBalance(context.Background(), productID, 11)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if entry == nil {
		return 0
	}
	return entry.Quantity
}

func standardLines() []LineInput {
	return []LineInput{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("50.00")},
		{ProductID: 2, Quantity: 3, UnitPrice: decimal.RequireFromString("100.00")},
		{ProductID: 3, Quantity: 4, UnitPrice: decimal.RequireFromString("200.00")},
	}
}

func TestCreateCommitsTransaction(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.creditStock(t, 1, 10)
	f.creditStock(t, 2, 10)
	f.creditStock(t, 3, 10)

	txn, err := f.svc.Create(ctx, 11, standardLines())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if txn.ID == 0 {
		t.Fatal("expected persisted id")
	}
	if !txn.Subtotal.Equal(decimal.RequireFromString("1200.00")) {
		t.Fatalf("subtotal = %s, want 1200.00", txn.Subtotal)
	}
	if !txn.TaxAmount.Equal(decimal.RequireFromString("108.00")) {
		t.Fatalf("tax = %s, want 108.00", txn.TaxAmount)
	}
	if !txn.Total.Equal(decimal.RequireFromString("1308.00")) {
		t.Fatalf("total = %s, want 1308.00", txn.Total)
	}
	if !txn.TransactionDate.Equal(f.now) {
		t.Fatalf("unexpected transaction date %v", txn.TransactionDate)
	}

	if got := f.balance(t, 1); got != 8 {
		t.Fatalf("product 1 balance = %d, want 8", got)
	}
	if got := f.balance(t, 2); got != 7 {
		t.Fatalf("product 2 balance = %d, want 7", got)
	}
	if got := f.balance(t, 3); got != 6 {
		t.Fatalf("product 3 balance = %d, want 6", got)
	}

	loaded, err := f.svc.Get(ctx, txn.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded.Details) != 3 {
		t.Fatalf("expected 3 details, got %d", len(loaded.Details))
	}
}

func TestCreateInsufficientStockRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.creditStock(t, 1, 10)
	f.creditStock(t, 2, 1) // not enough for quantity 3

	_, err := f.svc.Create(ctx, 11, standardLines())
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if got := f.balance(t, 1); got != 10 {
		t.Fatalf("product 1 debit must be rolled back, got %d", got)
	}
	if got := f.balance(t, 2); got != 1 {
		t.Fatalf("product 2 balance should be unchanged, got %d", got)
	}

	var count int64
	if err := f.client.DB().Model(&models.SalesTransaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed create must not persist, got %d rows", count)
	}
}

func TestCreateValidations(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, 99, standardLines()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown entity, got %v", err)
	}
	if _, err := f.svc.Create(ctx, 13, standardLines()); !pkgerrors.HasCode(err, pkgerrors.CodeEntityInactive) {
		t.Fatalf("expected inactive entity error, got %v", err)
	}
	if _, err := f.svc.Create(ctx, 11, nil); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty lines, got %v", err)
	}
}

func TestUpdateReplacesLinesAndAdjustsStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.creditStock(t, 1, 11) // 1 sold on create leaves 10

	txn, err := f.svc.Create(ctx, 11, []LineInput{
		{ProductID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := f.balance(t, 1); got != 10 {
		t.Fatalf("post-create balance = %d, want 10", got)
	}

	updated, err := f.svc.Update(ctx, txn.ID, []LineInput{
		{ProductID: 1, Quantity: 5, UnitPrice: decimal.RequireFromString("10.00")},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if got := f.balance(t, 1); got != 6 {
		t.Fatalf("post-update balance = %d, want 6", got)
	}
	if !updated.Subtotal.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("subtotal = %s, want 50.00", updated.Subtotal)
	}
	if !updated.TaxAmount.Equal(decimal.RequireFromString("4.50")) {
		t.Fatalf("tax = %s, want 4.50", updated.TaxAmount)
	}
	if !updated.Total.Equal(decimal.RequireFromString("54.50")) {
		t.Fatalf("total = %s, want 54.50", updated.Total)
	}
	if len(updated.Details) != 1 || updated.Details[0].Quantity != 5 {
		t.Fatalf("unexpected details: %+v", updated.Details)
	}
}

func TestUpdateInsufficientStockRollsBackCredit(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.creditStock(t, 1, 3)

	txn, err := f.svc.Create(ctx, 11, []LineInput{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := f.balance(t, 1); got != 1 {
		t.Fatalf("post-create balance = %d, want 1", got)
	}

	// crediting back 2 gives 3 on hand; the new line needs 10
	_, err = f.svc.Update(ctx, txn.ID, []LineInput{
		{ProductID: 1, Quantity: 10, UnitPrice: decimal.RequireFromString("10.00")},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if got := f.balance(t, 1); got != 1 {
		t.Fatalf("failed update must roll back the credit, got %d", got)
	}

	reloaded, err := f.svc.Get(ctx, txn.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(reloaded.Details) != 1 || reloaded.Details[0].Quantity != 2 {
		t.Fatalf("details must be unchanged, got %+v", reloaded.Details)
	}
}

func TestUpdateMissingTransaction(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), 12345, []LineInput{
		{ProductID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("1.00")},
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCalculateTaxLeavesStockAlone(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.creditStock(t, 1, 5)

	preview, err := f.svc.CalculateTax(ctx, standardLines())
	if err != nil {
		t.Fatalf("calculate tax: %v", err)
	}
	if !preview.Subtotal.Equal(decimal.RequireFromString("1200.00")) {
		t.Fatalf("subtotal = %s, want 1200.00", preview.Subtotal)
	}
	if preview.TaxType != enums.TaxTypeGST {
		t.Fatalf("unexpected tax type %s", preview.TaxType)
	}
	if !preview.TaxRate.Equal(decimal.RequireFromString("0.09")) {
		t.Fatalf("unexpected rate %s", preview.TaxRate)
	}
	if len(preview.Lines) != 3 {
		t.Fatalf("expected echoed lines, got %d", len(preview.Lines))
	}

	if got := f.balance(t, 1); got != 5 {
		t.Fatalf("preview must not touch stock, got %d", got)
	}
}

func TestSuspendRestoreFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.creditStock(t, 1, 10)

	lines := []LineInput{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("25.00")},
	}

	mementos, err := f.svc.Suspend(ctx, 11, lines)
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if len(mementos) != 1 {
		t.Fatalf("expected 1 memento, got %d", len(mementos))
	}
	if got := f.balance(t, 1); got != 10 {
		t.Fatalf("suspend must not touch stock, got %d", got)
	}

	var txnCount int64
	if err := f.client.DB().Model(&models.SalesTransaction{}).Count(&txnCount).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if txnCount != 0 {
		t.Fatal("suspend must not persist a transaction")
	}

	listed := f.svc.ListSuspended(11)
	if len(listed) != 1 || listed[0].ID != mementos[0].ID {
		t.Fatalf("unexpected suspended list: %+v", listed)
	}

	removed, remaining, err := f.svc.RestoreSuspended(11, mementos[0].ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected empty remainder, got %d", len(remaining))
	}
	if removed.ID != mementos[0].ID {
		t.Fatalf("restored wrong memento %s", removed.ID)
	}

	// committing the restored ticket goes through the normal create path
	restored, err := RestoreTransaction(removed)
	if err != nil {
		t.Fatalf("rebuild transaction: %v", err)
	}
	committed, err := f.svc.Create(ctx, restored.BusinessEntityID, linesFromDetails(restored.Details))
	if err != nil {
		t.Fatalf("commit restored: %v", err)
	}
	if !committed.Subtotal.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("subtotal = %s, want 50.00", committed.Subtotal)
	}
	if got := f.balance(t, 1); got != 8 {
		t.Fatalf("post-commit balance = %d, want 8", got)
	}

	if _, _, err := f.svc.RestoreSuspended(11, mementos[0].ID); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found on second restore, got %v", err)
	}
}

func TestGetFullJoinsProducts(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	f.creditStock(t, 1, 10)

	txn, err := f.svc.Create(ctx, 11, []LineInput{
		{ProductID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	loaded, records, err := f.svc.GetFull(ctx, txn.ID)
	if err != nil {
		t.Fatalf("get full: %v", err)
	}
	if loaded.ID != txn.ID {
		t.Fatalf("unexpected transaction %d", loaded.ID)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 detail record, got %d", len(records))
	}
	if records[0].ProductSKU != "RP1" || records[0].ProductDescription != "two-dollar widget" {
		t.Fatalf("unexpected joined product: %+v", records[0])
	}
}

func linesFromDetails(details []models.SalesDetail) []LineInput {
	lines := make([]LineInput, 0, len(details))
	for _, d := range details {
		lines = append(lines, LineInput{
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
		})
	}
	return lines
}
