package reports

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailpulse/retailpulse-backend/pkg/db/models"
	"github.com/retailpulse/retailpulse-backend/pkg/enums"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	svc Service
	db  *gorm.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := "file:reports_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.BusinessEntity{},
		&models.InventoryTransaction{},
		&models.SalesTransaction{},
		&models.SalesDetail{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, db: db}
}

func (f *fixture) seedMovements(t *testing.T) {
	t.Helper()

	products := []models.Product{
		{SKU: "RP1", Description: "widget", RRP: decimal.RequireFromString("2.00"), IsActive: true},
		{SKU: "RP2", Description: "gadget", RRP: decimal.RequireFromString("5.00"), IsActive: true},
	}
	for i := range products {
		if err := f.db.Create(&products[i]).Error; err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}
	entities := []models.BusinessEntity{
		{Name: "Main Warehouse", Type: enums.BusinessEntityTypeWarehouse, IsActive: true},
		{Name: "High Street Shop", Type: enums.BusinessEntityTypeShop, IsActive: true},
	}
	for i := range entities {
		if err := f.db.Create(&entities[i]).Error; err != nil {
			t.Fatalf("seed entity: %v", err)
		}
	}

	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	movements := []models.InventoryTransaction{
		{
			ID: uuid.New(), ProductID: products[0].ID, Quantity: 10,
			CostPricePerUnit: decimal.RequireFromString("1.50"),
			SourceID:         entities[0].ID, DestinationID: entities[1].ID,
			InsertedAt: base,
		},
		{
			ID: uuid.New(), ProductID: products[1].ID, Quantity: 3,
			CostPricePerUnit: decimal.RequireFromString("4.25"),
			SourceID:         entities[0].ID, DestinationID: entities[1].ID,
			InsertedAt: base.Add(time.Hour),
		},
	}
	for i := range movements {
		if err := f.db.Create(&movements[i]).Error; err != nil {
			t.Fatalf("seed movement: %v", err)
		}
	}
}

func TestInventoryReportCSV(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedMovements(t)

	export, err := f.svc.InventoryReport(context.Background(), Filter{}, enums.ReportFormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.Filename != "inventory_transactions.csv" || export.ContentType != "text/csv" {
		t.Fatalf("unexpected export metadata: %+v", export)
	}

	lines := strings.Split(strings.TrimSpace(string(export.Content)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "Date,SKU,Product,Quantity,Cost Per Unit,Source,Destination" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "2026-07-01 10:00:00,RP1,widget,10,1.50,Main Warehouse,High Street Shop" {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "RP2,gadget,3,4.25") {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}

func TestInventoryReportFilters(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedMovements(t)
	ctx := context.Background()

	productID := int64(2)
	export, err := f.svc.InventoryReport(ctx, Filter{ProductID: &productID}, enums.ReportFormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(export.Content)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "RP2") {
		t.Fatalf("expected only the RP2 row, got %q", lines)
	}

	cutoff := time.Date(2026, 7, 1, 10, 30, 0, 0, time.UTC)
	export, err = f.svc.InventoryReport(ctx, Filter{To: &cutoff}, enums.ReportFormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines = strings.Split(strings.TrimSpace(string(export.Content)), "\n")
	if len(lines) != 2 || !strings.Contains(lines[1], "RP1") {
		t.Fatalf("expected only the RP1 row before the cutoff, got %q", lines)
	}
}

func TestInventoryReportExcel(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedMovements(t)

	export, err := f.svc.InventoryReport(context.Background(), Filter{}, enums.ReportFormatExcel)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.Filename != "inventory_transactions.xlsx" {
		t.Fatalf("unexpected filename %q", export.Filename)
	}

	book, err := excelize.OpenReader(bytes.NewReader(export.Content))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer book.Close()

	check := func(cell, want string) {
		t.Helper()
		got, err := book.GetCellValue("Sheet1", cell)
		if err != nil {
			t.Fatalf("read %s: %v", cell, err)
		}
		if got != want {
			t.Fatalf("cell %s = %q, want %q", cell, got, want)
		}
	}
	check("A1", "Date")
	check("B2", "RP1")
	check("C2", "widget")
	check("D2", "10")
	check("E2", "1.50")
	check("F2", "Main Warehouse")
	check("G3", "High Street Shop")
}

func TestSalesReportCSV(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.seedMovements(t)

	txn := models.SalesTransaction{
		BusinessEntityID: 2,
		TaxPolicyID:      1,
		Subtotal:         decimal.RequireFromString("16.00"),
		TaxAmount:        decimal.RequireFromString("1.44"),
		Total:            decimal.RequireFromString("17.44"),
		TransactionDate:  time.Date(2026, 7, 2, 9, 0, 0, 0, time.UTC),
		Details: []models.SalesDetail{
			{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("2.00")},
			{ProductID: 2, Quantity: 2, UnitPrice: decimal.RequireFromString("5.00")},
		},
	}
	if err := f.db.Create(&txn).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}

	export, err := f.svc.SalesReport(context.Background(), nil, nil, enums.ReportFormatCSV)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(export.Content)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[1], "High Street Shop,RP1,widget,3,2.00,6.00") {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if !strings.Contains(lines[2], "RP2,gadget,2,5.00,10.00") {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}

func TestUnsupportedFormat(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.InventoryReport(context.Background(), Filter{}, enums.ReportFormat("pdf"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnsupportedFormat) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	_, err = f.svc.SalesReport(context.Background(), nil, nil, enums.ReportFormat("pdf"))
	if !pkgerrors.HasCode(err, pkgerrors.CodeUnsupportedFormat) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}
