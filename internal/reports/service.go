package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/retailpulse/retailpulse-backend/pkg/enums"
	pkgerrors "github.com/retailpulse/retailpulse-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheetName       = "Sheet1"
	excelMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvMIME         = "text/csv"
	reportTimestamp = "2006-01-02 15:04:05"
)

var inventoryHeadings = []string{"Date", "SKU", "Product", "Quantity", "Cost Per Unit", "Source", "Destination"}

var salesHeadings = []string{"Date", "Transaction", "Entity", "SKU", "Product", "Quantity", "Unit Price", "Line Total"}

// Export is a rendered report ready to stream as a download.
type Export struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Service renders inventory and sales extracts in the supported
// download formats.
type Service interface {
	InventoryReport(ctx context.Context, filter Filter, format enums.ReportFormat) (*Export, error)
	SalesReport(ctx context.Context, from, to *time.Time, format enums.ReportFormat) (*Export, error)
}

type service struct {
	repo Repository
}

// NewService returns the report service. The repository is required.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports: repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) InventoryReport(ctx context.Context, filter Filter, format enums.ReportFormat) (*Export, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	rows, err := s.repo.InventoryRows(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: query inventory report rows")
	}

	cells := make([][]any, 0, len(rows))
	for _, row := range rows {
		cells = append(cells, []any{
			row.InsertedAt.Format(reportTimestamp),
			row.ProductSKU,
			row.ProductDescription,
			row.Quantity,
			row.CostPricePerUnit.StringFixed(2),
			row.SourceName,
			row.DestinationName,
		})
	}
	return render("inventory_transactions", inventoryHeadings, cells, format)
}

func (s *service) SalesReport(ctx context.Context, from, to *time.Time, format enums.ReportFormat) (*Export, error) {
	if err := checkFormat(format); err != nil {
		return nil, err
	}

	rows, err := s.repo.SalesRows(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: query sales report rows")
	}

	cells := make([][]any, 0, len(rows))
	for _, row := range rows {
		lineTotal := row.UnitPrice.Mul(decimal.NewFromInt(int64(row.Quantity)))
		cells = append(cells, []any{
			row.TransactionDate.Format(reportTimestamp),
			row.SalesTransactionID,
			row.EntityName,
			row.ProductSKU,
			row.ProductDescription,
			row.Quantity,
			row.UnitPrice.StringFixed(2),
			lineTotal.StringFixed(2),
		})
	}
	return render("sales_details", salesHeadings, cells, format)
}

func checkFormat(format enums.ReportFormat) error {
	if !format.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnsupportedFormat, fmt.Sprintf("unsupported report format %q", format.String()))
	}
	return nil
}

func render(name string, headings []string, rows [][]any, format enums.ReportFormat) (*Export, error) {
	switch format {
	case enums.ReportFormatExcel:
		content, err := renderExcel(headings, rows)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render excel report")
		}
		return &Export{Filename: name + ".xlsx", ContentType: excelMIME, Content: content}, nil
	case enums.ReportFormatCSV:
		content, err := renderCSV(headings, rows)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render csv report")
		}
		return &Export{Filename: name + ".csv", ContentType: csvMIME, Content: content}, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeUnsupportedFormat, fmt.Sprintf("unsupported report format %q", format.String()))
	}
}

func renderExcel(headings []string, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, h := range headings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, err
		}
	}
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderCSV(headings []string, rows [][]any) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(headings); err != nil {
		return nil, err
	}
	record := make([]string, len(headings))
	for _, row := range rows {
		for i, value := range row {
			record[i] = fmt.Sprint(value)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
