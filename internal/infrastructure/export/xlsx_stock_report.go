// Package export renders reports into downloadable file formats.
package export

import (
	"fmt"
	"io"
	"time"

	appinventory "github.com/buildstock/backend/internal/application/inventory"
	"github.com/xuri/excelize/v2"
)

const (
	stockSheet = "Stock"

	// XLSXContentType is the MIME type of an Office Open XML workbook
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var stockHeaders = []any{
	"Material", "Unit", "Category", "Min Stock",
	"Received", "Issued", "Available",
	"Received Value", "Issued Value", "Stock Value", "Low Stock",
}

// XLSXStockReportWriter writes the stock report as a single-sheet workbook
// with a totals row
type XLSXStockReportWriter struct{}

// NewXLSXStockReportWriter creates a new XLSXStockReportWriter
func NewXLSXStockReportWriter() *XLSXStockReportWriter {
	return &XLSXStockReportWriter{}
}

// ContentType implements StockReportWriter
func (XLSXStockReportWriter) ContentType() string { return XLSXContentType }

// FileExtension implements StockReportWriter
func (XLSXStockReportWriter) FileExtension() string { return ".xlsx" }

// WriteStockReport implements StockReportWriter
func (XLSXStockReportWriter) WriteStockReport(w io.Writer, rows []appinventory.StockLevelResponse, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", stockSheet); err != nil {
		return err
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "Stock report",
		Created: generatedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return err
	}

	if err := f.SetSheetRow(stockSheet, "A1", &stockHeaders); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(stockHeaders))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(stockSheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.MaterialName,
			r.Unit,
			r.Category,
			r.MinStockLevel.InexactFloat64(),
			r.TotalReceived.InexactFloat64(),
			r.TotalIssued.InexactFloat64(),
			r.AvailableStock.InexactFloat64(),
			r.ReceivedValue.InexactFloat64(),
			r.IssuedValue.InexactFloat64(),
			r.StockValue.InexactFloat64(),
			yesNo(r.IsLowStock),
		}
		if err := f.SetSheetRow(stockSheet, cell, &values); err != nil {
			return err
		}
	}

	// totals row sums the value columns with formulas
	totalRow := len(rows) + 2
	if err := f.SetCellValue(stockSheet, fmt.Sprintf("A%d", totalRow), "Total"); err != nil {
		return err
	}
	for _, col := range []string{"H", "I", "J"} {
		formula := fmt.Sprintf("SUM(%s2:%s%d)", col, col, totalRow-1)
		if len(rows) == 0 {
			formula = "0"
		}
		if err := f.SetCellFormula(stockSheet, fmt.Sprintf("%s%d", col, totalRow), formula); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(stockSheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), bold); err != nil {
		return err
	}

	if err := f.SetColWidth(stockSheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(stockSheet, "B", lastCol, 14); err != nil {
		return err
	}
	if err := f.SetPanes(stockSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

var _ appinventory.StockReportWriter = XLSXStockReportWriter{}
