package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	appinventory "github.com/buildstock/backend/internal/application/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func stockRow(name string, available, value int64, low bool) appinventory.StockLevelResponse {
	return appinventory.StockLevelResponse{
		MaterialID:     uuid.New(),
		MaterialName:   name,
		Unit:           "bag",
		Category:       "Binding",
		MinStockLevel:  decimal.NewFromInt(20),
		TotalReceived:  decimal.NewFromInt(available + 10),
		TotalIssued:    decimal.NewFromInt(10),
		AvailableStock: decimal.NewFromInt(available),
		ReceivedValue:  decimal.NewFromInt(value + 100),
		IssuedValue:    decimal.NewFromInt(100),
		StockValue:     decimal.NewFromInt(value),
		IsLowStock:     low,
	}
}

func TestXLSXStockReportWriter_Format(t *testing.T) {
	w := NewXLSXStockReportWriter()
	assert.Equal(t, XLSXContentType, w.ContentType())
	assert.Equal(t, ".xlsx", w.FileExtension())
}

func TestXLSXStockReportWriter_WriteStockReport(t *testing.T) {
	rows := []appinventory.StockLevelResponse{
		stockRow("Cement", 50, 18000, false),
		stockRow("Sand", 5, 250, true),
	}

	var buf bytes.Buffer
	require.NoError(t, NewXLSXStockReportWriter().WriteStockReport(&buf, rows, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{stockSheet}, f.GetSheetList())
	sheet, err := f.GetRows(stockSheet)
	require.NoError(t, err)
	require.Len(t, sheet, 4)

	assert.Equal(t, "Material", sheet[0][0])
	assert.Equal(t, "Low Stock", sheet[0][10])
	assert.Equal(t, []string{"Cement", "bag", "Binding", "20", "60", "10", "50", "18100", "100", "18000", "No"}, sheet[1])
	assert.Equal(t, "Yes", sheet[2][10])
	assert.Equal(t, "Total", sheet[3][0])

	formula, err := f.GetCellFormula(stockSheet, "J4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(J2:J3)", formula)
}

func TestXLSXStockReportWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewXLSXStockReportWriter().WriteStockReport(&buf, nil, time.Now()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet, err := f.GetRows(stockSheet)
	require.NoError(t, err)
	require.Len(t, sheet, 2)
	assert.Equal(t, "Total", sheet[1][0])
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestXLSXStockReportWriter_WriteError(t *testing.T) {
	err := NewXLSXStockReportWriter().WriteStockReport(failingWriter{}, []appinventory.StockLevelResponse{stockRow("Cement", 1, 1, false)}, time.Now())
	assert.Error(t, err)
}
