package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	inventoryapp "github.com/buildstock/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StockHandler handles stock report, movement history and dashboard endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		BaseHandler:  newBaseHandler(logger),
		stockService: stockService,
	}
}

// RegisterRoutes registers the stock and dashboard routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	stock.GET("/current", h.Current)
	stock.GET("/current/export", h.Export)
	stock.GET("/movements/:materialId", h.Movements)

	rg.GET("/dashboard/summary", h.Dashboard)
}

// Current godoc
//
//	@Summary	Current stock of every material
//	@Tags		stock
//	@Produce	json
//	@Success	200	{object}	APIResponse[[]inventoryapp.StockLevelResponse]
//	@Router		/stock/current [get]
func (h *StockHandler) Current(c *gin.Context) {
	rows, err := h.stockService.StockReport(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// Export godoc
//
//	@Summary	Current stock as a spreadsheet
//	@Tags		stock
//	@Produce	application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
//	@Success	200	{file}		binary
//	@Failure	400	{object}	ErrorResponse
//	@Router		/stock/current/export [get]
func (h *StockHandler) Export(c *gin.Context) {
	// buffered so a failed export still answers with a JSON error
	var buf bytes.Buffer
	if err := h.stockService.ExportStockReport(c.Request.Context(), &buf); err != nil {
		h.HandleError(c, err)
		return
	}

	contentType, ext := h.stockService.ExportFormat()
	filename := fmt.Sprintf("stock-report-%s%s", time.Now().UTC().Format("20060102"), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Movements godoc
//
//	@Summary	Receipts and issues of a material with running balance
//	@Tags		stock
//	@Produce	json
//	@Param		materialId	path		string	true	"Material ID"	format(uuid)
//	@Param		start_date	query		string	false	"From (inclusive)"
//	@Param		end_date	query		string	false	"To (inclusive, whole day)"
//	@Success	200			{object}	APIResponse[inventoryapp.MovementHistoryResponse]
//	@Failure	404			{object}	ErrorResponse
//	@Router		/stock/movements/{materialId} [get]
func (h *StockHandler) Movements(c *gin.Context) {
	materialID, ok := h.parseID(c, "materialId")
	if !ok {
		return
	}
	start, ok := h.parseDateQuery(c, "start_date")
	if !ok {
		return
	}
	end, ok := h.parseDateQuery(c, "end_date")
	if !ok {
		return
	}

	history, err := h.stockService.MovementHistory(c.Request.Context(), materialID, start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// Dashboard godoc
//
//	@Summary	Headline counts, recent documents and low-stock materials
//	@Tags		dashboard
//	@Produce	json
//	@Success	200	{object}	APIResponse[inventoryapp.DashboardSummaryResponse]
//	@Router		/dashboard/summary [get]
func (h *StockHandler) Dashboard(c *gin.Context) {
	summary, err := h.stockService.DashboardSummary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
