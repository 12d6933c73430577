package handler

import (
	inventoryapp "github.com/buildstock/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiptHandler handles goods receipt endpoints
type ReceiptHandler struct {
	BaseHandler
	receiptService *inventoryapp.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *inventoryapp.ReceiptService, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		BaseHandler:    newBaseHandler(logger),
		receiptService: receiptService,
	}
}

// RecordReceiptRequest represents a goods receipt
// @Description	Request body for recording a goods receipt. received_at accepts YYYY-MM-DD or RFC 3339 and defaults to now.
type RecordReceiptRequest struct {
	MaterialID   string          `json:"material_id" binding:"required,uuid" example:"7a1c9e52-5f0e-4c55-9d2b-0d7f5a3e8b11"`
	ReceivedAt   string          `json:"received_at" example:"2025-01-05"`
	Quantity     decimal.Decimal `json:"quantity" example:"100"`
	Rate         decimal.Decimal `json:"rate" example:"350"`
	SupplierName string          `json:"supplier_name" binding:"max=200" example:"Shree Traders"`
	InvoiceRef   string          `json:"invoice_ref" binding:"max=100" example:"INV-2025-0042"`
	ReceivedBy   string          `json:"received_by" binding:"max=100" example:"Site store keeper"`
	Remarks      string          `json:"remarks" binding:"max=500"`
}

// RegisterRoutes registers the receipt routes
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	receipts := rg.Group("/receipts")
	receipts.GET("", h.List)
	receipts.POST("", h.Record)
	receipts.GET("/:id", h.GetByID)
}

// Record godoc
//
//	@Summary	Record a goods receipt as a new lot
//	@Tags		receipts
//	@Accept		json
//	@Produce	json
//	@Param		request	body		RecordReceiptRequest	true	"Receipt"
//	@Success	201		{object}	APIResponse[inventoryapp.ReceiptResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/receipts [post]
func (h *ReceiptHandler) Record(c *gin.Context) {
	var req RecordReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	receivedAt, err := parseDate(req.ReceivedAt)
	if err != nil {
		h.BadRequest(c, "Invalid received_at: expected YYYY-MM-DD or RFC 3339")
		return
	}

	materialID, err := uuid.Parse(req.MaterialID)
	if err != nil {
		h.BadRequest(c, "Invalid material_id format")
		return
	}

	appReq := inventoryapp.RecordReceiptRequest{
		MaterialID:   materialID,
		Quantity:     req.Quantity,
		Rate:         req.Rate,
		SupplierName: req.SupplierName,
		InvoiceRef:   req.InvoiceRef,
		ReceivedBy:   req.ReceivedBy,
		Remarks:      req.Remarks,
	}
	if receivedAt != nil {
		appReq.ReceivedAt = *receivedAt
	}

	receipt, err := h.receiptService.RecordReceipt(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}

// GetByID godoc
//
//	@Summary	Get a receipt with the issue lines drawing from it
//	@Tags		receipts
//	@Produce	json
//	@Param		id	path		string	true	"Receipt lot ID"	format(uuid)
//	@Success	200	{object}	APIResponse[inventoryapp.ReceiptDetailResponse]
//	@Failure	404	{object}	ErrorResponse
//	@Router		/receipts/{id} [get]
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	receipt, err := h.receiptService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipt)
}

// List godoc
//
//	@Summary	List receipts, newest first
//	@Tags		receipts
//	@Produce	json
//	@Param		material_id	query		string	false	"Material ID"	format(uuid)
//	@Param		start_date	query		string	false	"From (inclusive)"
//	@Param		end_date	query		string	false	"To (inclusive, whole day)"
//	@Success	200			{object}	APIResponse[[]inventoryapp.ReceiptResponse]
//	@Router		/receipts [get]
func (h *ReceiptHandler) List(c *gin.Context) {
	filter, ok := h.documentFilter(c)
	if !ok {
		return
	}
	receipts, err := h.receiptService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, receipts)
}

// documentFilter reads material_id, start_date and end_date
func (h *BaseHandler) documentFilter(c *gin.Context) (inventoryapp.DocumentListFilter, bool) {
	var filter inventoryapp.DocumentListFilter
	var ok bool
	if filter.MaterialID, ok = h.parseUUIDQuery(c, "material_id"); !ok {
		return filter, false
	}
	if filter.StartDate, ok = h.parseDateQuery(c, "start_date"); !ok {
		return filter, false
	}
	if filter.EndDate, ok = h.parseDateQuery(c, "end_date"); !ok {
		return filter, false
	}
	return filter, true
}
