package handler

import (
	inventoryapp "github.com/buildstock/backend/internal/application/inventory"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// IssueHandler handles material issue endpoints
type IssueHandler struct {
	BaseHandler
	issueService *inventoryapp.IssueService
}

// NewIssueHandler creates a new IssueHandler
func NewIssueHandler(issueService *inventoryapp.IssueService, logger *zap.Logger) *IssueHandler {
	return &IssueHandler{
		BaseHandler:  newBaseHandler(logger),
		issueService: issueService,
	}
}

// PreviewIssueRequest asks how an issue would be costed
// @Description	Request body for an issue preview
type PreviewIssueRequest struct {
	MaterialID string          `json:"material_id" binding:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity" example:"150"`
}

// CreateIssueRequest represents an issue of material
// @Description	Request body for issuing material to a site or contractor
type CreateIssueRequest struct {
	MaterialID string          `json:"material_id" binding:"required,uuid"`
	Quantity   decimal.Decimal `json:"quantity" example:"150"`
	IssuedTo   string          `json:"issued_to" binding:"max=200" example:"Tower B, slab casting"`
	Purpose    string          `json:"purpose" binding:"max=500" example:"Level 4 slab"`
	ApprovedBy string          `json:"approved_by" binding:"max=100" example:"Site engineer"`
}

// RegisterRoutes registers the issue routes
func (h *IssueHandler) RegisterRoutes(rg *gin.RouterGroup) {
	issues := rg.Group("/issues")
	issues.GET("", h.List)
	issues.POST("", h.Create)
	issues.POST("/preview", h.Preview)
	issues.GET("/:id", h.GetByID)
}

// Preview godoc
//
//	@Summary		Preview the FIFO costing of an issue
//	@Description	Nothing is persisted. A request above available stock returns can_fulfill=false with the shortfall.
//	@Tags			issues
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PreviewIssueRequest	true	"Preview"
//	@Success		200		{object}	APIResponse[inventoryapp.AllocationPlanResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/issues/preview [post]
func (h *IssueHandler) Preview(c *gin.Context) {
	var req PreviewIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	materialID, err := uuid.Parse(req.MaterialID)
	if err != nil {
		h.BadRequest(c, "Invalid material_id format")
		return
	}

	plan, err := h.issueService.Preview(c.Request.Context(), inventoryapp.PreviewIssueRequest{
		MaterialID: materialID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, plan)
}

// Create godoc
//
//	@Summary	Issue material, costed FIFO across receipt lots
//	@Tags		issues
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateIssueRequest	true	"Issue"
//	@Success	201		{object}	APIResponse[inventoryapp.IssueResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/issues [post]
func (h *IssueHandler) Create(c *gin.Context) {
	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}
	materialID, err := uuid.Parse(req.MaterialID)
	if err != nil {
		h.BadRequest(c, "Invalid material_id format")
		return
	}

	issue, err := h.issueService.CreateIssue(c.Request.Context(), inventoryapp.CreateIssueRequest{
		MaterialID: materialID,
		Quantity:   req.Quantity,
		IssuedTo:   req.IssuedTo,
		Purpose:    req.Purpose,
		ApprovedBy: req.ApprovedBy,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, issue)
}

// GetByID godoc
//
//	@Summary	Get an issue with its allocation lines
//	@Tags		issues
//	@Produce	json
//	@Param		id	path		string	true	"Issue ID"	format(uuid)
//	@Success	200	{object}	APIResponse[inventoryapp.IssueResponse]
//	@Failure	404	{object}	ErrorResponse
//	@Router		/issues/{id} [get]
func (h *IssueHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	issue, err := h.issueService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, issue)
}

// List godoc
//
//	@Summary	List issues, newest first
//	@Tags		issues
//	@Produce	json
//	@Param		material_id	query		string	false	"Material ID"	format(uuid)
//	@Param		start_date	query		string	false	"From (inclusive)"
//	@Param		end_date	query		string	false	"To (inclusive, whole day)"
//	@Success	200			{object}	APIResponse[[]inventoryapp.IssueResponse]
//	@Router		/issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	filter, ok := h.documentFilter(c)
	if !ok {
		return
	}
	issues, err := h.issueService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, issues)
}
