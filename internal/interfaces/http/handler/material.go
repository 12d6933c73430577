package handler

import (
	catalogapp "github.com/buildstock/backend/internal/application/catalog"
	"github.com/buildstock/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaterialHandler handles material master data endpoints
type MaterialHandler struct {
	BaseHandler
	materialService *catalogapp.MaterialService
}

// NewMaterialHandler creates a new MaterialHandler
func NewMaterialHandler(materialService *catalogapp.MaterialService, logger *zap.Logger) *MaterialHandler {
	return &MaterialHandler{
		BaseHandler:     newBaseHandler(logger),
		materialService: materialService,
	}
}

// CreateMaterialRequest represents a request to register a material
// @Description	Request body for creating a material
type CreateMaterialRequest struct {
	Name          string          `json:"name" binding:"required,max=200" example:"Portland Cement 53 Grade"`
	Unit          string          `json:"unit" binding:"required,max=50" example:"bag"`
	Category      string          `json:"category" binding:"max=100" example:"Binding"`
	MinStockLevel decimal.Decimal `json:"min_stock_level" example:"20"`
}

// UpdateMaterialRequest represents a partial material update
// @Description	Request body for updating a material; omitted fields stay unchanged
type UpdateMaterialRequest struct {
	Name          *string          `json:"name" binding:"omitempty,max=200" example:"Portland Cement 43 Grade"`
	Unit          *string          `json:"unit" binding:"omitempty,max=50" example:"bag"`
	Category      *string          `json:"category" binding:"omitempty,max=100" example:"Binding"`
	MinStockLevel *decimal.Decimal `json:"min_stock_level" example:"25"`
}

// ListMaterialsQuery holds material list query parameters
type ListMaterialsQuery struct {
	dto.ListRequest
	Category string `form:"category"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=name category unit min_stock_level created_at updated_at"`
	SortDir  string `form:"sort_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// RegisterRoutes registers the material routes
func (h *MaterialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	materials := rg.Group("/materials")
	materials.GET("", h.List)
	materials.POST("", h.Create)
	materials.GET("/:id", h.GetByID)
	materials.PUT("/:id", h.Update)
}

// Create godoc
//
//	@Summary	Register a material
//	@Tags		materials
//	@Accept		json
//	@Produce	json
//	@Param		request	body		CreateMaterialRequest	true	"Material"
//	@Success	201		{object}	APIResponse[catalogapp.MaterialResponse]
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/materials [post]
func (h *MaterialHandler) Create(c *gin.Context) {
	var req CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	material, err := h.materialService.Create(c.Request.Context(), catalogapp.CreateMaterialRequest{
		Name:          req.Name,
		Unit:          req.Unit,
		Category:      req.Category,
		MinStockLevel: req.MinStockLevel,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, material)
}

// GetByID godoc
//
//	@Summary	Get a material with its available stock
//	@Tags		materials
//	@Produce	json
//	@Param		id	path		string	true	"Material ID"	format(uuid)
//	@Success	200	{object}	APIResponse[catalogapp.MaterialDetailResponse]
//	@Failure	404	{object}	ErrorResponse
//	@Router		/materials/{id} [get]
func (h *MaterialHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	material, err := h.materialService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}

// List godoc
//
//	@Summary	List materials
//	@Tags		materials
//	@Produce	json
//	@Param		search		query		string	false	"Name contains"
//	@Param		category	query		string	false	"Exact category"
//	@Param		sort_by		query		string	false	"Sort column"	default(name)
//	@Param		sort_dir	query		string	false	"asc or desc"	default(asc)
//	@Param		page		query		int		false	"Page"		default(1)
//	@Param		page_size	query		int		false	"Page size"	default(20)
//	@Success	200			{object}	APIResponse[[]catalogapp.MaterialResponse]
//	@Router		/materials [get]
func (h *MaterialHandler) List(c *gin.Context) {
	query := ListMaterialsQuery{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.HandleBindError(c, err)
		return
	}

	materials, total, err := h.materialService.List(c.Request.Context(), catalogapp.MaterialListFilter{
		Search:   query.Search,
		Category: query.Category,
		SortBy:   query.SortBy,
		SortDir:  query.SortDir,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, materials, total, query.Page, query.PageSize)
}

// Update godoc
//
//	@Summary	Update a material
//	@Tags		materials
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Material ID"	format(uuid)
//	@Param		request	body		UpdateMaterialRequest	true	"Changed fields"
//	@Success	200		{object}	APIResponse[catalogapp.MaterialResponse]
//	@Failure	404		{object}	ErrorResponse
//	@Router		/materials/{id} [put]
func (h *MaterialHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindError(c, err)
		return
	}

	material, err := h.materialService.Update(c.Request.Context(), id, catalogapp.UpdateMaterialRequest{
		Name:          req.Name,
		Unit:          req.Unit,
		Category:      req.Category,
		MinStockLevel: req.MinStockLevel,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, material)
}
