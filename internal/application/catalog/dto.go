package catalog

import (
	"time"

	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateMaterialRequest represents a request to register a new material
type CreateMaterialRequest struct {
	Name          string
	Unit          string
	Category      string
	MinStockLevel decimal.Decimal
}

// UpdateMaterialRequest represents an explicit material update. Nil fields
// are left unchanged.
type UpdateMaterialRequest struct {
	Name          *string
	Unit          *string
	Category      *string
	MinStockLevel *decimal.Decimal
}

// MaterialListFilter represents filter options for the material list
type MaterialListFilter struct {
	Search   string
	Category string
	SortBy   string
	SortDir  string
	Page     int
	PageSize int
}

// MaterialResponse represents a material in API responses
type MaterialResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Category      string          `json:"category"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// MaterialDetailResponse is a material with its current stock position
type MaterialDetailResponse struct {
	MaterialResponse
	AvailableStock decimal.Decimal `json:"available_stock"`
	StockValue     decimal.Decimal `json:"stock_value"`
	IsLowStock     bool            `json:"is_low_stock"`
}

// ToMaterialResponse converts a domain Material to MaterialResponse
func ToMaterialResponse(m *catalog.Material) MaterialResponse {
	return MaterialResponse{
		ID:            m.ID,
		Name:          m.Name,
		Unit:          m.Unit,
		Category:      m.Category,
		MinStockLevel: m.MinStockLevel,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ToMaterialResponses converts a slice of materials
func ToMaterialResponses(materials []catalog.Material) []MaterialResponse {
	responses := make([]MaterialResponse, len(materials))
	for i := range materials {
		responses[i] = ToMaterialResponse(&materials[i])
	}
	return responses
}
