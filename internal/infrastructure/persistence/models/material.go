package models

import (
	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// MaterialModel is the persistence model for the Material entity.
type MaterialModel struct {
	BaseModel
	Name          string          `gorm:"type:varchar(200);not null;uniqueIndex:idx_materials_name"`
	Unit          string          `gorm:"type:varchar(20);not null"`
	Category      string          `gorm:"type:varchar(100);index"`
	MinStockLevel decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (MaterialModel) TableName() string {
	return "materials"
}

// ToDomain converts the persistence model to a domain Material entity.
func (m *MaterialModel) ToDomain() *catalog.Material {
	return &catalog.Material{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		Unit:          m.Unit,
		Category:      m.Category,
		MinStockLevel: m.MinStockLevel,
	}
}

// FromDomain populates the persistence model from a domain Material entity.
func (m *MaterialModel) FromDomain(mat *catalog.Material) {
	m.FromDomainBaseEntity(mat.BaseEntity)
	m.Name = mat.Name
	m.Unit = mat.Unit
	m.Category = mat.Category
	m.MinStockLevel = mat.MinStockLevel
}

// MaterialModelFromDomain creates a new persistence model from a domain Material entity.
func MaterialModelFromDomain(mat *catalog.Material) *MaterialModel {
	m := &MaterialModel{}
	m.FromDomain(mat)
	return m
}
