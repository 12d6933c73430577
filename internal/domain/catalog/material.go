package catalog

import (
	"strings"

	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Material is a stock-keeping item such as cement or rebar. Lots and issues
// reference it by ID.
type Material struct {
	shared.BaseEntity
	Name          string
	Unit          string          // bag, kg, m3, ...
	Category      string          // optional grouping
	MinStockLevel decimal.Decimal // low-stock threshold
}

// NewMaterial creates a new material
func NewMaterial(name, unit, category string, minStockLevel decimal.Decimal) (*Material, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if err := validateMaterialName(name); err != nil {
		return nil, err
	}
	if err := validateUnit(unit); err != nil {
		return nil, err
	}
	if err := validateMinStockLevel(minStockLevel); err != nil {
		return nil, err
	}

	return &Material{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		Unit:          unit,
		Category:      strings.TrimSpace(category),
		MinStockLevel: minStockLevel,
	}, nil
}

// MaterialUpdate carries the fields of an explicit material update. Nil
// fields are left unchanged.
type MaterialUpdate struct {
	Name          *string
	Unit          *string
	Category      *string
	MinStockLevel *decimal.Decimal
}

// Apply validates and applies the update. This is the only path that
// changes unit or threshold once the material exists.
func (m *Material) Apply(u MaterialUpdate) error {
	name, unit, minStock := m.Name, m.Unit, m.MinStockLevel
	if u.Name != nil {
		name = strings.TrimSpace(*u.Name)
		if err := validateMaterialName(name); err != nil {
			return err
		}
	}
	if u.Unit != nil {
		unit = strings.TrimSpace(*u.Unit)
		if err := validateUnit(unit); err != nil {
			return err
		}
	}
	if u.MinStockLevel != nil {
		minStock = *u.MinStockLevel
		if err := validateMinStockLevel(minStock); err != nil {
			return err
		}
	}

	m.Name, m.Unit, m.MinStockLevel = name, unit, minStock
	if u.Category != nil {
		m.Category = strings.TrimSpace(*u.Category)
	}
	m.Touch()
	return nil
}

// IsLowStock reports whether available falls below the threshold
func (m *Material) IsLowStock(available decimal.Decimal) bool {
	return available.LessThan(m.MinStockLevel)
}

func validateMaterialName(name string) error {
	if name == "" {
		return shared.NewValidationError("Material name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("Material name cannot exceed 200 characters")
	}
	return nil
}

func validateUnit(unit string) error {
	if unit == "" {
		return shared.NewValidationError("Unit cannot be empty")
	}
	if len(unit) > 20 {
		return shared.NewValidationError("Unit cannot exceed 20 characters")
	}
	return nil
}

func validateMinStockLevel(level decimal.Decimal) error {
	if level.IsNegative() {
		return shared.NewValidationError("Minimum stock level cannot be negative")
	}
	return nil
}
