package persistence

import (
	"context"
	"strings"

	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/buildstock/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMaterialRepository implements MaterialRepository using GORM
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID finds a material by its ID
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("find material", "Material", id, err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a material with SELECT ... FOR UPDATE. Only
// meaningful inside a transaction; sqlite ignores the locking clause.
func (r *GormMaterialRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("lock material", "Material", id, err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple materials by their IDs
func (r *GormMaterialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Material, error) {
	if len(ids) == 0 {
		return []catalog.Material{}, nil
	}
	var rows []models.MaterialModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, shared.NewPersistenceError("find materials", err)
	}
	return toMaterials(rows), nil
}

// FindByName finds a material by its exact name
func (r *GormMaterialRepository) FindByName(ctx context.Context, name string) (*catalog.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).First(&model, "name = ?", strings.TrimSpace(name)).Error; err != nil {
		return nil, notFoundOr("find material by name", "Material", name, err)
	}
	return model.ToDomain(), nil
}

// FindAll finds materials matching the filter, ordered by name unless the
// filter names another whitelisted column
func (r *GormMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Material, error) {
	orderBy := ValidateSortField(filter.OrderBy, MaterialSortFields, "name")
	orderDir := ValidateSortOrder(filter.OrderDir, "ASC")
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MaterialModel{}), filter).
		Order(orderBy + " " + orderDir)
	if orderBy != "name" {
		query = query.Order("name ASC")
	}
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var rows []models.MaterialModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, shared.NewPersistenceError("list materials", err)
	}
	return toMaterials(rows), nil
}

// Count counts materials matching the filter
func (r *GormMaterialRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MaterialModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, shared.NewPersistenceError("count materials", err)
	}
	return count, nil
}

// Save creates or updates a material. A duplicate name is reported as
// ErrAlreadyExists.
func (r *GormMaterialRepository) Save(ctx context.Context, material *catalog.Material) error {
	model := models.MaterialModelFromDomain(material)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.ErrAlreadyExists.WithMessage("Material %q already exists", material.Name)
		}
		return shared.NewPersistenceError("save material", err)
	}
	return nil
}

// applyFilter applies search and the "category" filter
func (r *GormMaterialRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "category":
			if s, ok := value.(string); ok && s != "" {
				query = query.Where("category = ?", s)
			}
		}
	}
	return query
}

func toMaterials(rows []models.MaterialModel) []catalog.Material {
	materials := make([]catalog.Material, len(rows))
	for i := range rows {
		materials[i] = *rows[i].ToDomain()
	}
	return materials
}

// Ensure GormMaterialRepository implements MaterialRepository
var _ catalog.MaterialRepository = (*GormMaterialRepository)(nil)
