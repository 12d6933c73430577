package catalog

import (
	"context"
	"errors"

	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaterialService handles the material registry
type MaterialService struct {
	materialRepo catalog.MaterialRepository
	stockRepo    inventory.StockReportRepository
	logger       *zap.Logger
}

// NewMaterialService creates a new MaterialService
func NewMaterialService(
	materialRepo catalog.MaterialRepository,
	stockRepo inventory.StockReportRepository,
	logger *zap.Logger,
) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{
		materialRepo: materialRepo,
		stockRepo:    stockRepo,
		logger:       logger,
	}
}

// Create registers a new material. Names are unique.
func (s *MaterialService) Create(ctx context.Context, req CreateMaterialRequest) (*MaterialResponse, error) {
	material, err := catalog.NewMaterial(req.Name, req.Unit, req.Category, req.MinStockLevel)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, material.Name, uuid.Nil); err != nil {
		return nil, err
	}

	if err := s.materialRepo.Save(ctx, material); err != nil {
		return nil, err
	}

	s.logger.Info("material created",
		zap.String("material_id", material.ID.String()),
		zap.String("name", material.Name),
	)
	response := ToMaterialResponse(material)
	return &response, nil
}

// GetByID returns a material with its available stock and value
func (s *MaterialService) GetByID(ctx context.Context, id uuid.UUID) (*MaterialDetailResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	totals, err := s.stockRepo.TotalsForMaterial(ctx, id)
	if err != nil {
		return nil, err
	}

	level := inventory.NewStockLevel(*material, totals)
	return &MaterialDetailResponse{
		MaterialResponse: ToMaterialResponse(material),
		AvailableStock:   level.AvailableStock,
		StockValue:       level.StockValue,
		IsLowStock:       level.IsLowStock,
	}, nil
}

// List returns materials ordered by name
func (s *MaterialService) List(ctx context.Context, filter MaterialListFilter) ([]MaterialResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	domainFilter.OrderBy = filter.SortBy
	domainFilter.OrderDir = filter.SortDir
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	materials, err := s.materialRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.materialRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToMaterialResponses(materials), total, nil
}

// Update applies an explicit update. Unit and threshold change only here.
func (s *MaterialService) Update(ctx context.Context, id uuid.UUID, req UpdateMaterialRequest) (*MaterialResponse, error) {
	material, err := s.materialRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := material.Apply(catalog.MaterialUpdate{
		Name:          req.Name,
		Unit:          req.Unit,
		Category:      req.Category,
		MinStockLevel: req.MinStockLevel,
	}); err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := s.ensureNameFree(ctx, material.Name, material.ID); err != nil {
			return nil, err
		}
	}

	if err := s.materialRepo.Save(ctx, material); err != nil {
		return nil, err
	}
	response := ToMaterialResponse(material)
	return &response, nil
}

func (s *MaterialService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.materialRepo.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return shared.NewDomainError(shared.CodeAlreadyExists, "Material with this name already exists")
	}
	return nil
}
