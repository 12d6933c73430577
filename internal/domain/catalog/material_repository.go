package catalog

import (
	"context"

	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaterialRepository defines the interface for material persistence
type MaterialRepository interface {
	// FindByID finds a material by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)

	// FindByIDForUpdate finds a material and row-locks it for the rest of the
	// surrounding transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Material, error)

	// FindByIDs finds the materials with the given IDs. Missing IDs are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Material, error)

	// FindByName finds a material by its exact name
	FindByName(ctx context.Context, name string) (*Material, error)

	// FindAll finds materials ordered by name. Filters: "category".
	// A zero PageSize returns all rows.
	FindAll(ctx context.Context, filter shared.Filter) ([]Material, error)

	// Count counts materials matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a material
	Save(ctx context.Context, material *Material) error
}
