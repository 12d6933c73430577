package inventory

import (
	"context"
	"time"

	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaterialLocker serializes issue commits for one material across server
// instances. It only reduces contention; the database guards stay
// authoritative, so a lock that cannot be obtained is not an error for callers.
type MaterialLocker interface {
	// Lock obtains the lock for the material. The returned func releases it.
	Lock(ctx context.Context, materialID uuid.UUID) (release func(), err error)
}

// NoOpMaterialLocker never blocks
type NoOpMaterialLocker struct{}

// Lock returns immediately
func (NoOpMaterialLocker) Lock(context.Context, uuid.UUID) (func(), error) {
	return func() {}, nil
}

var _ MaterialLocker = NoOpMaterialLocker{}

// loadMaterials returns the materials with the given ids keyed by id
func loadMaterials(ctx context.Context, repo catalog.MaterialRepository, ids []uuid.UUID) (map[uuid.UUID]*catalog.Material, error) {
	result := make(map[uuid.UUID]*catalog.Material, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	materials, err := repo.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	for i := range materials {
		result[materials[i].ID] = &materials[i]
	}
	return result, nil
}

// dateRange builds an inclusive range. An end date without a time of day
// covers that whole day.
func dateRange(start, end *time.Time) shared.DateRange {
	r := shared.DateRange{From: start}
	if end != nil {
		to := *end
		if to.Hour() == 0 && to.Minute() == 0 && to.Second() == 0 && to.Nanosecond() == 0 {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		r.To = &to
	}
	return r
}
