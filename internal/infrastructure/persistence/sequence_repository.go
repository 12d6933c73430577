package persistence

import (
	"context"
	"time"

	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/buildstock/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository implements SequenceRepository on the
// document_sequences table. The UPDATE row-locks the counter until the
// surrounding transaction ends, so concurrent callers are serialised.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next increments the (name, year) counter and returns the new value. The
// counter never falls below floor.
func (r *GormSequenceRepository) Next(ctx context.Context, name string, year int, floor int64) (int64, error) {
	db := r.db.WithContext(ctx)
	now := time.Now().UTC()

	seed := models.DocumentSequenceModel{Name: name, Year: year, LastValue: floor, UpdatedAt: now}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, shared.NewPersistenceError("seed sequence "+name, err)
	}

	result := db.Model(&models.DocumentSequenceModel{}).
		Where("name = ? AND year = ?", name, year).
		Updates(map[string]any{
			"last_value": gorm.Expr("CASE WHEN last_value < ? THEN ? ELSE last_value END + 1", floor, floor),
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, shared.NewPersistenceError("advance sequence "+name, result.Error)
	}
	if result.RowsAffected != 1 {
		return 0, shared.NewPersistenceError("advance sequence "+name, gorm.ErrRecordNotFound)
	}

	var current models.DocumentSequenceModel
	if err := db.Where("name = ? AND year = ?", name, year).First(&current).Error; err != nil {
		return 0, shared.NewPersistenceError("read sequence "+name, err)
	}
	return current.LastValue, nil
}

// Ensure GormSequenceRepository implements SequenceRepository
var _ inventory.SequenceRepository = (*GormSequenceRepository)(nil)
