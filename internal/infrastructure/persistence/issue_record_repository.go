package persistence

import (
	"context"

	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/buildstock/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormIssueRecordRepository implements IssueRecordRepository using GORM
type GormIssueRecordRepository struct {
	db *gorm.DB
}

// NewGormIssueRecordRepository creates a new GormIssueRecordRepository
func NewGormIssueRecordRepository(db *gorm.DB) *GormIssueRecordRepository {
	return &GormIssueRecordRepository{db: db}
}

// FindByID finds an issue with its lines and their lot numbers
func (r *GormIssueRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.IssueRecord, error) {
	db := r.db.WithContext(ctx)

	var model models.IssueRecordModel
	if err := db.First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("find issue", "Issue", id, err)
	}
	if err := db.Model(&models.AllocationLineModel{}).
		Select("allocation_lines.*, receipt_lots.grn_number").
		Joins("JOIN receipt_lots ON receipt_lots.id = allocation_lines.receipt_lot_id").
		Where("allocation_lines.issue_id = ?", id).
		Order("receipt_lots.received_at ASC, receipt_lots.entry_seq ASC").
		Find(&model.Lines).Error; err != nil {
		return nil, shared.NewPersistenceError("load issue lines", err)
	}
	return model.ToDomain(), nil
}

// FindAll finds issues matching the filter, without lines
func (r *GormIssueRecordRepository) FindAll(ctx context.Context, filter inventory.DocumentFilter) ([]inventory.IssueRecord, error) {
	query := applyDocumentFilter(r.db.WithContext(ctx).Model(&models.IssueRecordModel{}), "issued_at", filter)

	var rows []models.IssueRecordModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, shared.NewPersistenceError("list issues", err)
	}
	issues := make([]inventory.IssueRecord, len(rows))
	for i := range rows {
		issues[i] = *rows[i].ToDomain()
	}
	return issues, nil
}

// Count counts all issues
func (r *GormIssueRecordRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.IssueRecordModel{}).Count(&count).Error; err != nil {
		return 0, shared.NewPersistenceError("count issues", err)
	}
	return count, nil
}

// Create inserts the issue and all its lines atomically. A taken issue
// number surfaces as ErrConcurrencyConflict.
func (r *GormIssueRecordRepository) Create(ctx context.Context, issue *inventory.IssueRecord) error {
	model := models.IssueRecordModelFromDomain(issue)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		if len(model.Lines) == 0 {
			return nil
		}
		return tx.Create(&model.Lines).Error
	})
	if err != nil {
		return conflictOr("create issue", err)
	}
	return nil
}

// HighestNumber returns the largest ISN suffix used in the year
func (r *GormIssueRecordRepository) HighestNumber(ctx context.Context, year int) (int64, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.IssueRecordModel{}).
		Where("issue_number LIKE ?", inventory.NumberPattern(inventory.IssuePrefix, year)).
		Pluck("issue_number", &numbers).Error; err != nil {
		return 0, shared.NewPersistenceError("scan issue numbers", err)
	}
	return highestSuffix(numbers), nil
}

// Ensure GormIssueRecordRepository implements IssueRecordRepository
var _ inventory.IssueRecordRepository = (*GormIssueRecordRepository)(nil)
