package persistence

import (
	"context"
	"time"

	"github.com/buildstock/backend/internal/domain/inventory"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/buildstock/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReceiptLotRepository implements ReceiptLotRepository using GORM
type GormReceiptLotRepository struct {
	db *gorm.DB
}

// NewGormReceiptLotRepository creates a new GormReceiptLotRepository
func NewGormReceiptLotRepository(db *gorm.DB) *GormReceiptLotRepository {
	return &GormReceiptLotRepository{db: db}
}

// lineQuantity is one allocation line's draw on a lot
type lineQuantity struct {
	ReceiptLotID uuid.UUID
	Quantity     decimal.Decimal
}

// consumedByLot sums allocation quantities per lot. The sum is taken in Go
// because SQLite adds NUMERIC columns as floats.
func consumedByLot(db *gorm.DB, lotIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	consumed := make(map[uuid.UUID]decimal.Decimal, len(lotIDs))
	if len(lotIDs) == 0 {
		return consumed, nil
	}
	var rows []lineQuantity
	if err := db.Model(&models.AllocationLineModel{}).
		Select("receipt_lot_id, quantity").
		Where("receipt_lot_id IN ?", lotIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		consumed[row.ReceiptLotID] = consumed[row.ReceiptLotID].Add(row.Quantity)
	}
	return consumed, nil
}

// ListOpenLots returns the material's lots that still have stock, oldest first
func (r *GormReceiptLotRepository) ListOpenLots(ctx context.Context, materialID uuid.UUID) ([]inventory.OpenLot, error) {
	db := r.db.WithContext(ctx)
	var rows []models.ReceiptLotModel
	if err := db.Where("material_id = ?", materialID).
		Order("received_at ASC, entry_seq ASC").
		Find(&rows).Error; err != nil {
		return nil, shared.NewPersistenceError("list open lots", err)
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	consumed, err := consumedByLot(db, ids)
	if err != nil {
		return nil, shared.NewPersistenceError("list open lots", err)
	}

	lots := make([]inventory.OpenLot, 0, len(rows))
	for i := range rows {
		lot := inventory.NewOpenLot(*rows[i].ToDomain(), consumed[rows[i].ID])
		if lot.IsExhausted() {
			continue
		}
		lots = append(lots, lot)
	}
	// the database already orders; this also normalises equal timestamps
	return inventory.SortOpenLots(lots), nil
}

// FindByID finds a lot by its ID
func (r *GormReceiptLotRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.ReceiptLot, error) {
	var model models.ReceiptLotModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("find receipt", "Receipt", id, err)
	}
	return model.ToDomain(), nil
}

// FindAll finds lots matching the filter
func (r *GormReceiptLotRepository) FindAll(ctx context.Context, filter inventory.DocumentFilter) ([]inventory.ReceiptLot, error) {
	query := applyDocumentFilter(r.db.WithContext(ctx).Model(&models.ReceiptLotModel{}), "received_at", filter)

	var rows []models.ReceiptLotModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, shared.NewPersistenceError("list receipts", err)
	}
	lots := make([]inventory.ReceiptLot, len(rows))
	for i := range rows {
		lots[i] = *rows[i].ToDomain()
	}
	return lots, nil
}

// Count counts all lots
func (r *GormReceiptLotRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ReceiptLotModel{}).Count(&count).Error; err != nil {
		return 0, shared.NewPersistenceError("count receipts", err)
	}
	return count, nil
}

// Create appends a new lot
func (r *GormReceiptLotRepository) Create(ctx context.Context, lot *inventory.ReceiptLot) error {
	if err := r.db.WithContext(ctx).Create(models.ReceiptLotModelFromDomain(lot)).Error; err != nil {
		return conflictOr("create receipt", err)
	}
	return nil
}

// HighestNumber returns the largest GRN suffix used in the year
func (r *GormReceiptLotRepository) HighestNumber(ctx context.Context, year int) (int64, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).Model(&models.ReceiptLotModel{}).
		Where("grn_number LIKE ?", inventory.NumberPattern(inventory.ReceiptPrefix, year)).
		Pluck("grn_number", &numbers).Error; err != nil {
		return 0, shared.NewPersistenceError("scan receipt numbers", err)
	}
	return highestSuffix(numbers), nil
}

// allocationRow is an allocation line joined with its issue header
type allocationRow struct {
	LineID      uuid.UUID
	IssueID     uuid.UUID
	IssueNumber string
	IssuedAt    time.Time
	IssuedTo    string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// FindAllocations lists the issue lines drawing on a lot, in ledger order
func (r *GormReceiptLotRepository) FindAllocations(ctx context.Context, lotID uuid.UUID) ([]inventory.LotAllocation, error) {
	var rows []allocationRow
	err := r.db.WithContext(ctx).
		Table("allocation_lines").
		Select("allocation_lines.id AS line_id, allocation_lines.issue_id, issue_records.issue_number, "+
			"issue_records.issued_at, issue_records.issued_to, allocation_lines.quantity, "+
			"allocation_lines.rate, allocation_lines.amount").
		Joins("JOIN issue_records ON issue_records.id = allocation_lines.issue_id").
		Where("allocation_lines.receipt_lot_id = ?", lotID).
		Order("issue_records.entry_seq ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, shared.NewPersistenceError("list lot allocations", err)
	}

	allocations := make([]inventory.LotAllocation, len(rows))
	for i, row := range rows {
		allocations[i] = inventory.LotAllocation{
			LineID:      row.LineID,
			IssueID:     row.IssueID,
			IssueNumber: row.IssueNumber,
			IssuedAt:    row.IssuedAt,
			IssuedTo:    row.IssuedTo,
			Quantity:    row.Quantity,
			Rate:        row.Rate,
			Amount:      row.Amount,
		}
	}
	return allocations, nil
}

// FindOverdrawn returns the lots among ids whose allocations exceed their quantity
func (r *GormReceiptLotRepository) FindOverdrawn(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := r.db.WithContext(ctx)
	var rows []models.ReceiptLotModel
	if err := db.Select("id, quantity").Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, shared.NewPersistenceError("check overdrawn lots", err)
	}
	consumed, err := consumedByLot(db, ids)
	if err != nil {
		return nil, shared.NewPersistenceError("check overdrawn lots", err)
	}

	var overdrawn []uuid.UUID
	for _, row := range rows {
		if consumed[row.ID].GreaterThan(row.Quantity) {
			overdrawn = append(overdrawn, row.ID)
		}
	}
	return overdrawn, nil
}

// applyDocumentFilter applies material, date range, ordering and limit.
// dateColumn is received_at or issued_at.
func applyDocumentFilter(query *gorm.DB, dateColumn string, filter inventory.DocumentFilter) *gorm.DB {
	if filter.MaterialID != nil {
		query = query.Where("material_id = ?", *filter.MaterialID)
	}
	if filter.Range.From != nil {
		query = query.Where(dateColumn+" >= ?", *filter.Range.From)
	}
	if filter.Range.To != nil {
		query = query.Where(dateColumn+" <= ?", *filter.Range.To)
	}
	if filter.Chronological {
		query = query.Order(dateColumn + " ASC").Order("entry_seq ASC")
	} else {
		query = query.Order(dateColumn + " DESC").Order("entry_seq DESC")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	return query
}

// highestSuffix returns the largest sequence among well-formed document numbers
func highestSuffix(numbers []string) int64 {
	var highest int64
	for _, n := range numbers {
		_, _, seq, err := inventory.ParseDocumentNumber(n)
		if err != nil {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return highest
}

// Ensure GormReceiptLotRepository implements ReceiptLotRepository
var _ inventory.ReceiptLotRepository = (*GormReceiptLotRepository)(nil)
