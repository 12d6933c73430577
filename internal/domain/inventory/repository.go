package inventory

import (
	"context"
	"time"

	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentFilter selects receipts or issues. Results are newest first unless
// Chronological is set.
type DocumentFilter struct {
	MaterialID    *uuid.UUID
	Range         shared.DateRange
	Limit         int
	Chronological bool
}

// LotAllocation is an issue line seen from the lot it draws on
type LotAllocation struct {
	LineID      uuid.UUID
	IssueID     uuid.UUID
	IssueNumber string
	IssuedAt    time.Time
	IssuedTo    string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// ReceiptLotRepository persists receipt lots. Lots are append-only: there is
// no update or delete.
type ReceiptLotRepository interface {
	LotLedger

	// FindByID finds a lot by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*ReceiptLot, error)

	// FindAll finds lots matching the filter
	FindAll(ctx context.Context, filter DocumentFilter) ([]ReceiptLot, error)

	// Count counts all lots
	Count(ctx context.Context) (int64, error)

	// Create appends a new lot
	Create(ctx context.Context, lot *ReceiptLot) error

	// HighestNumber returns the largest numeric suffix used for the year, 0 if none
	HighestNumber(ctx context.Context, year int) (int64, error)

	// FindAllocations lists the issue lines drawing on a lot
	FindAllocations(ctx context.Context, lotID uuid.UUID) ([]LotAllocation, error)

	// FindOverdrawn returns the lots among ids whose allocations exceed
	// their received quantity
	FindOverdrawn(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

// IssueRecordRepository persists issues together with their allocation lines
type IssueRecordRepository interface {
	// FindByID finds an issue with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*IssueRecord, error)

	// FindAll finds issues (without lines) matching the filter
	FindAll(ctx context.Context, filter DocumentFilter) ([]IssueRecord, error)

	// Count counts all issues
	Count(ctx context.Context) (int64, error)

	// Create inserts the issue and all its lines
	Create(ctx context.Context, issue *IssueRecord) error

	// HighestNumber returns the largest numeric suffix used for the year, 0 if none
	HighestNumber(ctx context.Context, year int) (int64, error)
}

// SequenceRepository hands out gap-tolerant, never-repeating counters
type SequenceRepository interface {
	// Next increments and returns the counter for (name, year). A missing
	// counter starts from floor, so pre-existing documents are never reused.
	Next(ctx context.Context, name string, year int, floor int64) (int64, error)
}
