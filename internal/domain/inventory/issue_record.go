package inventory

import (
	"strings"
	"time"

	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IssueRecord is material handed out to a project, valued FIFO. Quantity and
// TotalAmount always equal the sums over Lines.
type IssueRecord struct {
	shared.BaseEntity
	MaterialID   uuid.UUID
	IssueNumber  string
	IssuedAt     time.Time
	Quantity     decimal.Decimal
	WeightedRate decimal.Decimal
	TotalAmount  decimal.Decimal
	IssuedTo     string
	Purpose      string
	ApprovedBy   string
	EntrySeq     int64
	Lines        []AllocationLine
}

// AllocationLine records how much of one lot went into an issue. Rate is
// copied from the lot when the issue is made.
type AllocationLine struct {
	ID           uuid.UUID
	IssueID      uuid.UUID
	ReceiptLotID uuid.UUID
	GRNNumber    string // read side only
	Quantity     decimal.Decimal
	Rate         decimal.Decimal
	Amount       decimal.Decimal
}

// IssueDetails holds who receives the material and who approved it
type IssueDetails struct {
	IssuedTo   string
	Purpose    string
	ApprovedBy string
}

// Validate checks the required issue metadata
func (d IssueDetails) Validate() error {
	if strings.TrimSpace(d.IssuedTo) == "" {
		return shared.NewValidationError("issued to is required")
	}
	if strings.TrimSpace(d.ApprovedBy) == "" {
		return shared.NewValidationError("approved by is required")
	}
	return nil
}

// NewIssueRecord builds an issue from a fulfillable plan
func NewIssueRecord(plan AllocationPlan, issuedAt time.Time, details IssueDetails) (*IssueRecord, error) {
	if !plan.CanFulfill {
		return nil, NewInsufficientStockError(plan.RequestedQuantity, plan.AvailableStock)
	}
	if len(plan.Lines) == 0 {
		return nil, shared.NewValidationError("allocation plan has no lines")
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}

	issue := &IssueRecord{
		BaseEntity:  shared.NewBaseEntity(),
		MaterialID:  plan.MaterialID,
		IssuedAt:    issuedAt,
		Quantity:    decimal.Zero,
		TotalAmount: decimal.Zero,
		IssuedTo:    strings.TrimSpace(details.IssuedTo),
		Purpose:     strings.TrimSpace(details.Purpose),
		ApprovedBy:  strings.TrimSpace(details.ApprovedBy),
		Lines:       make([]AllocationLine, 0, len(plan.Lines)),
	}
	for _, pl := range plan.Lines {
		issue.Lines = append(issue.Lines, AllocationLine{
			ID:           uuid.New(),
			IssueID:      issue.ID,
			ReceiptLotID: pl.LotID,
			GRNNumber:    pl.GRNNumber,
			Quantity:     pl.Quantity,
			Rate:         pl.Rate,
			Amount:       pl.Amount,
		})
		issue.Quantity = issue.Quantity.Add(pl.Quantity)
		issue.TotalAmount = issue.TotalAmount.Add(pl.Amount)
	}
	issue.WeightedRate = WeightedRate(issue.TotalAmount, issue.Quantity)
	return issue, nil
}

// AssignNumber sets the document number and ledger position
func (i *IssueRecord) AssignNumber(number string, entrySeq int64) {
	i.IssueNumber = number
	i.EntrySeq = entrySeq
}

// InsufficientStockError reports a request that exceeds available stock
type InsufficientStockError struct {
	Requested decimal.Decimal
	Available decimal.Decimal
}

// NewInsufficientStockError creates an InsufficientStockError
func NewInsufficientStockError(requested, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{Requested: requested, Available: available}
}

func (e *InsufficientStockError) Error() string {
	return "Insufficient stock: requested " + e.Requested.String() + ", available " + e.Available.String()
}

// Unwrap lets errors.Is(err, shared.ErrInsufficientStock) match
func (e *InsufficientStockError) Unwrap() error {
	return shared.ErrInsufficientStock
}

// Shortfall returns the missing quantity
func (e *InsufficientStockError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}
