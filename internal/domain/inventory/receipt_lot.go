package inventory

import (
	"time"

	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptLot is a goods received note: a quantity of one material received at
// one rate. Quantity and rate are fixed at creation and lots are never
// deleted. What is left of a lot is derived from allocation lines, never stored.
type ReceiptLot struct {
	shared.BaseEntity
	MaterialID   uuid.UUID
	GRNNumber    string
	ReceivedAt   time.Time
	Quantity     decimal.Decimal
	Rate         decimal.Decimal
	TotalAmount  decimal.Decimal // Quantity * Rate rounded to Scale
	SupplierName string
	InvoiceRef   string
	ReceivedBy   string
	Remarks      string
	EntrySeq     int64 // creation order in the ledger
}

// ReceiptDetails holds the descriptive fields of a receipt
type ReceiptDetails struct {
	SupplierName string
	InvoiceRef   string
	ReceivedBy   string
	Remarks      string
}

// NewReceiptLot creates a new receipt lot. The document number and ledger
// sequence are assigned by the recorder inside its transaction.
func NewReceiptLot(
	materialID uuid.UUID,
	receivedAt time.Time,
	quantity decimal.Decimal,
	rate decimal.Decimal,
	details ReceiptDetails,
) (*ReceiptLot, error) {
	if materialID == uuid.Nil {
		return nil, shared.NewValidationError("material is required")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("received quantity must be positive")
	}
	if rate.IsNegative() {
		return nil, shared.NewValidationError("rate cannot be negative")
	}
	if receivedAt.IsZero() {
		return nil, shared.NewValidationError("receipt date is required")
	}
	if err := CheckScale("quantity", quantity); err != nil {
		return nil, err
	}
	if err := CheckScale("rate", rate); err != nil {
		return nil, err
	}
	total := LineAmount(quantity, rate)
	if err := CheckScale("total amount", total); err != nil {
		return nil, err
	}

	return &ReceiptLot{
		BaseEntity:   shared.NewBaseEntity(),
		MaterialID:   materialID,
		ReceivedAt:   receivedAt,
		Quantity:     quantity,
		Rate:         rate,
		TotalAmount:  total,
		SupplierName: details.SupplierName,
		InvoiceRef:   details.InvoiceRef,
		ReceivedBy:   details.ReceivedBy,
		Remarks:      details.Remarks,
	}, nil
}

// AssignNumber sets the document number and ledger position
func (l *ReceiptLot) AssignNumber(number string, entrySeq int64) {
	l.GRNNumber = number
	l.EntrySeq = entrySeq
}

// OpenLot is a receipt lot together with the quantity not yet allocated to issues
type OpenLot struct {
	Lot       ReceiptLot
	Consumed  decimal.Decimal
	Remaining decimal.Decimal
}

// NewOpenLot derives the remaining quantity from what has been consumed
func NewOpenLot(lot ReceiptLot, consumed decimal.Decimal) OpenLot {
	return OpenLot{
		Lot:       lot,
		Consumed:  consumed,
		Remaining: lot.Quantity.Sub(consumed),
	}
}

// IsExhausted reports whether nothing is left to allocate
func (o OpenLot) IsExhausted() bool {
	return !o.Remaining.IsPositive()
}
