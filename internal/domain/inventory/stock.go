package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaterialTotals are the raw ledger sums for one material
type MaterialTotals struct {
	MaterialID    uuid.UUID
	ReceivedQty   decimal.Decimal
	ReceivedValue decimal.Decimal
	IssuedQty     decimal.Decimal
	IssuedValue   decimal.Decimal
}

// StockLevel is one row of the stock report
type StockLevel struct {
	Material       catalog.Material
	TotalReceived  decimal.Decimal
	TotalIssued    decimal.Decimal
	AvailableStock decimal.Decimal
	ReceivedValue  decimal.Decimal
	IssuedValue    decimal.Decimal
	StockValue     decimal.Decimal
	IsLowStock     bool
}

// NewStockLevel derives availability and value from ledger totals
func NewStockLevel(m catalog.Material, t MaterialTotals) StockLevel {
	available := t.ReceivedQty.Sub(t.IssuedQty)
	return StockLevel{
		Material:       m,
		TotalReceived:  t.ReceivedQty,
		TotalIssued:    t.IssuedQty,
		AvailableStock: available,
		ReceivedValue:  t.ReceivedValue,
		IssuedValue:    t.IssuedValue,
		StockValue:     t.ReceivedValue.Sub(t.IssuedValue),
		IsLowStock:     m.IsLowStock(available),
	}
}

// MovementType distinguishes receipts from issues in a movement history
type MovementType string

const (
	MovementReceipt MovementType = "RECEIPT"
	MovementIssue   MovementType = "ISSUE"
)

// Movement is one signed entry in a material's history. Issues carry
// negative quantity and amount.
type Movement struct {
	Type           MovementType
	ID             uuid.UUID
	Date           time.Time
	Reference      string
	Quantity       decimal.Decimal
	Rate           decimal.Decimal
	Amount         decimal.Decimal
	RunningBalance decimal.Decimal
	Party          string // supplier for receipts, recipient for issues
	EntrySeq       int64
}

// BuildMovementHistory merges receipts and issues by date, then ledger
// sequence, and accumulates the running balance from zero.
func BuildMovementHistory(lots []ReceiptLot, issues []IssueRecord) []Movement {
	movements := make([]Movement, 0, len(lots)+len(issues))
	for _, l := range lots {
		movements = append(movements, Movement{
			Type:      MovementReceipt,
			ID:        l.ID,
			Date:      l.ReceivedAt,
			Reference: l.GRNNumber,
			Quantity:  l.Quantity,
			Rate:      l.Rate,
			Amount:    l.TotalAmount,
			Party:     l.SupplierName,
			EntrySeq:  l.EntrySeq,
		})
	}
	for _, i := range issues {
		movements = append(movements, Movement{
			Type:      MovementIssue,
			ID:        i.ID,
			Date:      i.IssuedAt,
			Reference: i.IssueNumber,
			Quantity:  i.Quantity.Neg(),
			Rate:      i.WeightedRate,
			Amount:    i.TotalAmount.Neg(),
			Party:     i.IssuedTo,
			EntrySeq:  i.EntrySeq,
		})
	}

	sort.SliceStable(movements, func(a, b int) bool {
		if !movements[a].Date.Equal(movements[b].Date) {
			return movements[a].Date.Before(movements[b].Date)
		}
		return movements[a].EntrySeq < movements[b].EntrySeq
	})

	balance := decimal.Zero
	for i := range movements {
		balance = balance.Add(movements[i].Quantity)
		movements[i].RunningBalance = balance
	}
	return movements
}

// StockReportRepository provides the aggregate reads behind stock reports
type StockReportRepository interface {
	// TotalsByMaterial returns ledger sums for every material that has any
	// receipt or issue
	TotalsByMaterial(ctx context.Context) (map[uuid.UUID]MaterialTotals, error)

	// TotalsForMaterial returns ledger sums for one material (zero when none)
	TotalsForMaterial(ctx context.Context, materialID uuid.UUID) (MaterialTotals, error)
}

// DashboardCounts are the headline numbers of the dashboard
type DashboardCounts struct {
	Materials int64
	Receipts  int64
	Issues    int64
}
