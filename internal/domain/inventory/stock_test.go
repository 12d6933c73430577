package inventory

import (
	"testing"
	"time"

	"github.com/buildstock/backend/internal/domain/catalog"
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStockLevel(t *testing.T) {
	m, err := catalog.NewMaterial("Cement", "bag", "", dec("150"))
	require.NoError(t, err)

	level := NewStockLevel(*m, MaterialTotals{
		MaterialID:    m.ID,
		ReceivedQty:   dec("250"),
		ReceivedValue: dec("107500"),
		IssuedQty:     dec("120"),
		IssuedValue:   dec("49000"),
	})

	assert.True(t, dec("130").Equal(level.AvailableStock))
	assert.True(t, dec("58500").Equal(level.StockValue))
	assert.True(t, level.IsLowStock)
}

func TestNewStockLevel_NoReceipts(t *testing.T) {
	m, err := catalog.NewMaterial("Sand", "m3", "", decimal.Zero)
	require.NoError(t, err)

	level := NewStockLevel(*m, MaterialTotals{MaterialID: m.ID})
	assert.True(t, level.AvailableStock.IsZero())
	assert.True(t, level.StockValue.IsZero())
	assert.False(t, level.IsLowStock)
}

func TestBuildMovementHistory(t *testing.T) {
	l1 := testLot("GRN/2025/001", "2025-01-05", "100", "400", 1)
	l2 := testLot("GRN/2025/002", "2025-01-10", "150", "450", 3)
	issue := IssueRecord{
		BaseEntity:   shared.NewBaseEntity(),
		IssueNumber:  "ISN/2025/1",
		IssuedAt:     date("2025-01-10"),
		Quantity:     dec("120"),
		WeightedRate: dec("49000").Div(dec("120")),
		TotalAmount:  dec("49000"),
		EntrySeq:     2,
	}

	movements := BuildMovementHistory([]ReceiptLot{l2, l1}, []IssueRecord{issue})

	require.Len(t, movements, 3)
	assert.Equal(t, "GRN/2025/001", movements[0].Reference)
	assert.Equal(t, MovementReceipt, movements[0].Type)
	assert.True(t, dec("100").Equal(movements[0].RunningBalance))

	// same date as GRN/2025/002 but created earlier
	assert.Equal(t, "ISN/2025/1", movements[1].Reference)
	assert.Equal(t, MovementIssue, movements[1].Type)
	assert.True(t, dec("-120").Equal(movements[1].Quantity))
	assert.True(t, dec("-49000").Equal(movements[1].Amount))
	assert.True(t, dec("-20").Equal(movements[1].RunningBalance))

	assert.Equal(t, "GRN/2025/002", movements[2].Reference)
	assert.True(t, dec("130").Equal(movements[2].RunningBalance))
}

func TestBuildMovementHistory_Empty(t *testing.T) {
	assert.Empty(t, BuildMovementHistory(nil, nil))
}

func TestBuildMovementHistory_ChronologicalWithTimes(t *testing.T) {
	morning := testLot("GRN/2025/001", "2025-03-01", "10", "1", 9)
	morning.ReceivedAt = morning.ReceivedAt.Add(8 * time.Hour)
	evening := IssueRecord{
		BaseEntity:  shared.NewBaseEntity(),
		IssueNumber: "ISN/2025/1",
		IssuedAt:    date("2025-03-01").Add(18 * time.Hour),
		Quantity:    dec("4"),
		TotalAmount: dec("4"),
		EntrySeq:    1,
	}

	movements := BuildMovementHistory([]ReceiptLot{morning}, []IssueRecord{evening})
	require.Len(t, movements, 2)
	assert.Equal(t, MovementReceipt, movements[0].Type)
	assert.True(t, dec("6").Equal(movements[1].RunningBalance))
}
