package inventory

import (
	"testing"
	"time"

	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testLot(number, received string, qty, rate string, seq int64) ReceiptLot {
	return ReceiptLot{
		BaseEntity:  shared.NewBaseEntity(),
		GRNNumber:   number,
		ReceivedAt:  date(received),
		Quantity:    dec(qty),
		Rate:        dec(rate),
		TotalAmount: dec(qty).Mul(dec(rate)),
		EntrySeq:    seq,
	}
}

// cementLots returns GRN/2025/001 (100 @ 400) and GRN/2025/002 (150 @ 450)
func cementLots() []OpenLot {
	return []OpenLot{
		NewOpenLot(testLot("GRN/2025/001", "2025-01-05", "100", "400", 1), decimal.Zero),
		NewOpenLot(testLot("GRN/2025/002", "2025-01-10", "150", "450", 2), decimal.Zero),
	}
}

func TestAllocate_CementScenario(t *testing.T) {
	materialID := uuid.New()
	lots := cementLots()

	plan, err := Allocate(materialID, lots, dec("120"))
	require.NoError(t, err)

	assert.True(t, plan.CanFulfill)
	require.Len(t, plan.Lines, 2)

	assert.Equal(t, lots[0].Lot.ID, plan.Lines[0].LotID)
	assert.Equal(t, "GRN/2025/001", plan.Lines[0].GRNNumber)
	assert.True(t, dec("100").Equal(plan.Lines[0].Quantity))
	assert.True(t, dec("400").Equal(plan.Lines[0].Rate))
	assert.True(t, dec("40000").Equal(plan.Lines[0].Amount))

	assert.Equal(t, lots[1].Lot.ID, plan.Lines[1].LotID)
	assert.True(t, dec("20").Equal(plan.Lines[1].Quantity))
	assert.True(t, dec("450").Equal(plan.Lines[1].Rate))
	assert.True(t, dec("9000").Equal(plan.Lines[1].Amount))

	assert.True(t, dec("120").Equal(plan.TotalQuantity))
	assert.True(t, dec("49000").Equal(plan.TotalAmount))
	assert.True(t, dec("250").Equal(plan.AvailableStock))
	assert.Equal(t, "408.33", plan.WeightedAverageRate.StringFixed(2))
	assert.True(t, plan.Shortfall().IsZero())
}

func TestAllocate_InsufficientStock(t *testing.T) {
	plan, err := Allocate(uuid.New(), cementLots(), dec("300"))
	require.NoError(t, err)

	assert.False(t, plan.CanFulfill)
	assert.True(t, dec("250").Equal(plan.AvailableStock))
	assert.True(t, dec("50").Equal(plan.Shortfall()))
	assert.Empty(t, plan.Lines)
	assert.True(t, plan.TotalAmount.IsZero())
}

func TestAllocate_RejectsNonPositiveQuantity(t *testing.T) {
	for _, q := range []string{"0", "-1", "-0.5"} {
		t.Run(q, func(t *testing.T) {
			_, err := Allocate(uuid.New(), cementLots(), dec(q))
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestAllocate_Cases(t *testing.T) {
	tests := []struct {
		name       string
		lots       []OpenLot
		requested  string
		canFulfill bool
		lineQtys   []string
		total      string
	}{
		{
			name:       "exact total of all lots",
			lots:       cementLots(),
			requested:  "250",
			canFulfill: true,
			lineQtys:   []string{"100", "150"},
			total:      "107500",
		},
		{
			name:       "within first lot",
			lots:       cementLots(),
			requested:  "40",
			canFulfill: true,
			lineQtys:   []string{"40"},
			total:      "16000",
		},
		{
			name: "partially consumed first lot",
			lots: []OpenLot{
				NewOpenLot(testLot("GRN/2025/001", "2025-01-05", "100", "400", 1), dec("70")),
				NewOpenLot(testLot("GRN/2025/002", "2025-01-10", "150", "450", 2), decimal.Zero),
			},
			requested:  "50",
			canFulfill: true,
			lineQtys:   []string{"30", "20"},
			total:      "21000",
		},
		{
			name: "exhausted lots are skipped",
			lots: []OpenLot{
				NewOpenLot(testLot("GRN/2025/001", "2025-01-05", "100", "400", 1), dec("100")),
				NewOpenLot(testLot("GRN/2025/002", "2025-01-10", "150", "450", 2), decimal.Zero),
			},
			requested:  "10",
			canFulfill: true,
			lineQtys:   []string{"10"},
			total:      "4500",
		},
		{
			name: "fractional quantities",
			lots: []OpenLot{
				NewOpenLot(testLot("GRN/2025/001", "2025-01-05", "2.5", "10.10", 1), decimal.Zero),
				NewOpenLot(testLot("GRN/2025/002", "2025-01-06", "1.25", "20", 2), decimal.Zero),
			},
			requested:  "3.125",
			canFulfill: true,
			lineQtys:   []string{"2.5", "0.625"},
			total:      "37.75",
		},
		{
			name:       "no lots",
			lots:       nil,
			requested:  "1",
			canFulfill: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Allocate(uuid.New(), tt.lots, dec(tt.requested))
			require.NoError(t, err)
			assert.Equal(t, tt.canFulfill, plan.CanFulfill)
			if !tt.canFulfill {
				return
			}

			require.Len(t, plan.Lines, len(tt.lineQtys))
			sumQty, sumAmount := decimal.Zero, decimal.Zero
			for i, l := range plan.Lines {
				assert.True(t, dec(tt.lineQtys[i]).Equal(l.Quantity), "line %d quantity %s", i, l.Quantity)
				assert.True(t, l.Quantity.Mul(l.Rate).Equal(l.Amount))
				sumQty = sumQty.Add(l.Quantity)
				sumAmount = sumAmount.Add(l.Amount)
			}
			assert.True(t, sumQty.Equal(dec(tt.requested)))
			assert.True(t, sumAmount.Equal(plan.TotalAmount))
			assert.True(t, dec(tt.total).Equal(plan.TotalAmount), "total %s", plan.TotalAmount)
		})
	}
}

func TestAllocate_IsIdempotent(t *testing.T) {
	materialID := uuid.New()
	lots := cementLots()

	first, err := Allocate(materialID, lots, dec("120"))
	require.NoError(t, err)
	second, err := Allocate(materialID, lots, dec("120"))
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.Equal(t, first, second)
}

func TestAllocationPlan_Equal(t *testing.T) {
	materialID := uuid.New()
	lots := cementLots()
	base, err := Allocate(materialID, lots, dec("120"))
	require.NoError(t, err)

	other, err := Allocate(materialID, lots, dec("121"))
	require.NoError(t, err)
	assert.False(t, base.Equal(other))

	consumed := []OpenLot{NewOpenLot(lots[0].Lot, dec("10")), lots[1]}
	shifted, err := Allocate(materialID, consumed, dec("120"))
	require.NoError(t, err)
	assert.False(t, base.Equal(shifted))

	assert.Equal(t, []uuid.UUID{lots[0].Lot.ID, lots[1].Lot.ID}, base.LotIDs())
}
