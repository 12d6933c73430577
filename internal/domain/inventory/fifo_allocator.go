package inventory

import (
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanLine is one lot's contribution to an issue
type PlanLine struct {
	LotID     uuid.UUID
	GRNNumber string
	Quantity  decimal.Decimal
	Rate      decimal.Decimal
	Amount    decimal.Decimal // Quantity * Rate rounded to Scale, computed per line
}

// AllocationPlan is the outcome of a FIFO allocation. When CanFulfill is
// false the plan has no lines and AvailableStock tells how much there was.
type AllocationPlan struct {
	MaterialID          uuid.UUID
	RequestedQuantity   decimal.Decimal
	AvailableStock      decimal.Decimal
	CanFulfill          bool
	Lines               []PlanLine
	TotalQuantity       decimal.Decimal
	TotalAmount         decimal.Decimal
	WeightedAverageRate decimal.Decimal
}

// Shortfall returns how much of the request cannot be met
func (p AllocationPlan) Shortfall() decimal.Decimal {
	if p.CanFulfill {
		return decimal.Zero
	}
	return p.RequestedQuantity.Sub(p.AvailableStock)
}

// LotIDs returns the lots the plan draws from, in allocation order
func (p AllocationPlan) LotIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Lines))
	for _, l := range p.Lines {
		ids = append(ids, l.LotID)
	}
	return ids
}

// Equal compares two plans by value
func (p AllocationPlan) Equal(o AllocationPlan) bool {
	if p.MaterialID != o.MaterialID ||
		p.CanFulfill != o.CanFulfill ||
		!p.RequestedQuantity.Equal(o.RequestedQuantity) ||
		!p.AvailableStock.Equal(o.AvailableStock) ||
		!p.TotalQuantity.Equal(o.TotalQuantity) ||
		!p.TotalAmount.Equal(o.TotalAmount) ||
		!p.WeightedAverageRate.Equal(o.WeightedAverageRate) ||
		len(p.Lines) != len(o.Lines) {
		return false
	}
	for i := range p.Lines {
		a, b := p.Lines[i], o.Lines[i]
		if a.LotID != b.LotID || !a.Quantity.Equal(b.Quantity) ||
			!a.Rate.Equal(b.Rate) || !a.Amount.Equal(b.Amount) {
			return false
		}
	}
	return true
}

// Allocate draws the requested quantity from open lots, oldest first.
// openLots must already be in FIFO order (see SortOpenLots). A request larger
// than the total remaining stock is rejected whole; nothing is partially
// allocated. Allocate has no side effects.
func Allocate(materialID uuid.UUID, openLots []OpenLot, requested decimal.Decimal) (AllocationPlan, error) {
	if !requested.IsPositive() {
		return AllocationPlan{}, shared.NewValidationError("requested quantity must be positive")
	}
	if err := CheckScale("requested quantity", requested); err != nil {
		return AllocationPlan{}, err
	}

	available := decimal.Zero
	for _, l := range openLots {
		if l.Remaining.IsPositive() {
			available = available.Add(l.Remaining)
		}
	}

	plan := AllocationPlan{
		MaterialID:        materialID,
		RequestedQuantity: requested,
		AvailableStock:    available,
		TotalQuantity:     decimal.Zero,
		TotalAmount:       decimal.Zero,
		Lines:             []PlanLine{},
	}
	if requested.GreaterThan(available) {
		return plan, nil
	}

	left := requested
	for _, l := range openLots {
		if left.IsZero() {
			break
		}
		if !l.Remaining.IsPositive() {
			continue
		}
		take := decimal.Min(left, l.Remaining)
		amount := LineAmount(take, l.Lot.Rate)
		plan.Lines = append(plan.Lines, PlanLine{
			LotID:     l.Lot.ID,
			GRNNumber: l.Lot.GRNNumber,
			Quantity:  take,
			Rate:      l.Lot.Rate,
			Amount:    amount,
		})
		plan.TotalAmount = plan.TotalAmount.Add(amount)
		left = left.Sub(take)
	}

	plan.CanFulfill = true
	plan.TotalQuantity = requested
	plan.WeightedAverageRate = WeightedRate(plan.TotalAmount, requested)
	return plan, nil
}
