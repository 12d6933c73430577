package inventory

import (
	"github.com/buildstock/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places kept for quantities, rates and
// amounts. It matches the DECIMAL(18,4) ledger columns.
const Scale int32 = 4

// maxMagnitude bounds the integer part of a DECIMAL(18,4) value
var maxMagnitude = decimal.New(1, 18-Scale)

// CheckScale rejects a value the ledger columns cannot store exactly
func CheckScale(field string, v decimal.Decimal) error {
	if !v.Round(Scale).Equal(v) {
		return shared.NewValidationError("%s cannot have more than %d decimal places", field, Scale)
	}
	if v.Abs().GreaterThanOrEqual(maxMagnitude) {
		return shared.NewValidationError("%s is too large", field)
	}
	return nil
}

// LineAmount values quantity at rate, rounded half away from zero to Scale.
// Totals are summed from rounded line amounts so they equal what is stored.
func LineAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate).Round(Scale)
}

// WeightedRate is amount per unit rounded to Scale, zero for zero quantity
func WeightedRate(amount, quantity decimal.Decimal) decimal.Decimal {
	if quantity.IsZero() {
		return decimal.Zero
	}
	return amount.Div(quantity).Round(Scale)
}
