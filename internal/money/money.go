// Package money holds the decimal rounding rules for prices and amounts.
//
// Prices are rounded once, half-up, to the instrument's minimum price increment.
// When a product has no increment configured, the currency's minor unit is used.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMinorUnits is used for currencies missing from minorUnits.
const DefaultMinorUnits = 2

// minorUnits lists ISO 4217 exponents that differ from two decimals,
// plus the common ones for readability.
var minorUnits = map[string]int32{
	"CHF": 2, "EUR": 2, "USD": 2, "GBP": 2, "CAD": 2, "AUD": 2,
	"JPY": 0, "KRW": 0, "CLP": 0, "ISK": 0, "VND": 0, "XAF": 0, "XOF": 0,
	"BHD": 3, "JOD": 3, "KWD": 3, "OMR": 3, "TND": 3, "IQD": 3, "LYD": 3,
}

// MinorUnits returns the number of decimal places of the currency's minor unit.
func MinorUnits(currency string) int32 {
	if units, ok := minorUnits[strings.ToUpper(currency)]; ok {
		return units
	}
	return DefaultMinorUnits
}

// CurrencyIncrement returns the smallest amount representable in the currency,
// e.g. 0.01 for CHF and 1 for JPY.
func CurrencyIncrement(currency string) decimal.Decimal {
	return decimal.New(1, -MinorUnits(currency))
}

// Increment picks the price increment for an instrument: its own minimum
// increment when positive, otherwise the currency's minor unit.
func Increment(minPriceIncrement decimal.Decimal, currency string) decimal.Decimal {
	if minPriceIncrement.IsPositive() {
		return minPriceIncrement
	}
	return CurrencyIncrement(currency)
}

// RoundToIncrement rounds d half-up to a multiple of increment.
// Non-positive increments leave d untouched.
func RoundToIncrement(d, increment decimal.Decimal) decimal.Decimal {
	if !increment.IsPositive() {
		return d
	}
	return d.DivRound(increment, 0).Mul(increment)
}

// RoundCurrency rounds d half-up to the currency's minor unit.
func RoundCurrency(d decimal.Decimal, currency string) decimal.Decimal {
	return d.Round(MinorUnits(currency))
}

// WeightedAverage returns (q1*p1 + q2*p2) / (q1+q2) rounded half-up to increment.
// The division and rounding happen in a single step so no intermediate
// truncation can bias the result. A zero total quantity yields zero.
func WeightedAverage(q1, p1, q2, p2, increment decimal.Decimal) decimal.Decimal {
	total := q1.Add(q2)
	if total.IsZero() {
		return decimal.Zero
	}
	cost := q1.Mul(p1).Add(q2.Mul(p2))
	if !increment.IsPositive() {
		return cost.Div(total)
	}
	return cost.DivRound(total.Mul(increment), 0).Mul(increment)
}
