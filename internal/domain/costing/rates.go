// Package costing converts company costs into hourly costs and projects
// contract revenue across the year.
package costing

import "github.com/shopspring/decimal"

// Defaults used when configuration leaves a rate unset.
const (
	DefaultEffectiveMonthlyHours = 156
	DefaultUnitValue             = 38000
)

// Rates holds the conversion constants for one computation. It is a value:
// callers build it once per request and never mutate it mid-computation.
type Rates struct {
	// UnitValue is the currency value of one accounting unit.
	UnitValue float64 `json:"unit_value"`
	// EffectiveMonthlyHours is the billable hours a month is costed over,
	// the same for every person regardless of employment fraction.
	EffectiveMonthlyHours float64 `json:"effective_monthly_hours"`
}

// DefaultRates returns the standard rates.
func DefaultRates() Rates {
	return Rates{UnitValue: DefaultUnitValue, EffectiveMonthlyHours: DefaultEffectiveMonthlyHours}
}

// HourlyCost converts a monthly company cost (currency) into an hourly cost
// in accounting units, rounded to 4 decimals. Non-positive inputs yield 0.
func (r Rates) HourlyCost(monthlyCost float64) float64 {
	if monthlyCost <= 0 || r.UnitValue <= 0 || r.EffectiveMonthlyHours <= 0 {
		return 0
	}
	v := decimal.NewFromFloat(monthlyCost).
		Div(decimal.NewFromFloat(r.EffectiveMonthlyHours)).
		Div(decimal.NewFromFloat(r.UnitValue)).
		Round(4)
	return v.InexactFloat64()
}

// ToUnits converts a currency amount into accounting units.
func (r Rates) ToUnits(amount float64) float64 {
	if r.UnitValue <= 0 {
		return 0
	}
	return decimal.NewFromFloat(amount).Div(decimal.NewFromFloat(r.UnitValue)).InexactFloat64()
}

// MonthlyCostUnits converts a monthly company cost into accounting units.
func (r Rates) MonthlyCostUnits(monthlyCost float64) float64 {
	if monthlyCost <= 0 {
		return 0
	}
	return r.ToUnits(monthlyCost)
}

// Round rounds half away from zero to places decimals.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
