// Package accrual computes investment projections: the compound-interest
// profit a plan promises and the calendar date it matures. Everything here is
// deterministic and store-free.
package accrual

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/domain"
)

// yearFraction converts a plan duration to fractional years using 365-day
// years, 52-week years, and 12-month years.
func yearFraction(value int, unit domain.DurationUnit) float64 {
	v := float64(value)
	switch unit {
	case domain.DurationDays:
		return v / 365
	case domain.DurationWeeks:
		return v / 52
	case domain.DurationMonths:
		return v / 12
	case domain.DurationYears:
		return v
	}
	return 0
}

// periodsPerYear maps a compounding frequency to compounding periods per
// year. Unknown frequencies default to monthly.
func periodsPerYear(freq domain.CompoundFrequency) float64 {
	switch freq {
	case domain.CompoundDaily:
		return 365
	case domain.CompoundWeekly:
		return 52
	case domain.CompoundMonthly:
		return 12
	case domain.CompoundQuarterly:
		return 4
	case domain.CompoundYearly:
		return 1
	}
	return 12
}

// ExpectedProfit computes the projected profit for investing principal under
// the given plan terms: A = P(1 + r/n)^(nt), profit = A - P. The exponent is
// evaluated in float64 and the result rounded to 8 decimal places, matching
// the ledger's amount precision.
func ExpectedProfit(principal decimal.Decimal, annualROIPercent decimal.Decimal, durationValue int, durationUnit domain.DurationUnit, freq domain.CompoundFrequency) decimal.Decimal {
	t := yearFraction(durationValue, durationUnit)
	n := periodsPerYear(freq)
	r := annualROIPercent.InexactFloat64() / 100

	p := principal.InexactFloat64()
	amount := p * math.Pow(1+r/n, n*t)
	return decimal.NewFromFloat(amount - p).Round(8)
}

// ProfitForPlan is ExpectedProfit with the terms read off a plan row.
func ProfitForPlan(principal decimal.Decimal, plan *domain.InvestmentPlan) decimal.Decimal {
	return ExpectedProfit(principal, plan.ROIPercentage, plan.DurationValue, plan.DurationUnit, plan.CompoundFrequency)
}

// MaturityDate adds the plan duration to now with calendar-aware arithmetic,
// so month and year durations land on calendar-correct dates.
func MaturityDate(now time.Time, durationValue int, durationUnit domain.DurationUnit) time.Time {
	switch durationUnit {
	case domain.DurationDays:
		return now.AddDate(0, 0, durationValue)
	case domain.DurationWeeks:
		return now.AddDate(0, 0, durationValue*7)
	case domain.DurationMonths:
		return now.AddDate(0, durationValue, 0)
	case domain.DurationYears:
		return now.AddDate(durationValue, 0, 0)
	}
	return now
}
