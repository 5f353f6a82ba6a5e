package accrual

import (
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/domain"
)

func TestExpectedProfit(t *testing.T) {
	cases := []struct {
		name          string
		principal     string
		roi           string
		durationValue int
		durationUnit  domain.DurationUnit
		freq          domain.CompoundFrequency
		want          float64
	}{
		{
			// 1000 * (1 + 0.01)^12 - 1000
			name: "monthly compounding one year", principal: "1000", roi: "12",
			durationValue: 12, durationUnit: domain.DurationMonths, freq: domain.CompoundMonthly,
			want: 126.825,
		},
		{
			// yearly compounding over one year is simple interest
			name: "yearly compounding one year", principal: "5000", roi: "10",
			durationValue: 1, durationUnit: domain.DurationYears, freq: domain.CompoundYearly,
			want: 500,
		},
		{
			name: "daily compounding 90 days", principal: "2000", roi: "8",
			durationValue: 90, durationUnit: domain.DurationDays, freq: domain.CompoundDaily,
			want: 2000*math.Pow(1+0.08/365, 90) - 2000,
		},
		{
			name: "quarterly compounding two years", principal: "10000", roi: "6",
			durationValue: 2, durationUnit: domain.DurationYears, freq: domain.CompoundQuarterly,
			want: 10000*math.Pow(1+0.06/4, 8) - 10000,
		},
		{
			// unknown frequency falls back to monthly
			name: "unknown frequency defaults to monthly", principal: "1000", roi: "12",
			durationValue: 12, durationUnit: domain.DurationMonths, freq: domain.CompoundFrequency("hourly"),
			want: 126.825,
		},
		{
			name: "weekly duration weekly compounding", principal: "1500", roi: "5",
			durationValue: 26, durationUnit: domain.DurationWeeks, freq: domain.CompoundWeekly,
			want: 1500*math.Pow(1+0.05/52, 26) - 1500,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			principal := decimal.RequireFromString(tc.principal)
			roi := decimal.RequireFromString(tc.roi)
			got := ExpectedProfit(principal, roi, tc.durationValue, tc.durationUnit, tc.freq).InexactFloat64()
			if math.Abs(got-tc.want) > 0.01 {
				t.Fatalf("profit = %.6f, want %.6f", got, tc.want)
			}
		})
	}
}

func TestMaturityDate(t *testing.T) {
	now := time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		value int
		unit  domain.DurationUnit
		want  time.Time
	}{
		{"days", 30, domain.DurationDays, time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)},
		{"weeks", 2, domain.DurationWeeks, time.Date(2024, time.February, 14, 12, 0, 0, 0, time.UTC)},
		{"months normalize", 1, domain.DurationMonths, time.Date(2024, time.March, 2, 12, 0, 0, 0, time.UTC)},
		{"years leap aware", 1, domain.DurationYears, time.Date(2025, time.January, 31, 12, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MaturityDate(now, tc.value, tc.unit)
			if !got.Equal(tc.want) {
				t.Fatalf("maturity = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMaturityDateLeapDay(t *testing.T) {
	// Feb 29 plus one year normalizes to Mar 1 on a non-leap year.
	now := time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)
	got := MaturityDate(now, 1, domain.DurationYears)
	want := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("maturity = %v, want %v", got, want)
	}
}
