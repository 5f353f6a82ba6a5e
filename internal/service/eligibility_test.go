package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestScoreLoanApplication(t *testing.T) {
	cases := []struct {
		name       string
		amount     string
		income     string
		employment string
		want       int
	}{
		// (5000*0.10)/3000 ≈ 0.167 < 0.30 → 50; employed → 30; <10000 → 20
		{"best case", "5000", "3000", "employed", 100},
		// ratio ≈ 0.33 → 25; self_employed → 20; <10000 → 20
		{"middle ratio self employed", "5000", "1500", "self_employed", 65},
		// ratio = 0.50 exactly misses both bands
		{"ratio at upper bound", "5000", "1000", "unemployed", 20},
		{"no income", "5000", "0", "employed", 50},
		{"large amount employed", "50000", "20000", "employed", 80},
		{"large amount weak income", "50000", "4000", "unemployed", 0},
		// boundary: 10000 is not < 10000
		{"amount at small-loan bound", "10000", "10000", "employed", 80},
		{"unknown employment status", "2000", "5000", "contractor", 70},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreLoanApplication(
				decimal.RequireFromString(tc.amount),
				decimal.RequireFromString(tc.income),
				tc.employment,
			)
			if got != tc.want {
				t.Fatalf("score = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestScoreBand(t *testing.T) {
	if got := ScoreBand(100); got != "High approval likelihood" {
		t.Fatalf("band(100) = %q", got)
	}
	if got := ScoreBand(40); got != "Moderate approval likelihood" {
		t.Fatalf("band(40) = %q", got)
	}
	if got := ScoreBand(20); got != "Low approval likelihood - consider improving your profile" {
		t.Fatalf("band(20) = %q", got)
	}
}
