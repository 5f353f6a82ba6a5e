package service

import (
	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/domain"
)

// ScoreLoanApplication computes the advisory approval-likelihood score
// (0-100). The rules are additive and evaluated in a fixed order; the score
// never gates an application, it is returned to the caller alongside it.
//
// The debt-to-income ratio assumes a monthly payment of 10% of principal.
func ScoreLoanApplication(amount, monthlyIncome decimal.Decimal, employmentStatus string) int {
	score := 0

	if monthlyIncome.IsPositive() {
		ratio := amount.InexactFloat64() * 0.10 / monthlyIncome.InexactFloat64()
		switch {
		case ratio < 0.30:
			score += 50
		case ratio < 0.50:
			score += 25
		}
	}

	switch employmentStatus {
	case domain.EmploymentEmployed:
		score += 30
	case domain.EmploymentSelfEmployed:
		score += 20
	}

	if amount.LessThan(decimal.NewFromInt(10000)) {
		score += 20
	}

	return score
}

// ScoreBand translates a score into the advisory wording shown to the
// applicant.
func ScoreBand(score int) string {
	switch {
	case score >= 70:
		return "High approval likelihood"
	case score >= 40:
		return "Moderate approval likelihood"
	default:
		return "Low approval likelihood - consider improving your profile"
	}
}
