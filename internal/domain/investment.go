package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type DurationUnit string

const (
	DurationDays   DurationUnit = "days"
	DurationWeeks  DurationUnit = "weeks"
	DurationMonths DurationUnit = "months"
	DurationYears  DurationUnit = "years"
)

type CompoundFrequency string

const (
	CompoundDaily     CompoundFrequency = "daily"
	CompoundWeekly    CompoundFrequency = "weekly"
	CompoundMonthly   CompoundFrequency = "monthly"
	CompoundQuarterly CompoundFrequency = "quarterly"
	CompoundYearly    CompoundFrequency = "yearly"
)

// InvestmentPlan is an admin-managed catalog entry.
type InvestmentPlan struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	MinAmount         decimal.Decimal   `json:"min_amount"`
	MaxAmount         decimal.Decimal   `json:"max_amount"`
	ROIPercentage     decimal.Decimal   `json:"roi_percentage"`
	DurationValue     int               `json:"duration_value"`
	DurationUnit      DurationUnit      `json:"duration_unit"`
	CompoundFrequency CompoundFrequency `json:"compound_frequency"`
	IsActive          bool              `json:"is_active"`
	CreatedAt         time.Time         `json:"created_at"`
}

type InvestmentStatus string

const (
	InvestmentPending   InvestmentStatus = "pending"
	InvestmentActive    InvestmentStatus = "active"
	InvestmentMatured   InvestmentStatus = "matured"
	InvestmentCancelled InvestmentStatus = "cancelled"
)

// Investment records one funding event. Amount and ExpectedProfit are fixed
// at creation; profit is a projection, not a running value.
type Investment struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	PlanID         string           `json:"plan_id"`
	Amount         decimal.Decimal  `json:"amount"`
	ExpectedProfit decimal.Decimal  `json:"expected_profit"`
	StartDate      time.Time        `json:"start_date"`
	MaturityDate   time.Time        `json:"maturity_date"`
	Status         InvestmentStatus `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
}
