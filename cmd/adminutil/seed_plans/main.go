package main

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/ayodejiio/vestra/internal/config"
	"github.com/ayodejiio/vestra/internal/db"
	"github.com/ayodejiio/vestra/internal/domain"
	"github.com/ayodejiio/vestra/internal/ledger"
)

// Seeds the default investment plan catalog. Upserts by plan name, so it is
// safe to run repeatedly.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB.DSN())
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	store := ledger.NewPostgres(pool)

	plans := []domain.InvestmentPlan{
		{
			Name:              "Starter Growth",
			Description:       "Entry plan for new investors, compounded monthly",
			MinAmount:         decimal.NewFromInt(100),
			MaxAmount:         decimal.NewFromInt(10000),
			ROIPercentage:     decimal.NewFromInt(12),
			DurationValue:     12,
			DurationUnit:      domain.DurationMonths,
			CompoundFrequency: domain.CompoundMonthly,
			IsActive:          true,
		},
		{
			Name:              "Balanced Quarterly",
			Description:       "Mid-tier plan with quarterly compounding",
			MinAmount:         decimal.NewFromInt(1000),
			MaxAmount:         decimal.NewFromInt(50000),
			ROIPercentage:     decimal.NewFromInt(15),
			DurationValue:     18,
			DurationUnit:      domain.DurationMonths,
			CompoundFrequency: domain.CompoundQuarterly,
			IsActive:          true,
		},
		{
			Name:              "Premium Yield",
			Description:       "High-commitment plan, compounded yearly",
			MinAmount:         decimal.NewFromInt(10000),
			MaxAmount:         decimal.NewFromInt(250000),
			ROIPercentage:     decimal.NewFromInt(20),
			DurationValue:     3,
			DurationUnit:      domain.DurationYears,
			CompoundFrequency: domain.CompoundYearly,
			IsActive:          true,
		},
	}

	for i := range plans {
		if err := store.UpsertPlan(ctx, &plans[i]); err != nil {
			log.Fatalf("upsert plan %s: %v", plans[i].Name, err)
		}
		fmt.Printf("Plan %q seeded (id %s).\n", plans[i].Name, plans[i].ID)
	}
}
