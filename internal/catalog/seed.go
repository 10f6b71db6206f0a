package catalog

import (
	"github.com/angelmondragon/outside-subscription/pkg/enums"
	"github.com/angelmondragon/outside-subscription/pkg/money"
)

const (
	PlanGaiaMonthly       = "gaia-monthly"
	PlanGaiaYearly        = "gaia-yearly"
	PlanOutsidePlusYearly = "outside-plus-yearly"

	// DefaultSelection is the plan pre-highlighted on the selection screen.
	DefaultSelection = PlanGaiaYearly
)

var gaiaFeatures = []string{
	"Access to all Gaia content",
	"HD streaming quality",
	"Watch on 2 devices",
	"Unlimited downloads",
	"Cancel anytime",
}

func seedPlans() []Plan {
	return []Plan{
		{
			ID:           PlanGaiaMonthly,
			Name:         "Gaia Premium Monthly",
			Price:        money.MustParse("11.99"),
			Period:       enums.BillingPeriodMonth,
			BillingCycle: enums.BillingCycleMonthly,
			Features:     append([]string(nil), gaiaFeatures...),
		},
		{
			ID:           PlanGaiaYearly,
			Name:         "Gaia Premium Annual",
			Price:        money.MustParse("59.90"),
			Period:       enums.BillingPeriodYear,
			BillingCycle: enums.BillingCycleYearly,
			Savings:      "Save $84/year",
			Features:     append(append([]string(nil), gaiaFeatures...), "Best value - 2 months free"),
		},
		{
			ID:           PlanOutsidePlusYearly,
			Name:         "Outside+ Annual",
			Price:        money.MustParse("89.99"),
			Period:       enums.BillingPeriodYear,
			BillingCycle: enums.BillingCycleYearly,
			Popular:      true,
			Features: []string{
				"Everything in Gaia Premium",
				"Access to all Outside brands",
				"4K streaming quality",
				"Watch on 4 devices",
				"Exclusive member events",
				"Priority customer support",
			},
		},
	}
}

var defaultCatalog = mustDefault()

func mustDefault() *Catalog {
	c, err := New(seedPlans()...)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the process-wide seeded catalog.
func Default() *Catalog {
	return defaultCatalog
}
