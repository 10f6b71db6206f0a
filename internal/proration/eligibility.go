package proration

import "github.com/angelmondragon/outside-subscription/internal/catalog"

// upgradeTargets is keyed by plan identity. Price ordering plays no part.
var upgradeTargets = map[string]string{
	catalog.PlanGaiaMonthly: catalog.PlanOutsidePlusYearly,
	catalog.PlanGaiaYearly:  catalog.PlanOutsidePlusYearly,
}

// UpgradeTarget returns the plan id offered to holders of planID.
func UpgradeTarget(planID string) (string, bool) {
	target, ok := upgradeTargets[planID]
	return target, ok
}

// IsEligible reports whether holders of planID are offered an upgrade.
func IsEligible(planID string) bool {
	_, ok := upgradeTargets[planID]
	return ok
}
