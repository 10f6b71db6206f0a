package proration

import (
	"errors"
	"time"

	"github.com/angelmondragon/outside-subscription/internal/catalog"
	"github.com/angelmondragon/outside-subscription/internal/subscriptions"
	"github.com/angelmondragon/outside-subscription/pkg/enums"
	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
	"github.com/angelmondragon/outside-subscription/pkg/money"
)

// PlanSource resolves plan ids; *catalog.Catalog satisfies it.
type PlanSource interface {
	Get(id string) (catalog.Plan, error)
}

// Offer is what the management screen shows for the held subscription.
type Offer struct {
	Eligible  bool
	Target    catalog.Plan
	Quote     Quote
	Headline  string
	PriceCopy string
}

type Engine struct {
	plans PlanSource
}

func NewEngine(plans PlanSource) (*Engine, error) {
	if plans == nil {
		return nil, errors.New("plan source is required")
	}
	return &Engine{plans: plans}, nil
}

// Target resolves the upgrade plan for a held plan id.
func (e *Engine) Target(planID string) (catalog.Plan, error) {
	targetID, ok := UpgradeTarget(planID)
	if !ok {
		return catalog.Plan{}, pkgerrors.New(pkgerrors.CodeIllegalTransition, "plan has no upgrade target").
			WithDetails(map[string]any{"plan_id": planID})
	}
	return e.plans.Get(targetID)
}

// Offer quotes the upgrade for current. Ineligible plans return an offer with Eligible unset.
func (e *Engine) Offer(current subscriptions.Subscription, now time.Time) (Offer, error) {
	if !IsEligible(current.Plan.ID) {
		return Offer{}, nil
	}
	target, err := e.Target(current.Plan.ID)
	if err != nil {
		return Offer{}, err
	}
	return Offer{
		Eligible:  true,
		Target:    target,
		Quote:     Compute(current, target, now),
		Headline:  "Upgrade to " + target.Name,
		PriceCopy: priceCopy(current.Plan, target),
	}, nil
}

func priceCopy(current, target catalog.Plan) string {
	if current.BillingCycle == enums.BillingCycleMonthly {
		return "Switch to annual - " + money.PerPeriod(target.Price, target.Period)
	}
	return "Only " + money.PerPeriod(target.Price.Sub(current.Price), target.Period) + " more"
}
