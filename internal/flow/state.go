// Package flow is the purchase flow state machine: which plan is being paid for,
// which subscription is held and whether an upgrade is pending.
// A State is not safe for concurrent use.
package flow

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/outside-subscription/internal/catalog"
	"github.com/angelmondragon/outside-subscription/internal/subscriptions"
	"github.com/angelmondragon/outside-subscription/pkg/enums"
	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
)

// Operation names, also used as metric labels.
const (
	OpSelectPlan       = "select_plan"
	OpRequestUpgrade   = "request_upgrade"
	OpCompleteCheckout = "complete_checkout"
	OpBack             = "back"
	OpNavigate         = "navigate"
)

// EligibilityFunc reports whether holders of a plan may upgrade.
type EligibilityFunc func(planID string) bool

// UpgradeContext lives from RequestUpgrade until checkout completes or the upgrade is abandoned.
type UpgradeContext struct {
	TargetPlan           catalog.Plan
	ProrationAmount      decimal.Decimal
	PreviousSubscription subscriptions.Subscription
}

type State struct {
	screen       enums.Screen
	selected     *catalog.Plan
	subscription *subscriptions.Subscription
	upgrade      *UpgradeContext
	eligible     EligibilityFunc
}

// New returns a State on the selecting screen. A nil eligibility func disables upgrades.
func New(eligible EligibilityFunc) *State {
	if eligible == nil {
		eligible = func(string) bool { return false }
	}
	return &State{screen: enums.ScreenSelecting, eligible: eligible}
}

func (s *State) Screen() enums.Screen {
	return s.screen
}

// SelectPlan moves to paying for plan from any screen and drops a pending upgrade.
func (s *State) SelectPlan(plan catalog.Plan) error {
	if plan.ID == "" {
		return pkgerrors.Validation(map[string]string{"plan_id": "required"})
	}
	if plan.Price.IsNegative() {
		return pkgerrors.Validation(map[string]string{"price": "must not be negative"})
	}
	selected := plan.Clone()
	s.selected = &selected
	s.upgrade = nil
	s.screen = enums.ScreenPaying
	return nil
}

// RequestUpgrade moves from managing to paying for target at the prorated amount.
func (s *State) RequestUpgrade(target catalog.Plan, amount decimal.Decimal) error {
	if s.screen != enums.ScreenManaging || s.subscription == nil {
		return s.illegal(OpRequestUpgrade, "upgrades start from subscription management", "")
	}
	held := s.subscription
	if !s.eligible(held.Plan.ID) {
		return s.illegal(OpRequestUpgrade, "held plan has no upgrade target", held.Plan.ID)
	}
	if target.ID == "" {
		return pkgerrors.Validation(map[string]string{"plan_id": "required"})
	}
	if target.ID == held.Plan.ID {
		return s.illegal(OpRequestUpgrade, "target plan is already held", target.ID)
	}
	if amount.IsNegative() {
		return pkgerrors.Validation(map[string]string{"proration_amount": "must not be negative"})
	}

	selected := target.Clone()
	s.selected = &selected
	s.upgrade = &UpgradeContext{
		TargetPlan:           target.Clone(),
		ProrationAmount:      amount,
		PreviousSubscription: held.Clone(),
	}
	s.screen = enums.ScreenPaying
	return nil
}

// CompleteCheckout stores sub as the held subscription and moves to managing.
func (s *State) CompleteCheckout(sub subscriptions.Subscription) error {
	if s.screen != enums.ScreenPaying || s.selected == nil {
		return s.illegal(OpCompleteCheckout, "no plan is being paid for", "")
	}
	if sub.ID == "" {
		return pkgerrors.Validation(map[string]string{"subscription_id": "required"})
	}
	if sub.Plan.ID != s.selected.ID {
		return s.illegal(OpCompleteCheckout, "subscription plan does not match the selected plan", sub.Plan.ID)
	}
	held := sub.Clone()
	s.subscription = &held
	s.upgrade = nil
	s.screen = enums.ScreenManaging
	return nil
}

// Back leaves the payment screen, abandoning any pending upgrade.
func (s *State) Back() (enums.Screen, error) {
	if s.screen != enums.ScreenPaying {
		return s.screen, s.illegal(OpBack, "back is only available while paying", "")
	}
	s.upgrade = nil
	if s.subscription != nil {
		s.screen = enums.ScreenManaging
	} else {
		s.screen = enums.ScreenSelecting
	}
	return s.screen, nil
}

// Resolve applies the redirect rule: paying needs a selected plan and managing needs
// a held subscription, otherwise the shell lands on selecting.
func (s *State) Resolve(requested enums.Screen) enums.Screen {
	switch requested {
	case enums.ScreenPaying:
		if s.selected != nil {
			return enums.ScreenPaying
		}
	case enums.ScreenManaging:
		if s.subscription != nil {
			return enums.ScreenManaging
		}
	}
	return enums.ScreenSelecting
}

// Navigate moves to the resolved screen. Leaving the payment screen abandons a pending upgrade.
func (s *State) Navigate(requested enums.Screen) (enums.Screen, error) {
	if !requested.IsValid() {
		return s.screen, pkgerrors.Validation(map[string]string{"screen": "unknown screen"})
	}
	next := s.Resolve(requested)
	if next != enums.ScreenPaying {
		s.upgrade = nil
	}
	s.screen = next
	return next, nil
}

// AmountDue is what the payment screen charges: the proration during an upgrade,
// the selected plan's price otherwise. ok is false when nothing is selected.
func (s *State) AmountDue() (amount decimal.Decimal, ok bool) {
	if s.upgrade != nil {
		return s.upgrade.ProrationAmount, true
	}
	if s.selected != nil {
		return s.selected.Price, true
	}
	return decimal.Zero, false
}

// Subscription returns the held subscription.
func (s *State) Subscription() (subscriptions.Subscription, bool) {
	if s.subscription == nil {
		return subscriptions.Subscription{}, false
	}
	return s.subscription.Clone(), true
}

// SelectedPlan returns the plan being paid for, if any.
func (s *State) SelectedPlan() (catalog.Plan, bool) {
	if s.selected == nil {
		return catalog.Plan{}, false
	}
	return s.selected.Clone(), true
}

// Upgrade returns the pending upgrade context.
func (s *State) Upgrade() (UpgradeContext, bool) {
	if s.upgrade == nil {
		return UpgradeContext{}, false
	}
	return s.upgrade.clone(), true
}

func (s *State) illegal(operation, reason, planID string) *pkgerrors.Error {
	err := pkgerrors.IllegalTransition(operation, string(s.screen), reason)
	if planID != "" {
		if details, ok := err.Details().(map[string]any); ok {
			details["plan_id"] = planID
		}
	}
	return err
}

func (u UpgradeContext) clone() UpgradeContext {
	return UpgradeContext{
		TargetPlan:           u.TargetPlan.Clone(),
		ProrationAmount:      u.ProrationAmount,
		PreviousSubscription: u.PreviousSubscription.Clone(),
	}
}
