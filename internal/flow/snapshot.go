package flow

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/outside-subscription/internal/catalog"
	"github.com/angelmondragon/outside-subscription/internal/subscriptions"
	"github.com/angelmondragon/outside-subscription/pkg/enums"
)

// Snapshot is a detached copy of a State for rendering.
type Snapshot struct {
	Screen       enums.Screen
	SelectedPlan *catalog.Plan
	Subscription *subscriptions.Subscription
	Upgrade      *UpgradeContext
	AmountDue    *decimal.Decimal
}

func (s *State) Snapshot() Snapshot {
	snap := Snapshot{Screen: s.screen}
	if plan, ok := s.SelectedPlan(); ok {
		snap.SelectedPlan = &plan
	}
	if sub, ok := s.Subscription(); ok {
		snap.Subscription = &sub
	}
	if up, ok := s.Upgrade(); ok {
		snap.Upgrade = &up
	}
	if amount, ok := s.AmountDue(); ok {
		snap.AmountDue = &amount
	}
	return snap
}

// IsUpgrade reports whether the payment screen is charging for an upgrade.
func (s Snapshot) IsUpgrade() bool {
	return s.Upgrade != nil
}
