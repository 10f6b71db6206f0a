package subscriptions

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/outside-subscription/internal/catalog"
	"github.com/angelmondragon/outside-subscription/pkg/enums"
)

// BillingInterval is the flat period added to the start date at checkout.
// It applies to monthly and yearly plans alike.
const BillingInterval = 30 * 24 * time.Hour

const idPrefix = "sub_"

// Subscription is an immutable purchase record. Upgrades replace the whole value.
type Subscription struct {
	ID              string
	Plan            catalog.Plan
	Status          enums.SubscriptionStatus
	StartDate       time.Time
	NextBillingDate time.Time
	// PaymentMethod is the wallet label; empty for card payments.
	PaymentMethod string
}

// NewID returns a process-unique subscription id.
func NewID() string {
	return idPrefix + uuid.NewString()
}

// Activate builds an active subscription for plan starting at start.
func Activate(id string, plan catalog.Plan, start time.Time, method enums.PaymentMethod) Subscription {
	return Subscription{
		ID:              id,
		Plan:            plan.Clone(),
		Status:          enums.SubscriptionStatusActive,
		StartDate:       start,
		NextBillingDate: start.Add(BillingInterval),
		PaymentMethod:   method.Label(),
	}
}

// IsActive reports whether the subscription is in the active state.
func (s Subscription) IsActive() bool {
	return s.Status == enums.SubscriptionStatusActive
}

// Clone returns a deep copy.
func (s Subscription) Clone() Subscription {
	out := s
	out.Plan = s.Plan.Clone()
	return out
}
