// Package proration prices a mid-cycle switch from a held subscription to a higher plan.
package proration

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/outside-subscription/internal/catalog"
	"github.com/angelmondragon/outside-subscription/internal/subscriptions"
	"github.com/angelmondragon/outside-subscription/pkg/enums"
)

const (
	day = 24 * time.Hour

	MonthlyCycleDays int64 = 30
	YearlyCycleDays  int64 = 365
)

// Quote is the full breakdown of one proration. Amounts are unrounded.
type Quote struct {
	CurrentPlanID string
	TargetPlanID  string
	DaysRemaining int64
	CycleDays     int64
	UnusedCredit  decimal.Decimal
	// Raw is the target price minus unused credit, before the zero floor.
	Raw    decimal.Decimal
	Amount decimal.Decimal
	// Credit is the receipt value, derived from Amount rather than UnusedCredit.
	Credit decimal.Decimal
}

// DaysRemaining returns ceil((next-now)/24h). Past dates yield zero or negative values.
func DaysRemaining(next, now time.Time) int64 {
	d := next.Sub(now)
	q := int64(d / day)
	if d%day > 0 {
		q++
	}
	return q
}

// CycleDays is the proration denominator for a billing cycle.
func CycleDays(cycle enums.BillingCycle) int64 {
	if cycle == enums.BillingCycleMonthly {
		return MonthlyCycleDays
	}
	return YearlyCycleDays
}

// Compute prices switching current to target at now. It is pure.
func Compute(current subscriptions.Subscription, target catalog.Plan, now time.Time) Quote {
	days := DaysRemaining(current.NextBillingDate, now)
	cycle := CycleDays(current.Plan.BillingCycle)

	unused := current.Plan.Price.
		Mul(decimal.NewFromInt(days)).
		Div(decimal.NewFromInt(cycle))
	raw := target.Price.Sub(unused)
	amount := decimal.Max(decimal.Zero, raw)

	return Quote{
		CurrentPlanID: current.Plan.ID,
		TargetPlanID:  target.ID,
		DaysRemaining: days,
		CycleDays:     cycle,
		UnusedCredit:  unused,
		Raw:           raw,
		Amount:        amount,
		Credit:        current.Plan.Price.Sub(target.Price.Sub(amount)),
	}
}
