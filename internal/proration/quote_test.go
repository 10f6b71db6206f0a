package proration

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/outside-subscription/internal/catalog"
	"github.com/angelmondragon/outside-subscription/internal/subscriptions"
	"github.com/angelmondragon/outside-subscription/pkg/enums"
	"github.com/angelmondragon/outside-subscription/pkg/money"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func heldFor(t *testing.T, planID string, daysLeft int) subscriptions.Subscription {
	t.Helper()
	plan, err := catalog.Default().Get(planID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	sub := subscriptions.Activate("sub_test", plan, now.Add(-24*time.Hour), enums.PaymentMethodCard)
	sub.NextBillingDate = now.Add(time.Duration(daysLeft) * day)
	return sub
}

func outsidePlus(t *testing.T) catalog.Plan {
	t.Helper()
	plan, err := catalog.Default().Get(catalog.PlanOutsidePlusYearly)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	return plan
}

func TestComputeMonthlyTenDaysLeft(t *testing.T) {
	q := Compute(heldFor(t, catalog.PlanGaiaMonthly, 10), outsidePlus(t), now)

	if q.DaysRemaining != 10 || q.CycleDays != 30 {
		t.Fatalf("unexpected days %d / %d", q.DaysRemaining, q.CycleDays)
	}
	if got := money.Round(q.UnusedCredit).String(); got != "4" {
		t.Fatalf("expected unused credit ~4.00, got %s", q.UnusedCredit)
	}
	if got := money.Format(q.Amount); got != "$85.99" {
		t.Fatalf("expected $85.99, got %s (%s)", got, q.Amount)
	}
	if !q.Amount.Equal(q.Raw) {
		t.Fatalf("floor should not trigger: raw %s amount %s", q.Raw, q.Amount)
	}
}

func TestComputeYearlyThreeHundredDaysLeft(t *testing.T) {
	q := Compute(heldFor(t, catalog.PlanGaiaYearly, 300), outsidePlus(t), now)

	if q.CycleDays != 365 {
		t.Fatalf("expected yearly cycle, got %d", q.CycleDays)
	}
	if got := money.Format(q.UnusedCredit); got != "$49.23" {
		t.Fatalf("expected unused $49.23, got %s", got)
	}
	if got := money.Format(q.Amount); got != "$40.76" {
		t.Fatalf("expected $40.76, got %s", got)
	}
}

func TestComputePastBillingDateChargesOverage(t *testing.T) {
	q := Compute(heldFor(t, catalog.PlanGaiaMonthly, -5), outsidePlus(t), now)

	if q.DaysRemaining != -5 {
		t.Fatalf("expected -5 days, got %d", q.DaysRemaining)
	}
	if !q.UnusedCredit.IsNegative() {
		t.Fatalf("expected negative unused credit, got %s", q.UnusedCredit)
	}
	if !q.Amount.Equal(q.Raw) || !q.Amount.GreaterThan(outsidePlus(t).Price) {
		t.Fatalf("expected uncapped amount above target price, got %s", q.Amount)
	}
}

func TestComputeFloorsAtZero(t *testing.T) {
	cheap := outsidePlus(t)
	cheap.Price = decimal.RequireFromString("1.00")

	q := Compute(heldFor(t, catalog.PlanGaiaYearly, 300), cheap, now)

	if !q.Raw.IsNegative() {
		t.Fatalf("expected negative raw, got %s", q.Raw)
	}
	if !q.Amount.Equal(decimal.Zero) {
		t.Fatalf("expected amount exactly zero, got %s", q.Amount)
	}
}

func TestComputeMonotonicInDaysRemaining(t *testing.T) {
	target := outsidePlus(t)
	prev := Compute(heldFor(t, catalog.PlanGaiaYearly, 0), target, now)
	for days := 1; days <= 365; days++ {
		q := Compute(heldFor(t, catalog.PlanGaiaYearly, days), target, now)
		if !q.Raw.LessThan(prev.Raw) {
			t.Fatalf("raw must strictly decrease: day %d raw %s prev %s", days, q.Raw, prev.Raw)
		}
		if q.Amount.GreaterThan(prev.Amount) {
			t.Fatalf("amount must not increase: day %d amount %s prev %s", days, q.Amount, prev.Amount)
		}
		prev = q
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	held := heldFor(t, catalog.PlanGaiaMonthly, 17)
	target := outsidePlus(t)
	a := Compute(held, target, now)
	b := Compute(held, target, now)
	if !a.Amount.Equal(b.Amount) || !a.Credit.Equal(b.Credit) || !a.UnusedCredit.Equal(b.UnusedCredit) {
		t.Fatalf("expected identical quotes, got %+v and %+v", a, b)
	}
}

func TestCreditDerivedFromAmount(t *testing.T) {
	held := heldFor(t, catalog.PlanGaiaMonthly, 10)
	q := Compute(held, outsidePlus(t), now)

	want := held.Plan.Price.Sub(outsidePlus(t).Price.Sub(q.Amount))
	if !q.Credit.Equal(want) {
		t.Fatalf("expected credit %s, got %s", want, q.Credit)
	}
	if got := money.Format(q.Credit); got != "$7.99" {
		t.Fatalf("expected $7.99 credit, got %s", got)
	}
}

func TestDaysRemainingRoundsUp(t *testing.T) {
	tests := []struct {
		name string
		next time.Time
		want int64
	}{
		{name: "exact", next: now.Add(3 * day), want: 3},
		{name: "partial", next: now.Add(2*day + time.Minute), want: 3},
		{name: "same instant", next: now, want: 0},
		{name: "hours ago", next: now.Add(-6 * time.Hour), want: 0},
		{name: "days ago", next: now.Add(-2*day - time.Hour), want: -2},
	}
	for _, tt := range tests {
		if got := DaysRemaining(tt.next, now); got != tt.want {
			t.Fatalf("%s: expected %d, got %d", tt.name, tt.want, got)
		}
	}
}
