package subscriptions

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/outside-subscription/internal/catalog"
	"github.com/angelmondragon/outside-subscription/pkg/enums"
)

func TestActivateSetsFlatBillingDate(t *testing.T) {
	start := time.Date(2026, 1, 31, 9, 30, 0, 0, time.UTC)
	for _, plan := range catalog.Default().List() {
		sub := Activate(NewID(), plan, start, enums.PaymentMethodCard)
		if got := sub.NextBillingDate.Sub(sub.StartDate); got != 30*24*time.Hour {
			t.Fatalf("%s: expected 30 day interval, got %v", plan.ID, got)
		}
		if !sub.IsActive() {
			t.Fatalf("%s: expected active status, got %s", plan.ID, sub.Status)
		}
		if sub.PaymentMethod != "" {
			t.Fatalf("%s: card payments must not carry a label, got %q", plan.ID, sub.PaymentMethod)
		}
	}
}

func TestActivateWalletLabel(t *testing.T) {
	plan, _ := catalog.Default().Get(catalog.PlanGaiaMonthly)
	sub := Activate(NewID(), plan, time.Now(), enums.PaymentMethodGooglePay)
	if sub.PaymentMethod != "Google Pay" {
		t.Fatalf("expected Google Pay label, got %q", sub.PaymentMethod)
	}
}

func TestPlanSnapshotIsIndependent(t *testing.T) {
	plan, _ := catalog.Default().Get(catalog.PlanGaiaYearly)
	sub := Activate(NewID(), plan, time.Now(), enums.PaymentMethodCard)
	plan.Features[0] = "changed later"
	if sub.Plan.Features[0] == "changed later" {
		t.Fatal("subscription plan must be a snapshot")
	}
	clone := sub.Clone()
	clone.Plan.Features[0] = "changed clone"
	if sub.Plan.Features[0] == "changed clone" {
		t.Fatal("clone must not alias features")
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := NewID()
		if !strings.HasPrefix(id, "sub_") {
			t.Fatalf("unexpected id format %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}
