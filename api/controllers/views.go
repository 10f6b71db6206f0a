package controllers

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/outside-subscription/internal/catalog"
	"github.com/angelmondragon/outside-subscription/internal/flow"
	"github.com/angelmondragon/outside-subscription/internal/proration"
	"github.com/angelmondragon/outside-subscription/internal/session"
	"github.com/angelmondragon/outside-subscription/internal/subscriptions"
	"github.com/angelmondragon/outside-subscription/pkg/enums"
	"github.com/angelmondragon/outside-subscription/pkg/money"
)

// amountResponse carries the rounded value and its "$x.yy" rendering.
type amountResponse struct {
	Value   decimal.Decimal `json:"value"`
	Display string          `json:"display"`
}

func newAmount(v decimal.Decimal) amountResponse {
	return amountResponse{Value: money.Round(v), Display: money.Format(v)}
}

type planResponse struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Price        amountResponse `json:"price"`
	PriceLabel   string         `json:"price_label"`
	Period       string         `json:"period"`
	BillingCycle string         `json:"billing_cycle"`
	Features     []string       `json:"features"`
	Savings      string         `json:"savings,omitempty"`
	Popular      bool           `json:"popular"`
}

func newPlanResponse(p catalog.Plan) planResponse {
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return planResponse{
		ID:           p.ID,
		Name:         p.Name,
		Price:        newAmount(p.Price),
		PriceLabel:   money.PerPeriod(p.Price, p.Period),
		Period:       p.Period.String(),
		BillingCycle: p.BillingCycle.String(),
		Features:     features,
		Savings:      p.Savings,
		Popular:      p.Popular,
	}
}

func newPlanList(plans []catalog.Plan) []planResponse {
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, newPlanResponse(p))
	}
	return out
}

type subscriptionResponse struct {
	ID              string       `json:"id"`
	Plan            planResponse `json:"plan"`
	Status          string       `json:"status"`
	StartDate       time.Time    `json:"start_date"`
	NextBillingDate time.Time    `json:"next_billing_date"`
	PaymentMethod   string       `json:"payment_method,omitempty"`
}

func newSubscriptionResponse(s subscriptions.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:              s.ID,
		Plan:            newPlanResponse(s.Plan),
		Status:          s.Status.String(),
		StartDate:       s.StartDate.UTC(),
		NextBillingDate: s.NextBillingDate.UTC(),
		PaymentMethod:   s.PaymentMethod,
	}
}

type upgradeContextResponse struct {
	TargetPlan             planResponse   `json:"target_plan"`
	ProrationAmount        amountResponse `json:"proration_amount"`
	PreviousSubscriptionID string         `json:"previous_subscription_id"`
	PreviousPlanID         string         `json:"previous_plan_id"`
}

type sessionResponse struct {
	SessionID    string                  `json:"session_id"`
	Screen       string                  `json:"screen"`
	SelectedPlan *planResponse           `json:"selected_plan,omitempty"`
	Subscription *subscriptionResponse   `json:"subscription,omitempty"`
	Upgrade      *upgradeContextResponse `json:"upgrade,omitempty"`
	AmountDue    *amountResponse         `json:"amount_due,omitempty"`
	IsUpgrade    bool                    `json:"is_upgrade"`
}

func newSessionResponse(v session.View) sessionResponse {
	return newSnapshotResponse(v.SessionID, v.Snapshot)
}

func newSnapshotResponse(id string, snap flow.Snapshot) sessionResponse {
	out := sessionResponse{
		SessionID: id,
		Screen:    snap.Screen.String(),
		IsUpgrade: snap.IsUpgrade(),
	}
	if snap.SelectedPlan != nil {
		p := newPlanResponse(*snap.SelectedPlan)
		out.SelectedPlan = &p
	}
	if snap.Subscription != nil {
		s := newSubscriptionResponse(*snap.Subscription)
		out.Subscription = &s
	}
	if snap.Upgrade != nil {
		out.Upgrade = &upgradeContextResponse{
			TargetPlan:             newPlanResponse(snap.Upgrade.TargetPlan),
			ProrationAmount:        newAmount(snap.Upgrade.ProrationAmount),
			PreviousSubscriptionID: snap.Upgrade.PreviousSubscription.ID,
			PreviousPlanID:         snap.Upgrade.PreviousSubscription.Plan.ID,
		}
	}
	if snap.AmountDue != nil {
		a := newAmount(*snap.AmountDue)
		out.AmountDue = &a
	}
	return out
}

type screenResponse struct {
	Requested string `json:"requested"`
	Screen    string `json:"screen"`
	Redirect  bool   `json:"redirect"`
}

func newScreenResponse(requested, resolved enums.Screen) screenResponse {
	return screenResponse{
		Requested: requested.String(),
		Screen:    resolved.String(),
		Redirect:  requested != resolved,
	}
}

type quoteResponse struct {
	CurrentPlanID string         `json:"current_plan_id"`
	TargetPlanID  string         `json:"target_plan_id"`
	DaysRemaining int64          `json:"days_remaining"`
	CycleDays     int64          `json:"cycle_days"`
	UnusedCredit  amountResponse `json:"unused_credit"`
	Amount        amountResponse `json:"amount"`
	Credit        amountResponse `json:"credit"`
}

func newQuoteResponse(q proration.Quote) quoteResponse {
	return quoteResponse{
		CurrentPlanID: q.CurrentPlanID,
		TargetPlanID:  q.TargetPlanID,
		DaysRemaining: q.DaysRemaining,
		CycleDays:     q.CycleDays,
		UnusedCredit:  newAmount(q.UnusedCredit),
		Amount:        newAmount(q.Amount),
		Credit:        newAmount(q.Credit),
	}
}

type offerResponse struct {
	Eligible   bool           `json:"eligible"`
	TargetPlan *planResponse  `json:"target_plan,omitempty"`
	Quote      *quoteResponse `json:"quote,omitempty"`
	Headline   string         `json:"headline,omitempty"`
	PriceCopy  string         `json:"price_copy,omitempty"`
}

func newOfferResponse(o proration.Offer) offerResponse {
	if !o.Eligible {
		return offerResponse{}
	}
	target := newPlanResponse(o.Target)
	quote := newQuoteResponse(o.Quote)
	return offerResponse{
		Eligible:   true,
		TargetPlan: &target,
		Quote:      &quote,
		Headline:   o.Headline,
		PriceCopy:  o.PriceCopy,
	}
}

type upgradeRequestResponse struct {
	Session sessionResponse `json:"session"`
	Quote   quoteResponse   `json:"quote"`
}

type receiptResponse struct {
	Session       sessionResponse      `json:"session"`
	Subscription  subscriptionResponse `json:"subscription"`
	AmountCharged amountResponse       `json:"amount_charged"`
	Upgrade       bool                 `json:"upgrade"`
	Credit        *amountResponse      `json:"credit,omitempty"`
	CardLastFour  string               `json:"card_last_four,omitempty"`
}

func newReceiptResponse(r session.Receipt, cardLastFour string) receiptResponse {
	out := receiptResponse{
		Session:       newSessionResponse(r.View),
		Subscription:  newSubscriptionResponse(r.Subscription),
		AmountCharged: newAmount(r.AmountCharged),
		Upgrade:       r.Upgrade,
		CardLastFour:  cardLastFour,
	}
	if r.Upgrade {
		c := newAmount(r.Credit)
		out.Credit = &c
	}
	return out
}
