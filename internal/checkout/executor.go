// Package checkout turns a plan and a payment intent into an active subscription.
// No gateway is called: processing is a fixed delay on an injectable clock.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/outside-subscription/internal/catalog"
	"github.com/angelmondragon/outside-subscription/internal/subscriptions"
	"github.com/angelmondragon/outside-subscription/pkg/checkout"
	"github.com/angelmondragon/outside-subscription/pkg/clock"
	"github.com/angelmondragon/outside-subscription/pkg/enums"
	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
	"github.com/angelmondragon/outside-subscription/pkg/logger"
)

const (
	DefaultCardDelay   = 2 * time.Second
	DefaultWalletDelay = 1500 * time.Millisecond
)

// PaymentIntent is what the customer submitted. Card and address are only read for card payments.
type PaymentIntent struct {
	Method         enums.PaymentMethod
	Card           checkout.CardFields
	BillingAddress checkout.AddressFields
}

// Delays is the simulated processing latency per method family.
type Delays struct {
	Card   time.Duration
	Wallet time.Duration
}

func (d Delays) For(method enums.PaymentMethod) time.Duration {
	if method.IsWallet() {
		return d.Wallet
	}
	return d.Card
}

// Executor charges a plan.
type Executor interface {
	Charge(ctx context.Context, plan catalog.Plan, intent PaymentIntent) (subscriptions.Subscription, error)
}

type ExecutorParams struct {
	Clock  clock.Clock
	Delays Delays
	Logger *logger.Logger
	// NewID defaults to subscriptions.NewID.
	NewID func() string
}

type executor struct {
	clock  clock.Clock
	delays Delays
	logg   *logger.Logger
	newID  func() string
}

func NewExecutor(params ExecutorParams) (Executor, error) {
	if params.Clock == nil {
		return nil, fmt.Errorf("clock required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Delays.Card < 0 || params.Delays.Wallet < 0 {
		return nil, fmt.Errorf("processing delays must not be negative")
	}
	if params.NewID == nil {
		params.NewID = subscriptions.NewID
	}
	return &executor{
		clock:  params.Clock,
		delays: params.Delays,
		logg:   params.Logger,
		newID:  params.NewID,
	}, nil
}

// Charge validates the intent, waits out the processing delay and returns the new
// subscription. Cancelling ctx after validation does not abort the run.
func (e *executor) Charge(ctx context.Context, plan catalog.Plan, intent PaymentIntent) (subscriptions.Subscription, error) {
	if err := validateIntent(plan, intent); err != nil {
		return subscriptions.Subscription{}, err
	}

	ctx = e.logg.WithFields(ctx, map[string]any{
		"plan_id":        plan.ID,
		"payment_method": intent.Method.String(),
	})
	e.logg.Info(ctx, "checkout processing started")

	if err := e.clock.Sleep(context.WithoutCancel(ctx), e.delays.For(intent.Method)); err != nil {
		return subscriptions.Subscription{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout processing interrupted")
	}

	sub := subscriptions.Activate(e.newID(), plan, e.clock.Now(), intent.Method)
	e.logg.Info(e.logg.WithField(ctx, "subscription_id", sub.ID), "checkout processing completed")
	return sub, nil
}

func validateIntent(plan catalog.Plan, intent PaymentIntent) error {
	if plan.ID == "" {
		return pkgerrors.Validation(map[string]string{"plan_id": "is required"})
	}
	if plan.Price.IsNegative() {
		return pkgerrors.Validation(map[string]string{"price": "must not be negative"})
	}
	if !intent.Method.IsValid() {
		return pkgerrors.Validation(map[string]string{"method": "must be one of card, apple_pay, google_pay"})
	}
	if intent.Method.IsWallet() {
		return nil
	}
	return checkout.ValidateCardPayment(
		checkout.NormalizeCard(intent.Card),
		checkout.NormalizeAddress(intent.BillingAddress),
	)
}
