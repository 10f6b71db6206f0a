// Package session owns the flow state of each interactive session and runs the
// catalog, checkout and proration collaborators against it.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/outside-subscription/internal/catalog"
	"github.com/angelmondragon/outside-subscription/internal/checkout"
	"github.com/angelmondragon/outside-subscription/internal/flow"
	"github.com/angelmondragon/outside-subscription/internal/proration"
	"github.com/angelmondragon/outside-subscription/internal/subscriptions"
	"github.com/angelmondragon/outside-subscription/pkg/clock"
	"github.com/angelmondragon/outside-subscription/pkg/enums"
	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
	"github.com/angelmondragon/outside-subscription/pkg/logger"
	"github.com/angelmondragon/outside-subscription/pkg/metrics"
)

// View is what callers render after every operation.
type View struct {
	SessionID string
	Snapshot  flow.Snapshot
}

// Receipt describes a completed checkout.
type Receipt struct {
	View
	Subscription  subscriptions.Subscription
	AmountCharged decimal.Decimal
	Upgrade       bool
	// Credit is the unused portion of the replaced plan; zero for new purchases.
	Credit decimal.Decimal
}

// UpgradeRequest is the result of starting an upgrade.
type UpgradeRequest struct {
	View
	Quote proration.Quote
}

type planSource interface {
	Get(id string) (catalog.Plan, error)
}

// Service is the per-session controller surface used by the HTTP shell.
// Callers attach session_id to the logger context; RequireSession does it for HTTP.
type Service interface {
	Create(ctx context.Context) (View, error)
	Get(ctx context.Context, id string) (View, error)
	End(ctx context.Context, id string) error
	Resolve(ctx context.Context, id string, screen enums.Screen) (enums.Screen, error)
	Navigate(ctx context.Context, id string, screen enums.Screen) (View, error)
	SelectPlan(ctx context.Context, id, planID string) (View, error)
	Back(ctx context.Context, id string) (View, error)
	Checkout(ctx context.Context, id string, intent checkout.PaymentIntent) (Receipt, error)
	UpgradeOffer(ctx context.Context, id string) (proration.Offer, error)
	RequestUpgrade(ctx context.Context, id string) (UpgradeRequest, error)
}

type ServiceParams struct {
	Plans     planSource
	Proration *proration.Engine
	Checkout  checkout.Executor
	Locker    Locker
	Clock     clock.Clock
	Logger    *logger.Logger
	Metrics   *metrics.FlowMetrics
	// MaxSessions caps sessions in memory; zero means unbounded.
	MaxSessions int
}

type service struct {
	plans     planSource
	proration *proration.Engine
	checkout  checkout.Executor
	locker    Locker
	clock     clock.Clock
	logg      *logger.Logger
	metrics   *metrics.FlowMetrics
	sessions  *store
}

func NewService(params ServiceParams) (Service, error) {
	if params.Plans == nil {
		return nil, fmt.Errorf("plan source required")
	}
	if params.Proration == nil {
		return nil, fmt.Errorf("proration engine required")
	}
	if params.Checkout == nil {
		return nil, fmt.Errorf("checkout executor required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.MaxSessions < 0 {
		return nil, fmt.Errorf("max sessions must not be negative")
	}
	if params.Locker == nil {
		params.Locker = NewMemoryLocker()
	}
	if params.Clock == nil {
		params.Clock = clock.Real()
	}
	return &service{
		plans:     params.Plans,
		proration: params.Proration,
		checkout:  params.Checkout,
		locker:    params.Locker,
		clock:     params.Clock,
		logg:      params.Logger,
		metrics:   params.Metrics,
		sessions:  newStore(params.MaxSessions),
	}, nil
}

func (s *service) Create(ctx context.Context) (View, error) {
	now := s.clock.Now()
	e := &entry{
		id:        uuid.NewString(),
		state:     flow.New(proration.IsEligible),
		createdAt: now,
		touchedAt: now,
	}
	s.metrics.SetActiveSessions(s.sessions.put(e))
	s.logg.Info(s.logg.WithSessionID(ctx, e.id), "session created")
	return View{SessionID: e.id, Snapshot: e.snapshot()}, nil
}

func (s *service) Get(_ context.Context, id string) (View, error) {
	e, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	return View{SessionID: e.id, Snapshot: e.snapshot()}, nil
}

func (s *service) End(ctx context.Context, id string) error {
	unlock, err := s.locker.TryLock(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	size, ok := s.sessions.remove(id)
	if !ok {
		return pkgerrors.NotFound("session", id)
	}
	s.metrics.SetActiveSessions(size)
	s.logg.Info(ctx, "session ended")
	return nil
}

func (s *service) Resolve(_ context.Context, id string, screen enums.Screen) (enums.Screen, error) {
	if !screen.IsValid() {
		return "", pkgerrors.Validation(map[string]string{"screen": "unknown screen"})
	}
	e, err := s.lookup(id)
	if err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Resolve(screen), nil
}

func (s *service) Navigate(ctx context.Context, id string, screen enums.Screen) (View, error) {
	return s.mutate(ctx, id, flow.OpNavigate, func(st *flow.State) error {
		_, err := st.Navigate(screen)
		return err
	})
}

func (s *service) SelectPlan(ctx context.Context, id, planID string) (View, error) {
	planID = strings.TrimSpace(planID)
	if planID == "" {
		return View{}, pkgerrors.Validation(map[string]string{"plan_id": "is required"})
	}
	plan, err := s.plans.Get(planID)
	if err != nil {
		return View{}, err
	}
	ctx = s.logg.WithPlanID(ctx, plan.ID)
	return s.mutate(ctx, id, flow.OpSelectPlan, func(st *flow.State) error {
		return st.SelectPlan(plan)
	})
}

func (s *service) Back(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, id, flow.OpBack, func(st *flow.State) error {
		_, err := st.Back()
		return err
	})
}

func (s *service) Checkout(ctx context.Context, id string, intent checkout.PaymentIntent) (Receipt, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Receipt{}, err
	}
	unlock, err := s.locker.TryLock(ctx, id)
	if err != nil {
		return Receipt{}, err
	}
	defer unlock()
	if err := s.hold(e); err != nil {
		return Receipt{}, err
	}
	defer e.unpin()

	before := e.snapshot()
	if before.Screen != enums.ScreenPaying || before.SelectedPlan == nil || before.AmountDue == nil {
		err := pkgerrors.IllegalTransition(flow.OpCompleteCheckout, string(before.Screen), "no plan is being paid for")
		s.metrics.IncTransition(flow.OpCompleteCheckout, err)
		return Receipt{}, err
	}
	plan := *before.SelectedPlan
	ctx = s.logg.WithPlanID(ctx, plan.ID)

	started := s.clock.Now()
	sub, err := s.checkout.Charge(ctx, plan, intent)
	if err != nil {
		s.metrics.IncTransition(flow.OpCompleteCheckout, err)
		return Receipt{}, err
	}
	s.metrics.ObserveCheckout(intent.Method.String(), before.IsUpgrade(), s.clock.Now().Sub(started))

	err = e.with(s.clock.Now(), func(st *flow.State) error {
		return st.CompleteCheckout(sub)
	})
	s.metrics.IncTransition(flow.OpCompleteCheckout, err)
	if err != nil {
		s.logg.Error(ctx, "checkout completed but state rejected subscription", err)
		return Receipt{}, err
	}

	receipt := Receipt{
		View:          View{SessionID: id, Snapshot: e.snapshot()},
		Subscription:  sub,
		AmountCharged: *before.AmountDue,
		Upgrade:       before.IsUpgrade(),
	}
	if before.IsUpgrade() {
		up := before.Upgrade
		receipt.Credit = up.PreviousSubscription.Plan.Price.Sub(up.TargetPlan.Price.Sub(up.ProrationAmount))
	}
	s.logg.Info(s.logg.WithField(ctx, "subscription_id", sub.ID), "subscription activated")
	return receipt, nil
}

func (s *service) UpgradeOffer(_ context.Context, id string) (proration.Offer, error) {
	e, err := s.lookup(id)
	if err != nil {
		return proration.Offer{}, err
	}
	snap := e.snapshot()
	if snap.Subscription == nil {
		return proration.Offer{}, pkgerrors.IllegalTransition(flow.OpRequestUpgrade, string(snap.Screen), "no subscription is held")
	}
	offer, err := s.proration.Offer(*snap.Subscription, s.clock.Now())
	if err != nil {
		return proration.Offer{}, err
	}
	if offer.Eligible {
		s.metrics.IncUpgradeQuote(snap.Subscription.Plan.ID)
	}
	return offer, nil
}

// RequestUpgrade prices the upgrade against the held subscription at this moment
// and moves the session to the payment screen.
func (s *service) RequestUpgrade(ctx context.Context, id string) (UpgradeRequest, error) {
	var quote proration.Quote
	view, err := s.mutate(ctx, id, flow.OpRequestUpgrade, func(st *flow.State) error {
		held, ok := st.Subscription()
		if !ok {
			return pkgerrors.IllegalTransition(flow.OpRequestUpgrade, string(st.Screen()), "no subscription is held")
		}
		target, err := s.proration.Target(held.Plan.ID)
		if err != nil {
			return err
		}
		quote = proration.Compute(held, target, s.clock.Now())
		if err := st.RequestUpgrade(target, quote.Amount); err != nil {
			return err
		}
		s.metrics.IncUpgradeQuote(held.Plan.ID)
		return nil
	})
	if err != nil {
		return UpgradeRequest{}, err
	}
	return UpgradeRequest{View: view, Quote: quote}, nil
}

func (s *service) mutate(ctx context.Context, id, operation string, fn func(*flow.State) error) (View, error) {
	e, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	unlock, err := s.locker.TryLock(ctx, id)
	if err != nil {
		return View{}, err
	}
	defer unlock()
	if err := s.hold(e); err != nil {
		return View{}, err
	}
	defer e.unpin()

	err = e.with(s.clock.Now(), fn)
	s.metrics.IncTransition(operation, err)
	if err != nil {
		s.logg.Debug(s.logg.WithField(ctx, "operation", operation), err.Error())
		return View{}, err
	}
	view := View{SessionID: id, Snapshot: e.snapshot()}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"operation": operation,
		"screen":    view.Snapshot.Screen.String(),
	}), "flow transition applied")
	return view, nil
}

// hold pins e for the rest of an operation. It fails when e was evicted or
// ended between lookup and locking.
func (s *service) hold(e *entry) error {
	e.pin(s.clock.Now())
	if current, ok := s.sessions.get(e.id); !ok || current != e {
		e.unpin()
		return pkgerrors.NotFound("session", e.id)
	}
	return nil
}

func (s *service) lookup(id string) (*entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.Validation(map[string]string{"session_id": "is required"})
	}
	e, ok := s.sessions.get(id)
	if !ok {
		return nil, pkgerrors.NotFound("session", id)
	}
	return e, nil
}

// activeSessions is exposed for tests.
func (s *service) activeSessions() int {
	return s.sessions.len()
}
