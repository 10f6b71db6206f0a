package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/outside-subscription/api/middleware"
	"github.com/angelmondragon/outside-subscription/internal/catalog"
	checkoutsvc "github.com/angelmondragon/outside-subscription/internal/checkout"
	"github.com/angelmondragon/outside-subscription/internal/proration"
	"github.com/angelmondragon/outside-subscription/internal/session"
	"github.com/angelmondragon/outside-subscription/pkg/clock"
	"github.com/angelmondragon/outside-subscription/pkg/config"
	"github.com/angelmondragon/outside-subscription/pkg/logger"
)

var epoch = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

type amountBody struct {
	Display string `json:"display"`
}

type sessionBody struct {
	SessionID    string      `json:"session_id"`
	Screen       string      `json:"screen"`
	IsUpgrade    bool        `json:"is_upgrade"`
	AmountDue    *amountBody `json:"amount_due"`
	SelectedPlan *struct {
		ID string `json:"id"`
	} `json:"selected_plan"`
	Subscription *struct {
		ID            string `json:"id"`
		PaymentMethod string `json:"payment_method"`
		Plan          struct {
			ID string `json:"id"`
		} `json:"plan"`
	} `json:"subscription"`
}

type receiptBody struct {
	Session       sessionBody `json:"session"`
	AmountCharged amountBody  `json:"amount_charged"`
	Upgrade       bool        `json:"upgrade"`
	Credit        *amountBody `json:"credit"`
	CardLastFour  string      `json:"card_last_four"`
}

func newTestService(t *testing.T) session.Service {
	t.Helper()
	fake := clock.NewFake(epoch)
	exec, err := checkoutsvc.NewExecutor(checkoutsvc.ExecutorParams{
		Clock:  fake,
		Delays: checkoutsvc.Delays{Card: checkoutsvc.DefaultCardDelay, Wallet: checkoutsvc.DefaultWalletDelay},
		Logger: logger.Nop(),
	})
	require.NoError(t, err)
	engine, err := proration.NewEngine(catalog.Default())
	require.NoError(t, err)
	svc, err := session.NewService(session.ServiceParams{
		Plans:     catalog.Default(),
		Proration: engine,
		Checkout:  exec,
		Clock:     fake,
		Logger:    logger.Nop(),
	})
	require.NoError(t, err)
	return svc
}

func serve(t *testing.T, h http.HandlerFunc, method, target, sessionID, body string, params map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := req.Context()
	if sessionID != "" {
		ctx = middleware.WithSessionID(ctx, sessionID)
	}
	if len(params) > 0 {
		rc := chi.NewRouteContext()
		for k, v := range params {
			rc.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rc)
	}
	rec := httptest.NewRecorder()
	h(rec, req.WithContext(ctx))

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func TestListPlans(t *testing.T) {
	rec, env := serve(t, ListPlans(catalog.Default(), logger.Nop()), http.MethodGet, "/api/v1/plans", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var plans []struct {
		ID         string     `json:"id"`
		Price      amountBody `json:"price"`
		PriceLabel string     `json:"price_label"`
		Popular    bool       `json:"popular"`
	}
	decodeData(t, env, &plans)
	require.Len(t, plans, 3)
	require.Equal(t, catalog.PlanGaiaMonthly, plans[0].ID)
	require.Equal(t, "$11.99", plans[0].Price.Display)
	require.Equal(t, "$11.99/month", plans[0].PriceLabel)
	require.True(t, plans[2].Popular)
}

func TestGetPlan(t *testing.T) {
	h := GetPlan(catalog.Default(), logger.Nop())

	rec, env := serve(t, h, http.MethodGet, "/api/v1/plans/gaia-yearly", "", "", map[string]string{"planId": catalog.PlanGaiaYearly})
	require.Equal(t, http.StatusOK, rec.Code)
	var plan struct {
		Savings    string `json:"savings"`
		PriceLabel string `json:"price_label"`
	}
	decodeData(t, env, &plan)
	require.Equal(t, "$59.90/year", plan.PriceLabel)
	require.NotEmpty(t, plan.Savings)

	rec, env = serve(t, h, http.MethodGet, "/api/v1/plans/nope", "", "", map[string]string{"planId": "nope"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestCreateSessionEchoesID(t *testing.T) {
	rec, env := serve(t, CreateSession(newTestService(t), logger.Nop()), http.MethodPost, "/api/v1/sessions", "", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body sessionBody
	decodeData(t, env, &body)
	require.NotEmpty(t, body.SessionID)
	require.Equal(t, body.SessionID, rec.Header().Get(middleware.SessionIDHeader))
	require.Equal(t, "selecting", body.Screen)
	require.Nil(t, body.SelectedPlan)
}

func TestPurchaseAndUpgradeThroughHandlers(t *testing.T) {
	svc := newTestService(t)
	logg := logger.Nop()
	view, err := svc.Create(context.Background())
	require.NoError(t, err)
	id := view.SessionID

	rec, env := serve(t, SelectPlan(svc, logg), http.MethodPost, "/api/v1/session/plan", id, `{"plan_id":" gaia-monthly "}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var selected struct {
		Screen    string     `json:"screen"`
		AmountDue amountBody `json:"amount_due"`
	}
	decodeData(t, env, &selected)
	require.Equal(t, "paying", selected.Screen)
	require.Equal(t, "$11.99", selected.AmountDue.Display)

	card := `{"method":"card","card":{"name":"Ada Lovelace","number":"4242 4242 4242 4242","expiry":"12/30","cvc":"123"},` +
		`"billing_address":{"line1":"1 Main St","city":"Boulder","state":"CO","zip":"80302"}}`
	rec, env = serve(t, Checkout(svc, logg), http.MethodPost, "/api/v1/session/checkout", id, card, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var receipt receiptBody
	decodeData(t, env, &receipt)
	require.Equal(t, "managing", receipt.Session.Screen)
	require.Equal(t, "$11.99", receipt.AmountCharged.Display)
	require.Equal(t, "4242", receipt.CardLastFour)
	require.False(t, receipt.Upgrade)
	require.Nil(t, receipt.Credit)
	require.NotNil(t, receipt.Session.Subscription)
	require.Empty(t, receipt.Session.Subscription.PaymentMethod)

	rec, env = serve(t, UpgradeOffer(svc, logg), http.MethodGet, "/api/v1/session/upgrade", id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var offer struct {
		Eligible  bool   `json:"eligible"`
		Headline  string `json:"headline"`
		PriceCopy string `json:"price_copy"`
		Quote     struct {
			DaysRemaining int64      `json:"days_remaining"`
			Amount        amountBody `json:"amount"`
		} `json:"quote"`
	}
	decodeData(t, env, &offer)
	require.True(t, offer.Eligible)
	require.Equal(t, "Upgrade to Outside+ Annual", offer.Headline)
	require.Equal(t, "Switch to annual - $89.99/year", offer.PriceCopy)
	require.Equal(t, int64(30), offer.Quote.DaysRemaining)
	require.Equal(t, "$78.00", offer.Quote.Amount.Display)

	rec, env = serve(t, RequestUpgrade(svc, logg), http.MethodPost, "/api/v1/session/upgrade", id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var upgrade struct {
		Session sessionBody `json:"session"`
	}
	decodeData(t, env, &upgrade)
	require.Equal(t, "paying", upgrade.Session.Screen)
	require.True(t, upgrade.Session.IsUpgrade)

	rec, env = serve(t, Checkout(svc, logg), http.MethodPost, "/api/v1/session/checkout", id, `{"method":"apple_pay"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var upgraded receiptBody
	decodeData(t, env, &upgraded)
	require.True(t, upgraded.Upgrade)
	require.Equal(t, "$78.00", upgraded.AmountCharged.Display)
	require.NotNil(t, upgraded.Credit)
	require.Equal(t, "$0.00", upgraded.Credit.Display)
	require.Empty(t, upgraded.CardLastFour)
	require.Equal(t, catalog.PlanOutsidePlusYearly, upgraded.Session.Subscription.Plan.ID)
	require.Equal(t, "Apple Pay", upgraded.Session.Subscription.PaymentMethod)
}

func TestResolveScreenRedirects(t *testing.T) {
	svc := newTestService(t)
	view, err := svc.Create(context.Background())
	require.NoError(t, err)
	h := ResolveScreen(svc, logger.Nop())

	rec, env := serve(t, h, http.MethodGet, "/api/v1/session/screens/managing", view.SessionID, "", map[string]string{"screen": "managing"})
	require.Equal(t, http.StatusOK, rec.Code)
	var screen struct {
		Requested string `json:"requested"`
		Screen    string `json:"screen"`
		Redirect  bool   `json:"redirect"`
	}
	decodeData(t, env, &screen)
	require.Equal(t, "managing", screen.Requested)
	require.Equal(t, "selecting", screen.Screen)
	require.True(t, screen.Redirect)

	rec, env = serve(t, h, http.MethodGet, "/api/v1/session/screens/home", view.SessionID, "", map[string]string{"screen": "home"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestNavigateValidatesScreen(t *testing.T) {
	svc := newTestService(t)
	view, err := svc.Create(context.Background())
	require.NoError(t, err)
	h := Navigate(svc, logger.Nop())

	rec, env := serve(t, h, http.MethodPost, "/api/v1/session/navigate", view.SessionID, `{"screen":"home"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, env.Error.Details, "screen")

	rec, env = serve(t, h, http.MethodPost, "/api/v1/session/navigate", view.SessionID, `{"screen":"paying"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body sessionBody
	decodeData(t, env, &body)
	require.Equal(t, "selecting", body.Screen)
}

func TestCheckoutReportsCardFieldErrors(t *testing.T) {
	svc := newTestService(t)
	view, err := svc.Create(context.Background())
	require.NoError(t, err)
	_, err = svc.SelectPlan(context.Background(), view.SessionID, catalog.PlanGaiaYearly)
	require.NoError(t, err)

	rec, env := serve(t, Checkout(svc, logger.Nop()), http.MethodPost, "/api/v1/session/checkout", view.SessionID, `{"method":"card","card":{"name":"Ada"}}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	require.Contains(t, env.Error.Details, "card.number")
	require.Contains(t, env.Error.Details, "billing_address.zip")

	rec, env = serve(t, Checkout(svc, logger.Nop()), http.MethodPost, "/api/v1/session/checkout", view.SessionID, `{"method":"bitcoin"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, env.Error.Details, "method")

	got, err := svc.Get(context.Background(), view.SessionID)
	require.NoError(t, err)
	require.Equal(t, "paying", got.Snapshot.Screen.String())
}

func TestBackFromSelectingIsIllegal(t *testing.T) {
	svc := newTestService(t)
	view, err := svc.Create(context.Background())
	require.NoError(t, err)

	rec, env := serve(t, Back(svc, logger.Nop()), http.MethodPost, "/api/v1/session/back", view.SessionID, "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "ILLEGAL_TRANSITION", env.Error.Code)
}

func TestEndSession(t *testing.T) {
	svc := newTestService(t)
	view, err := svc.Create(context.Background())
	require.NoError(t, err)

	rec, _ := serve(t, EndSession(svc, logger.Nop()), http.MethodDelete, "/api/v1/session", view.SessionID, "", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, env := serve(t, GetSession(svc, logger.Nop()), http.MethodGet, "/api/v1/session", view.SessionID, "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestHandlersWithoutServiceReturnInternal(t *testing.T) {
	handlers := []http.HandlerFunc{
		CreateSession(nil, nil),
		GetSession(nil, nil),
		Checkout(nil, nil),
		UpgradeOffer(nil, nil),
		ListPlans(nil, nil),
	}
	for _, h := range handlers {
		rec, env := serve(t, h, http.MethodGet, "/", "sess", "", nil)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	}
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	rec, _ := serve(t, HealthReady(cfg, logger.Nop(), nil), http.MethodGet, "/health/ready", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "dev", rec.Header().Get(envHeader))

	rec, env := serve(t, HealthReady(cfg, logger.Nop(), stubPinger{err: errors.New("down")}), http.MethodGet, "/health/ready", "", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, "DEPENDENCY_ERROR", env.Error.Code)

	rec, _ = serve(t, HealthLive(cfg), http.MethodGet, "/health/live", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
