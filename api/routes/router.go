package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/outside-subscription/api/controllers"
	"github.com/angelmondragon/outside-subscription/api/middleware"
	"github.com/angelmondragon/outside-subscription/internal/session"
	"github.com/angelmondragon/outside-subscription/pkg/config"
	"github.com/angelmondragon/outside-subscription/pkg/logger"
	"github.com/angelmondragon/outside-subscription/pkg/redis"
)

type rateCounter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// NewRouter wires the HTTP surface. redisClient may be nil, in which case
// idempotency replay and session-create throttling are disabled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	plans controllers.PlanCatalog,
	sessions session.Service,
	redisClient *redis.Client,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	// Optional collaborators stay untyped nils when Redis is absent.
	var (
		pinger    redis.Pinger
		idemStore redis.IdempotencyStore
		limiter   rateCounter
	)
	if redisClient != nil {
		pinger = redisClient
		idemStore = redisClient
		limiter = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pinger))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/plans", func(r chi.Router) {
		r.Get("/", controllers.ListPlans(plans, logg))
		r.Get("/{planId}", controllers.GetPlan(plans, logg))
	})

	createPolicy := middleware.NewRateLimitPolicy("session_create", cfg.Session.CreateWindow, cfg.Session.CreateLimit)
	r.With(middleware.RateLimit(createPolicy, limiter, logg)).
		Post("/api/v1/sessions", controllers.CreateSession(sessions, logg))

	r.Route("/api/v1/session", func(r chi.Router) {
		r.Use(middleware.RequireSession(logg))

		r.Get("/", controllers.GetSession(sessions, logg))
		r.Delete("/", controllers.EndSession(sessions, logg))
		r.Get("/screens/{screen}", controllers.ResolveScreen(sessions, logg))
		r.Post("/navigate", controllers.Navigate(sessions, logg))
		r.Post("/plan", controllers.SelectPlan(sessions, logg))
		r.Post("/back", controllers.Back(sessions, logg))
		r.With(middleware.Idempotency(idemStore, logg)).Post("/checkout", controllers.Checkout(sessions, logg))
		r.Get("/upgrade", controllers.UpgradeOffer(sessions, logg))
		r.With(middleware.Idempotency(idemStore, logg)).Post("/upgrade", controllers.RequestUpgrade(sessions, logg))
	})

	return r
}
