package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/outside-subscription/api/responses"
	"github.com/angelmondragon/outside-subscription/pkg/config"
	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
	"github.com/angelmondragon/outside-subscription/pkg/logger"
	"github.com/angelmondragon/outside-subscription/pkg/redis"
)

const (
	envHeader    = "X-Outside-Env"
	readyTimeout = 2 * time.Second
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings Redis when one is wired. A nil pinger means sessions run in-process only.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisPinger redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if redisPinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
			defer cancel()
			if err := redisPinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable").
					WithDetails(map[string]string{"dependency": "redis"}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
