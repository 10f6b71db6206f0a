package controllers

import (
	"net/http"

	"github.com/angelmondragon/outside-subscription/api/middleware"
	"github.com/angelmondragon/outside-subscription/api/responses"
	"github.com/angelmondragon/outside-subscription/internal/session"
	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
	"github.com/angelmondragon/outside-subscription/pkg/logger"
)

// UpgradeOffer returns the upgrade banner for the held subscription, quoted at request time.
func UpgradeOffer(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}
		offer, err := svc.UpgradeOffer(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOfferResponse(offer))
	}
}

func RequestUpgrade(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}
		req, err := svc.RequestUpgrade(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, upgradeRequestResponse{
			Session: newSessionResponse(req.View),
			Quote:   newQuoteResponse(req.Quote),
		})
	}
}
