package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/outside-subscription/api/middleware"
	"github.com/angelmondragon/outside-subscription/api/responses"
	"github.com/angelmondragon/outside-subscription/api/validators"
	"github.com/angelmondragon/outside-subscription/internal/session"
	"github.com/angelmondragon/outside-subscription/pkg/enums"
	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
	"github.com/angelmondragon/outside-subscription/pkg/logger"
)

type selectPlanRequest struct {
	PlanID string `json:"plan_id" validate:"required,max=64"`
}

type navigateRequest struct {
	Screen string `json:"screen" validate:"required,oneof=selecting paying managing"`
}

// CreateSession starts a flow on the plan selection screen. The id is echoed in
// X-Session-Id so clients can send it back on every /session call.
func CreateSession(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}
		view, err := svc.Create(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.Header().Set(middleware.SessionIDHeader, view.SessionID)
		responses.WriteSuccessStatus(w, http.StatusCreated, newSessionResponse(view))
	}
}

func GetSession(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}
		view, err := svc.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(view))
	}
}

func EndSession(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}
		if err := svc.End(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ResolveScreen reports which screen a request for {screen} lands on without
// changing the session.
func ResolveScreen(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}
		requested, err := enums.ParseScreen(validators.SanitizeString(chi.URLParam(r, "screen"), 0))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Validation(map[string]string{"screen": err.Error()}))
			return
		}
		resolved, err := svc.Resolve(r.Context(), middleware.SessionIDFromContext(r.Context()), requested)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newScreenResponse(requested, resolved))
	}
}

func Navigate(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}
		var payload navigateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Navigate(r.Context(), middleware.SessionIDFromContext(r.Context()), enums.Screen(payload.Screen))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(view))
	}
}

func SelectPlan(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}
		var payload selectPlanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		planID := validators.SanitizeString(payload.PlanID, maxPlanIDLength)
		view, err := svc.SelectPlan(r.Context(), middleware.SessionIDFromContext(r.Context()), planID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(view))
	}
}

func Back(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}
		view, err := svc.Back(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSessionResponse(view))
	}
}
