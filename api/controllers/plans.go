package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/outside-subscription/api/responses"
	"github.com/angelmondragon/outside-subscription/api/validators"
	"github.com/angelmondragon/outside-subscription/internal/catalog"
	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
	"github.com/angelmondragon/outside-subscription/pkg/logger"
)

const maxPlanIDLength = 64

// PlanCatalog is the read side of the plan catalog.
type PlanCatalog interface {
	List() []catalog.Plan
	Get(id string) (catalog.Plan, error)
}

func ListPlans(plans PlanCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if plans == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan catalog unavailable"))
			return
		}
		responses.WriteSuccess(w, newPlanList(plans.List()))
	}
}

func GetPlan(plans PlanCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if plans == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan catalog unavailable"))
			return
		}
		planID := validators.SanitizeString(chi.URLParam(r, "planId"), maxPlanIDLength)
		if planID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Validation(map[string]string{"plan_id": "is required"}))
			return
		}
		plan, err := plans.Get(planID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPlanResponse(plan))
	}
}
