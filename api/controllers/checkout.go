package controllers

import (
	"net/http"

	"github.com/angelmondragon/outside-subscription/api/middleware"
	"github.com/angelmondragon/outside-subscription/api/responses"
	"github.com/angelmondragon/outside-subscription/api/validators"
	checkoutsvc "github.com/angelmondragon/outside-subscription/internal/checkout"
	"github.com/angelmondragon/outside-subscription/internal/session"
	"github.com/angelmondragon/outside-subscription/pkg/checkout"
	"github.com/angelmondragon/outside-subscription/pkg/enums"
	pkgerrors "github.com/angelmondragon/outside-subscription/pkg/errors"
	"github.com/angelmondragon/outside-subscription/pkg/logger"
)

// Card fields are checked by the checkout executor after formatting, so the
// request only validates the method here.
type checkoutRequest struct {
	Method         string                 `json:"method" validate:"required,oneof=card apple_pay google_pay"`
	Card           *cardRequest           `json:"card,omitempty"`
	BillingAddress *billingAddressRequest `json:"billing_address,omitempty"`
}

type cardRequest struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
}

type billingAddressRequest struct {
	Line1 string `json:"line1"`
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

func (p checkoutRequest) intent() checkoutsvc.PaymentIntent {
	intent := checkoutsvc.PaymentIntent{Method: enums.PaymentMethod(p.Method)}
	if p.Card != nil {
		intent.Card = checkout.CardFields{
			Name:   p.Card.Name,
			Number: p.Card.Number,
			Expiry: p.Card.Expiry,
			CVC:    p.Card.CVC,
		}
	}
	if p.BillingAddress != nil {
		intent.BillingAddress = checkout.AddressFields{
			Line1: p.BillingAddress.Line1,
			City:  p.BillingAddress.City,
			State: p.BillingAddress.State,
			Zip:   p.BillingAddress.Zip,
		}
	}
	return intent
}

// Checkout pays for the plan on the payment screen. The response arrives after
// the simulated processing delay.
func Checkout(svc session.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		intent := payload.intent()

		receipt, err := svc.Checkout(r.Context(), middleware.SessionIDFromContext(r.Context()), intent)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var lastFour string
		if intent.Method == enums.PaymentMethodCard {
			lastFour = checkout.LastFour(intent.Card.Number)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newReceiptResponse(receipt, lastFour))
	}
}
