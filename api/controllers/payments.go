package controllers

import (
	"net/http"
	"strings"

	"github.com/muhammed1675/LAUTECH-Rentals/api/responses"
	"github.com/muhammed1675/LAUTECH-Rentals/api/validators"
	paymentsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/payments"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
)

// PaymentVerify polls the gateway for a reference and reconciles the result.
// Clients call this when the checkout redirect lands before the webhook does.
func PaymentVerify(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := strings.TrimSpace(r.URL.Query().Get("reference"))
		if ref == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "reference query parameter required"))
			return
		}

		outcome, err := svc.VerifyPayment(r.Context(), ref)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, outcome)
	}
}

type simulatePaymentRequest struct {
	Reference string `json:"reference" validate:"required"`
	Succeed   bool   `json:"succeed"`
}

// PaymentSimulate settles a reference without the gateway. Only honored when
// the simulation flag is enabled, which production never sets.
func PaymentSimulate(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload simulatePaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.SimulatePayment(r.Context(), payload.Reference, payload.Succeed)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, outcome)
	}
}
