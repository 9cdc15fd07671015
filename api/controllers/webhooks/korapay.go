package webhooks

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/muhammed1675/LAUTECH-Rentals/api/responses"
	paymentsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/payments"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/korapay"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/metrics"
)

const signatureHeader = "x-korapay-signature"

type korapayEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference        string `json:"reference"`
		PaymentReference string `json:"payment_reference"`
		Status           string `json:"status"`
	} `json:"data"`
}

type webhookSecretSource interface {
	SigningSecret() string
}

// KorapayWebhook receives charge lifecycle events from the gateway. The
// handler verifies the HMAC signature before touching any state, then hands
// the reference to the reconciler.
func KorapayWebhook(svc paymentsvc.Service, secrets webhookSecretSource, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}
		if secrets == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gateway client unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		signature := r.Header.Get(signatureHeader)
		if !korapay.VerifySignature(secrets.SigningSecret(), payload, signature) {
			metrics.WebhookEventsTotal.WithLabelValues("unknown", "rejected").Inc()
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook signature"))
			return
		}

		var event korapayEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode event"))
			return
		}

		eventName := strings.TrimSpace(event.Event)
		var gatewayRef *string
		if event.Data.PaymentReference != "" {
			gatewayRef = &event.Data.PaymentReference
		}

		outcome, err := svc.ProcessWebhook(ctx, paymentsvc.ReconcileInput{
			Reference:        event.Data.Reference,
			ChargeStatus:     event.Data.Status,
			GatewayReference: gatewayRef,
		})
		if err != nil {
			// An unknown reference is acknowledged so the gateway stops
			// retrying an event we can never match.
			if pkgerrors.HasCode(err, pkgerrors.CodeTransactionNotFound) {
				metrics.WebhookEventsTotal.WithLabelValues(eventName, "unmatched").Inc()
				responses.WriteSuccess(w, map[string]string{"status": "ignored"})
				return
			}
			metrics.WebhookEventsTotal.WithLabelValues(eventName, "error").Inc()
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result := "processed"
		if outcome.Replayed {
			result = "replayed"
		}
		metrics.WebhookEventsTotal.WithLabelValues(eventName, result).Inc()

		responses.WriteSuccess(w, outcome)
	}
}
