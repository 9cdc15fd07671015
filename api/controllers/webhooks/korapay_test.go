package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	paymentsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/payments"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/korapay"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
)

const testSecret = "webhook-test-secret"

type staticSecret string

func (s staticSecret) SigningSecret() string {
	return string(s)
}

type stubReconciler struct {
	outcome *paymentsvc.Outcome
	err     error
	inputs  []paymentsvc.ReconcileInput
}

func (s *stubReconciler) Reconcile(ctx context.Context, input paymentsvc.ReconcileInput) (*paymentsvc.Outcome, error) {
	panic("unimplemented")
}

func (s *stubReconciler) VerifyPayment(ctx context.Context, ref string) (*paymentsvc.Outcome, error) {
	panic("unimplemented")
}

func (s *stubReconciler) SimulatePayment(ctx context.Context, ref string, succeed bool) (*paymentsvc.Outcome, error) {
	panic("unimplemented")
}

func (s *stubReconciler) ProcessWebhook(ctx context.Context, input paymentsvc.ReconcileInput) (*paymentsvc.Outcome, error) {
	s.inputs = append(s.inputs, input)
	return s.outcome, s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "webhook-test", Output: io.Discard})
}

func postEvent(handler http.HandlerFunc, body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/korapay", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}
	resp := httptest.NewRecorder()
	handler(resp, req)
	return resp
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	svc := &stubReconciler{}
	handler := KorapayWebhook(svc, staticSecret(testSecret), testLogger())

	resp := postEvent(handler, `{"event":"charge.success","data":{"reference":"TOKEN-1","status":"success"}}`, "")
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if len(svc.inputs) != 0 {
		t.Fatal("reconciler must not run for unsigned events")
	}
}

func TestWebhookRejectsTamperedBody(t *testing.T) {
	svc := &stubReconciler{}
	handler := KorapayWebhook(svc, staticSecret(testSecret), testLogger())

	signed := `{"event":"charge.success","data":{"reference":"TOKEN-1","status":"success"}}`
	tampered := `{"event":"charge.success","data":{"reference":"TOKEN-2","status":"success"}}`
	resp := postEvent(handler, tampered, korapay.SignPayload(testSecret, []byte(signed)))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestWebhookReconcilesSignedEvent(t *testing.T) {
	svc := &stubReconciler{outcome: &paymentsvc.Outcome{Reference: "TOKEN-1"}}
	handler := KorapayWebhook(svc, staticSecret(testSecret), testLogger())

	body := `{"event":"charge.failed","data":{"reference":"TOKEN-1","payment_reference":"kpy-9","status":"failed"}}`
	resp := postEvent(handler, body, korapay.SignPayload(testSecret, []byte(body)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.inputs) != 1 {
		t.Fatalf("expected one reconcile call got %d", len(svc.inputs))
	}
	input := svc.inputs[0]
	if input.Reference != "TOKEN-1" || input.ChargeStatus != "failed" {
		t.Fatalf("unexpected input %+v", input)
	}
	if input.GatewayReference == nil || *input.GatewayReference != "kpy-9" {
		t.Fatalf("expected gateway reference, got %+v", input.GatewayReference)
	}
}

func TestWebhookAcknowledgesUnknownReference(t *testing.T) {
	svc := &stubReconciler{err: pkgerrors.New(pkgerrors.CodeTransactionNotFound, "no transaction for reference")}
	handler := KorapayWebhook(svc, staticSecret(testSecret), testLogger())

	body := `{"event":"charge.success","data":{"reference":"TOKEN-MISSING","status":"success"}}`
	resp := postEvent(handler, body, korapay.SignPayload(testSecret, []byte(body)))
	if resp.Code != http.StatusOK {
		t.Fatalf("unmatched events must be acknowledged, got %d", resp.Code)
	}

	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data["status"] != "ignored" {
		t.Fatalf("expected ignored status got %q", envelope.Data["status"])
	}
}

func TestWebhookSurfacesReconcilerFailure(t *testing.T) {
	svc := &stubReconciler{err: pkgerrors.New(pkgerrors.CodeDependency, "gateway lookup failed")}
	handler := KorapayWebhook(svc, staticSecret(testSecret), testLogger())

	body := `{"event":"charge.success","data":{"reference":"TOKEN-1","status":"success"}}`
	resp := postEvent(handler, body, korapay.SignPayload(testSecret, []byte(body)))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
