// Package korapay wraps the Korapay charge API with centralized auth,
// logging, signature verification, and error mapping.
package korapay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/config"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
)

const defaultAPIBase = "https://api.korapay.com/merchant/api/v1"

var (
	errSecretKeyRequired     = errors.New("korapay secret key is required")
	errWebhookSecretRequired = errors.New("korapay webhook secret is required")
	errLoggerRequired        = errors.New("korapay logger is required")
)

// ChargeStatus values reported by the gateway.
const (
	ChargeStatusSuccess    = "success"
	ChargeStatusFailed     = "failed"
	ChargeStatusProcessing = "processing"
)

// Client exposes the Korapay charge primitives the payments flows need.
type Client struct {
	httpClient    *http.Client
	secretKey     string
	webhookSecret string
	apiBase       string
	checkoutBase  string
	logger        *logger.Logger
}

// Customer identifies the payer on a charge.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChargeParams describes a charge initialization request.
type ChargeParams struct {
	Reference   string            `json:"reference"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Narration   string            `json:"narration,omitempty"`
	RedirectURL string            `json:"redirect_url,omitempty"`
	Customer    Customer          `json:"customer"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Charge is the gateway's view of a payment.
type Charge struct {
	Reference        string `json:"reference"`
	PaymentReference string `json:"payment_reference"`
	CheckoutURL      string `json:"checkout_url"`
	Status           string `json:"status"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewClient initializes the Korapay wrapper and validates the credentials.
func NewClient(cfg config.KorapayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	secretKey := strings.TrimSpace(cfg.SecretKey)
	if secretKey == "" {
		return nil, errSecretKeyRequired
	}
	webhookSecret := strings.TrimSpace(cfg.WebhookSecret)
	if webhookSecret == "" {
		return nil, errWebhookSecretRequired
	}

	return &Client{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		apiBase:       defaultAPIBase,
		checkoutBase:  strings.TrimRight(cfg.CheckoutBase, "/"),
		logger:        logg,
	}, nil
}

// InitializeCharge registers a charge with the gateway and returns the hosted
// checkout details.
func (c *Client) InitializeCharge(ctx context.Context, params ChargeParams) (*Charge, error) {
	if strings.TrimSpace(params.Reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge reference is required")
	}
	if params.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge amount must be positive")
	}

	c.log(ctx, "request", "initialize_charge", map[string]any{
		"reference": params.Reference,
		"amount":    params.Amount,
		"currency":  params.Currency,
	})

	charge, err := c.do(ctx, http.MethodPost, "/charges/initialize", params)
	if err != nil {
		c.log(ctx, "error", "initialize_charge", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "initialize_charge", map[string]any{
		"reference": charge.Reference,
		"status":    charge.Status,
	})
	return charge, nil
}

// GetCharge queries the gateway for the current state of a charge.
func (c *Client) GetCharge(ctx context.Context, reference string) (*Charge, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "charge reference is required")
	}

	c.log(ctx, "request", "get_charge", map[string]any{"reference": reference})

	charge, err := c.do(ctx, http.MethodGet, "/charges/"+reference, nil)
	if err != nil {
		c.log(ctx, "error", "get_charge", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "get_charge", map[string]any{
		"reference": charge.Reference,
		"status":    charge.Status,
	})
	return charge, nil
}

// CheckoutURL builds the hosted checkout link for the given reference.
func (c *Client) CheckoutURL(reference string) string {
	return fmt.Sprintf("%s/%s", c.checkoutBase, reference)
}

// SigningSecret returns the webhook secret used for signature checks.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.webhookSecret
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*Charge, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode korapay request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiBase+path, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build korapay request")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "korapay request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read korapay response")
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode korapay response")
	}

	if resp.StatusCode >= http.StatusBadRequest || !envelope.Status {
		message := envelope.Message
		if message == "" {
			message = fmt.Sprintf("korapay returned status %d", resp.StatusCode)
		}
		return nil, pkgerrors.New(domainCodeForStatus(resp.StatusCode), message)
	}

	var charge Charge
	if err := json.Unmarshal(envelope.Data, &charge); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode korapay charge")
	}
	return &charge, nil
}

func domainCodeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized:
		return pkgerrors.CodeUnauthorized
	case http.StatusForbidden:
		return pkgerrors.CodeForbidden
	case http.StatusNotFound:
		return pkgerrors.CodeTransactionNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		return pkgerrors.CodeDependency
	}
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("korapay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("korapay %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "key", "email", "phone", "authorization"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
