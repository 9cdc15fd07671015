package purchases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/config"
	dbpkg "github.com/muhammed1675/LAUTECH-Rentals/pkg/db"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/korapay"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/metrics"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/reference"
)

// referenceRetries bounds how often we regenerate on a reference collision.
const referenceRetries = 3

type chargeInitiator interface {
	InitializeCharge(ctx context.Context, params korapay.ChargeParams) (*korapay.Charge, error)
}

// InitiateInput captures a token purchase request.
type InitiateInput struct {
	UserID   uuid.UUID
	Quantity int
	Email    string
	FullName string
}

// InitiateResult is handed back to the caller for the gateway redirect.
type InitiateResult struct {
	Transaction *models.TokenTransaction `json:"transaction"`
	CheckoutURL string                   `json:"checkout_url"`
}

// Service creates pending token purchases and hands them to the gateway.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error)
	FindByReference(ctx context.Context, ref string) (*models.TokenTransaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.TokenTransaction, error)
	ListAll(ctx context.Context, params pagination.Params) ([]models.TokenTransaction, error)
}

type service struct {
	repo    Repository
	gateway chargeInitiator
	pricing config.PricingConfig
	now     func() time.Time
}

// NewService builds the purchase initiator.
func NewService(repo Repository, gateway chargeInitiator, pricing config.PricingConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if pricing.TokenUnitPrice <= 0 {
		return nil, fmt.Errorf("token unit price must be positive")
	}
	return &service{repo: repo, gateway: gateway, pricing: pricing, now: time.Now}, nil
}

// Initiate creates a pending TokenTransaction with a fresh reference and
// registers the charge with the gateway. No wallet mutation happens here;
// tokens land only when the reconciler sees the gateway outcome.
func (s *service) Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	amount := input.Quantity * s.pricing.TokenUnitPrice

	txn, err := s.createWithFreshReference(ctx, input, amount)
	if err != nil {
		return nil, err
	}

	charge, err := s.gateway.InitializeCharge(ctx, korapay.ChargeParams{
		Reference: txn.Reference,
		Amount:    int64(amount),
		Currency:  s.pricing.Currency,
		Narration: fmt.Sprintf("%d rental token(s)", input.Quantity),
		Customer:  korapay.Customer{Name: input.FullName, Email: input.Email},
		Metadata:  map[string]string{"kind": "token_purchase"},
	})
	if err != nil {
		return nil, err
	}

	metrics.TokenPurchasesTotal.WithLabelValues("initiated").Inc()
	return &InitiateResult{Transaction: txn, CheckoutURL: charge.CheckoutURL}, nil
}

func (s *service) createWithFreshReference(ctx context.Context, input InitiateInput, amount int) (*models.TokenTransaction, error) {
	var lastErr error
	for attempt := 0; attempt < referenceRetries; attempt++ {
		ref, err := reference.New(reference.PrefixToken, s.now())
		if err != nil {
			return nil, err
		}
		txn := &models.TokenTransaction{
			ID:          uuid.New(),
			UserID:      input.UserID,
			Reference:   ref,
			TokensAdded: input.Quantity,
			Amount:      amount,
		}
		if err := s.repo.Create(ctx, txn); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_token_transactions_reference") {
				lastErr = err
				continue
			}
			return nil, err
		}
		return txn, nil
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "could not allocate a unique payment reference")
}

func (s *service) FindByReference(ctx context.Context, ref string) (*models.TokenTransaction, error) {
	if !reference.IsValid(ref) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "malformed reference")
	}
	return s.repo.FindByReference(ctx, ref)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.TokenTransaction, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListByUser(ctx, userID, params)
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) ([]models.TokenTransaction, error) {
	return s.repo.ListAll(ctx, params)
}
