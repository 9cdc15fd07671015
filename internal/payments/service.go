package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/internal/inspections"
	"github.com/muhammed1675/LAUTECH-Rentals/internal/purchases"
	"github.com/muhammed1675/LAUTECH-Rentals/internal/wallets"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/config"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/korapay"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/metrics"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/outbox"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/redis"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/reference"
)

// Kind labels which ledger a reference belongs to.
type Kind string

const (
	KindToken      Kind = "token"
	KindInspection Kind = "inspection"
)

const webhookDedupeTTL = 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type chargeFetcher interface {
	GetCharge(ctx context.Context, reference string) (*korapay.Charge, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ReconcileInput is one gateway-reported settlement, from a webhook, a
// verify poll, or the dev simulator.
type ReconcileInput struct {
	Reference        string
	ChargeStatus     string
	GatewayReference *string
}

// Outcome reports what reconciliation did for a reference. Replayed means
// the reference was already in a terminal state and nothing changed.
type Outcome struct {
	Reference string                  `json:"reference"`
	Kind      Kind                    `json:"kind"`
	Status    enums.TransactionStatus `json:"status"`
	Replayed  bool                    `json:"replayed"`
}

// Service reconciles gateway charge results against the payment ledgers.
// Every mutation happens inside one database transaction per reference, and
// the pending->terminal flip is the only writer, so redelivered events
// settle into no-ops.
type Service interface {
	Reconcile(ctx context.Context, input ReconcileInput) (*Outcome, error)
	VerifyPayment(ctx context.Context, ref string) (*Outcome, error)
	SimulatePayment(ctx context.Context, ref string, succeed bool) (*Outcome, error)
	ProcessWebhook(ctx context.Context, input ReconcileInput) (*Outcome, error)
}

type service struct {
	tx          txRunner
	tokens      purchases.Repository
	inspections inspections.Repository
	wallets     wallets.Service
	gateway     chargeFetcher
	outbox      outboxPublisher
	dedupe      redis.IdempotencyStore
	flags       config.FeatureFlagsConfig
	logg        *logger.Logger
}

// NewService builds the reconciler.
func NewService(
	tx txRunner,
	tokens purchases.Repository,
	inspectionsRepo inspections.Repository,
	walletSvc wallets.Service,
	gateway chargeFetcher,
	publisher outboxPublisher,
	dedupe redis.IdempotencyStore,
	flags config.FeatureFlagsConfig,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token transactions repository required")
	}
	if inspectionsRepo == nil {
		return nil, fmt.Errorf("inspections repository required")
	}
	if walletSvc == nil {
		return nil, fmt.Errorf("wallet service required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:          tx,
		tokens:      tokens,
		inspections: inspectionsRepo,
		wallets:     walletSvc,
		gateway:     gateway,
		outbox:      publisher,
		dedupe:      dedupe,
		flags:       flags,
		logg:        logg,
	}, nil
}

// Reconcile routes a charge result to the matching ledger by reference
// prefix. Unknown references are an error: a reference we never issued
// cannot be retried into existence.
func (s *service) Reconcile(ctx context.Context, input ReconcileInput) (*Outcome, error) {
	if !reference.IsValid(input.Reference) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "malformed payment reference")
	}

	var kind Kind
	switch reference.Prefix(input.Reference) {
	case reference.PrefixToken:
		kind = KindToken
	case reference.PrefixInspection:
		kind = KindInspection
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unrecognized reference prefix")
	}

	switch input.ChargeStatus {
	case korapay.ChargeStatusSuccess:
		return s.settle(ctx, kind, input)
	case korapay.ChargeStatusFailed:
		return s.fail(ctx, kind, input)
	default:
		// Processing and other intermediate statuses leave the ledger alone.
		return s.currentOutcome(ctx, kind, input.Reference)
	}
}

func (s *service) settle(ctx context.Context, kind Kind, input ReconcileInput) (*Outcome, error) {
	outcome := &Outcome{Reference: input.Reference, Kind: kind, Status: enums.TransactionStatusCompleted}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		switch kind {
		case KindToken:
			return s.settleToken(ctx, tx, input, outcome)
		default:
			return s.settleInspection(ctx, tx, input, outcome)
		}
	})
	if err != nil {
		return nil, err
	}
	if !outcome.Replayed {
		metrics.PaymentsReconciledTotal.WithLabelValues(string(kind)).Inc()
	}
	return outcome, nil
}

func (s *service) settleToken(ctx context.Context, tx *gorm.DB, input ReconcileInput, outcome *Outcome) error {
	repo := s.tokens.WithTx(tx)
	rows, err := repo.MarkCompleted(ctx, input.Reference, input.GatewayReference)
	if err != nil {
		return err
	}
	txn, err := repo.FindByReference(ctx, input.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeTransactionNotFound, "no transaction for reference")
		}
		return err
	}
	if rows == 0 {
		// Already terminal. Report the stored status untouched.
		outcome.Replayed = true
		outcome.Status = txn.Status
		return nil
	}

	if err := s.wallets.CreditTx(ctx, tx, txn.UserID, txn.TokensAdded); err != nil {
		return err
	}
	metrics.TokenPurchasesTotal.WithLabelValues("completed").Inc()
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"reference": input.Reference,
		"tokens":    txn.TokensAdded,
	})
	s.logg.Info(logCtx, "token purchase settled")
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventTokenPurchaseCompleted,
		AggregateType: enums.AggregateTransaction,
		AggregateID:   txn.ID,
		Data: map[string]any{
			"reference":    txn.Reference,
			"user_id":      txn.UserID.String(),
			"tokens_added": txn.TokensAdded,
			"amount":       txn.Amount,
		},
		Version: 1,
	})
}

func (s *service) settleInspection(ctx context.Context, tx *gorm.DB, input ReconcileInput, outcome *Outcome) error {
	repo := s.inspections.WithTx(tx)
	rows, err := repo.MarkTransactionCompleted(ctx, input.Reference, input.GatewayReference)
	if err != nil {
		return err
	}
	txn, err := repo.FindTransactionByReference(ctx, input.Reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeTransactionNotFound, "no transaction for reference")
		}
		return err
	}
	if rows == 0 {
		outcome.Replayed = true
		outcome.Status = txn.Status
		return nil
	}

	paidRows, err := repo.MarkPaid(ctx, txn.InspectionID)
	if err != nil {
		return err
	}
	if paidRows == 0 {
		// The transaction flipped but the booking was not pending/pending.
		// That can only happen if state was mutated outside this reconciler.
		return pkgerrors.New(pkgerrors.CodeStateConflict, "inspection not in a payable state")
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"reference":     input.Reference,
		"inspection_id": txn.InspectionID.String(),
	})
	s.logg.Info(logCtx, "inspection fee settled")
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventInspectionPaymentSettled,
		AggregateType: enums.AggregateInspection,
		AggregateID:   txn.InspectionID,
		Data: map[string]any{
			"reference":     txn.Reference,
			"user_id":       txn.UserID.String(),
			"inspection_id": txn.InspectionID.String(),
			"amount":        txn.Amount,
		},
		Version: 1,
	})
}

func (s *service) fail(ctx context.Context, kind Kind, input ReconcileInput) (*Outcome, error) {
	outcome := &Outcome{Reference: input.Reference, Kind: kind, Status: enums.TransactionStatusFailed}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var rows int64
		var txnID uuid.UUID
		switch kind {
		case KindToken:
			repo := s.tokens.WithTx(tx)
			flipped, err := repo.MarkFailed(ctx, input.Reference, input.GatewayReference)
			if err != nil {
				return err
			}
			rows = flipped
			if rows > 0 {
				txn, err := repo.FindByReference(ctx, input.Reference)
				if err != nil {
					return err
				}
				txnID = txn.ID
			}
		default:
			repo := s.inspections.WithTx(tx)
			flipped, err := repo.MarkTransactionFailed(ctx, input.Reference, input.GatewayReference)
			if err != nil {
				return err
			}
			rows = flipped
			if rows > 0 {
				txn, err := repo.FindTransactionByReference(ctx, input.Reference)
				if err != nil {
					return err
				}
				txnID = txn.ID
			}
		}
		if rows == 0 {
			current, err := s.lookupStatus(ctx, tx, kind, input.Reference)
			if err != nil {
				return err
			}
			outcome.Replayed = true
			outcome.Status = current
			return nil
		}
		if kind == KindToken {
			metrics.TokenPurchasesTotal.WithLabelValues("failed").Inc()
		}
		s.logg.Warn(s.logg.WithField(ctx, "reference", input.Reference), "payment failed at gateway")
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentFailed,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   txnID,
			Data: map[string]any{
				"reference": input.Reference,
				"kind":      string(kind),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *service) currentOutcome(ctx context.Context, kind Kind, ref string) (*Outcome, error) {
	status, err := s.lookupStatus(ctx, nil, kind, ref)
	if err != nil {
		return nil, err
	}
	return &Outcome{Reference: ref, Kind: kind, Status: status, Replayed: true}, nil
}

func (s *service) lookupStatus(ctx context.Context, tx *gorm.DB, kind Kind, ref string) (enums.TransactionStatus, error) {
	switch kind {
	case KindToken:
		repo := s.tokens
		if tx != nil {
			repo = repo.WithTx(tx)
		}
		txn, err := repo.FindByReference(ctx, ref)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", pkgerrors.New(pkgerrors.CodeTransactionNotFound, "no transaction for reference")
			}
			return "", err
		}
		return txn.Status, nil
	default:
		repo := s.inspections
		if tx != nil {
			repo = repo.WithTx(tx)
		}
		txn, err := repo.FindTransactionByReference(ctx, ref)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", pkgerrors.New(pkgerrors.CodeTransactionNotFound, "no transaction for reference")
			}
			return "", err
		}
		return txn.Status, nil
	}
}

// VerifyPayment asks the gateway for the charge's current state and folds
// the answer into the ledger. Useful when a webhook never arrived.
func (s *service) VerifyPayment(ctx context.Context, ref string) (*Outcome, error) {
	if !reference.IsValid(ref) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "malformed payment reference")
	}
	charge, err := s.gateway.GetCharge(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, ReconcileInput{
		Reference:        ref,
		ChargeStatus:     charge.Status,
		GatewayReference: nonEmpty(charge.PaymentReference),
	})
}

// SimulatePayment short-circuits the gateway in development environments.
func (s *service) SimulatePayment(ctx context.Context, ref string, succeed bool) (*Outcome, error) {
	if !s.flags.AllowSimulation {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment simulation is disabled")
	}
	status := korapay.ChargeStatusSuccess
	if !succeed {
		status = korapay.ChargeStatusFailed
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{"reference": ref, "status": status})
	s.logg.Info(logCtx, "simulating payment settlement")
	return s.Reconcile(ctx, ReconcileInput{Reference: ref, ChargeStatus: status})
}

// ProcessWebhook wraps Reconcile with a short-lived dedupe key so a burst of
// identical deliveries does one round of database work. Reconcile itself is
// idempotent, so losing the key only costs a harmless replay.
func (s *service) ProcessWebhook(ctx context.Context, input ReconcileInput) (*Outcome, error) {
	if s.dedupe == nil {
		return s.Reconcile(ctx, input)
	}
	key := s.dedupe.IdempotencyKey("webhook", input.Reference+":"+input.ChargeStatus)
	fresh, err := s.dedupe.SetNX(ctx, key, "1", webhookDedupeTTL)
	if err != nil {
		// Redis being down must not drop payments.
		s.logg.Warn(s.logg.WithField(ctx, "reference", input.Reference), "webhook dedupe unavailable, reconciling anyway")
		return s.Reconcile(ctx, input)
	}
	if !fresh {
		kind := KindToken
		if reference.Prefix(input.Reference) == reference.PrefixInspection {
			kind = KindInspection
		}
		return s.currentOutcome(ctx, kind, input.Reference)
	}
	outcome, err := s.Reconcile(ctx, input)
	if err != nil {
		// Release the key so the gateway's retry gets a clean run.
		if delErr := s.dedupe.Del(ctx, key); delErr != nil {
			s.logg.Warn(s.logg.WithField(ctx, "reference", input.Reference), "could not release webhook dedupe key")
		}
		return nil, err
	}
	return outcome, nil
}

func nonEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
