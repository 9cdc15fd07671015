package inspections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/config"
	dbpkg "github.com/muhammed1675/LAUTECH-Rentals/pkg/db"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/korapay"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/metrics"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/outbox"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/reference"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/visibility"
)

const referenceRetries = 3

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type chargeInitiator interface {
	InitializeCharge(ctx context.Context, params korapay.ChargeParams) (*korapay.Charge, error)
}

type propertyLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// BookInput captures a seeker's inspection request.
type BookInput struct {
	UserID         uuid.UUID
	Role           enums.Role
	PropertyID     uuid.UUID
	InspectionDate time.Time
	Email          string
	FullName       string
}

// BookResult carries the booking and the gateway redirect.
type BookResult struct {
	Inspection  *models.Inspection            `json:"inspection"`
	Transaction *models.InspectionTransaction `json:"transaction"`
	CheckoutURL string                        `json:"checkout_url"`
}

// Service drives the inspection lifecycle: booked pending, assigned when the
// fee settles, completed by the assigned agent.
type Service interface {
	Book(ctx context.Context, input BookInput) (*BookResult, error)
	MarkCompleted(ctx context.Context, agentID, inspectionID uuid.UUID) (*models.Inspection, error)
	Reassign(ctx context.Context, inspectionID, agentID uuid.UUID) error
	AgentContact(ctx context.Context, userID, inspectionID uuid.UUID) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inspection, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Inspection, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Inspection, error)
	ListAll(ctx context.Context, params pagination.Params) ([]models.Inspection, error)
	ListTransactions(ctx context.Context, params pagination.Params) ([]models.InspectionTransaction, error)
}

type service struct {
	tx         txRunner
	repo       Repository
	gateway    chargeInitiator
	properties propertyLoader
	users      userLoader
	outbox     outboxPublisher
	pricing    config.PricingConfig
	now        func() time.Time
}

// NewService builds the inspections service.
func NewService(
	tx txRunner,
	repo Repository,
	gateway chargeInitiator,
	properties propertyLoader,
	users userLoader,
	publisher outboxPublisher,
	pricing config.PricingConfig,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inspections repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if properties == nil {
		return nil, fmt.Errorf("property loader required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if pricing.InspectionFee <= 0 {
		return nil, fmt.Errorf("inspection fee must be positive")
	}
	return &service{
		tx:         tx,
		repo:       repo,
		gateway:    gateway,
		properties: properties,
		users:      users,
		outbox:     publisher,
		pricing:    pricing,
		now:        time.Now,
	}, nil
}

// Book creates the inspection and its fee transaction together, then hands
// the charge to the gateway. The booking stays pending/pending until the
// reconciler sees the fee settle.
func (s *service) Book(ctx context.Context, input BookInput) (*BookResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.PropertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	if input.InspectionDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inspection date required")
	}
	if input.InspectionDate.Before(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inspection date must be in the future")
	}
	if input.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}

	property, err := s.properties.FindByID(ctx, input.PropertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodePropertyUnavailable, "property not found")
		}
		return nil, err
	}
	agent, err := s.users.FindByID(ctx, property.AgentID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err := visibility.EnsurePropertyVisible(visibility.PropertyVisibilityInput{
		Property:       property,
		AgentSuspended: agent != nil && agent.Suspended,
		ViewerID:       input.UserID,
		Role:           input.Role,
	}); err != nil {
		return nil, err
	}
	if property.AgentID == input.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agents cannot book inspections on their own listings")
	}

	result := &BookResult{}
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var lastErr error
		for attempt := 0; attempt < referenceRetries; attempt++ {
			ref, err := reference.New(reference.PrefixInspection, s.now())
			if err != nil {
				return err
			}
			inspection := &models.Inspection{
				ID:               uuid.New(),
				UserID:           input.UserID,
				PropertyID:       input.PropertyID,
				AgentID:          property.AgentID,
				InspectionDate:   input.InspectionDate,
				PaymentReference: ref,
			}
			txn := &models.InspectionTransaction{
				ID:           uuid.New(),
				InspectionID: inspection.ID,
				UserID:       input.UserID,
				Reference:    ref,
				Amount:       s.pricing.InspectionFee,
			}
			if err := repo.CreateTransaction(ctx, txn); err != nil {
				if dbpkg.IsUniqueViolation(err, "ux_inspection_transactions_reference") {
					lastErr = err
					continue
				}
				return err
			}
			if err := repo.Create(ctx, inspection); err != nil {
				return err
			}
			result.Inspection = inspection
			result.Transaction = txn
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, lastErr, "could not allocate a unique payment reference")
	})
	if txErr != nil {
		return nil, txErr
	}

	charge, err := s.gateway.InitializeCharge(ctx, korapay.ChargeParams{
		Reference: result.Transaction.Reference,
		Amount:    int64(s.pricing.InspectionFee),
		Currency:  s.pricing.Currency,
		Narration: "property inspection fee",
		Customer:  korapay.Customer{Name: input.FullName, Email: input.Email},
		Metadata:  map[string]string{"kind": "inspection_fee"},
	})
	if err != nil {
		return nil, err
	}
	result.CheckoutURL = charge.CheckoutURL

	metrics.InspectionsBookedTotal.Inc()
	return result, nil
}

// MarkCompleted is the agent's closing move. The conditional update enforces
// the assigned agent, the assigned status, and the settled fee in one shot.
func (s *service) MarkCompleted(ctx context.Context, agentID, inspectionID uuid.UUID) (*models.Inspection, error) {
	if agentID == uuid.Nil || inspectionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id and inspection id required")
	}

	inspection, err := s.repo.FindByID(ctx, inspectionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inspection not found")
		}
		return nil, err
	}
	if inspection.AgentID != agentID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the assigned agent can complete an inspection")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).MarkCompleted(ctx, inspectionID, agentID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "inspection is not assigned with a settled payment")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInspectionMarkedCompleted,
			AggregateType: enums.AggregateInspection,
			AggregateID:   inspectionID,
			Actor:         &outbox.ActorRef{UserID: agentID, Role: string(enums.RoleAgent)},
			Data: map[string]any{
				"inspection_id": inspectionID.String(),
				"property_id":   inspection.PropertyID.String(),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	inspection.Status = enums.InspectionStatusCompleted
	return inspection, nil
}

// Reassign moves an open inspection to another verified agent.
func (s *service) Reassign(ctx context.Context, inspectionID, agentID uuid.UUID) error {
	if inspectionID == uuid.Nil || agentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "inspection id and agent id required")
	}
	agent, err := s.users.FindByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return err
	}
	if agent.Role != enums.RoleAgent || agent.Suspended {
		return pkgerrors.New(pkgerrors.CodeValidation, "target user is not an active agent")
	}
	rows, err := s.repo.Reassign(ctx, inspectionID, agentID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "inspection is completed or does not exist")
	}
	return nil
}

// AgentContact reveals the assigned agent to the booking seeker once the fee
// has settled.
func (s *service) AgentContact(ctx context.Context, userID, inspectionID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil || inspectionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and inspection id required")
	}
	inspection, err := s.FindByID(ctx, inspectionID)
	if err != nil {
		return nil, err
	}
	if inspection.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "inspection belongs to another user")
	}
	if inspection.PaymentStatus != enums.PaymentStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "inspection fee not settled")
	}
	agent, err := s.users.FindByID(ctx, inspection.AgentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return nil, err
	}
	return agent, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.Inspection, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inspection id required")
	}
	inspection, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inspection not found")
		}
		return nil, err
	}
	return inspection, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Inspection, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListByUser(ctx, userID, params)
}

func (s *service) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Inspection, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	return s.repo.ListByAgent(ctx, agentID, params)
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) ([]models.Inspection, error) {
	return s.repo.ListAll(ctx, params)
}

func (s *service) ListTransactions(ctx context.Context, params pagination.Params) ([]models.InspectionTransaction, error) {
	return s.repo.ListTransactions(ctx, params)
}
