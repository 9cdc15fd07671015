package properties

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/outbox"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/visibility"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type unlockChecker interface {
	HasUnlocked(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ListingInput is the agent-supplied listing content.
type ListingInput struct {
	Title        string
	Description  string
	Price        int
	Location     string
	PropertyType enums.PropertyType
	Images       []string
	ContactName  string
	ContactPhone string
}

// Service owns the listing lifecycle: agent submissions, re-review on edit,
// admin moderation, and visibility-gated reads.
type Service interface {
	Create(ctx context.Context, agentID uuid.UUID, input ListingInput) (*models.Property, error)
	Update(ctx context.Context, agentID, propertyID uuid.UUID, input ListingInput) (*models.Property, error)
	Delete(ctx context.Context, adminID, propertyID uuid.UUID) error
	Approve(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error)
	Reject(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error)
	Browse(ctx context.Context, filter BrowseFilter, params pagination.Params) ([]models.Property, error)
	GetForViewer(ctx context.Context, viewerID uuid.UUID, role enums.Role, propertyID uuid.UUID) (*ListingDTO, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Property, error)
	ListByStatus(ctx context.Context, status enums.PropertyStatus, params pagination.Params) ([]models.Property, error)
	ListAll(ctx context.Context, params pagination.Params) ([]models.Property, error)
}

type service struct {
	tx      txRunner
	repo    Repository
	users   userLoader
	unlocks unlockChecker
	outbox  outboxPublisher
}

// NewService builds the properties service.
func NewService(tx txRunner, repo Repository, users userLoader, unlocks unlockChecker, publisher outboxPublisher) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("properties repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if unlocks == nil {
		return nil, fmt.Errorf("unlock checker required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{tx: tx, repo: repo, users: users, unlocks: unlocks, outbox: publisher}, nil
}

func validateListing(input ListingInput) error {
	switch {
	case input.Title == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "title required")
	case input.Price <= 0:
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	case input.Location == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "location required")
	case !input.PropertyType.IsValid():
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown property type")
	case input.ContactName == "" || input.ContactPhone == "":
		return pkgerrors.New(pkgerrors.CodeValidation, "contact name and phone required")
	}
	return nil
}

// Create stores a new listing awaiting moderation.
func (s *service) Create(ctx context.Context, agentID uuid.UUID, input ListingInput) (*models.Property, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	if err := validateListing(input); err != nil {
		return nil, err
	}
	property := &models.Property{
		ID:           uuid.New(),
		Title:        input.Title,
		Description:  input.Description,
		Price:        input.Price,
		Location:     input.Location,
		PropertyType: input.PropertyType,
		Images:       input.Images,
		ContactName:  input.ContactName,
		ContactPhone: input.ContactPhone,
		AgentID:      agentID,
		Status:       enums.PropertyStatusPending,
	}
	if err := s.repo.Create(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// Update rewrites an agent's own listing. Any edit drops the listing back to
// pending so it goes through moderation again.
func (s *service) Update(ctx context.Context, agentID, propertyID uuid.UUID, input ListingInput) (*models.Property, error) {
	if agentID == uuid.Nil || propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id and property id required")
	}
	if err := validateListing(input); err != nil {
		return nil, err
	}
	property, err := s.findOr404(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.AgentID != agentID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing belongs to another agent")
	}

	property.Title = input.Title
	property.Description = input.Description
	property.Price = input.Price
	property.Location = input.Location
	property.PropertyType = input.PropertyType
	property.Images = input.Images
	property.ContactName = input.ContactName
	property.ContactPhone = input.ContactPhone
	property.Status = enums.PropertyStatusPending
	property.ApprovedBy = nil

	if err := s.repo.Update(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// Delete removes a listing outright. Only admins reach this path; agents
// retire a listing by letting moderation reject it.
func (s *service) Delete(ctx context.Context, adminID, propertyID uuid.UUID) error {
	if propertyID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	rows, err := s.repo.Delete(ctx, propertyID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
	}
	return nil
}

func (s *service) Approve(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error) {
	return s.moderate(ctx, adminID, propertyID, enums.PropertyStatusApproved, enums.EventPropertyApproved)
}

func (s *service) Reject(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error) {
	return s.moderate(ctx, adminID, propertyID, enums.PropertyStatusRejected, enums.EventPropertyRejected)
}

func (s *service) moderate(ctx context.Context, adminID, propertyID uuid.UUID, status enums.PropertyStatus, eventType enums.OutboxEventType) (*models.Property, error) {
	if adminID == uuid.Nil || propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id and property id required")
	}
	property, err := s.findOr404(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).SetStatus(ctx, propertyID, status, &adminID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateProperty,
			AggregateID:   propertyID,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.RoleAdmin)},
			Data: map[string]any{
				"property_id": propertyID.String(),
				"agent_id":    property.AgentID.String(),
				"status":      string(status),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	property.Status = status
	if status == enums.PropertyStatusApproved {
		property.ApprovedBy = &adminID
	} else {
		property.ApprovedBy = nil
	}
	return property, nil
}

func (s *service) Browse(ctx context.Context, filter BrowseFilter, params pagination.Params) ([]models.Property, error) {
	return s.repo.Browse(ctx, filter, params)
}

// GetForViewer fetches one listing through the visibility gate and projects
// its contact fields for the caller.
func (s *service) GetForViewer(ctx context.Context, viewerID uuid.UUID, role enums.Role, propertyID uuid.UUID) (*ListingDTO, error) {
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	property, err := s.repo.FindByID(ctx, propertyID)
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
		ViewerID:       viewerID,
		Role:           role,
	}); err != nil {
		return nil, err
	}

	unlocked := false
	if viewerID != uuid.Nil {
		unlocked, err = s.unlocks.HasUnlocked(ctx, viewerID, propertyID)
		if err != nil {
			return nil, err
		}
	}
	return ProjectOne(property, viewerID, role, unlocked), nil
}

func (s *service) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Property, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent id required")
	}
	return s.repo.ListByAgent(ctx, agentID, params)
}

func (s *service) ListByStatus(ctx context.Context, status enums.PropertyStatus, params pagination.Params) ([]models.Property, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown property status")
	}
	return s.repo.ListByStatus(ctx, status, params)
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) ([]models.Property, error) {
	return s.repo.ListAll(ctx, params)
}

func (s *service) findOr404(ctx context.Context, propertyID uuid.UUID) (*models.Property, error) {
	property, err := s.repo.FindByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "property not found")
		}
		return nil, err
	}
	return property, nil
}
