package users

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
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service covers profile reads and the admin-side account controls.
// Suspension is the platform-wide kill switch: a suspended agent's listings
// disappear from every visibility-gated read.
type Service interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, params pagination.Params) ([]models.User, error)
	Suspend(ctx context.Context, adminID, userID uuid.UUID) error
	Reinstate(ctx context.Context, adminID, userID uuid.UUID) error
	SetRole(ctx context.Context, adminID, userID uuid.UUID, role enums.Role) error
}

type service struct {
	tx     txRunner
	repo   Repository
	outbox outboxPublisher
}

// NewService builds the users service.
func NewService(tx txRunner, repo Repository, publisher outboxPublisher) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{tx: tx, repo: repo, outbox: publisher}, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.User, error) {
	return s.repo.List(ctx, params)
}

func (s *service) Suspend(ctx context.Context, adminID, userID uuid.UUID) error {
	return s.setSuspended(ctx, adminID, userID, true, enums.EventUserSuspended)
}

func (s *service) Reinstate(ctx context.Context, adminID, userID uuid.UUID) error {
	return s.setSuspended(ctx, adminID, userID, false, enums.EventUserReinstated)
}

func (s *service) setSuspended(ctx context.Context, adminID, userID uuid.UUID, suspended bool, eventType enums.OutboxEventType) error {
	if adminID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin id and user id required")
	}
	if adminID == userID {
		return pkgerrors.New(pkgerrors.CodeValidation, "admins cannot suspend themselves")
	}
	if _, err := s.FindByID(ctx, userID); err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).SetSuspended(ctx, userID, suspended)
		if err != nil {
			return err
		}
		if rows == 0 {
			// Already in the requested state.
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateUser,
			AggregateID:   userID,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.RoleAdmin)},
			Data: map[string]any{
				"user_id":   userID.String(),
				"suspended": suspended,
			},
			Version: 1,
		})
	})
}

func (s *service) SetRole(ctx context.Context, adminID, userID uuid.UUID, role enums.Role) error {
	if adminID == uuid.Nil || userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "admin id and user id required")
	}
	if !role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown role")
	}
	rows, err := s.repo.SetRole(ctx, userID, role)
	if err != nil {
		return err
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	return nil
}
