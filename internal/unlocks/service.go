package unlocks

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/internal/wallets"
	dbpkg "github.com/muhammed1675/LAUTECH-Rentals/pkg/db"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/metrics"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/visibility"
)

// UnlockCostTokens is the flat price of revealing one listing's contact.
const UnlockCostTokens = 1

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type propertyLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// UnlockResult reports the outcome of a successful unlock.
type UnlockResult struct {
	Unlock  *models.Unlock           `json:"unlock"`
	Contact visibility.ContactFields `json:"contact"`
}

// Service executes contact unlock orchestration.
type Service interface {
	Unlock(ctx context.Context, userID uuid.UUID, role enums.Role, propertyID uuid.UUID) (*UnlockResult, error)
	HasUnlocked(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Unlock, error)
}

type service struct {
	tx         txRunner
	repo       Repository
	walletSvc  wallets.Service
	properties propertyLoader
	users      userLoader
}

// NewService builds the unlocks service.
func NewService(tx txRunner, repo Repository, walletSvc wallets.Service, properties propertyLoader, users userLoader) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("unlocks repository required")
	}
	if walletSvc == nil {
		return nil, fmt.Errorf("wallets service required")
	}
	if properties == nil {
		return nil, fmt.Errorf("property loader required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	return &service{tx: tx, repo: repo, walletSvc: walletSvc, properties: properties, users: users}, nil
}

// Unlock reveals a listing's contact for one token. The unlock insert and the
// wallet debit commit or roll back together: a failed debit leaves no unlock
// row, and the composite unique index turns a concurrent double unlock into
// exactly one charge.
func (s *service) Unlock(ctx context.Context, userID uuid.UUID, role enums.Role, propertyID uuid.UUID) (*UnlockResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if propertyID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "property id required")
	}
	// Agents see their own contacts and admins see everything, so neither has
	// anything to buy. Keeping them out also keeps the visibility check below
	// strictly on the seeker path.
	if role != enums.RoleSeeker {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only seekers can unlock contacts")
	}

	property, err := s.properties.FindByID(ctx, propertyID)
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
		ViewerID:       userID,
		Role:           role,
	}); err != nil {
		return nil, err
	}
	unlock := &models.Unlock{
		ID:         uuid.New(),
		UserID:     userID,
		PropertyID: propertyID,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, unlock); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_unlocks_user_property") {
				return pkgerrors.New(pkgerrors.CodeAlreadyUnlocked, "contact already unlocked")
			}
			return err
		}
		return s.walletSvc.DebitTx(ctx, tx, userID, UnlockCostTokens)
	})
	if err != nil {
		switch pkgerrors.As(err).Code() {
		case pkgerrors.CodeAlreadyUnlocked:
			metrics.ContactUnlocksTotal.WithLabelValues("already_unlocked").Inc()
		case pkgerrors.CodeInsufficientFunds:
			metrics.ContactUnlocksTotal.WithLabelValues("insufficient_funds").Inc()
		}
		return nil, err
	}
	metrics.ContactUnlocksTotal.WithLabelValues("unlocked").Inc()

	return &UnlockResult{
		Unlock: unlock,
		Contact: visibility.ProjectContact(visibility.ContactProjectionInput{
			Property:    property,
			ViewerID:    userID,
			Role:        role,
			HasUnlocked: true,
		}),
	}, nil
}

func (s *service) HasUnlocked(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || propertyID == uuid.Nil {
		return false, nil
	}
	return s.repo.Exists(ctx, userID, propertyID)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Unlock, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListByUser(ctx, userID, params)
}
