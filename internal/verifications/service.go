package verifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/muhammed1675/LAUTECH-Rentals/pkg/db"
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

// SubmitInput carries the seeker's verification documents.
type SubmitInput struct {
	UserID    uuid.UUID
	IDCardURL string
	SelfieURL string
	Address   string
}

// Service runs the agent-verification workflow. Approval elevates the
// requester's role inside the review transaction so an agent role can never
// exist without an approved request backing it.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.VerificationRequest, error)
	Approve(ctx context.Context, adminID, requestID uuid.UUID) (*models.VerificationRequest, error)
	Reject(ctx context.Context, adminID, requestID uuid.UUID) (*models.VerificationRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.VerificationRequest, error)
	ListByStatus(ctx context.Context, status enums.VerificationStatus, params pagination.Params) ([]models.VerificationRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.VerificationRequest, error)
}

// UserRepository is the slice of the users store the workflow needs.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role enums.Role) (int64, error)
}

// UserRepositoryFactory rebinds a UserRepository to a transaction.
type UserRepositoryFactory func(tx *gorm.DB) UserRepository

type service struct {
	tx      txRunner
	repo    Repository
	users   UserRepository
	usersTx UserRepositoryFactory
	outbox  outboxPublisher
	now     func() time.Time
}

// NewService builds the verifications service. usersTx must return a
// repository bound to the given transaction.
func NewService(tx txRunner, repo Repository, users UserRepository, usersTx UserRepositoryFactory, publisher outboxPublisher) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("verifications repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if usersTx == nil {
		return nil, fmt.Errorf("users repository factory required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		tx:      tx,
		repo:    repo,
		users:   users,
		usersTx: usersTx,
		outbox:  publisher,
		now:     time.Now,
	}, nil
}

// Submit files a verification request. The partial unique index rejects a
// second submission while one is still pending.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.VerificationRequest, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.IDCardURL == "" || input.SelfieURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "id card and selfie documents required")
	}
	if input.Address == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address required")
	}

	user, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, err
	}
	if user.Role != enums.RoleSeeker {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only seekers can request agent verification")
	}

	request := &models.VerificationRequest{
		ID:        uuid.New(),
		UserID:    input.UserID,
		IDCardURL: input.IDCardURL,
		SelfieURL: input.SelfieURL,
		Address:   input.Address,
		Status:    enums.VerificationStatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_verification_requests_user_pending") {
			return nil, pkgerrors.New(pkgerrors.CodeDuplicatePending, "a verification request is already pending")
		}
		return nil, err
	}
	return request, nil
}

// Approve closes the review and elevates the requester to agent in the same
// transaction.
func (s *service) Approve(ctx context.Context, adminID, requestID uuid.UUID) (*models.VerificationRequest, error) {
	return s.review(ctx, adminID, requestID, enums.VerificationStatusApproved, enums.EventVerificationApproved)
}

func (s *service) Reject(ctx context.Context, adminID, requestID uuid.UUID) (*models.VerificationRequest, error) {
	return s.review(ctx, adminID, requestID, enums.VerificationStatusRejected, enums.EventVerificationRejected)
}

func (s *service) review(ctx context.Context, adminID, requestID uuid.UUID, status enums.VerificationStatus, eventType enums.OutboxEventType) (*models.VerificationRequest, error) {
	if adminID == uuid.Nil || requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id and request id required")
	}
	request, err := s.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	reviewedAt := s.now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.WithTx(tx).Review(ctx, requestID, status, adminID, reviewedAt)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "request already reviewed")
		}
		if status == enums.VerificationStatusApproved {
			elevated, err := s.usersTx(tx).SetRole(ctx, request.UserID, enums.RoleAgent)
			if err != nil {
				return err
			}
			if elevated == 0 {
				return pkgerrors.New(pkgerrors.CodeNotFound, "requesting user no longer exists")
			}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateVerification,
			AggregateID:   requestID,
			Actor:         &outbox.ActorRef{UserID: adminID, Role: string(enums.RoleAdmin)},
			Data: map[string]any{
				"request_id": requestID.String(),
				"user_id":    request.UserID.String(),
				"status":     string(status),
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	request.Status = status
	request.ReviewedBy = &adminID
	request.ReviewedAt = &reviewedAt
	return request, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*models.VerificationRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "verification request not found")
		}
		return nil, err
	}
	return request, nil
}

func (s *service) ListByStatus(ctx context.Context, status enums.VerificationStatus, params pagination.Params) ([]models.VerificationRequest, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown verification status")
	}
	return s.repo.ListByStatus(ctx, status, params)
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.VerificationRequest, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.repo.ListByUser(ctx, userID, params)
}
