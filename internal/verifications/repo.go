package verifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
)

// Repository manages persistence for agent-verification requests. The
// partial unique index ux_verification_requests_user_pending is the
// authority on the one-pending-request-per-user rule; Create surfaces the
// violation untranslated for the service to classify.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.VerificationRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.VerificationRequest, error)
	FindPendingByUser(ctx context.Context, userID uuid.UUID) (*models.VerificationRequest, error)
	// Review flips pending to a terminal status. Zero rows means the request
	// was already reviewed or does not exist.
	Review(ctx context.Context, id uuid.UUID, status enums.VerificationStatus, reviewerID uuid.UUID, reviewedAt time.Time) (int64, error)
	ListByStatus(ctx context.Context, status enums.VerificationStatus, params pagination.Params) ([]models.VerificationRequest, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.VerificationRequest, error)
	CountPending(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a verifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.VerificationRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.VerificationRequest, error) {
	var request models.VerificationRequest
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) FindPendingByUser(ctx context.Context, userID uuid.UUID) (*models.VerificationRequest, error) {
	var request models.VerificationRequest
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, enums.VerificationStatusPending).
		First(&request).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) Review(ctx context.Context, id uuid.UUID, status enums.VerificationStatus, reviewerID uuid.UUID, reviewedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.VerificationRequest{}).
		Where("id = ? AND status = ?", id, enums.VerificationStatusPending).
		Updates(map[string]any{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": reviewedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) ListByStatus(ctx context.Context, status enums.VerificationStatus, params pagination.Params) ([]models.VerificationRequest, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("status = ?", status), params)
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.VerificationRequest, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID), params)
}

func (r *repository) list(ctx context.Context, query *gorm.DB, params pagination.Params) ([]models.VerificationRequest, error) {
	query = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.VerificationRequest
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.VerificationRequest{}).
		Where("status = ?", enums.VerificationStatusPending).
		Count(&count).Error
	return count, err
}
