package unlocks

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
)

// Repository manages persistence for contact unlocks. The composite unique
// index ux_unlocks_user_property is the authority on duplicates; Create
// surfaces the violation untranslated for the service to classify.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, unlock *models.Unlock) error
	Exists(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Unlock, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an unlocks repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, unlock *models.Unlock) error {
	return r.db.WithContext(ctx).Create(unlock).Error
}

func (r *repository) Exists(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Unlock{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Unlock, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
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

	var rows []models.Unlock
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
