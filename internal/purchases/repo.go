package purchases

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
)

// Repository manages persistence for token transactions. Status flips go
// through the conditional updates so reconciliation stays idempotent.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.TokenTransaction) error
	FindByReference(ctx context.Context, reference string) (*models.TokenTransaction, error)
	// MarkCompleted flips pending->completed. Zero rows means the transaction
	// was already reconciled (or never existed).
	MarkCompleted(ctx context.Context, reference string, gatewayReference *string) (int64, error)
	MarkFailed(ctx context.Context, reference string, gatewayReference *string) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.TokenTransaction, error)
	ListAll(ctx context.Context, params pagination.Params) ([]models.TokenTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a token transaction repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, txn *models.TokenTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) FindByReference(ctx context.Context, reference string) (*models.TokenTransaction, error) {
	var txn models.TokenTransaction
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) MarkCompleted(ctx context.Context, reference string, gatewayReference *string) (int64, error) {
	return r.flipStatus(ctx, reference, enums.TransactionStatusCompleted, gatewayReference)
}

func (r *repository) MarkFailed(ctx context.Context, reference string, gatewayReference *string) (int64, error) {
	return r.flipStatus(ctx, reference, enums.TransactionStatusFailed, gatewayReference)
}

func (r *repository) flipStatus(ctx context.Context, reference string, status enums.TransactionStatus, gatewayReference *string) (int64, error) {
	updates := map[string]any{"status": status}
	if gatewayReference != nil {
		updates["gateway_reference"] = *gatewayReference
	}
	result := r.db.WithContext(ctx).
		Model(&models.TokenTransaction{}).
		Where("reference = ? AND status = ?", reference, enums.TransactionStatusPending).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.TokenTransaction, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID), params)
}

func (r *repository) ListAll(ctx context.Context, params pagination.Params) ([]models.TokenTransaction, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.TokenTransaction{}), params)
}

func (r *repository) list(ctx context.Context, query *gorm.DB, params pagination.Params) ([]models.TokenTransaction, error) {
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

	var rows []models.TokenTransaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
