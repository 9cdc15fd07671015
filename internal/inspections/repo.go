package inspections

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
)

// Repository manages persistence for inspections and their fee transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, inspection *models.Inspection) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inspection, error)
	// MarkPaid flips pending/pending to assigned/completed. Zero rows means
	// the inspection was already reconciled or is not in the initial state.
	MarkPaid(ctx context.Context, id uuid.UUID) (int64, error)
	// MarkCompleted flips assigned->completed for the assigned agent only,
	// and only once the payment settled.
	MarkCompleted(ctx context.Context, id, agentID uuid.UUID) (int64, error)
	// Reassign moves an open inspection to another agent. Completed
	// inspections are immutable.
	Reassign(ctx context.Context, id, agentID uuid.UUID) (int64, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Inspection, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Inspection, error)
	ListAll(ctx context.Context, params pagination.Params) ([]models.Inspection, error)

	CreateTransaction(ctx context.Context, txn *models.InspectionTransaction) error
	ListTransactions(ctx context.Context, params pagination.Params) ([]models.InspectionTransaction, error)
	FindTransactionByReference(ctx context.Context, reference string) (*models.InspectionTransaction, error)
	MarkTransactionCompleted(ctx context.Context, reference string, gatewayReference *string) (int64, error)
	MarkTransactionFailed(ctx context.Context, reference string, gatewayReference *string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inspections repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, inspection *models.Inspection) error {
	return r.db.WithContext(ctx).Create(inspection).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Inspection, error) {
	var inspection models.Inspection
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&inspection).Error; err != nil {
		return nil, err
	}
	return &inspection, nil
}

func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Inspection{}).
		Where("id = ? AND status = ? AND payment_status = ?",
			id, enums.InspectionStatusPending, enums.PaymentStatusPending).
		Updates(map[string]any{
			"status":         enums.InspectionStatusAssigned,
			"payment_status": enums.PaymentStatusCompleted,
		})
	return result.RowsAffected, result.Error
}

func (r *repository) MarkCompleted(ctx context.Context, id, agentID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Inspection{}).
		Where("id = ? AND agent_id = ? AND status = ? AND payment_status = ?",
			id, agentID, enums.InspectionStatusAssigned, enums.PaymentStatusCompleted).
		Update("status", enums.InspectionStatusCompleted)
	return result.RowsAffected, result.Error
}

func (r *repository) Reassign(ctx context.Context, id, agentID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Inspection{}).
		Where("id = ? AND status <> ?", id, enums.InspectionStatusCompleted).
		Update("agent_id", agentID)
	return result.RowsAffected, result.Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Inspection, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("user_id = ?", userID), params)
}

func (r *repository) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) ([]models.Inspection, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("agent_id = ?", agentID), params)
}

func (r *repository) ListAll(ctx context.Context, params pagination.Params) ([]models.Inspection, error) {
	return r.list(ctx, r.db.WithContext(ctx).Model(&models.Inspection{}), params)
}

func (r *repository) list(ctx context.Context, query *gorm.DB, params pagination.Params) ([]models.Inspection, error) {
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

	var rows []models.Inspection
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.InspectionTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListTransactions(ctx context.Context, params pagination.Params) ([]models.InspectionTransaction, error) {
	query := r.db.WithContext(ctx).
		Model(&models.InspectionTransaction{}).
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

	var rows []models.InspectionTransaction
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindTransactionByReference(ctx context.Context, reference string) (*models.InspectionTransaction, error) {
	var txn models.InspectionTransaction
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) MarkTransactionCompleted(ctx context.Context, reference string, gatewayReference *string) (int64, error) {
	return r.flipTransaction(ctx, reference, enums.TransactionStatusCompleted, gatewayReference)
}

func (r *repository) MarkTransactionFailed(ctx context.Context, reference string, gatewayReference *string) (int64, error) {
	return r.flipTransaction(ctx, reference, enums.TransactionStatusFailed, gatewayReference)
}

func (r *repository) flipTransaction(ctx context.Context, reference string, status enums.TransactionStatus, gatewayReference *string) (int64, error) {
	updates := map[string]any{"status": status}
	if gatewayReference != nil {
		updates["gateway_reference"] = *gatewayReference
	}
	result := r.db.WithContext(ctx).
		Model(&models.InspectionTransaction{}).
		Where("reference = ? AND status = ?", reference, enums.TransactionStatusPending).
		Updates(updates)
	return result.RowsAffected, result.Error
}
