package wallets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
)

// Repository manages persistence for wallets. Balance mutations go through
// the conditional updates only, never read-modify-write.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, wallet *models.Wallet) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error)
	Credit(ctx context.Context, userID uuid.UUID, tokens int) error
	// Debit subtracts tokens only when the balance covers them. Returns the
	// number of rows updated: zero means insufficient funds.
	Debit(ctx context.Context, userID uuid.UUID, tokens int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallets repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, wallet *models.Wallet) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(wallet).Error
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) Credit(ctx context.Context, userID uuid.UUID, tokens int) error {
	return r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("token_balance", gorm.Expr("token_balance + ?", tokens)).Error
}

func (r *repository) Debit(ctx context.Context, userID uuid.UUID, tokens int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ? AND token_balance >= ?", userID, tokens).
		Update("token_balance", gorm.Expr("token_balance - ?", tokens))
	return result.RowsAffected, result.Error
}
