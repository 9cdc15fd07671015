package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a user's purchasable-token balance. One row per user; the
// balance only moves through the wallets repository's conditional updates.
type Wallet struct {
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	TokenBalance int       `gorm:"column:token_balance;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
