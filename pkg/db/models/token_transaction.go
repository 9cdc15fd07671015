package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
)

// TokenTransaction records a token purchase handed to the payment gateway.
// Status flips pending->completed exactly once, via the reconciler.
type TokenTransaction struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	Reference        string                  `gorm:"column:reference;not null;uniqueIndex:ux_token_transactions_reference"`
	TokensAdded      int                     `gorm:"column:tokens_added;not null"`
	Amount           int                     `gorm:"column:amount;not null"`
	Status           enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null;default:'pending'"`
	GatewayReference *string                 `gorm:"column:gateway_reference"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
