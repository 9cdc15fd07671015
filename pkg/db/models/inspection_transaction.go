package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
)

// InspectionTransaction records an inspection-fee payment. Same lifecycle as
// TokenTransaction but tied to an inspection instead of a wallet.
type InspectionTransaction struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InspectionID     uuid.UUID               `gorm:"column:inspection_id;type:uuid;not null;index"`
	UserID           uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index"`
	Reference        string                  `gorm:"column:reference;not null;uniqueIndex:ux_inspection_transactions_reference"`
	Amount           int                     `gorm:"column:amount;not null"`
	Status           enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null;default:'pending'"`
	GatewayReference *string                 `gorm:"column:gateway_reference"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
