package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
)

// Inspection is a paid viewing booked by a seeker and fulfilled by the
// property's listing agent.
type Inspection struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	PropertyID       uuid.UUID              `gorm:"column:property_id;type:uuid;not null"`
	AgentID          uuid.UUID              `gorm:"column:agent_id;type:uuid;not null;index"`
	InspectionDate   time.Time              `gorm:"column:inspection_date;not null"`
	Status           enums.InspectionStatus `gorm:"column:status;type:inspection_status;not null;default:'pending'"`
	PaymentStatus    enums.PaymentStatus    `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	PaymentReference string                 `gorm:"column:payment_reference;not null"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
