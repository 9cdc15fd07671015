package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
)

// VerificationRequest tracks a seeker's application to become an agent.
// A partial unique index (see migrations) keeps it to one pending request
// per user.
type VerificationRequest struct {
	ID         uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index"`
	IDCardURL  string                   `gorm:"column:id_card_url;not null"`
	SelfieURL  string                   `gorm:"column:selfie_url;not null"`
	Address    string                   `gorm:"column:address;not null"`
	Status     enums.VerificationStatus `gorm:"column:status;type:verification_status;not null;default:'pending'"`
	ReviewedBy *uuid.UUID               `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt *time.Time               `gorm:"column:reviewed_at"`
	CreatedAt  time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
