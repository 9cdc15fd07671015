package models

import (
	"time"

	"github.com/google/uuid"
)

// Unlock grants one user permanent access to one property's contact details.
// The composite unique index is the authority on "at most one per pair".
type Unlock struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_unlocks_user_property"`
	PropertyID uuid.UUID `gorm:"column:property_id;type:uuid;not null;uniqueIndex:ux_unlocks_user_property"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
