package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
)

// Property is a rental listing owned by its listing agent until admin
// moderation mutates its status.
type Property struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title        string               `gorm:"column:title;not null"`
	Description  string               `gorm:"column:description;not null"`
	Price        int                  `gorm:"column:price;not null"`
	Location     string               `gorm:"column:location;not null"`
	PropertyType enums.PropertyType   `gorm:"column:property_type;type:property_type;not null"`
	Images       pq.StringArray       `gorm:"column:images;type:text[]"`
	ContactName  string               `gorm:"column:contact_name;not null"`
	ContactPhone string               `gorm:"column:contact_phone;not null"`
	AgentID      uuid.UUID            `gorm:"column:agent_id;type:uuid;not null;index"`
	Status       enums.PropertyStatus `gorm:"column:status;type:property_status;not null;default:'pending'"`
	ApprovedBy   *uuid.UUID           `gorm:"column:approved_by;type:uuid"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
