package properties

import (
	"time"

	"github.com/google/uuid"

	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/visibility"
)

// ListingDTO is the transport shape of a listing. The raw contact columns
// never leave the service layer; callers only ever see the projected Contact.
type ListingDTO struct {
	ID           uuid.UUID                `json:"id"`
	Title        string                   `json:"title"`
	Description  string                   `json:"description"`
	Price        int                      `json:"price"`
	Location     string                   `json:"location"`
	PropertyType enums.PropertyType       `json:"property_type"`
	Images       []string                 `json:"images"`
	AgentID      uuid.UUID                `json:"agent_id"`
	Status       enums.PropertyStatus     `json:"status"`
	Contact      visibility.ContactFields `json:"contact"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

// FromModel builds the transport shape around an already-projected contact.
func FromModel(p *models.Property, contact visibility.ContactFields) *ListingDTO {
	if p == nil {
		return nil
	}
	return &ListingDTO{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Price:        p.Price,
		Location:     p.Location,
		PropertyType: p.PropertyType,
		Images:       p.Images,
		AgentID:      p.AgentID,
		Status:       p.Status,
		Contact:      contact,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// ProjectOne projects a single listing for a viewer.
func ProjectOne(p *models.Property, viewerID uuid.UUID, role enums.Role, unlocked bool) *ListingDTO {
	return FromModel(p, visibility.ProjectContact(visibility.ContactProjectionInput{
		Property:    p,
		ViewerID:    viewerID,
		Role:        role,
		HasUnlocked: unlocked,
	}))
}

// ProjectAll projects a page of listings for a viewer. List endpoints never
// consult the unlock ledger; unlocked contact comes from the detail endpoint.
func ProjectAll(list []models.Property, viewerID uuid.UUID, role enums.Role) []ListingDTO {
	out := make([]ListingDTO, 0, len(list))
	for i := range list {
		out = append(out, *ProjectOne(&list[i], viewerID, role, false))
	}
	return out
}
