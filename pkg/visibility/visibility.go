package visibility

import (
	"github.com/google/uuid"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
)

// LockedContactPlaceholder is returned in place of real contact details for
// viewers that have not unlocked the listing.
const LockedContactPlaceholder = "LOCKED"

// PropertyVisibilityInput drives the shared visibility checks for seeker-facing queries.
type PropertyVisibilityInput struct {
	Property       *models.Property
	AgentSuspended bool
	ViewerID       uuid.UUID
	Role           enums.Role
}

// EnsurePropertyVisible enforces canonical rules so unapproved listings and
// suspended agents' listings never leak through seeker queries. A hidden
// listing behaves as not-found, never as found-but-empty. Owning agents and
// admins keep sight of their own listings regardless of moderation status.
func EnsurePropertyVisible(input PropertyVisibilityInput) error {
	if input.Property == nil {
		return pkgerrors.New(pkgerrors.CodePropertyUnavailable, "property not found")
	}
	if input.Role == enums.RoleAdmin {
		return nil
	}
	if input.Property.AgentID == input.ViewerID {
		return nil
	}
	if input.Property.Status != enums.PropertyStatusApproved {
		return pkgerrors.New(pkgerrors.CodePropertyUnavailable, "property not found")
	}
	if input.AgentSuspended {
		return pkgerrors.New(pkgerrors.CodePropertyUnavailable, "property not found")
	}
	return nil
}

// ContactFields holds the viewer-facing contact projection of a listing.
type ContactFields struct {
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	Unlocked     bool   `json:"unlocked"`
}

// ContactProjectionInput decides whether a viewer sees real contact details.
type ContactProjectionInput struct {
	Property    *models.Property
	ViewerID    uuid.UUID
	Role        enums.Role
	HasUnlocked bool
}

// ProjectContact masks contact details unless the viewer owns the listing,
// is an admin, or holds an unlock for it.
func ProjectContact(input ContactProjectionInput) ContactFields {
	if input.Property == nil {
		return ContactFields{ContactName: LockedContactPlaceholder, ContactPhone: LockedContactPlaceholder}
	}
	allowed := input.HasUnlocked ||
		input.Role == enums.RoleAdmin ||
		input.Property.AgentID == input.ViewerID
	if !allowed {
		return ContactFields{ContactName: LockedContactPlaceholder, ContactPhone: LockedContactPlaceholder}
	}
	return ContactFields{
		ContactName:  input.Property.ContactName,
		ContactPhone: input.Property.ContactPhone,
		Unlocked:     true,
	}
}
