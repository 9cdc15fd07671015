package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/muhammed1675/LAUTECH-Rentals/api/responses"
	"github.com/muhammed1675/LAUTECH-Rentals/api/validators"
	propertysvc "github.com/muhammed1675/LAUTECH-Rentals/internal/properties"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db/models"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
)

type listingRequest struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Price        int      `json:"price" validate:"required,min=1"`
	Location     string   `json:"location" validate:"required"`
	PropertyType string   `json:"property_type" validate:"required"`
	Images       []string `json:"images,omitempty"`
	ContactName  string   `json:"contact_name" validate:"required"`
	ContactPhone string   `json:"contact_phone" validate:"required"`
}

func (req listingRequest) toInput() (propertysvc.ListingInput, error) {
	propertyType, err := enums.ParsePropertyType(strings.TrimSpace(req.PropertyType))
	if err != nil {
		return propertysvc.ListingInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid property type")
	}
	return propertysvc.ListingInput{
		Title:        validators.SanitizeString(req.Title, 200),
		Description:  validators.SanitizeString(req.Description, 5000),
		Price:        req.Price,
		Location:     validators.SanitizeString(req.Location, 200),
		PropertyType: propertyType,
		Images:       req.Images,
		ContactName:  validators.SanitizeString(req.ContactName, 200),
		ContactPhone: validators.SanitizeString(req.ContactPhone, 32),
	}, nil
}

// PropertyCreate accepts a new listing from an agent. It always enters
// moderation as pending.
func PropertyCreate(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload listingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		property, err := svc.Create(r.Context(), uid, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, propertysvc.ProjectOne(property, uid, enums.RoleAgent, false))
	}
}

// PropertyUpdate replaces listing content and sends it back to moderation.
func PropertyUpdate(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		propertyID, err := pathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload listingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		property, err := svc.Update(r.Context(), uid, propertyID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, propertysvc.ProjectOne(property, uid, enums.RoleAgent, false))
	}
}

// PropertyBrowse lists approved listings with optional filters. It serves
// anonymous and authenticated callers alike; list contacts stay locked unless
// the viewer owns the listing or is an admin.
func PropertyBrowse(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := browseFilter(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listings, err := svc.Browse(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uid, role := viewerIdentity(r)
		responses.WriteSuccess(w, propertysvc.ProjectAll(listings, uid, role))
	}
}

// PropertyDetail returns a single listing projected for the caller, with
// contact details masked unless unlocked. Anonymous callers get the locked
// seeker view.
func PropertyDetail(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID, err := pathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uid, role := viewerIdentity(r)
		listing, err := svc.GetForViewer(r.Context(), uid, role, propertyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listing)
	}
}

// MyListings returns the caller's own listings regardless of status.
func MyListings(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listings, err := svc.ListByAgent(r.Context(), uid, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, propertysvc.ProjectAll(listings, uid, enums.RoleAgent))
	}
}

// AdminPropertyDelete removes a listing outright.
func AdminPropertyDelete(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		propertyID, err := pathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), uid, propertyID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminPropertyList returns listings filtered by moderation status.
func AdminPropertyList(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		uid, role := viewerIdentity(r)
		rawStatus := strings.TrimSpace(r.URL.Query().Get("status"))
		if rawStatus == "" {
			listings, err := svc.ListAll(r.Context(), params)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, propertysvc.ProjectAll(listings, uid, role))
			return
		}

		status, err := enums.ParsePropertyStatus(rawStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
			return
		}

		listings, err := svc.ListByStatus(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, propertysvc.ProjectAll(listings, uid, role))
	}
}

// AdminPropertyApprove moves a listing to approved.
func AdminPropertyApprove(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return moderationHandler(svc.Approve, logg)
}

// AdminPropertyReject moves a listing to rejected.
func AdminPropertyReject(svc propertysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return moderationHandler(svc.Reject, logg)
}

func moderationHandler(decide func(ctx context.Context, adminID, propertyID uuid.UUID) (*models.Property, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		propertyID, err := pathUUID(r, "propertyId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		property, err := decide(r.Context(), adminID, propertyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, propertysvc.ProjectOne(property, adminID, enums.RoleAdmin, false))
	}
}

func browseFilter(r *http.Request) (propertysvc.BrowseFilter, error) {
	filter := propertysvc.BrowseFilter{
		Location: validators.SanitizeString(r.URL.Query().Get("location"), 200),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("property_type")); raw != "" {
		propertyType, err := enums.ParsePropertyType(raw)
		if err != nil {
			return propertysvc.BrowseFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid property type filter")
		}
		filter.PropertyType = &propertyType
	}

	if min, err := queryPrice(r, "min_price"); err != nil {
		return propertysvc.BrowseFilter{}, err
	} else if min != nil {
		filter.MinPrice = min
	}
	if max, err := queryPrice(r, "max_price"); err != nil {
		return propertysvc.BrowseFilter{}, err
	} else if max != nil {
		filter.MaxPrice = max
	}

	return filter, nil
}

func queryPrice(r *http.Request, key string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price filter must be a non-negative integer").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}
