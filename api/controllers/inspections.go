package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/muhammed1675/LAUTECH-Rentals/api/middleware"
	"github.com/muhammed1675/LAUTECH-Rentals/api/responses"
	"github.com/muhammed1675/LAUTECH-Rentals/api/validators"
	inspectionsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/inspections"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
)

type bookInspectionRequest struct {
	PropertyID     string `json:"property_id" validate:"required,uuid"`
	InspectionDate string `json:"inspection_date" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	FullName       string `json:"full_name" validate:"required"`
}

// InspectionBook schedules a visit and opens the inspection fee charge.
func InspectionBook(svc inspectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseRole(middleware.RoleFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role"))
			return
		}

		var payload bookInspectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		propertyID, err := uuid.Parse(payload.PropertyID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid property id"))
			return
		}

		inspectionDate, err := time.Parse(time.RFC3339, payload.InspectionDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "inspection date must be RFC 3339"))
			return
		}

		result, err := svc.Book(r.Context(), inspectionsvc.BookInput{
			UserID:         uid,
			Role:           role,
			PropertyID:     propertyID,
			InspectionDate: inspectionDate,
			Email:          payload.Email,
			FullName:       payload.FullName,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// InspectionComplete lets the assigned agent close out a paid inspection.
func InspectionComplete(svc inspectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inspectionID, err := pathUUID(r, "inspectionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inspection, err := svc.MarkCompleted(r.Context(), uid, inspectionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inspection)
	}
}

type reassignRequest struct {
	AgentID string `json:"agent_id" validate:"required,uuid"`
}

// InspectionReassign moves a non-completed inspection to a different agent.
func InspectionReassign(svc inspectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inspectionID, err := pathUUID(r, "inspectionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reassignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agentID, err := uuid.Parse(payload.AgentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid agent id"))
			return
		}

		if err := svc.Reassign(r.Context(), inspectionID, agentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "reassigned"})
	}
}

// InspectionAgentContact reveals the assigned agent's contact once the
// inspection fee has settled.
func InspectionAgentContact(svc inspectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inspectionID, err := pathUUID(r, "inspectionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agent, err := svc.AgentContact(r.Context(), uid, inspectionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"full_name": agent.FullName,
			"email":     agent.Email,
		})
	}
}

// InspectionList returns the caller's bookings.
func InspectionList(svc inspectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		inspections, err := svc.ListByUser(r.Context(), uid, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inspections)
	}
}

// AgentInspectionList returns inspections assigned to the calling agent.
func AgentInspectionList(svc inspectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		inspections, err := svc.ListByAgent(r.Context(), uid, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inspections)
	}
}

// AdminInspectionList returns every inspection on the platform.
func AdminInspectionList(svc inspectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inspections, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, inspections)
	}
}

// AdminInspectionTransactionList returns every inspection-fee payment.
func AdminInspectionTransactionList(svc inspectionsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transactions, err := svc.ListTransactions(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transactions)
	}
}
