package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/muhammed1675/LAUTECH-Rentals/api/middleware"
	"github.com/muhammed1675/LAUTECH-Rentals/api/validators"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/enums"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/pagination"
)

// actorID resolves the authenticated user from the request context.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

// viewerIdentity resolves the caller on surfaces that also serve anonymous
// traffic. An absent or unparsable identity degrades to the locked seeker
// view instead of failing the request.
func viewerIdentity(r *http.Request) (uuid.UUID, enums.Role) {
	uid, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		uid = uuid.Nil
	}
	role, err := enums.ParseRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		role = enums.RoleSeeker
	}
	return uid, role
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid identifier").WithDetails(map[string]any{"field": param})
	}
	return id, nil
}

func pageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
