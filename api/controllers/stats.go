package controllers

import (
	"net/http"

	"github.com/muhammed1675/LAUTECH-Rentals/api/responses"
	statsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/stats"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
)

// AdminStatsOverview returns the platform dashboard aggregates.
func AdminStatsOverview(svc statsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		overview, err := svc.Overview(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}
