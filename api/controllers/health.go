package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/muhammed1675/LAUTECH-Rentals/api/responses"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/config"
	pkgerrors "github.com/muhammed1675/LAUTECH-Rentals/pkg/errors"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
)

const readinessTimeout = 5 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Rentals-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the datastore and cache before reporting ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Rentals-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var err error
		checks := map[string]string{}
		if db != nil {
			if pingErr := db.Ping(ctx); pingErr != nil {
				checks["database"] = "down"
				err = multierr.Append(err, pingErr)
			} else {
				checks["database"] = "up"
			}
		}
		if cache != nil {
			if pingErr := cache.Ping(ctx); pingErr != nil {
				checks["redis"] = "down"
				err = multierr.Append(err, pingErr)
			} else {
				checks["redis"] = "up"
			}
		}

		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "readiness check failed").WithDetails(checks))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
