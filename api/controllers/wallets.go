package controllers

import (
	"net/http"

	"github.com/muhammed1675/LAUTECH-Rentals/api/responses"
	walletsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/wallets"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
)

// WalletBalance returns the caller's token balance.
func WalletBalance(svc walletsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		wallet, err := svc.Balance(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, wallet)
	}
}
