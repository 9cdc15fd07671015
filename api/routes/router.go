package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/muhammed1675/LAUTECH-Rentals/api/controllers"
	webhookcontrollers "github.com/muhammed1675/LAUTECH-Rentals/api/controllers/webhooks"
	"github.com/muhammed1675/LAUTECH-Rentals/api/middleware"
	authsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/auth"
	inspectionsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/inspections"
	paymentsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/payments"
	propertysvc "github.com/muhammed1675/LAUTECH-Rentals/internal/properties"
	purchasesvc "github.com/muhammed1675/LAUTECH-Rentals/internal/purchases"
	statsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/stats"
	unlocksvc "github.com/muhammed1675/LAUTECH-Rentals/internal/unlocks"
	usersvc "github.com/muhammed1675/LAUTECH-Rentals/internal/users"
	verificationsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/verifications"
	walletsvc "github.com/muhammed1675/LAUTECH-Rentals/internal/wallets"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/config"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/korapay"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/metrics"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/redis"
)

// Services bundles everything the router mounts. Keeping it a struct saves
// the constructor from a dozen positional parameters.
type Services struct {
	Auth          authsvc.Service
	Properties    propertysvc.Service
	Wallets       walletsvc.Service
	Purchases     purchasesvc.Service
	Unlocks       unlocksvc.Service
	Inspections   inspectionsvc.Service
	Verifications verificationsvc.Service
	Users         usersvc.Service
	Payments      paymentsvc.Service
	Stats         statsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gateway *korapay.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	// Typed-nil guards: a nil *redis.Client stuffed straight into an
	// interface parameter would dodge the middleware nil checks.
	var (
		idemStore redis.IdempotencyStore
		cachePing db.Pinger
	)
	if redisClient != nil {
		idemStore = redisClient
		cachePing = redisClient
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		metrics.Middleware,
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cachePing))
	})

	r.Handle("/metrics", metrics.Handler())

	r.Get("/api/public/ping", controllers.PublicPing())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/korapay", webhookcontrollers.KorapayWebhook(svcs.Payments, gateway, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
	})

	// Listing discovery is open to anonymous traffic; a presented token still
	// seeds identity so owners and admins see their own contact fields.
	r.Route("/api/v1/properties", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, logg))
			r.Get("/", controllers.PropertyBrowse(svcs.Properties, logg))
			r.Get("/{propertyId}", controllers.PropertyDetail(svcs.Properties, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(idemStore, logg))
			r.Use(middleware.RequireRole("agent", logg))
			r.Post("/", controllers.PropertyCreate(svcs.Properties, logg))
			r.Put("/{propertyId}", controllers.PropertyUpdate(svcs.Properties, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Get("/v1/auth/me", controllers.AuthMe(svcs.Auth, logg))

		r.With(middleware.RequireRole("agent", logg)).
			Get("/v1/my-listings", controllers.MyListings(svcs.Properties, logg))

		r.Get("/v1/wallet", controllers.WalletBalance(svcs.Wallets, logg))

		r.Route("/v1/purchases", func(r chi.Router) {
			r.Post("/", controllers.PurchaseInitiate(svcs.Purchases, logg))
			r.Get("/", controllers.PurchaseList(svcs.Purchases, logg))
		})

		r.Route("/v1/unlocks", func(r chi.Router) {
			r.Post("/", controllers.UnlockContact(svcs.Unlocks, logg))
			r.Get("/", controllers.UnlockHistory(svcs.Unlocks, logg))
		})

		r.Route("/v1/inspections", func(r chi.Router) {
			r.Post("/", controllers.InspectionBook(svcs.Inspections, logg))
			r.Get("/", controllers.InspectionList(svcs.Inspections, logg))
			r.Get("/{inspectionId}/agent-contact", controllers.InspectionAgentContact(svcs.Inspections, logg))
			r.With(middleware.RequireRole("agent", logg)).
				Post("/{inspectionId}/complete", controllers.InspectionComplete(svcs.Inspections, logg))
		})

		r.With(middleware.RequireRole("agent", logg)).
			Get("/v1/agent/inspections", controllers.AgentInspectionList(svcs.Inspections, logg))

		r.Route("/v1/verifications", func(r chi.Router) {
			r.Post("/", controllers.VerificationSubmit(svcs.Verifications, logg))
			r.Get("/", controllers.VerificationMine(svcs.Verifications, logg))
		})

		r.Route("/v1/payments", func(r chi.Router) {
			r.Get("/verify", controllers.PaymentVerify(svcs.Payments, logg))
			r.Post("/simulate", controllers.PaymentSimulate(svcs.Payments, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/v1/properties", func(r chi.Router) {
			r.Get("/", controllers.AdminPropertyList(svcs.Properties, logg))
			r.Post("/{propertyId}/approve", controllers.AdminPropertyApprove(svcs.Properties, logg))
			r.Post("/{propertyId}/reject", controllers.AdminPropertyReject(svcs.Properties, logg))
			r.Delete("/{propertyId}", controllers.AdminPropertyDelete(svcs.Properties, logg))
		})

		r.Route("/v1/verifications", func(r chi.Router) {
			r.Get("/", controllers.AdminVerificationList(svcs.Verifications, logg))
			r.Post("/{requestId}/approve", controllers.AdminVerificationApprove(svcs.Verifications, logg))
			r.Post("/{requestId}/reject", controllers.AdminVerificationReject(svcs.Verifications, logg))
		})

		r.Route("/v1/users", func(r chi.Router) {
			r.Get("/", controllers.AdminUserList(svcs.Users, logg))
			r.Post("/{userId}/suspend", controllers.AdminUserSuspend(svcs.Users, logg))
			r.Post("/{userId}/reinstate", controllers.AdminUserReinstate(svcs.Users, logg))
			r.Post("/{userId}/role", controllers.AdminUserSetRole(svcs.Users, logg))
		})

		r.Route("/v1/inspections", func(r chi.Router) {
			r.Get("/", controllers.AdminInspectionList(svcs.Inspections, logg))
			r.Post("/{inspectionId}/reassign", controllers.InspectionReassign(svcs.Inspections, logg))
		})

		r.Get("/v1/transactions/tokens", controllers.AdminPurchaseList(svcs.Purchases, logg))
		r.Get("/v1/transactions/inspections", controllers.AdminInspectionTransactionList(svcs.Inspections, logg))
		r.Get("/v1/stats", controllers.AdminStatsOverview(svcs.Stats, logg))
	})

	return r
}
