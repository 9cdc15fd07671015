package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/muhammed1675/LAUTECH-Rentals/api/routes"
	"github.com/muhammed1675/LAUTECH-Rentals/internal/auth"
	"github.com/muhammed1675/LAUTECH-Rentals/internal/inspections"
	"github.com/muhammed1675/LAUTECH-Rentals/internal/payments"
	"github.com/muhammed1675/LAUTECH-Rentals/internal/properties"
	"github.com/muhammed1675/LAUTECH-Rentals/internal/purchases"
	"github.com/muhammed1675/LAUTECH-Rentals/internal/stats"
	"github.com/muhammed1675/LAUTECH-Rentals/internal/unlocks"
	"github.com/muhammed1675/LAUTECH-Rentals/internal/users"
	"github.com/muhammed1675/LAUTECH-Rentals/internal/verifications"
	"github.com/muhammed1675/LAUTECH-Rentals/internal/wallets"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/config"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/db"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/korapay"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/logger"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/migrate"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/outbox"
	"github.com/muhammed1675/LAUTECH-Rentals/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gateway, err := korapay.NewClient(cfg.Korapay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build payment gateway client", err)
		os.Exit(1)
	}

	svcs, err := buildServices(cfg, logg, dbClient, redisClient, gateway)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, gateway, svcs),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client, gateway *korapay.Client) (routes.Services, error) {
	gormDB := dbClient.DB()

	usersRepo := users.NewRepository(gormDB)
	walletsRepo := wallets.NewRepository(gormDB)
	propertiesRepo := properties.NewRepository(gormDB)
	purchasesRepo := purchases.NewRepository(gormDB)
	unlocksRepo := unlocks.NewRepository(gormDB)
	inspectionsRepo := inspections.NewRepository(gormDB)
	verificationsRepo := verifications.NewRepository(gormDB)
	statsRepo := stats.NewRepository(gormDB)
	outboxSvc := outbox.NewService(outbox.NewRepository(), logg)

	walletsSvc, err := wallets.NewService(walletsRepo)
	if err != nil {
		return routes.Services{}, err
	}

	authSvc, err := auth.NewService(auth.ServiceParams{
		Tx:             dbClient,
		Users:          usersRepo,
		UsersTx:        users.NewRepository,
		Wallets:        walletsSvc,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	unlocksSvc, err := unlocks.NewService(dbClient, unlocksRepo, walletsSvc, propertiesRepo, usersRepo)
	if err != nil {
		return routes.Services{}, err
	}

	propertiesSvc, err := properties.NewService(dbClient, propertiesRepo, usersRepo, unlocksSvc, outboxSvc)
	if err != nil {
		return routes.Services{}, err
	}

	purchasesSvc, err := purchases.NewService(purchasesRepo, gateway, cfg.Pricing)
	if err != nil {
		return routes.Services{}, err
	}

	inspectionsSvc, err := inspections.NewService(dbClient, inspectionsRepo, gateway, propertiesRepo, usersRepo, outboxSvc, cfg.Pricing)
	if err != nil {
		return routes.Services{}, err
	}

	verificationsSvc, err := verifications.NewService(
		dbClient,
		verificationsRepo,
		usersRepo,
		func(tx *gorm.DB) verifications.UserRepository { return users.NewRepository(tx) },
		outboxSvc,
	)
	if err != nil {
		return routes.Services{}, err
	}

	usersSvc, err := users.NewService(dbClient, usersRepo, outboxSvc)
	if err != nil {
		return routes.Services{}, err
	}

	paymentsSvc, err := payments.NewService(
		dbClient,
		purchasesRepo,
		inspectionsRepo,
		walletsSvc,
		gateway,
		outboxSvc,
		redisClient,
		cfg.FeatureFlags,
		logg,
	)
	if err != nil {
		return routes.Services{}, err
	}

	statsSvc, err := stats.NewService(statsRepo)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:          authSvc,
		Properties:    propertiesSvc,
		Wallets:       walletsSvc,
		Purchases:     purchasesSvc,
		Unlocks:       unlocksSvc,
		Inspections:   inspectionsSvc,
		Verifications: verificationsSvc,
		Users:         usersSvc,
		Payments:      paymentsSvc,
		Stats:         statsSvc,
	}, nil
}
