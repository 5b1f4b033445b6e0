package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/marketkart/backoffice-backend/api/routes"
	"github.com/marketkart/backoffice-backend/internal/commission"
	"github.com/marketkart/backoffice-backend/internal/rates"
	"github.com/marketkart/backoffice-backend/internal/reporting"
	"github.com/marketkart/backoffice-backend/internal/settings"
	"github.com/marketkart/backoffice-backend/internal/wallet"
	"github.com/marketkart/backoffice-backend/internal/withdrawals"
	"github.com/marketkart/backoffice-backend/pkg/config"
	"github.com/marketkart/backoffice-backend/pkg/db"
	"github.com/marketkart/backoffice-backend/pkg/logger"
	"github.com/marketkart/backoffice-backend/pkg/metrics"
	"github.com/marketkart/backoffice-backend/pkg/migrate"
	"github.com/marketkart/backoffice-backend/pkg/redis"
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

	registry := prometheus.NewRegistry()
	commissionMetrics := metrics.NewCommissionMetrics(registry)

	gormDB := dbClient.DB()

	settingsSvc, err := settings.NewService(settings.NewRepository(gormDB), dbClient, redisClient, cfg.Commission, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	rateResolver, err := rates.NewResolver(rates.NewRepository(gormDB), settingsSvc, logg, commissionMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create rate resolver", err)
		os.Exit(1)
	}

	walletSvc, err := wallet.NewService(wallet.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	calculator, err := commission.NewCalculator(rateResolver, settingsSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create commission calculator", err)
		os.Exit(1)
	}

	commissionSvc, err := commission.NewService(commission.NewRepository(gormDB), calculator, walletSvc, dbClient, logg, commissionMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create commission service", err)
		os.Exit(1)
	}

	withdrawalsSvc, err := withdrawals.NewService(withdrawals.NewRepository(gormDB), walletSvc, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create withdrawals service", err)
		os.Exit(1)
	}

	reportingSvc, err := reporting.NewService(reporting.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create reporting service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, routes.Services{
			Commissions: commissionSvc,
			Wallet:      walletSvc,
			Withdrawals: withdrawalsSvc,
			Reporting:   reportingSvc,
			Settings:    settingsSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
