package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marketkart/backoffice-backend/api/controllers"
	"github.com/marketkart/backoffice-backend/api/middleware"
	"github.com/marketkart/backoffice-backend/internal/commission"
	"github.com/marketkart/backoffice-backend/internal/reporting"
	"github.com/marketkart/backoffice-backend/internal/settings"
	"github.com/marketkart/backoffice-backend/internal/wallet"
	"github.com/marketkart/backoffice-backend/internal/withdrawals"
	"github.com/marketkart/backoffice-backend/pkg/config"
	"github.com/marketkart/backoffice-backend/pkg/db"
	"github.com/marketkart/backoffice-backend/pkg/logger"
	"github.com/marketkart/backoffice-backend/pkg/redis"
)

// Services groups everything the router wires into handlers.
type Services struct {
	Commissions commission.Service
	Wallet      wallet.Service
	Withdrawals withdrawals.Service
	Reporting   reporting.Service
	Settings    settings.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders/{orderId}/commissions", func(r chi.Router) {
			r.Post("/distribute", controllers.DistributeCommissions(svcs.Commissions, logg))
			r.Post("/reverse", controllers.ReverseCommissions(svcs.Commissions, logg))
		})

		r.Route("/subjects/{subjectType}/{subjectId}", func(r chi.Router) {
			r.Get("/commissions/summary", controllers.CommissionSummary(svcs.Reporting, logg))
			r.Get("/wallet/balance", controllers.WalletBalance(svcs.Wallet, logg))
			r.Get("/wallet/transactions", controllers.WalletTransactions(svcs.Wallet, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Get("/dashboard/financial", controllers.FinancialDashboard(svcs.Reporting, logg))

		r.Route("/withdrawals", func(r chi.Router) {
			r.Get("/", controllers.ListWithdrawals(svcs.Withdrawals, logg))
			r.Post("/{requestId}/process", controllers.ProcessWithdrawal(svcs.Withdrawals, logg))
			r.Post("/{requestId}/complete", controllers.CompleteWithdrawal(svcs.Withdrawals, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.GetSettings(svcs.Settings, logg))
			r.Put("/", controllers.UpdateSettings(svcs.Settings, logg))
		})
	})

	return r
}
