package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/salesreport/api/controllers"
	"github.com/angelmondragon/salesreport/api/middleware"
	"github.com/angelmondragon/salesreport/internal/reports"
	"github.com/angelmondragon/salesreport/pkg/config"
	"github.com/angelmondragon/salesreport/pkg/logger"
)

// NewRouter wires the HTTP surface. redisP and metricsHandler may be nil.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	reportService reports.Service,
	metricsHandler http.Handler,
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

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Post("/", controllers.ReportsCreate(reportService, logg))
		r.Get("/", controllers.ReportsList(reportService, logg))
		r.Get("/{runId}", controllers.ReportsGet(reportService, logg))
		r.Get("/{runId}/export.xlsx", controllers.ReportsExportXLSX(reportService, cfg.Report.SheetName, logg))
	})

	return r
}
