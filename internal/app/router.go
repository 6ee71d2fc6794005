package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/freshchain/freshchain/internal/analytics"
	"github.com/freshchain/freshchain/internal/inventory"
	"github.com/freshchain/freshchain/internal/observability"
	"github.com/freshchain/freshchain/internal/procurement"
	"github.com/freshchain/freshchain/internal/quality"
	"github.com/freshchain/freshchain/internal/returns"
	"github.com/freshchain/freshchain/internal/shared"
	"github.com/freshchain/freshchain/internal/workflow"
	"github.com/freshchain/freshchain/jobs"
	"github.com/freshchain/freshchain/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config
	Roles  *shared.RoleStore

	InventoryHandler   *inventory.Handler
	ProcurementHandler *procurement.Handler
	QualityHandler     *quality.Handler
	ReturnsHandler     *returns.Handler
	AnalyticsHandler   *analytics.Handler
	WorkflowHandler    *workflow.Handler
	ReportHandler      *report.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with FreshChain defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Roles:   params.Roles,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/materials", params.InventoryHandler.MountRoutes)
		params.ProcurementHandler.MountRoutes(r)
		r.Route("/quality", params.QualityHandler.MountRoutes)
		r.Route("/returns", params.ReturnsHandler.MountRoutes)
		r.Route("/analytics", params.AnalyticsHandler.MountRoutes)
		if params.WorkflowHandler != nil {
			r.Route("/workflows", params.WorkflowHandler.MountRoutes)
		}
	})
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
