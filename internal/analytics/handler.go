package analytics

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/freshchain/freshchain/internal/platform/httpx"
)

// ReportPort renders a summary document to PDF.
type ReportPort interface {
	RenderSummary(ctx context.Context, summary Summary) ([]byte, error)
}

// Handler exposes the dashboard summary and its exports.
type Handler struct {
	logger  *slog.Logger
	service *Service
	report  ReportPort
}

// NewHandler builds Handler instance. report may be nil when no Gotenberg
// endpoint is configured.
func NewHandler(logger *slog.Logger, service *Service, report ReportPort) *Handler {
	return &Handler{logger: logger, service: service, report: report}
}

// MountRoutes registers analytics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.handleSummary)
	r.Get("/export/csv", h.handleExportCSV)
	r.Get("/export/pdf", h.handleExportPDF)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("analytics summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("analytics csv export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteSummaryCSV(&buf, summary); err != nil {
		h.logger.Error("analytics csv render", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="analytics-summary.csv"`)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	if h.report == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Export Unavailable", "PDF rendering is not configured")
		return
	}
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("analytics pdf export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	pdf, err := h.report.RenderSummary(r.Context(), summary)
	if err != nil {
		h.logger.Error("analytics pdf render", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Export Failed", "document renderer did not produce a PDF")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="analytics-summary.pdf"`)
	_, _ = w.Write(pdf)
}
