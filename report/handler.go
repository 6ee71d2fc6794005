package report

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/freshchain/freshchain/internal/procurement"
)

// OrderSource provides order aggregates for document rendering.
type OrderSource interface {
	GetOrderDetail(ctx context.Context, orderID int64) (procurement.OrderDetail, error)
}

// Handler manages report endpoints.
type Handler struct {
	client   *Client
	renderer *Renderer
	orders   OrderSource
	logger   *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, renderer *Renderer, orders OrderSource, logger *slog.Logger) *Handler {
	return &Handler{client: client, renderer: renderer, orders: orders, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Get("/orders/{id}/invoice.pdf", h.invoicePDF)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	detail, err := h.orders.GetOrderDetail(r.Context(), id)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	pdf, err := h.renderer.RenderInvoice(r.Context(), detail)
	if err != nil {
		h.logger.Error("render invoice pdf", slog.Any("error", err), slog.Int64("order_id", id))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=invoice.pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
