package returns

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/freshchain/freshchain/internal/platform/httpx"
	"github.com/freshchain/freshchain/internal/shared"
)

// Handler exposes return request endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers return routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleList)
	r.Post("/", h.handleCreate)
	r.Post("/{id}/status", h.handleUpdateStatus)
}

type createRequest struct {
	ProductName string `json:"product_name" validate:"required,max=200"`
	Quantity    int64  `json:"quantity" validate:"required,gt=0,lte=999999"`
	Reason      string `json:"reason" validate:"required,max=1000"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ret, err := h.service.Create(r.Context(), shared.ActorFromContext(r.Context()), CreateInput{
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
	})
	if err != nil {
		h.logger.Error("create return", slog.Any("error", err))
		httpx.RespondError(w, mapReturnError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, ret)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.UpdateStatus(r.Context(), shared.ActorFromContext(r.Context()), id, Status(req.Status)); err != nil {
		h.logger.Error("update return status", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, mapReturnError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": req.Status})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list returns", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func mapReturnError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return httpx.ErrNotFound
	case errors.Is(err, ErrValidation):
		return httpx.ErrValidation
	default:
		return err
	}
}
