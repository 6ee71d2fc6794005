package quality

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/freshchain/freshchain/internal/inventory"
	"github.com/freshchain/freshchain/internal/platform/httpx"
	"github.com/freshchain/freshchain/internal/shared"
)

// Handler exposes quality control endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers quality routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/rejections", func(r chi.Router) {
		r.Get("/", h.handleListRejections)
		r.Post("/", h.handleReject)
		r.Post("/{id}/resolve", h.handleResolve)
		r.Get("/{id}/messages", h.handleListMessages)
		r.Post("/{id}/messages", h.handlePostMessage)
	})
	r.Route("/inspections", func(r chi.Router) {
		r.Get("/", h.handleListInspections)
		r.Post("/", h.handleRecordInspection)
	})
}

type rejectRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0,lte=999999"`
	Reason    string `json:"reason" validate:"required,max=1000"`
	SellerID  string `json:"seller_id" validate:"max=100"`
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	item, err := h.service.RejectMaterial(r.Context(), shared.ActorFromContext(r.Context()), RejectInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
		SellerID:  req.SellerID,
	})
	if err != nil {
		h.logger.Error("reject material", slog.Any("error", err))
		httpx.RespondError(w, mapQualityError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.ResolveRejection(r.Context(), shared.ActorFromContext(r.Context()), id); err != nil {
		h.logger.Error("resolve rejection", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, mapQualityError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"resolved": true})
}

func (h *Handler) handleListRejections(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListRejections(r.Context())
	if err != nil {
		h.logger.Error("list rejections", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

type messageRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
}

func (h *Handler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req messageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	msg, err := h.service.PostMessage(r.Context(), shared.ActorFromContext(r.Context()), id, req.Message)
	if err != nil {
		h.logger.Error("post message", slog.Any("error", err), slog.Int64("rejection_id", id))
		httpx.RespondError(w, mapQualityError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, msg)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	msgs, err := h.service.ListMessages(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, mapQualityError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": msgs})
}

type inspectionRequest struct {
	ProductID        int64  `json:"product_id" validate:"gte=0"`
	ProductName      string `json:"product_name" validate:"max=200"`
	Condition        string `json:"condition" validate:"required,max=100"`
	FitForProcessing bool   `json:"fit_for_processing"`
	Notes            string `json:"notes" validate:"max=1000"`
}

func (h *Handler) handleRecordInspection(w http.ResponseWriter, r *http.Request) {
	var req inspectionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rec, err := h.service.RecordInspection(r.Context(), shared.ActorFromContext(r.Context()), InspectionInput{
		ProductID:        req.ProductID,
		ProductName:      req.ProductName,
		Condition:        req.Condition,
		FitForProcessing: req.FitForProcessing,
		Notes:            req.Notes,
	})
	if err != nil {
		h.logger.Error("record inspection", slog.Any("error", err))
		httpx.RespondError(w, mapQualityError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleListInspections(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.ListInspections(r.Context())
	if err != nil {
		h.logger.Error("list inspections", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": recs})
}

func mapQualityError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, inventory.ErrNotFound):
		return httpx.ErrNotFound
	case errors.Is(err, ErrValidation):
		return httpx.ErrValidation
	case errors.Is(err, shared.ErrForbidden):
		return httpx.ErrForbidden
	default:
		return err
	}
}
