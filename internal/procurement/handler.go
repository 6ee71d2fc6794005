package procurement

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/freshchain/freshchain/internal/platform/httpx"
	"github.com/freshchain/freshchain/internal/shared"
	"github.com/freshchain/freshchain/internal/workflow"
)

// Handler exposes procurement workflow endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers procurement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.handleListOrders)
		r.Post("/", h.handleCreateOrder)
		r.Post("/quick", h.handleCreateQuickOrder)
		r.Get("/{id}", h.handleGetOrder)
		r.Post("/{id}/paid", h.handleMarkOrderPaid)
		r.Post("/{id}/advance", h.handleAdvance)
	})
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.handleListPayments)
		r.Post("/{id}/confirm", h.handleConfirmPayment)
	})
	r.Get("/invoices", h.handleListInvoices)
	r.Get("/supplier-history", h.handleListSupplierHistory)
}

type orderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"required,gt=0,lte=999999"`
}

type createOrderRequest struct {
	SupplierName    string             `json:"supplier_name" validate:"required,max=200"`
	SupplierContact string             `json:"supplier_contact" validate:"max=100"`
	AccountNumber   string             `json:"account_number" validate:"max=100"`
	DeliveryDate    string             `json:"delivery_date"`
	Notes           string             `json:"notes" validate:"max=1000"`
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := CreateOrderInput{
		SupplierName:    req.SupplierName,
		SupplierContact: req.SupplierContact,
		AccountNumber:   req.AccountNumber,
		Notes:           req.Notes,
	}
	if req.DeliveryDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DeliveryDate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "delivery_date must be YYYY-MM-DD")
			return
		}
		input.DeliveryDate = parsed
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	bundle, err := h.service.CreateOrder(r.Context(), shared.ActorFromContext(r.Context()), input)
	if err != nil {
		h.logger.Error("create order", slog.Any("error", err))
		httpx.RespondError(w, mapProcurementError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, bundleResponse(bundle))
}

type quickItemRequest struct {
	ProductName string  `json:"product_name" validate:"required,max=200"`
	Quantity    int64   `json:"quantity" validate:"required,gt=0,lte=999999"`
	UnitPrice   float64 `json:"unit_price" validate:"required,gt=0,lte=999999.99"`
}

type createQuickOrderRequest struct {
	SupplierName  string             `json:"supplier_name" validate:"max=200"`
	BankName      string             `json:"bank_name" validate:"max=100"`
	AccountNumber string             `json:"account_number" validate:"max=100"`
	Notes         string             `json:"notes" validate:"max=1000"`
	Items         []quickItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) handleCreateQuickOrder(w http.ResponseWriter, r *http.Request) {
	var req createQuickOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := CreateQuickOrderInput{
		SupplierName:  req.SupplierName,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		Notes:         req.Notes,
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, QuickItemInput{ProductName: item.ProductName, Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	bundle, err := h.service.CreateQuickOrder(r.Context(), shared.ActorFromContext(r.Context()), input)
	if err != nil {
		h.logger.Error("create quick order", slog.Any("error", err))
		httpx.RespondError(w, mapProcurementError(err))
		return
	}
	httpx.JSON(w, http.StatusCreated, bundleResponse(bundle))
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	filters := ListFilters{
		Status:  OrderStatus(r.URL.Query().Get("status")),
		Page:    page,
		PerPage: perPage,
	}
	orders, total, err := h.service.ListOrders(r.Context(), filters)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      orders,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	detail, err := h.service.GetOrderDetail(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, mapProcurementError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) handleMarkOrderPaid(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err := h.service.MarkOrderPaid(r.Context(), shared.ActorFromContext(r.Context()), id); err != nil {
		h.logger.Error("mark order paid", slog.Any("error", err), slog.Int64("order_id", id))
		httpx.RespondError(w, mapProcurementError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"paid": true})
}

type advanceRequest struct {
	Status string `json:"status" validate:"required,oneof=in_transit delivered"`
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var req advanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	err := h.service.AdvanceFulfillment(r.Context(), shared.ActorFromContext(r.Context()), id, OrderStatus(req.Status))
	if err != nil {
		h.logger.Error("advance fulfillment", slog.Any("error", err), slog.Int64("order_id", id))
		httpx.RespondError(w, mapProcurementError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"status": req.Status})
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context())
	if err != nil {
		h.logger.Error("list payments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": payments})
}

func (h *Handler) handleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	err := h.service.MarkPaymentPaid(r.Context(), shared.ActorFromContext(r.Context()), id)
	if err != nil {
		h.logger.Error("confirm payment", slog.Any("error", err), slog.Int64("payment_id", id))
		httpx.RespondError(w, mapProcurementError(err))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"confirmed": true})
}

func (h *Handler) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListInvoices(r.Context())
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices})
}

func (h *Handler) handleListSupplierHistory(w http.ResponseWriter, r *http.Request) {
	orderID, _ := strconv.ParseInt(r.URL.Query().Get("order_id"), 10, 64)
	entries, err := h.service.ListSupplierHistory(r.Context(), orderID)
	if err != nil {
		h.logger.Error("list supplier history", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": entries})
}

func bundleResponse(bundle OrderBundle) map[string]any {
	return map[string]any{
		"order":   bundle.Order,
		"items":   bundle.Items,
		"invoice": bundle.Invoice,
		"payment": bundle.Payment,
	}
}

func mapProcurementError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return httpx.ErrNotFound
	case errors.Is(err, ErrValidation), errors.Is(err, ErrOrderLinkMissing):
		return httpx.ErrValidation
	case errors.Is(err, ErrInvalidState):
		return httpx.ErrInvalidState
	case errors.Is(err, shared.ErrIdempotencyConflict), errors.Is(err, workflow.ErrDuplicateRun):
		return httpx.ErrInvalidState
	default:
		return err
	}
}
