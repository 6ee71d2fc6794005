package workflow

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/freshchain/freshchain/internal/platform/httpx"
)

// Handler exposes the run journal for operators chasing a failed chain.
type Handler struct {
	logger *slog.Logger
	runner *Runner
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, runner *Runner) *Handler {
	return &Handler{logger: logger, runner: runner}
}

// MountRoutes registers workflow routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/runs/{key}", h.handleGetRun)
}

type stepResponse struct {
	Seq        int       `json:"seq"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	Detail     string    `json:"detail,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

type runResponse struct {
	Key       string         `json:"key"`
	Kind      string         `json:"kind"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Steps     []stepResponse `json:"steps"`
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	run, steps, err := h.runner.Inspect(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("inspect run", slog.Any("error", err), slog.String("key", key))
		httpx.RespondError(w, err)
		return
	}
	resp := runResponse{
		Key:       run.Key,
		Kind:      run.Kind,
		Status:    string(run.Status),
		CreatedAt: run.CreatedAt,
		UpdatedAt: run.UpdatedAt,
		Steps:     make([]stepResponse, 0, len(steps)),
	}
	for _, step := range steps {
		resp.Steps = append(resp.Steps, stepResponse{
			Seq:        step.Seq,
			Name:       step.Name,
			Status:     string(step.Status),
			Detail:     step.Detail,
			FinishedAt: step.FinishedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}
