package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newHandlerFixture(t *testing.T) (chi.Router, *Runner) {
	t.Helper()
	runner := NewRunner(NewMemoryStore(), nil, nil)
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), runner)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, runner
}

func TestHandlerGetRunReportsFailedStep(t *testing.T) {
	router, runner := newHandlerFixture(t)

	steps := []Step{
		{Name: "complete_payment", Run: func(ctx context.Context) error { return nil }},
		{Name: "advance_order", Run: func(ctx context.Context) error { return errors.New("order gone") }},
	}
	_ = runner.Execute(context.Background(), "payment.confirm", "PAY:ORD-1", steps)

	req := httptest.NewRequest(http.MethodGet, "/runs/PAY:ORD-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Kind   string `json:"kind"`
		Status string `json:"status"`
		Steps  []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
			Detail string `json:"detail"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "payment.confirm", resp.Kind)
	require.Equal(t, string(RunFailed), resp.Status)
	require.Len(t, resp.Steps, 2)
	require.Equal(t, string(StepCompleted), resp.Steps[0].Status)
	require.Equal(t, "advance_order", resp.Steps[1].Name)
	require.Equal(t, "order gone", resp.Steps[1].Detail)
}

func TestHandlerGetRunUnknownKey(t *testing.T) {
	router, _ := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/runs/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
