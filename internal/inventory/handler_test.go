package inventory

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (chi.Router, *Service) {
	t.Helper()
	svc := NewService(newFakeRepo(), &fakeAudit{}, &fakeFeed{})
	handler := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, svc
}

func TestHandlerCreateMaterial(t *testing.T) {
	router, _ := newTestRouter(t)

	body := bytes.NewBufferString(`{"name":"Tomato","category":"Vegetables","color":"Red","price":2.5,"quantity":40}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp materialResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "Tomato", resp.Name)
	assert.Equal(t, int64(40), resp.Quantity)
}

func TestHandlerCreateMaterialRejectsBadBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":""}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerAdjustStock(t *testing.T) {
	router, svc := newTestRouter(t)
	seedMaterial(t, svc, 5)

	req := httptest.NewRequest(http.MethodPost, "/1/adjust", bytes.NewBufferString(`{"delta":-3,"reason":"spoilage"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		MaterialID  int64 `json:"material_id"`
		Delta       int64 `json:"delta"`
		NewQuantity int64 `json:"new_quantity"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(-3), resp.Delta)
	assert.Equal(t, int64(2), resp.NewQuantity)
}

func TestHandlerGetMissingMaterial(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/99", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
