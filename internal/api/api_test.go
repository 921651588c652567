package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/kitchenops/internal/config"
	"github.com/andresuchdata/kitchenops/internal/ingest"
	"github.com/andresuchdata/kitchenops/internal/metrics"
	"github.com/andresuchdata/kitchenops/internal/repository/memory"
	"github.com/andresuchdata/kitchenops/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock() time.Time { return time.Date(2024, time.June, 20, 12, 0, 0, 0, time.UTC) }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore().WithClock(clock)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	sales := service.NewSalesService(store, nil)

	return NewRouter(&Services{
		Catalog:    service.NewCatalogService(store, nil),
		Ledger:     service.NewLedgerService(store, nil, m),
		Snapshot:   service.NewSnapshotService(store, nil, nil),
		Sales:      sales,
		Close:      service.NewCloseService(store, nil, m).WithClock(clock),
		Forecast:   service.NewForecastService(store, nil, config.ForecastConfig{}, m).WithClock(clock),
		Analytics:  service.NewAnalyticsService(store, nil),
		Onboarding: service.NewOnboardingService(store).WithClock(clock),
		Ingester:   ingest.NewIngester(sales, 2),
		Gatherer:   reg,
	}, []string{"*"})
}

func do(t *testing.T, router http.Handler, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" && bytes.HasPrefix(rec.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func idOf(t *testing.T, payload map[string]any, key string) string {
	t.Helper()
	obj, ok := payload[key].(map[string]any)
	require.True(t, ok, "missing %s in %v", key, payload)
	return obj["id"].(string)
}

func TestHealth(t *testing.T) {
	code, body := do(t, newTestRouter(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestCloseFlowOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	code, body := do(t, router, http.MethodPost, "/api/v1/menu-items", map[string]any{"name": "Pizza", "category": "Mains"})
	require.Equal(t, http.StatusOK, code)
	pizzaID := idOf(t, body, "menu_item")

	_, body = do(t, router, http.MethodPost, "/api/v1/ingredients", map[string]any{"name": "Flour", "unit": "kg"})
	flourID := idOf(t, body, "ingredient")

	code, body = do(t, router, http.MethodPut, "/api/v1/bom", map[string]any{"menu_item_id": pizzaID, "ingredient_id": flourID, "qty_per_item": 0.5})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["status"])

	code, body = do(t, router, http.MethodPost, "/api/v1/inventory/"+flourID+"/receive", map[string]any{"qty": 100})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 100.0, body["new_balance"])

	code, _ = do(t, router, http.MethodPost, "/api/v1/sales/ingest", map[string]any{"rows": []map[string]any{
		{"business_date": "2024-06-03", "menu_item_name": "Pizza", "qty": 10, "net_sales": 120},
	}})
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, router, http.MethodPost, "/api/v1/close/2024-06-03", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, 1.0, body["consume_txns_created"])

	_, body = do(t, router, http.MethodPost, "/api/v1/close/2024-06-03", nil)
	assert.Equal(t, "skipped", body["status"])

	_, body = do(t, router, http.MethodGet, "/api/v1/inventory/"+flourID+"/balance", nil)
	assert.Equal(t, 95.0, body["qty_on_hand"])

	_, body = do(t, router, http.MethodGet, "/api/v1/inventory/"+flourID+"/transactions?type=consume", nil)
	txns, ok := body["transactions"].([]any)
	require.True(t, ok)
	assert.Len(t, txns, 1)

	_, body = do(t, router, http.MethodPost, "/api/v1/close/2024-06-03/reverse", nil)
	assert.Equal(t, 1.0, body["txns_reversed"])

	_, body = do(t, router, http.MethodGet, "/api/v1/inventory/"+flourID+"/balance", nil)
	assert.Equal(t, 100.0, body["qty_on_hand"])
}

func TestValidationErrorsAreReportedInBand(t *testing.T) {
	router := newTestRouter(t)
	_, body := do(t, router, http.MethodPost, "/api/v1/ingredients", map[string]any{"name": "Salt", "unit": "kg"})
	saltID := idOf(t, body, "ingredient")

	code, body := do(t, router, http.MethodPost, "/api/v1/inventory/"+saltID+"/receive", map[string]any{"qty": -1})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "error", body["status"])
	assert.NotEmpty(t, body["message"])

	code, body = do(t, router, http.MethodPost, "/api/v1/inventory/00000000-0000-0000-0000-000000000001/receive", map[string]any{"qty": 1})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "error", body["status"])
}

func TestBadRequests(t *testing.T) {
	router := newTestRouter(t)

	code, _ := do(t, router, http.MethodPost, "/api/v1/close/June-3", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, router, http.MethodGet, "/api/v1/inventory/not-a-uuid/balance", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterOrderOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	order := map[string]any{
		"order_id":      "A-1",
		"business_date": "2024-06-20",
		"items":         []map[string]any{{"menu_item_name": "Burger", "qty": 2, "price": 24}},
	}

	code, body := do(t, router, http.MethodPost, "/api/v1/orders", order)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, 1.0, body["menu_items_created"])

	_, body = do(t, router, http.MethodPost, "/api/v1/orders", order)
	assert.Equal(t, "duplicate", body["status"])

	_, body = do(t, router, http.MethodGet, "/api/v1/analytics/daily?date=2024-06-20", nil)
	assert.Equal(t, 1.0, body["total_orders"])
}

func TestUploadExports(t *testing.T) {
	router := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("files", "items.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Order Date,Menu Item,Qty,Net Price\n06/14/2024,Pizza,2,24\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Files []ingest.FileResult `json:"files"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Files, 1)
	assert.Equal(t, ingest.KindItems, body.Files[0].Kind)
	assert.Equal(t, 1, body.Files[0].Rows)

	_, out := do(t, router, http.MethodGet, "/api/v1/sales/top-items?from=2024-06-14&to=2024-06-14", nil)
	items, ok := out["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	do(t, router, http.MethodPost, "/api/v1/close/2024-06-03", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "kitchenops_daily_close_total")
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, all := normalizeAllowedOrigins([]string{"https://a.example, https://b.example", " "})
	assert.False(t, all)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, origins)

	_, all = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, all)
}
