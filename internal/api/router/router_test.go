package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstock/internal/api/auth"
	"bookstock/internal/api/inventory"
	"bookstock/internal/api/ledger"
	"bookstock/internal/api/order"
	"bookstock/internal/api/report"
	"bookstock/internal/domain"
	apperror "bookstock/internal/errors"
	"bookstock/internal/pkg/cache"
	"bookstock/internal/pkg/logger"
	"bookstock/internal/pkg/token"
)

// fakeServices implementa todos os contratos dos handlers.
type fakeServices struct {
	items []domain.InventoryItem
}

func (f *fakeServices) Login(_ context.Context, req domain.LoginRequest) (string, error) {
	return "", apperror.NewUnauthorizedError("Credenciais inválidas.")
}

func (f *fakeServices) Search(_ context.Context, term string) ([]domain.InventoryItem, error) {
	return domain.FilterItems(f.items, term), nil
}

func (f *fakeServices) AddItem(_ context.Context, item domain.InventoryItem) (domain.InventoryItem, error) {
	return item, nil
}

func (f *fakeServices) ApplyMovement(_ context.Context, m domain.Movement) (domain.Transaction, error) {
	if m.Quantity > 2 {
		return domain.Transaction{}, apperror.NewInsufficientStockError(m.Title, 2, m.Quantity)
	}
	return domain.Transaction{Title: m.Title, Type: m.Type, Quantity: m.Quantity, UnitPrice: decimal.NewFromInt(10)}, nil
}

func (f *fakeServices) ListTransactions(context.Context) ([]domain.Transaction, error) {
	return nil, nil
}

func (f *fakeServices) ListAlerts(context.Context) ([]domain.InventoryItem, error) {
	return domain.LowStockItems(f.items), nil
}

func (f *fakeServices) SubmitOrder(_ context.Context, req domain.OrderRequest) (domain.Order, error) {
	return domain.Order{Partner: req.Partner, Title: req.Title, Quantity: req.Quantity, Status: domain.OrderStatusPending}, nil
}

func (f *fakeServices) ListOrders(context.Context) ([]domain.Order, error) {
	return nil, nil
}

func (f *fakeServices) MonthlySales(context.Context) ([]domain.MonthlySalesRow, error) {
	return nil, nil
}

func (f *fakeServices) InventoryValuation(context.Context) (domain.Valuation, error) {
	return domain.Valuation{Total: decimal.NewFromInt(50)}, nil
}

func (f *fakeServices) ReturnRates(context.Context) (map[string]domain.ReturnRate, error) {
	return map[string]domain.ReturnRate{}, nil
}

func (f *fakeServices) RenderPDF(context.Context) ([]byte, error) {
	return []byte("%PDF-1.3"), nil
}

// countingCache conta as requisições por chave para o rate limiter.
type countingCache struct {
	cache.NopClient
	mu     sync.Mutex
	counts map[string]int64
}

func (c *countingCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[key]++
	return c.counts[key], nil
}

func newTestRouter(t *testing.T) (http.Handler, *token.Service) {
	t.Helper()
	log := logger.Nop()
	svc := &fakeServices{items: []domain.InventoryItem{
		{Title: "Intro to Systems", ISBN: "978-1", Quantity: 2, SafetyStock: 3},
		{Title: "Compilers", ISBN: "978-2", Quantity: 9, SafetyStock: 3},
	}}
	tokenSvc := token.NewService("segredo", time.Hour)

	h := NewRouter(Handlers{
		Auth:      auth.NewHandler(svc, log),
		Inventory: inventory.NewHandler(svc, log),
		Ledger:    ledger.NewHandler(svc, log),
		Order:     order.NewHandler(svc, log),
		Report:    report.NewHandler(svc, log),
	}, tokenSvc, &countingCache{counts: make(map[string]int64)}, RateLimit{MaxRequests: 2, Period: time.Minute}, log)
	return h, tokenSvc
}

func do(h http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(h, http.MethodGet, "/ping", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestInventorySearch_Public(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(h, http.MethodGet, "/v1/inventory?q=Comp", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var items []domain.InventoryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Compilers", items[0].Title)
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	h, tokenSvc := newTestRouter(t)
	partner, err := tokenSvc.GenerateToken("loja", string(domain.RolePartner))
	require.NoError(t, err)

	paths := []struct{ method, path string }{
		{http.MethodPost, "/v1/movements"},
		{http.MethodGet, "/v1/transactions"},
		{http.MethodGet, "/v1/alerts"},
		{http.MethodGet, "/v1/orders"},
		{http.MethodGet, "/v1/reports/valuation"},
		{http.MethodGet, "/v1/reports/pdf"},
	}
	for _, p := range paths {
		assert.Equal(t, http.StatusUnauthorized, do(h, p.method, p.path, "", "").Code, p.path)
		assert.Equal(t, http.StatusForbidden, do(h, p.method, p.path, "", partner).Code, p.path)
	}
}

func TestMovements(t *testing.T) {
	h, tokenSvc := newTestRouter(t)
	admin, err := tokenSvc.GenerateToken("admin", string(domain.RoleAdmin))
	require.NoError(t, err)

	rec := do(h, http.MethodPost, "/v1/movements", `{"title":"Intro to Systems","movement_type":"SHIPMENT","quantity":1,"partner":"BookStoreA"}`, admin)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(h, http.MethodPost, "/v1/movements", `{"title":"Intro to Systems","movement_type":"SHIPMENT","quantity":10,"partner":"BookStoreA"}`, admin)
	require.Equal(t, http.StatusConflict, rec.Code)
	var body domain.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Category)

	rec = do(h, http.MethodPost, "/v1/movements", `{"titulo":"x"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReports(t *testing.T) {
	h, tokenSvc := newTestRouter(t)
	admin, err := tokenSvc.GenerateToken("admin", string(domain.RoleAdmin))
	require.NoError(t, err)

	rec := do(h, http.MethodGet, "/v1/reports/valuation", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":"50"}`, rec.Body.String())

	rec = do(h, http.MethodGet, "/v1/reports/pdf", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	rec = do(h, http.MethodGet, "/v1/alerts", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Intro to Systems")
	assert.NotContains(t, rec.Body.String(), "Compilers")
}

func TestOrders_RateLimited(t *testing.T) {
	h, _ := newTestRouter(t)
	body := `{"partner":"BookStoreA","title":"Compilers","quantity":3}`

	assert.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/v1/orders", body, "").Code)
	assert.Equal(t, http.StatusCreated, do(h, http.MethodPost, "/v1/orders", body, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodPost, "/v1/orders", body, "").Code)
}

func TestLogin_Rejected(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(h, http.MethodPost, "/v1/login", `{"username":"admin","password":"x"}`, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := do(h, http.MethodDelete, "/v1/inventory", "", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNonIntegerQuantity(t *testing.T) {
	h, tokenSvc := newTestRouter(t)
	admin, err := tokenSvc.GenerateToken("admin", string(domain.RoleAdmin))
	require.NoError(t, err)

	cases := []struct {
		path, body, bearer string
	}{
		{"/v1/movements", `{"title":"Intro to Systems","movement_type":"SHIPMENT","quantity":1.5,"partner":"BookStoreA"}`, admin},
		{"/v1/orders", `{"partner":"BookStoreA","title":"Compilers","quantity":2.5}`, ""},
	}
	for _, c := range cases {
		rec := do(h, http.MethodPost, c.path, c.body, c.bearer)

		require.Equal(t, http.StatusBadRequest, rec.Code, c.path)
		var body domain.ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "INVALID_QUANTITY", body.Category, c.path)
	}
}
