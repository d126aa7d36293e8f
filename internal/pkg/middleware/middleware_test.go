package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstock/internal/domain"
	"bookstock/internal/pkg/cache"
	"bookstock/internal/pkg/logger"
	"bookstock/internal/pkg/token"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func protected(svc TokenService, roles ...domain.Role) http.HandlerFunc {
	auth := NewAuthMiddleware(svc, logger.Nop())
	perm := PermissionMiddleware(logger.Nop(), roles...)
	return auth(perm(okHandler))
}

func TestAuth(t *testing.T) {
	svc := token.NewService("segredo", time.Hour)
	adminToken, err := svc.GenerateToken("admin", string(domain.RoleAdmin))
	require.NoError(t, err)
	partnerToken, err := svc.GenerateToken("loja", string(domain.RolePartner))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"sem header", "", http.StatusUnauthorized},
		{"sem Bearer", adminToken, http.StatusUnauthorized},
		{"token inválido", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"papel errado", "Bearer " + partnerToken, http.StatusForbidden},
		{"admin", "Bearer " + adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/transactions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			protected(svc, domain.RoleAdmin)(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestPermission_WithoutAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	PermissionMiddleware(logger.Nop(), domain.RoleAdmin)(okHandler)(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// counterCache implementa só o necessário para o rate limiter.
type counterCache struct {
	cache.NopClient
	mu      sync.Mutex
	counts  map[string]int64
	expires int
	err     error
}

func (c *counterCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	c.counts[key]++
	return c.counts[key], nil
}

func (c *counterCache) Expire(context.Context, string, time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expires++
	return nil
}

func TestRateLimiter(t *testing.T) {
	cc := &counterCache{counts: make(map[string]int64)}
	h := RateLimiter(cc, 2, time.Minute, logger.Nop())(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/v1/orders", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 1, cc.expires)

	// Outro IP tem seu próprio contador.
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiter_CacheDown(t *testing.T) {
	cc := &counterCache{counts: make(map[string]int64), err: errors.New("conexão recusada")}
	h := RateLimiter(cc, 1, time.Minute, logger.Nop())(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/orders", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	var seen string
	h := RequestLogger(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}
