package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	// Registra a documentação OpenAPI no swag.
	_ "bookstock/docs"
	"bookstock/internal/api/auth"
	"bookstock/internal/api/inventory"
	"bookstock/internal/api/ledger"
	"bookstock/internal/api/order"
	"bookstock/internal/api/report"
	"bookstock/internal/domain"
	"bookstock/internal/pkg/cache"
	"bookstock/internal/pkg/logger"
	"bookstock/internal/pkg/middleware"
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Auth      *auth.Handler
	Inventory *inventory.Handler
	Ledger    *ledger.Handler
	Order     *order.Handler
	Report    *report.Handler
}

// RateLimit configura o limite de envio de pedidos por IP.
type RateLimit struct {
	MaxRequests int
	Period      time.Duration
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, tokenSvc middleware.TokenService, cacheClient cache.Client, rl RateLimit, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	authMw := middleware.NewAuthMiddleware(tokenSvc, log)
	adminOnly := middleware.PermissionMiddleware(log, domain.RoleAdmin)
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return authMw(adminOnly(next))
	}
	limited := middleware.RateLimiter(cacheClient, rl.MaxRequests, rl.Period, log)

	// --- Health Check e Documentação ---
	mux.HandleFunc("GET /ping", PingHandler)
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	// --- Rotas públicas ---
	mux.HandleFunc("POST /v1/login", h.Auth.LoginHandler)
	mux.HandleFunc("GET /v1/inventory", h.Inventory.SearchHandler)
	mux.Handle("POST /v1/orders", limited(http.HandlerFunc(h.Order.SubmitOrderHandler)))

	// --- Rotas do administrador ---
	mux.HandleFunc("POST /v1/inventory", admin(h.Inventory.CreateItemHandler))
	mux.HandleFunc("POST /v1/movements", admin(h.Ledger.ApplyMovementHandler))
	mux.HandleFunc("GET /v1/transactions", admin(h.Ledger.ListTransactionsHandler))
	mux.HandleFunc("GET /v1/alerts", admin(h.Ledger.ListAlertsHandler))
	mux.HandleFunc("GET /v1/orders", admin(h.Order.ListOrdersHandler))
	mux.HandleFunc("GET /v1/reports/monthly-sales", admin(h.Report.MonthlySalesHandler))
	mux.HandleFunc("GET /v1/reports/valuation", admin(h.Report.ValuationHandler))
	mux.HandleFunc("GET /v1/reports/return-rates", admin(h.Report.ReturnRatesHandler))
	mux.HandleFunc("GET /v1/reports/pdf", admin(h.Report.PDFHandler))

	return middleware.RequestLogger(log)(mux)
}

// PingHandler é o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}
