package router

import (
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "govendas/docs" // Registro da especificação swagger gerada
	"govendas/internal/api/analytics"
	"govendas/internal/api/product"
	"govendas/internal/api/sale"
	"govendas/internal/api/user"
	"govendas/internal/pkg/cache"
	"govendas/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(
	productHandler *product.Handler,
	saleHandler *sale.Handler,
	analyticsHandler *analytics.Handler,
	userHandler *user.Handler,
	tokenSvc middleware.TokenService,
	cacheClient cache.Client,
	rateLimitMax int,
	rateLimitPeriod time.Duration,
) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(tokenSvc)

	// --- 1. Rotas públicas ---
	mux.HandleFunc("/ping", PingHandler)
	mux.HandleFunc("/v1/register", userHandler.RegisterUserHandler)
	mux.HandleFunc("/v1/login", userHandler.LoginUserHandler)
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// --- 2. Rotas do Módulo de Produtos (v1, protegidas) ---
	mux.HandleFunc("/v1/products", auth(productHandler.ProductsHandler))
	mux.HandleFunc("/v1/products/", auth(productHandler.ProductByIDHandler))

	// --- 3. Ledger de vendas (protegida) ---
	mux.HandleFunc("/v1/sales", auth(saleHandler.RecordSaleHandler))

	// --- 4. Analytics e painel (protegidas) ---
	mux.HandleFunc("/v1/analytics/report", auth(analyticsHandler.ReportHandler))
	mux.HandleFunc("/v1/analytics/stats", auth(analyticsHandler.StatsHandler))

	// --- 5. Middlewares globais ---
	return middleware.RateLimiter(cacheClient, rateLimitMax, rateLimitPeriod)(mux)
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
