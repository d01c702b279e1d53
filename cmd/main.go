package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"govendas/config"
	"govendas/internal/pkg/cache"
	"govendas/internal/pkg/database"
	"govendas/internal/pkg/logger"
	"govendas/internal/pkg/token"

	// Camadas da aplicação para Injeção de Dependências
	"govendas/internal/api/analytics"
	"govendas/internal/api/product"
	"govendas/internal/api/router"
	"govendas/internal/api/sale"
	"govendas/internal/api/user"
	"govendas/internal/repository/productrepo"
	"govendas/internal/repository/userrepo"
	"govendas/internal/service/analyticsservice"
	"govendas/internal/service/ledgerservice"
	"govendas/internal/service/productservice"
	"govendas/internal/service/userservice"
)

func main() {
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		// Se o .env não existir, seguimos: as variáveis essenciais podem
		// estar no ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	// 1. Configuração e Inicialização
	cfg := config.LoadConfig()
	appLog := logger.NewLogger(cfg.LogLevel)
	appLog.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL) — ciclo de vida explícito:
	// aberto aqui, fechado no shutdown.
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	appLog.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	appLog.Info("Cliente Redis inicializado.", nil)

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Repository -> Service -> Handler)

	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, appLog)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, appLog)

	productSvc := productservice.NewService(productRepo, appLog)
	ledgerSvc := ledgerservice.NewService(productRepo, appLog)
	analyticsSvc := analyticsservice.NewService(productRepo, productSvc, appLog)
	userSvc := userservice.NewService(userRepo, tokenSvc)

	productHandler := product.NewHandler(productSvc, appLog)
	saleHandler := sale.NewHandler(ledgerSvc, appLog)
	analyticsHandler := analytics.NewHandler(analyticsSvc, appLog)
	userHandler := user.NewHandler(userSvc, appLog)

	// 4. Configuração e Início do Roteador/Servidor

	r := router.NewRouter(
		productHandler,
		saleHandler,
		analyticsHandler,
		userHandler,
		tokenSvc,
		cacheClient,
		cfg.RateLimitMaxRequests,
		cfg.RateLimitPeriod,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor GoVendas ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
