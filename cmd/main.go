package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bookstock/config"
	"bookstock/internal/api/auth"
	"bookstock/internal/api/inventory"
	"bookstock/internal/api/ledger"
	"bookstock/internal/api/order"
	"bookstock/internal/api/report"
	"bookstock/internal/api/router"
	"bookstock/internal/pkg/cache"
	"bookstock/internal/pkg/database"
	"bookstock/internal/pkg/logger"
	"bookstock/internal/pkg/pdf"
	"bookstock/internal/pkg/token"
	"bookstock/internal/repository/csvstore"
	"bookstock/internal/repository/pgstore"
	"bookstock/internal/service/authservice"
	"bookstock/internal/service/inventoryservice"
	"bookstock/internal/service/ledgerservice"
	"bookstock/internal/service/orderservice"
	"bookstock/internal/service/reportservice"
)

// store reúne o que os serviços esperam da persistência (CSV ou PostgreSQL).
type store interface {
	inventoryservice.Repository
	ledgerservice.Repository
	orderservice.Repository
	reportservice.Repository
}

func main() {
	log.Println("⚡ Inicializando serviço BookStock...")
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	var appLog logger.Logger
	if cfg.Environment == "development" {
		appLog = logger.NewDevelopmentLogger(cfg.LogLevel)
	} else {
		appLog = logger.NewLogger(cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		appLog.Fatal("Configuração inválida.", err)
	}
	appLog.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment, "store": cfg.StoreDriver})

	// 1. Persistência
	var (
		repo  store
		creds authservice.CredentialStore = authservice.StaticCredentials{
			Username:     cfg.AdminUsername,
			PasswordHash: cfg.AdminPasswordHash,
		}
	)
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := database.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			appLog.Fatal("Falha ao conectar ao banco de dados.", err)
		}
		defer db.Close()
		repo = pgstore.NewStore(db, cfg.DBTimeout, appLog)
		creds = authservice.Chain{creds, pgstore.NewOperatorRepository(db, cfg.DBTimeout, appLog)}
		appLog.Info("Conexão PostgreSQL estabelecida.", nil)
	default:
		csvStore, err := csvstore.Open(cfg.DataDir, appLog)
		if err != nil {
			appLog.Fatal("Falha ao abrir os arquivos de dados.", err)
		}
		repo = csvStore
		appLog.Info("Armazenamento CSV pronto.", map[string]interface{}{"dir": cfg.DataDir})
	}

	// 2. Cache (Redis), opcional
	var cacheClient cache.Client = cache.NopClient{}
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			appLog.Warn("Redis indisponível; seguindo sem cache e sem rate limit.", map[string]interface{}{"error": err.Error()})
		} else {
			defer redisClient.Close()
			cacheClient = redisClient
			appLog.Info("Conexão Redis estabelecida.", nil)
		}
	}

	// 3. Injeção de dependências: Repository -> Service -> Handler
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	reportSvc := reportservice.NewService(repo, cacheClient, pdf.NewRenderer("BookStock"), cfg.CacheTTL, appLog)
	ledgerSvc := ledgerservice.NewService(repo, reportSvc, appLog)
	inventorySvc := inventoryservice.NewService(repo, reportSvc, appLog)
	orderSvc := orderservice.NewService(repo, appLog)
	authSvc := authservice.NewService(creds, tokenSvc, appLog)

	handlers := router.Handlers{
		Auth:      auth.NewHandler(authSvc, appLog),
		Inventory: inventory.NewHandler(inventorySvc, appLog),
		Ledger:    ledger.NewHandler(ledgerSvc, appLog),
		Order:     order.NewHandler(orderSvc, appLog),
		Report:    report.NewHandler(reportSvc, appLog),
	}
	rl := router.RateLimit{MaxRequests: cfg.RateLimitMaxRequests, Period: cfg.RateLimitPeriod}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.NewRouter(handlers, tokenSvc, cacheClient, rl, appLog),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor BookStock ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
