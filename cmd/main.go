package main

// @title           goficha API
// @version         1.0
// @description     Estoque, fichas de saldo, vendas e reservas antecipadas por QR code.
// @BasePath        /v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Token JWT do caixa. Exemplo: "Bearer {token}"

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"goficha/config"
	"goficha/internal/pkg/cache"
	"goficha/internal/pkg/database"
	"goficha/internal/pkg/logger"
	"goficha/internal/pkg/token"

	"goficha/internal/api/caixa"
	"goficha/internal/api/estoque"
	"goficha/internal/api/ficha"
	"goficha/internal/api/produto"
	"goficha/internal/api/reserva"
	"goficha/internal/api/router"
	"goficha/internal/api/venda"
	"goficha/internal/domain"
	"goficha/internal/repository/memstore"
	"goficha/internal/repository/pgstore"
	"goficha/internal/service/caixaservice"
	"goficha/internal/service/estoqueservice"
	"goficha/internal/service/fichaservice"
	"goficha/internal/service/reservaservice"
	"goficha/internal/service/vendaservice"
)

func main() {
	log.Println("⚡ Inicializando serviço goficha...")
	// As variáveis podem vir do ambiente do sistema (ex: Docker), o .env é opcional.
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Erro de Configuração: %v", err)
	}
	logg := logger.NewLogger(cfg.LogLevel)
	logg.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment, "store": cfg.StoreDriver})

	// 1. Persistência
	var (
		store domain.TxManager
		db    *sql.DB
	)
	switch cfg.StoreDriver {
	case "memory":
		store = memstore.New()
		logg.Warn("Usando armazenamento em memória. Os dados não sobrevivem ao reinício.", nil)
	default:
		db, err = database.NewPostgresDB(cfg.DatabaseURL, logg)
		if err != nil {
			logg.Fatal("Falha ao conectar ao banco de dados.", err)
		}
		store = pgstore.New(db, cfg.DBTimeout, logg)
		logg.Info("Conexão PostgreSQL estabelecida.", nil)
	}
	if db != nil {
		defer db.Close()
	}

	// 2. Cache (Redis)
	cacheClient := cache.NewNoopClient()
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisAddr, cfg.CacheTimeout)
		if err != nil {
			logg.Warn("Redis indisponível, seguindo sem cache.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
		} else {
			cacheClient = redisClient
			logg.Info("Conexão Redis estabelecida.", nil)
		}
	}

	// 3. Injeção de dependências: Repository -> Service -> Handler
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	estoqueSvc := estoqueservice.NewService(store, logg)
	fichaSvc := fichaservice.NewService(store, logg)
	vendaSvc := vendaservice.NewService(store, estoqueSvc, fichaSvc, logg)
	reservaSvc := reservaservice.NewService(store, vendaSvc, fichaSvc, cacheClient, reservaservice.Config{
		CatalogoTTL: cfg.CatalogoTTL,
		URLPublica:  cfg.PublicBaseURL,
	}, logg)
	caixaSvc := caixaservice.NewService(store, tokenSvc, logg)
	logg.Debug("Serviços inicializados.", nil)

	handlers := router.Handlers{
		Caixa:   caixa.NewHandler(caixaSvc, logg),
		Produto: produto.NewHandler(estoqueSvc, logg),
		Estoque: estoque.NewHandler(estoqueSvc, logg),
		Ficha:   ficha.NewHandler(fichaSvc, vendaSvc, logg),
		Venda:   venda.NewHandler(vendaSvc, logg),
		Reserva: reserva.NewHandler(reservaSvc, logg),
	}

	r := router.NewRouter(handlers, router.Options{
		TokenService:    tokenSvc,
		Cache:           cacheClient,
		RateLimitMax:    cfg.RateLimitMaxRequests,
		RateLimitPeriod: cfg.RateLimitPeriod,
		AllowedOrigins:  cfg.AllowedOrigins,
		Logger:          logg,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 4. Execução e Graceful Shutdown
	go func() {
		logg.Info("Servidor goficha ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logg.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logg.Error("Desligamento do servidor forçado.", err)
	}

	logg.Info("Servidor encerrado com sucesso.", nil)
}
