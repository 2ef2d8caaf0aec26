package main

import (
	"context"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dvillegas/scam-radar/internal/application"
	appanalysis "github.com/dvillegas/scam-radar/internal/application/analysis"
	appreports "github.com/dvillegas/scam-radar/internal/application/reports"
	"github.com/dvillegas/scam-radar/internal/config"
	"github.com/dvillegas/scam-radar/internal/domain/analyst"
	domreports "github.com/dvillegas/scam-radar/internal/domain/reports"
	"github.com/dvillegas/scam-radar/internal/infra/ai"
	mysqlp "github.com/dvillegas/scam-radar/internal/infra/db/mysql"
	postgresp "github.com/dvillegas/scam-radar/internal/infra/db/postgres"
	"github.com/dvillegas/scam-radar/internal/infra/httpserver"
	minioStore "github.com/dvillegas/scam-radar/internal/infra/storage"
	"github.com/dvillegas/scam-radar/internal/domain/llm"
	applog "github.com/dvillegas/scam-radar/internal/log"
	"github.com/dvillegas/scam-radar/internal/middleware"
)

func main() {
	// .env is optional, real deployments use the environment directly
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			stdlog.Fatalf("config load error: %v", err)
		}
		cfg = config.Default()
	}

	logger, err := applog.New(applog.Env(cfg.Server.Env))
	if err != nil {
		stdlog.Fatalf("logger init error: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var (
		history  analyst.Repository
		reports  domreports.Repository
		checkers = map[string]middleware.HealthChecker{}
	)
	switch {
	case cfg.Database.Host == "":
		logger.Info("no database configured, history and reports disabled")
	case cfg.Database.Driver == "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			logger.Fatal("postgres connect error", zap.Error(err))
		}
		defer db.Close()
		reports = postgresp.NewReportRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	default:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			logger.Fatal("mysql connect error", zap.Error(err))
		}
		defer db.Close()
		history = mysqlp.NewAnalystRepository(db)
		reports = mysqlp.NewReportRepository(db)
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	var artifacts appanalysis.ArtifactStore
	if cfg.Minio.Endpoint != "" {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			logger.Fatal("minio init error", zap.Error(err))
		}
		artifacts = store
	}

	gateway := ai.NewGateway(
		llm.Provider(cfg.LLM.Provider),
		ai.Credentials{
			OpenRouterKey:       cfg.LLM.OpenRouterKey,
			DeepSeekKey:         cfg.LLM.DeepSeekKey,
			OpenAIKey:           cfg.LLM.OpenAIKey,
			CloudflareToken:     cfg.LLM.Cloudflare.Token,
			CloudflareAccountID: cfg.LLM.Cloudflare.AccountID,
			CloudflareModel:     cfg.LLM.Cloudflare.Model,
		},
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
		logger,
	)

	analysisSvc := &appanalysis.Service{
		Analyzer:  gateway,
		History:   history,
		Artifacts: artifacts,
		Clock:     application.SystemClock{},
		Logger:    logger,
	}

	var reportsSvc *appreports.Service
	if reports != nil {
		reportsSvc = &appreports.Service{
			Repo:  reports,
			Clock: application.SystemClock{},
		}
	}

	mux := httpserver.NewRouter(analysisSvc, reportsSvc, httpserver.Options{
		Health:  middleware.HealthHandler("scam-radar", checkers),
		Metrics: promhttp.Handler(),
		Use: []func(http.Handler) http.Handler{
			middleware.RequestLogger(logger),
			middleware.APIKeyAuth(cfg.Server.APIKeys),
			middleware.RateLimitMiddleware(60, 1),
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr),
			zap.String("provider", cfg.LLM.Provider))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
}
