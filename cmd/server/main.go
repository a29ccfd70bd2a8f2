package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	deductionapp "github.com/sacco/backend/internal/application/deduction"
	"github.com/sacco/backend/internal/infrastructure/config"
	"github.com/sacco/backend/internal/infrastructure/logger"
	"github.com/sacco/backend/internal/infrastructure/persistence"
	"github.com/sacco/backend/internal/infrastructure/settlement"
	"github.com/sacco/backend/internal/infrastructure/telemetry"
	"github.com/sacco/backend/internal/interfaces/http/handler"
	"github.com/sacco/backend/internal/interfaces/http/middleware"
	"github.com/sacco/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting reconciliation backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	itemRepo := persistence.NewGormItemRepository(db.DB)
	suspenseRepo := persistence.NewGormSuspenseRepository(db.DB)
	requestRepo := persistence.NewGormRequestRepository(db.DB)
	memberRepo := persistence.NewGormMemberRepository(db.DB)
	savingsRepo := persistence.NewGormSavingsRepository(db.DB)
	loanRepo := persistence.NewGormLoanRepository(db.DB)
	policyRepo := persistence.NewGormPolicyRepository(db.DB)
	txnRepo := persistence.NewGormTransactionRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Initialize application services
	reconciliationService := deductionapp.NewReconciliationService(
		batchRepo, itemRepo, suspenseRepo, requestRepo, memberRepo, txManager,
	)
	postingService := deductionapp.NewJournalPostingService(
		batchRepo, itemRepo, requestRepo, memberRepo, savingsRepo, loanRepo,
		policyRepo, txnRepo, txManager, log,
	)
	suspenseService := deductionapp.NewSuspenseService(
		suspenseRepo, memberRepo, savingsRepo, txnRepo, txManager,
	)

	// Settlement file parser
	parser := settlement.NewParser(settlement.WithMaxRows(cfg.Import.MaxRows))

	// Initialize HTTP handlers
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationService, postingService, parser)
	suspenseHandler := handler.NewSuspenseHandler(suspenseService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, outermost first: request ID, panic recovery,
	// request logging, tracing, security headers, CORS, body limit,
	// then tenant resolution for the API surface.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Uploads are bounded by the settlement file size limit
	engine.Use(middleware.BodyLimit(cfg.Import.MaxFileSize))

	engine.Use(middleware.TenantMiddlewareWithConfig(middleware.TenantMiddlewareConfig{
		SkipPaths: []string{
			"/health",
			"/api/v1/system",
		},
		Required: true,
		Logger:   log,
	}))
	engine.Use(middleware.TracingAttributeInjector())

	// Register routes
	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithHealthCheck(systemHandler.Health),
	)
	r.Register(reconciliationHandler).
		Register(suspenseHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
