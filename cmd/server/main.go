package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/erp/ledger/internal/application/billing"
	currencyapp "github.com/erp/ledger/internal/application/currency"
	reportapp "github.com/erp/ledger/internal/application/report"
	"github.com/erp/ledger/internal/infrastructure/auth"
	"github.com/erp/ledger/internal/infrastructure/cache"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/erp/ledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ledger service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	rateCache, err := cache.NewRateCacheFactory(cfg.Cache, cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create rate cache", zap.Error(err))
	}
	log.Info("Rate cache ready", zap.String("backend", cfg.Cache.Backend))

	// Repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	lateFeeRepo := persistence.NewGormLateFeeRepository(db)
	planRepo := persistence.NewGormInstallmentPlanRepository(db)
	rateRepo := persistence.NewGormExchangeRateRepository(db)
	taxRecordRepo := persistence.NewGormTaxRecordRepository(db)
	taxReturnRepo := persistence.NewGormTaxReturnRepository(db)
	customerLookup := persistence.NewGormCustomerLookup(db)
	numberGen := persistence.NewGormNumberGenerator(db)
	accountResolver := persistence.NewGormAccountResolver(db)
	txManager := persistence.NewGormTransactionManager(db)

	// Application services
	conversionService := currencyapp.NewConversionService(rateRepo, rateCache, log)
	invoiceService := billingapp.NewInvoiceService(
		invoiceRepo, paymentRepo, lateFeeRepo, planRepo, taxRecordRepo,
		conversionService, customerLookup, numberGen, accountResolver,
		txManager, log,
	)
	installmentService := billingapp.NewInstallmentService(invoiceRepo, planRepo, txManager, log)
	agingService := reportapp.NewAgingService(invoiceRepo, conversionService, log)
	taxPeriodService := reportapp.NewTaxPeriodService(taxRecordRepo, taxReturnRepo, txManager, log)

	// HTTP engine
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS())

	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	if cfg.JWT.Secret != "" {
		jwtService := auth.NewJWTService(cfg.JWT)
		r.Use(middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
			JWTService: jwtService,
			SkipPaths:  []string{"/api/v1/ping"},
			Logger:     log,
		}))
	} else {
		log.Warn("JWT secret not configured, API authentication disabled")
	}

	r.Register(
		handler.NewInvoiceHandler(invoiceService),
		handler.NewInstallmentHandler(installmentService),
		handler.NewCurrencyHandler(conversionService),
		handler.NewReportHandler(agingService, taxPeriodService),
	)
	r.Setup()

	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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

// healthHandler reports liveness including database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			logger.FromGin(c).Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
