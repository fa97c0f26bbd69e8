package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/retailpos/backend/internal/application/catalog"
	drawerapp "github.com/retailpos/backend/internal/application/drawer"
	identityapp "github.com/retailpos/backend/internal/application/identity"
	partnerapp "github.com/retailpos/backend/internal/application/partner"
	reportapp "github.com/retailpos/backend/internal/application/report"
	salesapp "github.com/retailpos/backend/internal/application/sales"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/infrastructure/auth"
	"github.com/retailpos/backend/internal/infrastructure/cache"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/retailpos/backend/internal/infrastructure/event"
	"github.com/retailpos/backend/internal/infrastructure/export"
	"github.com/retailpos/backend/internal/infrastructure/logger"
	"github.com/retailpos/backend/internal/infrastructure/persistence"
	"github.com/retailpos/backend/internal/infrastructure/printing"
	"github.com/retailpos/backend/internal/infrastructure/storage"
	"github.com/retailpos/backend/internal/infrastructure/telemetry"
	"github.com/retailpos/backend/internal/interfaces/http/handler"
	"github.com/retailpos/backend/internal/interfaces/http/middleware"
	"github.com/retailpos/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
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
		_ = log.Sync()
	}()

	// Telemetry providers; the bridged logger also ships records over OTLP
	providers, err := telemetry.NewProviders(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()
	log = providers.BridgeLogger(log, zapcore.InfoLevel)

	loc := cfg.App.Location()
	log.Info("Starting Retail POS backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("timezone", loc.String()),
	)

	if cfg.Security.BcryptCost > 0 {
		identity.BcryptCost = cfg.Security.BcryptCost
	}

	// Database with the zap-backed gorm logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.InstrumentDB(db.DB, cfg.Telemetry, log); err != nil {
		log.Fatal("Failed to instrument database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Cart and idempotency stores (Redis, or process memory)
	stores, err := cache.NewStoreFactory(cfg, cache.WithLogger(log)).Create(context.Background())
	if err != nil {
		log.Fatal("Failed to create cart stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing cart stores", zap.Error(err))
		}
	}()

	// Repositories
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	sessionRepo := persistence.NewGormSessionRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	returnRepo := persistence.NewGormSaleReturnRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB, cfg.Checkout.LockTimeout)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if stores.Redis != nil {
		blacklist = auth.NewRedisTokenBlacklist(stores.Redis)
	}

	// PDF rendering. Without a browser receipts and PDF exports answer 503.
	var (
		receiptPrinter salesapp.ReceiptPrinter
		reportPrinter  reportapp.ReportPrinter
	)
	renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.Export.RenderTimeout,
		ExecPath:       cfg.Export.ChromePath,
		NoSandbox:      true,
		Logger:         log,
	})
	if err != nil {
		log.Warn("PDF rendering unavailable", zap.Error(err))
	} else {
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Error("Error closing PDF renderer", zap.Error(err))
			}
		}()
		printer := printing.NewDocumentPrinter(printing.NewTemplateEngine(printing.WithLocation(loc)),
			renderer, cfg.Export.CompanyName, log)
		receiptPrinter = printer
		reportPrinter = printer
	}

	reportOpts := []reportapp.ReportServiceOption{
		reportapp.WithSpreadsheetWriter(export.NewXLSXWriter(loc, cfg.Export.MaxRows), export.ContentTypeXLSX),
		reportapp.WithMaxRows(cfg.Export.MaxRows),
	}
	if reportPrinter != nil {
		reportOpts = append(reportOpts, reportapp.WithReportPrinter(reportPrinter))
	}
	if cfg.Storage.Enabled {
		archive, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration),
		)
		if err != nil {
			log.Fatal("Failed to initialize export archive", zap.Error(err))
		}
		bucketCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := archive.EnsureBucket(bucketCtx); err != nil {
			log.Warn("Export bucket check failed", zap.Error(err))
		}
		cancel()
		reportOpts = append(reportOpts, reportapp.WithArchive(archive, cfg.Storage.KeyPrefix))
		log.Info("Export archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Application services
	authConfig := identityapp.DefaultAuthServiceConfig()
	if cfg.Security.MaxLoginAttempts > 0 {
		authConfig.MaxLoginAttempts = cfg.Security.MaxLoginAttempts
	}
	if cfg.Security.LockoutDuration > 0 {
		authConfig.LockDuration = cfg.Security.LockoutDuration
	}
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, authConfig, log)
	userService := identityapp.NewUserService(userRepo, blacklist, jwtService, log)

	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo)
	supplierService := catalogapp.NewSupplierService(supplierRepo, productRepo)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, supplierRepo, log)
	customerService := partnerapp.NewCustomerService(customerRepo)

	sessionService := drawerapp.NewSessionService(txScope, sessionRepo, sessionRepo, userRepo, loc, log)
	cartService := salesapp.NewCartService(stores.Carts, productRepo, log)
	checkoutService := salesapp.NewCheckoutService(txScope, sessionRepo, customerRepo, stores.Carts,
		stores.Idempotency, cfg.Checkout.IdempotencyTTL, log)
	returnService := salesapp.NewReturnService(txScope, saleRepo, returnRepo, sessionRepo, userRepo, loc, log)
	saleService := salesapp.NewSaleService(saleRepo, userRepo, customerRepo, receiptPrinter, loc, log)
	reportService := reportapp.NewReportService(reportRepo, productRepo, sessionRepo, loc, log, reportOpts...)

	// Event bus: stock alerts and business metrics run after each commit
	eventBus := event.NewInMemoryEventBus(log)

	stockAlertHandler := catalogapp.NewStockAlertHandler(productRepo, catalogapp.NewLoggingStockAlertNotifier(log), log)
	eventBus.Subscribe(stockAlertHandler)

	posMetrics, err := telemetry.NewPOSMetrics(providers.Meter("retail-pos"), func(ctx context.Context) (telemetry.StoreState, error) {
		state, err := reportService.StoreState(ctx)
		return telemetry.StoreState(state), err
	}, log)
	if err != nil {
		log.Fatal("Failed to register business metrics", zap.Error(err))
	}
	defer func() {
		if err := posMetrics.Close(); err != nil {
			log.Error("Error unregistering business metrics", zap.Error(err))
		}
	}()
	eventBus.Subscribe(event.NewIdempotentHandler(posMetrics, stores.Idempotency, "metrics", 0, log))

	log.Info("Event handlers registered",
		zap.Strings("stock_alert_events", stockAlertHandler.EventTypes()),
		zap.Strings("metrics_events", posMetrics.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	sessionService.SetEventPublisher(eventBus)
	checkoutService.SetEventPublisher(eventBus)
	returnService.SetEventPublisher(eventBus)

	if created, err := userService.EnsureBootstrapManager(context.Background(),
		cfg.Bootstrap.ManagerUsername, cfg.Bootstrap.ManagerPassword, cfg.Bootstrap.ManagerFullName); err != nil {
		log.Fatal("Failed to bootstrap manager account", zap.Error(err))
	} else if created {
		log.Info("Initial manager account ready", zap.String("username", cfg.Bootstrap.ManagerUsername))
	}

	// Health checks
	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if stores.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return stores.Redis.Ping(ctx).Err()
		}
	}

	handlers := router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Users:      handler.NewUserHandler(userService),
		Categories: handler.NewCategoryHandler(categoryService),
		Suppliers:  handler.NewSupplierHandler(supplierService),
		Products:   handler.NewProductHandler(productService),
		Customers:  handler.NewCustomerHandler(customerService),
		POS:        handler.NewPOSHandler(sessionService, cartService, checkoutService, returnService),
		Drawer:     handler.NewDrawerHandler(sessionService),
		Sales:      handler.NewSalesHandler(saleService, returnService),
		Reports:    handler.NewReportHandler(reportService),
		System:     handler.NewSystemHandler(cfg.App.Name, telemetry.ServiceVersion, checks),
	}

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	healthPaths := []string{"/health", "/api/v1/health", "/metrics"}
	httpMetrics := middleware.NewHTTPMetrics()

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
		SkipPaths:   healthPaths,
	}))
	engine.Use(httpMetrics.Middleware())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.HTTP.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	}
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	if cfg.Telemetry.MetricsEnabled {
		engine.GET("/metrics", httpMetrics.Handler())
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithAPIMiddleware(middleware.JWTAuthMiddlewareWithConfig(jwtConfig), middleware.SpanAttributes()),
	)

	guards := router.Guards{
		Manager: middleware.RequireManager(),
		DrawerSession: middleware.RequireDrawerSession(middleware.DrawerSessionConfig{
			Sessions:      sessionRepo,
			ExcludedPaths: middleware.DefaultDrawerSessionExclusions,
			Logger:        log,
		}),
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		guards.LoginLimiter = middleware.RateLimit(
			middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow))
	}
	router.Mount(engine, r, handlers, guards)

	// Create HTTP server with config
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
