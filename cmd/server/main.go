package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	connectionapp "github.com/crosslist/backend/internal/application/connection"
	listingapp "github.com/crosslist/backend/internal/application/listing"
	publishapp "github.com/crosslist/backend/internal/application/publish"
	salesapp "github.com/crosslist/backend/internal/application/sales"
	"github.com/crosslist/backend/internal/domain/channel"
	"github.com/crosslist/backend/internal/domain/shared"
	"github.com/crosslist/backend/internal/infrastructure/auth"
	"github.com/crosslist/backend/internal/infrastructure/cache"
	"github.com/crosslist/backend/internal/infrastructure/config"
	"github.com/crosslist/backend/internal/infrastructure/imaging"
	"github.com/crosslist/backend/internal/infrastructure/logger"
	"github.com/crosslist/backend/internal/infrastructure/marketplace"
	"github.com/crosslist/backend/internal/infrastructure/persistence"
	"github.com/crosslist/backend/internal/infrastructure/scheduler"
	"github.com/crosslist/backend/internal/infrastructure/storage"
	"github.com/crosslist/backend/internal/infrastructure/telemetry"
	"github.com/crosslist/backend/internal/interfaces/http/handler"
	"github.com/crosslist/backend/internal/interfaces/http/middleware"
	"github.com/crosslist/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Crosslist Backend API
//	@version		1.0
//	@description	Multi-platform listing publication and synchronization engine

//	@contact.name	API Support
//	@contact.url	https://github.com/crosslist/backend

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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
		_ = logger.Sync(log)
	}()

	log.Info("Starting Crosslist Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize distributed tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Register database query tracing when enabled
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: true,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	listingRepo := persistence.NewGormListingRepository(db.DB)
	recordRepo := persistence.NewGormChannelRecordRepository(db.DB)
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)

	// Object storage for listing photos and export artifacts
	var objectStorage publishapp.ObjectStorage
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage initialized",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("endpoint", cfg.Storage.Endpoint),
		)
	} else {
		objectStorage = storage.NewMemoryObjectStorage()
		log.Warn("No storage bucket configured, using in-memory object storage")
	}

	// Idempotency store for sale-event dedup
	var idempotencyStore shared.IdempotencyStore
	if cfg.Redis.Enabled {
		factory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
		idempotencyStore, err = factory.CreateStore()
		if err != nil {
			log.Fatal("Failed to initialize idempotency store", zap.Error(err))
		}
	} else {
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
		log.Info("Using in-memory idempotency store")
	}

	// Platform adapters
	adapters := make([]channel.Adapter, 0, 3)

	if cfg.Ebay.ClientID != "" {
		ebayCfg := marketplace.NewEbayConfig(cfg.Ebay.ClientID, cfg.Ebay.ClientSecret)
		if cfg.Ebay.Sandbox {
			ebayCfg = marketplace.NewSandboxEbayConfig(cfg.Ebay.ClientID, cfg.Ebay.ClientSecret)
		}
		if cfg.Ebay.Marketplace != "" {
			ebayCfg.Marketplace = cfg.Ebay.Marketplace
		}
		ebayAdapter, err := marketplace.NewEbayAdapter(ebayCfg)
		if err != nil {
			log.Fatal("Failed to initialize eBay adapter", zap.Error(err))
		}
		adapters = append(adapters, ebayAdapter)
		log.Info("eBay adapter registered",
			zap.String("marketplace", ebayCfg.Marketplace),
			zap.Bool("sandbox", ebayCfg.IsSandbox),
		)
	} else {
		log.Warn("eBay adapter disabled, no client credentials configured")
	}

	adapters = append(adapters, marketplace.NewShopifyCSVAdapter(objectStorage, cfg.Storage.PresignExpiry))

	craigslistAdapter, err := marketplace.NewCraigslistTemplateAdapter(objectStorage)
	if err != nil {
		log.Fatal("Failed to initialize Craigslist adapter", zap.Error(err))
	}
	adapters = append(adapters, craigslistAdapter)

	registry := marketplace.NewRegistry(adapters...)

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	credentialManager := publishapp.NewCredentialManager(credentialRepo, log)
	imagePipeline := publishapp.NewImagePipeline(objectStorage, imaging.NewProcessor(), cfg.Publish.StorageTimeout, log)

	retryPolicy := channel.DefaultRetryPolicy()
	if cfg.Publish.MaxRetries > 0 {
		retryPolicy = channel.RetryPolicy{
			MaxAttempts: cfg.Publish.MaxRetries,
			BaseDelay:   cfg.Publish.RetryBaseDelay,
			Factor:      2,
			MaxDelay:    cfg.Publish.RetryMaxDelay,
		}
	}

	publisherService := publishapp.NewPublisherService(
		listingRepo, recordRepo, registry, credentialManager,
		imagePipeline, retryPolicy, cfg.Publish.PlatformTimeout, log,
	)
	listingService := listingapp.NewService(listingRepo)
	connectionService := connectionapp.NewService(credentialRepo, registry, credentialManager, log)
	salesService := salesapp.NewService(
		listingRepo, recordRepo, saleRepo, credentialRepo, registry, credentialManager,
		publisherService, idempotencyStore, shared.DefaultIdempotencyConfig(),
		cfg.Sync.LookbackWindow, log,
	)

	// Background sales sync (if enabled)
	if cfg.Sync.Enabled {
		schedulerConfig := scheduler.DefaultSalesSyncSchedulerConfig()
		if cfg.Sync.Workers > 0 {
			schedulerConfig.Workers = cfg.Sync.Workers
		}
		if cfg.Sync.JobTimeout > 0 {
			schedulerConfig.JobTimeout = cfg.Sync.JobTimeout
		}
		if cfg.Sync.HistorySize > 0 {
			schedulerConfig.HistorySize = cfg.Sync.HistorySize
		}

		executor := scheduler.NewSalesServiceExecutor(salesService, log)
		salesSyncScheduler, err := scheduler.NewSalesSyncScheduler(schedulerConfig, executor, log)
		if err != nil {
			log.Fatal("Failed to create sales sync scheduler", zap.Error(err))
		}
		if err := salesSyncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sales sync scheduler", zap.Error(err))
		}
		defer func() {
			if err := salesSyncScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping sales sync scheduler", zap.Error(err))
			}
		}()

		targets := scheduler.NewRegistryTargetProvider(registry, credentialRepo)
		syncTrigger := scheduler.NewSalesSyncTrigger(
			scheduler.SalesSyncTriggerConfig{Interval: cfg.Sync.Interval},
			salesSyncScheduler, targets, log,
		)
		if err := syncTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sales sync trigger", zap.Error(err))
		}
		defer func() {
			if err := syncTrigger.Stop(context.Background()); err != nil {
				log.Error("Error stopping sales sync trigger", zap.Error(err))
			}
		}()
		log.Info("Sales sync scheduler started",
			zap.Int("workers", schedulerConfig.Workers),
			zap.Duration("interval", cfg.Sync.Interval),
		)
	}

	// Initialize HTTP handlers
	listingHandler := handler.NewListingHandler(listingService)
	publishHandler := handler.NewPublishHandler(publisherService, registry)
	connectionHandler := handler.NewConnectionHandler(connectionService)
	salesHandler := handler.NewSalesHandler(salesService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Request tracing (if enabled)
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/system/health",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Listing domain (canonical listings and their publication fan-out)
	listingRoutes := router.NewDomainGroup("listing", "/listings")
	listingRoutes.POST("", listingHandler.Create)
	listingRoutes.GET("", listingHandler.List)
	listingRoutes.GET("/:id", listingHandler.Get)
	listingRoutes.PUT("/:id", listingHandler.Update)
	listingRoutes.DELETE("/:id", listingHandler.Delete)
	listingRoutes.POST("/:id/activate", listingHandler.Activate)
	listingRoutes.POST("/:id/archive", listingHandler.Archive)

	// Publication routes
	listingRoutes.POST("/:id/publish", publishHandler.Publish)
	listingRoutes.POST("/:id/push", publishHandler.Update)
	listingRoutes.POST("/:id/delist", publishHandler.Delist)
	listingRoutes.GET("/:id/publications", publishHandler.Status)
	listingRoutes.GET("/:id/platforms/:platform/export", publishHandler.ExportArtifact)
	listingRoutes.GET("/:id/platforms/:platform/posting", publishHandler.Posting)

	// Per-listing sale records
	listingRoutes.POST("/:id/sales", salesHandler.RecordManualSale)
	listingRoutes.GET("/:id/sales", salesHandler.ListListingSales)

	// Connection domain (platform credentials)
	connectionRoutes := router.NewDomainGroup("connection", "/connections")
	connectionRoutes.POST("", connectionHandler.Connect)
	connectionRoutes.GET("", connectionHandler.List)
	connectionRoutes.DELETE("/:platform", connectionHandler.Disconnect)
	connectionRoutes.POST("/:platform/test", connectionHandler.Test)

	// Sales domain (sale events and platform sync)
	salesRoutes := router.NewDomainGroup("sales", "/sales")
	salesRoutes.GET("", salesHandler.ListSales)
	salesRoutes.POST("/sync/:platform", salesHandler.SyncPlatform)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/health", systemHandler.Health)

	r.Register(listingRoutes).
		Register(connectionRoutes).
		Register(salesRoutes).
		Register(systemRoutes)

	// Setup routes
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

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
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
