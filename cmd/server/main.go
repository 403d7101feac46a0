package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/invoicing/backend/internal/application/billing"
	catalogapp "github.com/invoicing/backend/internal/application/catalog"
	identityapp "github.com/invoicing/backend/internal/application/identity"
	partnerapp "github.com/invoicing/backend/internal/application/partner"
	reportapp "github.com/invoicing/backend/internal/application/report"
	"github.com/invoicing/backend/internal/infrastructure/auth"
	"github.com/invoicing/backend/internal/infrastructure/cache"
	"github.com/invoicing/backend/internal/infrastructure/config"
	"github.com/invoicing/backend/internal/infrastructure/email"
	"github.com/invoicing/backend/internal/infrastructure/logger"
	"github.com/invoicing/backend/internal/infrastructure/pdf"
	"github.com/invoicing/backend/internal/infrastructure/persistence"
	"github.com/invoicing/backend/internal/infrastructure/scheduler"
	"github.com/invoicing/backend/internal/infrastructure/storage"
	"github.com/invoicing/backend/internal/interfaces/http/handler"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
	"github.com/invoicing/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
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
		_ = logger.Sync(log)
	}()

	log.Info("Starting Invoicing Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
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
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	taxRepo := persistence.NewGormTaxRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	emailLogRepo := persistence.NewGormEmailLogRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)

	// Idempotency store for invoice sends: Redis when reachable, in-memory
	// fallback for single-instance deployments
	idemFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(true),
	)
	idemStore, err := idemFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idemStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Object storage for rendered PDFs and logos
	var objectStorage billingapp.ObjectStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("Object storage configured",
			zap.String("bucket", s3Storage.GetBucket()),
			zap.String("region", cfg.Storage.Region))
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Object storage disabled, uploads return placeholder URLs")
	}

	// Outbound email
	var emailSender billingapp.EmailSender
	if cfg.Email.Enabled {
		sender, err := email.NewResendSender(&cfg.Email)
		if err != nil {
			log.Fatal("Failed to initialize email sender", zap.Error(err))
		}
		emailSender = sender
		log.Info("Email sender configured", zap.String("from", cfg.Email.FromEmail))
	} else {
		emailSender = email.NewNoopSender(log)
		log.Warn("Email sending disabled, deliveries are logged only")
	}

	pdfRenderer := pdf.NewGofpdfRenderer()

	// Initialize application services
	invoiceService := billingapp.NewInvoiceService(
		invoiceRepo,
		emailLogRepo,
		orgRepo,
		clientRepo,
		pdfRenderer,
		objectStorage,
		emailSender,
		idemStore,
		log,
	)
	if cfg.Invoice.PaymentTolerance > 0 {
		invoiceService.SetPaymentTolerance(decimal.NewFromFloat(cfg.Invoice.PaymentTolerance))
	}
	invoiceService.SetSendIdempotencyTTL(cfg.Invoice.SendIdempotencyTTL)
	clientService := partnerapp.NewClientService(clientRepo)
	productService := catalogapp.NewProductService(productRepo)
	taxService := catalogapp.NewTaxService(taxRepo)
	orgService := identityapp.NewOrganizationService(orgRepo, objectStorage)
	userService := identityapp.NewUserService(userRepo)
	dashboardService := reportapp.NewDashboardService(reportRepo)

	// JWT validation; token issuance is handled by the external auth provider
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	clientHandler := handler.NewClientHandler(clientService)
	productHandler := handler.NewProductHandler(productService)
	taxHandler := handler.NewTaxHandler(taxService)
	orgHandler := handler.NewOrganizationHandler(orgService)
	userHandler := handler.NewUserHandler(userService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// Setup gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies configuration", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. CORS - Handle cross-origin requests
	// 5. BodyLimit - Limit request body size
	// 6. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddleware(jwtService))

	// Billing domain (invoices, line items, email log)
	billingRoutes := router.NewDomainGroup("billing", "/billing")
	billingRoutes.POST("/invoices", invoiceHandler.Create)
	billingRoutes.GET("/invoices", invoiceHandler.List)
	billingRoutes.GET("/invoices/:id", invoiceHandler.GetByID)
	billingRoutes.PUT("/invoices/:id", invoiceHandler.Update)
	billingRoutes.DELETE("/invoices/:id", invoiceHandler.Delete)
	billingRoutes.POST("/invoices/:id/items", invoiceHandler.AddItem)
	billingRoutes.PUT("/invoices/:id/items/:item_id", invoiceHandler.UpdateItem)
	billingRoutes.DELETE("/invoices/:id/items/:item_id", invoiceHandler.RemoveItem)
	billingRoutes.POST("/invoices/:id/send", invoiceHandler.Send)
	billingRoutes.POST("/invoices/:id/resend", invoiceHandler.Resend)
	billingRoutes.POST("/invoices/:id/mark-paid", invoiceHandler.MarkPaid)
	billingRoutes.POST("/invoices/:id/cancel", invoiceHandler.Cancel)
	billingRoutes.GET("/invoices/:id/emails", invoiceHandler.EmailHistory)
	billingRoutes.POST("/invoices/sweep-overdue", invoiceHandler.SweepOverdue)

	// Partner domain (clients)
	partnerRoutes := router.NewDomainGroup("partner", "/partner")
	partnerRoutes.POST("/clients", clientHandler.Create)
	partnerRoutes.GET("/clients", clientHandler.List)
	partnerRoutes.GET("/clients/:id", clientHandler.GetByID)
	partnerRoutes.PUT("/clients/:id", clientHandler.Update)
	partnerRoutes.DELETE("/clients/:id", clientHandler.Delete)

	// Catalog domain (products, taxes)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.DELETE("/products/:id", productHandler.Delete)
	catalogRoutes.POST("/taxes", taxHandler.Create)
	catalogRoutes.GET("/taxes", taxHandler.List)
	catalogRoutes.GET("/taxes/:id", taxHandler.GetByID)
	catalogRoutes.PUT("/taxes/:id", taxHandler.Update)
	catalogRoutes.DELETE("/taxes/:id", taxHandler.Delete)

	// Identity domain (organization settings, membership)
	identityRoutes := router.NewDomainGroup("identity", "/identity")
	identityRoutes.GET("/organization", orgHandler.Get)
	identityRoutes.PUT("/organization", orgHandler.Update)
	identityRoutes.POST("/organization/logo", orgHandler.UploadLogo)
	identityRoutes.GET("/me", userHandler.Me)
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.POST("/users", userHandler.AddMember)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)

	// Dashboard and reports
	dashboardRoutes := router.NewDomainGroup("dashboard", "/dashboard")
	dashboardRoutes.GET("/stats", dashboardHandler.Stats)
	dashboardRoutes.GET("/revenue", dashboardHandler.Revenue)
	dashboardRoutes.GET("/outstanding", dashboardHandler.Outstanding)
	dashboardRoutes.GET("/activity", dashboardHandler.Activity)
	dashboardRoutes.GET("/export.csv", dashboardHandler.ExportCSV)

	r.Register(billingRoutes).
		Register(partnerRoutes).
		Register(catalogRoutes).
		Register(identityRoutes).
		Register(dashboardRoutes)

	r.Setup()

	// Periodic overdue sweep
	var sweeper *scheduler.OverdueSweeper
	if cfg.Invoice.SweepEnabled {
		sweeper = scheduler.NewOverdueSweeper(
			scheduler.OverdueSweeperConfig{Interval: cfg.Invoice.SweepInterval},
			invoiceRepo,
			invoiceService,
			log,
		)
		sweeper.Start(context.Background())
		defer sweeper.Stop()
	}

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
func healthHandler(db *persistence.Database) gin.HandlerFunc {
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
