package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/Tesseract-Nexus/go-shared/tracing"

	"shipping-rates-service/internal/clients"
	"shipping-rates-service/internal/config"
	"shipping-rates-service/internal/events"
	"shipping-rates-service/internal/geo"
	"shipping-rates-service/internal/handlers"
	"shipping-rates-service/internal/middleware"
	"shipping-rates-service/internal/models"
	"shipping-rates-service/internal/repository"
	"shipping-rates-service/internal/services"
)

// @title Shipping Rates Service API
// @version 1.0
// @description Shipping zone, method and rate calculation API
// @BasePath /api/v1
func main() {
	log.Println("Starting Shipping Rates Service...")

	// Load .env file if present (local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully")

	// Structured logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// Connect to database
	db, err := connectDatabase(cfg.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Database connected successfully")

	// Run migrations
	if err := runMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Initialize Redis client (optional - graceful degradation if Redis unavailable)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Warning: Failed to parse Redis URL: %v", err)
			log.Println("Continuing without Redis caching...")
		} else {
			redisClient = redis.NewClient(opt)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := redisClient.Ping(ctx).Err(); err != nil {
				log.Printf("Warning: Failed to connect to Redis: %v", err)
				log.Println("Continuing without Redis caching...")
				redisClient = nil
			} else {
				log.Println("✓ Connected to Redis for caching")
			}
		}
	} else {
		log.Println("REDIS_URL not configured, caching disabled")
	}

	// Initialize NATS events publisher
	eventsPublisher, err := events.NewPublisher(logger)
	if err != nil {
		log.Printf("WARNING: Failed to initialize events publisher: %v (events won't be published)", err)
		eventsPublisher = nil
	} else {
		defer eventsPublisher.Close()
		log.Println("✓ NATS events publisher initialized")
	}

	// Geographic reference data
	directory := geo.NewDirectory(geo.Nigeria())
	log.Printf("Loaded %d reference regions", len(directory.Regions()))

	// Inter-service clients
	productsClient := clients.NewProductsClient(cfg.Services.ProductsURL)
	customersClient := clients.NewCustomersClient(cfg.Services.CustomersURL)
	ordersClient := clients.NewOrdersClient(cfg.Services.OrdersURL)
	log.Println("Inter-service clients initialized")

	// Repositories
	zoneRepo := repository.NewZoneRepository(db)
	methodRepo := repository.NewMethodRepository(db)
	trackingRepo := repository.NewTrackingRepository(db)
	log.Println("Repositories initialized")

	// Services
	zoneCache := services.NewZoneCache(redisClient)
	zoneService := services.NewZoneService(zoneRepo, methodRepo, directory, zoneCache, eventsPublisher, logger)
	methodService := services.NewMethodService(methodRepo, ordersClient, eventsPublisher, logger)
	rateEngine := services.NewRateEngine()
	checkoutService := services.NewCheckoutService(zoneService, methodRepo, rateEngine, productsClient, customersClient, logger)
	log.Println("Services initialized")

	// Handlers
	zoneHandler := handlers.NewZoneHandler(zoneService, directory)
	methodHandler := handlers.NewMethodHandler(methodService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	trackingHandler := handlers.NewTrackingHandler(trackingRepo)
	healthHandler := handlers.NewHealthHandler(db, eventsPublisher)
	log.Println("Handlers initialized")

	// Initialize OpenTelemetry tracing
	if cfg.IsProduction() {
		_, err = tracing.InitTracer(tracing.ProductionConfig("shipping-rates-service"))
	} else {
		_, err = tracing.InitTracer(tracing.DefaultConfig("shipping-rates-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "shipping_rates_service")
	log.Println("✓ Prometheus metrics initialized")

	// Initialize RBAC middleware
	staffServiceURL := os.Getenv("STAFF_SERVICE_URL")
	if staffServiceURL == "" {
		staffServiceURL = "http://staff-service:8080"
	}
	rbacMw := rbac.NewMiddlewareWithURL(staffServiceURL, nil)
	log.Println("✓ RBAC middleware initialized")

	// Setup router
	router := setupRouter(cfg, logger, metrics, rbacMw, redisClient,
		zoneHandler, methodHandler, checkoutHandler, trackingHandler, healthHandler)
	log.Println("Router configured")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Starting server on %s (environment: %s)", addr, cfg.Server.Env)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// connectDatabase establishes a connection to the PostgreSQL database
func connectDatabase(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// runMigrations runs database migrations
func runMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.ShippingZone{},
		&models.StateCoverage{},
		&models.ShippingMethod{},
		&models.ShipmentEvent{},
	)
}

// setupRouter configures the Gin router with routes and middleware
func setupRouter(
	cfg *config.Config,
	logger *logrus.Logger,
	metrics *gosharedmw.Metrics,
	rbacMw *rbac.Middleware,
	redisClient *redis.Client,
	zoneHandler *handlers.ZoneHandler,
	methodHandler *handlers.MethodHandler,
	checkoutHandler *handlers.CheckoutHandler,
	trackingHandler *handlers.TrackingHandler,
	healthHandler *handlers.HealthHandler,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(gosharedmw.SecurityHeaders())

	// Rate limiting middleware (uses Redis for distributed rate limiting)
	if redisClient != nil {
		router.Use(gosharedmw.RedisRateLimitMiddlewareWithProfile(redisClient, "standard"))
		log.Println("✓ Redis-based rate limiting enabled")
	} else {
		router.Use(gosharedmw.RateLimit())
		log.Println("✓ In-memory rate limiting enabled (Redis unavailable)")
	}

	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.CORS())

	// Observability middleware (metrics + tracing)
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("shipping-rates-service"))

	// IstioAuth middleware - extracts JWT claims from x-jwt-claim-* headers
	// This MUST come before TenantMiddleware and RBAC middleware
	router.Use(gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
		RequireAuth:        false,
		AllowLegacyHeaders: true,
		SkipPaths: []string{
			"/health",
			"/ready",
			"/metrics",
			"/swagger",
		},
	}))

	// Tenant context middleware (reads from IstioAuth context or legacy headers)
	router.Use(middleware.TenantMiddleware())

	// Health and observability endpoints
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.HealthCheck)
	router.GET("/metrics", gosharedmw.Handler())
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := router.Group("/api/v1/shipping")
	{
		// Reference regions - read
		api.GET("/regions", rbacMw.RequirePermission(rbac.PermissionShippingRead), zoneHandler.ListRegions)

		// Zones - read
		api.GET("/zones", rbacMw.RequirePermission(rbac.PermissionShippingRead), zoneHandler.ListZones)
		api.GET("/zones/:id", rbacMw.RequirePermission(rbac.PermissionShippingRead), zoneHandler.GetZone)
		api.POST("/zones/resolve", rbacMw.RequirePermission(rbac.PermissionShippingRead), zoneHandler.ResolveZone)

		// Zones - manage
		api.POST("/zones", rbacMw.RequirePermission(rbac.PermissionShippingManage), zoneHandler.CreateZone)
		api.PUT("/zones/:id", rbacMw.RequirePermission(rbac.PermissionShippingManage), zoneHandler.UpdateZone)
		api.DELETE("/zones/:id", rbacMw.RequirePermission(rbac.PermissionShippingManage), zoneHandler.DeleteZone)

		// Methods - read
		api.GET("/methods", rbacMw.RequirePermission(rbac.PermissionShippingRead), methodHandler.ListMethods)
		api.GET("/methods/:id", rbacMw.RequirePermission(rbac.PermissionShippingRead), methodHandler.GetMethod)

		// Methods - manage
		api.POST("/methods", rbacMw.RequirePermission(rbac.PermissionShippingManage), methodHandler.CreateMethod)
		api.PUT("/methods/:id", rbacMw.RequirePermission(rbac.PermissionShippingManage), methodHandler.UpdateMethod)
		api.DELETE("/methods/:id", rbacMw.RequirePermission(rbac.PermissionShippingManage), methodHandler.DeleteMethod)

		// Checkout - read (called by storefront/orders-service)
		api.POST("/calculate-checkout", rbacMw.RequirePermission(rbac.PermissionShippingRead), checkoutHandler.CalculateShipping)

		// Tracking
		api.GET("/orders/:orderId/tracking", rbacMw.RequirePermission(rbac.PermissionShippingRead), trackingHandler.ListEvents)
		api.POST("/orders/:orderId/tracking", rbacMw.RequirePermission(rbac.PermissionShippingUpdate), trackingHandler.AddEvent)
	}

	return router
}
