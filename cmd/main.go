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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"taxonomy-service/internal/config"
	"taxonomy-service/internal/events"
	"taxonomy-service/internal/handlers"
	"taxonomy-service/internal/middleware"
	"taxonomy-service/internal/repository"
	"taxonomy-service/internal/services"
	"taxonomy-service/internal/taxonomy"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/Tesseract-Nexus/go-shared/secrets"
)

// @title Taxonomy Import API
// @version 1.0.0
// @description Category and subcategory taxonomy import, sync and export service

// @contact.name Taxonomy API Support
// @contact.email support@example.com

// @host localhost:8083
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisOpts.Password = secrets.GetRedisPassword()
	redisClient := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
		_ = redisClient.Close()
		redisClient = nil
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize NATS events publisher
	var eventsPublisher *events.Publisher
	if cfg.NATSURL != "" {
		eventsPublisher, err = events.NewPublisher(cfg.NATSURL, logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (events won't be published)", err)
			eventsPublisher = nil
		} else {
			log.Println("✓ NATS events publisher initialized")
		}
	}

	// Repository, services and handlers
	taxonomyRepo := repository.NewTaxonomyRepository(db, redisClient, cfg.CacheTTL, cfg.ImportLockTimeout)
	importService := services.NewImportService(taxonomyRepo, cfg.CanonicalLocale, cfg.ImportLockTimeout, logger)
	taxonomyService := services.NewTaxonomyService(taxonomyRepo, cfg.CanonicalLocale, logger)
	parser := taxonomy.NewParser(cfg.DescriptionFilter())

	taxonomyHandler := handlers.NewTaxonomyHandler(taxonomyService, eventsPublisher, logger)
	importHandler := handlers.NewImportHandler(importService, parser, cfg.CanonicalLocale, cfg.UploadMaxBytes, eventsPublisher, logger)
	healthHandler := handlers.NewHealthHandler(db)

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "taxonomy_service")
	log.Println("✓ Prometheus metrics initialized")

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())
	router.Use(gosharedmw.SecurityHeaders())
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Health check endpoints (no auth required)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gosharedmw.Handler())

	// Protected API routes
	api := router.Group("/api/v1")

	read, write := handlers.PassThrough, handlers.PassThrough
	switch cfg.AuthMode {
	case config.AuthModeIstio:
		// Istio validates the JWT and injects x-jwt-claim-* headers
		api.Use(gosharedmw.IstioAuth(gosharedmw.IstioAuthConfig{
			RequireAuth:        true,
			AllowLegacyHeaders: false,
			SkipPaths:          []string{"/health", "/ready", "/metrics", "/swagger"},
		}))
		rbacMiddleware := rbac.NewMiddlewareWithURL(cfg.StaffServiceURL, nil)
		read = rbacMiddleware.RequirePermission(rbac.PermissionCategoriesRead)
		write = rbacMiddleware.RequirePermission(rbac.PermissionCategoriesUpdate)
		log.Println("✓ Istio auth and RBAC middleware initialized")
	default:
		api.Use(middleware.AuthMiddleware(cfg.JWTSecret))
		api.Use(middleware.RequireAnyRole("admin", middleware.SuperAdminRole))
		log.Println("✓ JWT auth middleware initialized")
	}

	handlers.RegisterTaxonomyRoutes(api, taxonomyHandler, importHandler, read, write)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Taxonomy service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down taxonomy-service...")

	// Let a running import finish its transaction
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ImportLockTimeout+5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if eventsPublisher != nil {
		eventsPublisher.Close()
		log.Println("✓ Events publisher closed")
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("Taxonomy service stopped")
}
