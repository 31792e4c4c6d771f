package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/meetsync-team/meetsync/pkg/validator"

	"github.com/meetsync-team/meetsync/internal/adapter/handler"
	"github.com/meetsync-team/meetsync/internal/adapter/repository"
	"github.com/meetsync-team/meetsync/internal/infrastructure/cache"
	"github.com/meetsync-team/meetsync/internal/infrastructure/database"
	"github.com/meetsync-team/meetsync/internal/infrastructure/external/docpipe"
	"github.com/meetsync-team/meetsync/internal/infrastructure/storage"
	"github.com/meetsync-team/meetsync/internal/usecase/ingest"
	"github.com/meetsync-team/meetsync/internal/usecase/pipeline"
	"github.com/meetsync-team/meetsync/internal/usecase/resolution"
	"github.com/meetsync-team/meetsync/internal/usecase/scheduler"
	"github.com/meetsync-team/meetsync/internal/usecase/webhookcfg"
	"github.com/meetsync-team/meetsync/pkg/config"
	"github.com/meetsync-team/meetsync/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping GORM AutoMigrate; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize cache: Redis when enabled, in-memory fallback otherwise
	var cacheStore cache.Store
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		cacheStore = redisClient
	} else {
		log.Println("📦 Redis disabled, using in-memory cache")
		cacheStore = cache.NewMemoryStore()
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	webhookRepo := repository.NewWebhookConfigRepository(db)
	transcriptRepo := repository.NewTranscriptEventRepository(db)
	mappingRepo := repository.NewSpeakerMappingRepository(db)
	contactRepo := repository.NewContactRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	// Initialize payload archive (optional)
	var archive ingest.Archiver
	if cfg.Archive.Enabled {
		log.Println("🗄️  Initializing payload archive...")
		payloadArchive, err := storage.NewPayloadArchive(&cfg.Archive)
		if err != nil {
			log.Fatalf("Failed to initialize payload archive: %v", err)
		}
		archive = payloadArchive
	}

	// Initialize resolution components
	log.Println("🧩 Initializing resolvers...")
	resolver := resolution.NewIdentityResolver(mappingRepo, contactRepo, &cfg.Resolver, logger)
	voter := resolution.NewProjectVoter(&cfg.Resolver, logger)

	// Initialize downstream pipeline client and service
	log.Println("🔌 Initializing pipeline client...")
	processor := docpipe.NewClient(&cfg.Pipeline, logger)
	pipelineService := pipeline.NewService(transcriptRepo, projectRepo, resolver, voter, processor, logger)

	// Initialize ingestion gateway
	log.Println("📥 Initializing ingestion gateway...")
	dispatcher := ingest.NewDispatcher(cfg.Pipeline.Workers, cfg.Pipeline.QueueSize, logger)
	defer dispatcher.Stop()
	gateway := ingest.NewService(webhookRepo, transcriptRepo, pipelineService, dispatcher, cacheStore, archive, logger)

	// Initialize retry scheduler
	log.Println("⏰ Initializing retry scheduler...")
	retryScheduler := scheduler.NewScheduler(transcriptRepo, mappingRepo, projectRepo, pipelineService, cacheStore, &cfg.Scheduler, logger)
	retryScheduler.Start()
	defer retryScheduler.Stop()

	// Initialize webhook configuration service
	webhookService := webhookcfg.NewService(webhookRepo, logger)

	// Initialize JWT manager for the admin API
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)

	// Initialize handlers and routes
	log.Println("🛣️  Setting up routes...")
	webhookHandler := handler.NewWebhook(gateway, logger)
	adminHandler := handler.NewAdmin(webhookService, mappingRepo, transcriptRepo, retryScheduler, &cfg.Resolver, &cfg.Scheduler, logger)

	router := handler.NewRouter(cfg, webhookHandler, adminHandler, jwtManager)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
