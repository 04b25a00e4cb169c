package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"filevault/internal/config"
	"filevault/internal/cryptox"
	"filevault/internal/database"
	"filevault/internal/database/migration"
	handlers "filevault/internal/http/handler"
	"filevault/internal/http/middleware"
	"filevault/internal/otel"
	"filevault/internal/repository/postgres"
	"filevault/internal/service"
	"filevault/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.Local

	ctx := context.Background()

	// Tracing is optional; Init degrades to a noop provider when the
	// exporter cannot be reached.
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// At-rest encryption is deployment-wide: a nil codec stores blobs as-is.
	var codec cryptox.Codec
	if cfg.Encryption.Key != "" {
		codec, err = cryptox.NewFromBase64(cfg.Encryption.Key)
		if err != nil {
			log.Fatalf("failed to initialize encryption codec: %v", err)
		}
	}

	// Initialize repositories
	userRepo := postgres.NewUserPostgres(db)
	folderRepo := postgres.NewFolderPostgres(db)
	fileRepo := postgres.NewFilePostgres(db)
	shareRepo := postgres.NewSharePostgres(db)
	activityRepo := postgres.NewActivityPostgres(db)

	// Initialize services
	activitySvc := service.NewActivityService(activityRepo)
	userSvc := service.NewUserService(userRepo, folderRepo, activitySvc, cfg.Storage.DefaultQuotaBytes)
	folderSvc := service.NewFolderService(folderRepo, fileRepo, userRepo, objStore, activitySvc)
	fileSvc := service.NewFileService(fileRepo, folderRepo, userRepo, shareRepo, objStore, codec, activitySvc, cfg.Storage.MaxUploadBytes)
	shareSvc := service.NewShareService(shareRepo, fileRepo, userRepo, activitySvc)
	searchSvc := service.NewSearchService(fileRepo, folderRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Storage.MaxUploadBytes) + 1<<20,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register prometheus metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, handlers.Services{
		Users:    userSvc,
		Files:    fileSvc,
		Folders:  folderSvc,
		Shares:   shareSvc,
		Search:   searchSvc,
		Activity: activitySvc,
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
