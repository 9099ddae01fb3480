package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/safeforge/safeforge/internal/auth"
	"github.com/safeforge/safeforge/internal/config"
	"github.com/safeforge/safeforge/internal/docgen"
	"github.com/safeforge/safeforge/internal/handlers"
	"github.com/safeforge/safeforge/internal/middleware"
	"github.com/safeforge/safeforge/internal/notify"
	"github.com/safeforge/safeforge/internal/service"
	"github.com/safeforge/safeforge/internal/storage/sqlite"
	"github.com/safeforge/safeforge/pkg/logging"
)

func main() {
	logging.Setup()

	cfg := config.Load()

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	source, err := templateSource(cfg)
	if err != nil {
		slog.Error("Failed to initialize template source", "error", err)
		os.Exit(1)
	}

	renderer := docgen.NewRenderer(source)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration)

	investments := service.NewInvestmentService(store, renderer, notify.LogMailer{})
	entities := service.NewEntityService(store)

	app := fiber.New(fiber.Config{
		AppName:               "safeforge",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Metrics())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", middleware.MetricsHandler())

	handlers.New(investments, entities, jwtManager).Register(app)

	addr := ":" + cfg.Port
	slog.Info("Server starting", "address", addr)
	if err := app.Listen(addr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// templateSource picks the template backend from configuration: a local
// directory by default, S3 when configured.
func templateSource(cfg config.Config) (docgen.TemplateSource, error) {
	switch cfg.TemplateDriver {
	case config.DriverS3:
		slog.Info("Using S3 template source", "bucket", cfg.S3Bucket)
		return docgen.NewS3Source(context.Background(), docgen.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
	default:
		slog.Info("Using directory template source", "dir", cfg.TemplateDir)
		return docgen.NewDirSource(cfg.TemplateDir), nil
	}
}
