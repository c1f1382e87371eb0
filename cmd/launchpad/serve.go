package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"launchpad/docs"
	"launchpad/internal/auth"
	"launchpad/internal/config"
	"launchpad/internal/database"
	"launchpad/internal/database/migration"
	handlers "launchpad/internal/http/handler"
	"launchpad/internal/http/middleware"
	"launchpad/internal/logging"
	"launchpad/internal/otel"
	"launchpad/internal/repository/postgres"
	"launchpad/internal/service"
	"launchpad/internal/storage"
	"launchpad/internal/webhook"
	"launchpad/views"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := cmd.Context()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	db, err := database.NewPostgres(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	store, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	verifier, err := auth.NewJWKSVerifier(cfg.Auth, log)
	if err != nil {
		return fmt.Errorf("init token verifier: %w", err)
	}
	defer verifier.Close()

	validator, err := webhook.NewValidator(cfg.Webhook.SigningSecret)
	if err != nil {
		return fmt.Errorf("init webhook validator: %w", err)
	}

	users := postgres.NewUserPostgres(db)
	profiles := postgres.NewProfilePostgres(db)
	files := postgres.NewFilePostgres(db)

	identitySvc := service.NewIdentityService(users, files, store, log)
	profileSvc := service.NewProfileService(profiles)
	fileSvc := service.NewFileService(store, files)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		Views:        views.Engine(),
		ViewsLayout:  views.MainLayout,
		BodyLimit:    cfg.MaxUploadMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.AllowOrigins}))
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(otelfiber.Middleware())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	app.Use(promMW.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, handlers.Deps{
		Cfg:      cfg,
		DB:       db,
		Store:    store,
		Verifier: verifier,
		Identity: identitySvc,
		Profiles: profileSvc,
		Files:    fileSvc,
		Webhook:  validator,
		Log:      log,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	log.Info("server started", zap.String("port", cfg.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("shutdown incomplete", zap.Error(err))
		}
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}

	if serveErr != nil {
		return fmt.Errorf("server: %w", serveErr)
	}
	return nil
}
