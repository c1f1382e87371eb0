package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"launchpad/internal/auth"
	"launchpad/internal/config"
	"launchpad/internal/service"
	"launchpad/internal/storage"
	"launchpad/internal/webhook"
)

// Deps carries everything the HTTP layer needs. Handlers stay free of
// business logic; they translate requests to service calls.
type Deps struct {
	Cfg      *config.AppConfig
	DB       *sql.DB
	Store    storage.Storage
	Verifier auth.Verifier
	Identity service.IdentityService
	Profiles service.ProfileService
	Files    service.FileService
	Webhook  *webhook.Validator
	Log      *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Everything under /api requires a verified bearer token; the webhook
// endpoint authenticates with its own delivery signature instead.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/", Index(d.Cfg))
	app.Get("/health", HealthCheck(d.DB, d.Store))
	app.Get("/healthz", LivenessProbe())
	app.Post("/webhooks/identity", IdentityWebhook(d.Webhook, d.Identity, d.Log))

	api := app.Group("/api", auth.RequireAuth(d.Verifier, d.Log))

	api.Get("/me", Me())

	api.Get("/profile", GetProfile(d.Profiles))
	api.Post("/profile", CreateProfile(d.Profiles))
	api.Patch("/profile", UpdateProfile(d.Profiles))
	api.Delete("/profile", DeleteProfile(d.Profiles))

	api.Get("/files", ListFiles(d.Files))
	api.Post("/files", UploadFile(d.Files))
	api.Get("/files/:id", GetFile(d.Files))
	api.Delete("/files/:id", DeleteFile(d.Files))
	api.Get("/files/:id/download", DownloadFile(d.Files))
	api.Get("/files/:id/url", FileDownloadURL(d.Files))
}
