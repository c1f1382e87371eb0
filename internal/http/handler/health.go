package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"launchpad/internal/storage"
)

// healthTimeout bounds both dependency probes together.
const healthTimeout = 2 * time.Second

// HealthCheck returns a deep health check handler. Database and object
// storage are probed concurrently; any failure makes the whole check
// unhealthy.
//
//	@Summary		Health check
//	@Description	Probes the database and object storage.
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Failure		503	{object}	map[string]interface{}
//	@Router			/health [get]
func HealthCheck(db *sql.DB, store storage.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return db.PingContext(ctx) })
		g.Go(func() error { return store.Ping(ctx) })

		if err := g.Wait(); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe returns a trivial liveness handler: the process is up.
//
//	@Summary		Liveness probe
//	@Tags			health
//	@Success		200
//	@Router			/healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
