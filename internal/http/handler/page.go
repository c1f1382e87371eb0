package handler

import (
	"github.com/gofiber/fiber/v2"

	"launchpad/internal/config"
)

// Index renders the landing page. The welcome banner appears only when a
// message is configured: an empty WELCOME_MESSAGE omits the banner
// element entirely instead of rendering an empty box.
func Index(cfg *config.AppConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Render("index", fiber.Map{
			"Title":   "Launchpad",
			"Message": cfg.WelcomeMessage,
		})
	}
}
