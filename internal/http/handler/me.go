package handler

import (
	"github.com/gofiber/fiber/v2"

	"launchpad/internal/auth"
)

// identityResponse describes the authenticated caller.
type identityResponse struct {
	Subject   string `json:"subject"`
	Email     string `json:"email,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// Me echoes the identity attached by the auth middleware.
//
//	@Summary		Current identity
//	@Description	Returns the subject, email and session of the presented token.
//	@Tags			identity
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	identityResponse
//	@Failure		401	{object}	map[string]interface{}
//	@Router			/api/me [get]
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := auth.IdentityFromCtx(c)
		if id == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
		}
		return c.JSON(identityResponse{
			Subject:   id.Subject,
			Email:     id.Email,
			SessionID: id.SessionID,
		})
	}
}
