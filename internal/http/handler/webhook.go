package handler

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"launchpad/internal/service"
	"launchpad/internal/webhook"
)

// IdentityWebhook ingests signed user lifecycle events from the identity
// provider and mirrors them into the local user store. The signature is
// checked before anything else touches the payload; a non-2xx response
// makes the provider redeliver, so only retryable failures return 5xx.
func IdentityWebhook(validator *webhook.Validator, svc service.IdentityService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body := c.Body()

		err := validator.Verify(body,
			c.Get(webhook.HeaderID),
			c.Get(webhook.HeaderTimestamp),
			c.Get(webhook.HeaderSignature),
		)
		if err != nil {
			log.Warn("webhook rejected",
				zap.String("reason", err.Error()),
				zap.String("msg_id", c.Get(webhook.HeaderID)),
			)
			return writeError(c, fiber.StatusUnauthorized, "INVALID_SIGNATURE", "webhook signature verification failed")
		}

		var evt webhook.Event
		if err := json.Unmarshal(body, &evt); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed event payload")
		}

		switch evt.Type {
		case webhook.EventUserCreated, webhook.EventUserUpdated:
			_, err = svc.SyncUser(c.UserContext(), evt.Data.ID, evt.Data.PrimaryEmail())
		case webhook.EventUserDeleted:
			err = svc.DeleteUser(c.UserContext(), evt.Data.ID)
		default:
			// Unknown event types are acknowledged so the provider stops
			// redelivering them.
			log.Debug("ignoring webhook event", zap.String("type", evt.Type))
		}
		if err != nil {
			if errors.Is(err, service.ErrIDRequired) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_EVENT", "event has no user id")
			}
			log.Error("webhook processing failed",
				zap.String("type", evt.Type),
				zap.String("user_id", evt.Data.ID),
				zap.Error(err),
			)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
