package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"launchpad/internal/http/middleware"
)

// identityLocalKey is the Fiber locals key holding the *Identity of the
// authenticated request.
const identityLocalKey = "auth_identity"

// RequireAuth returns a Fiber middleware that authenticates the request
// via the Authorization header. On success the *Identity is stored in
// locals for IdentityFromCtx. Failures end the request: 401 with a
// WWW-Authenticate challenge, or 503 with Retry-After when the signing
// keys cannot be fetched.
func RequireAuth(v Verifier, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := ExtractBearerToken(c.Get(fiber.HeaderAuthorization))
		if err == nil {
			var identity *Identity
			identity, err = v.Verify(c.UserContext(), token)
			if err == nil {
				c.Locals(identityLocalKey, identity)
				return c.Next()
			}
		}

		if errors.Is(err, ErrKeyFetch) {
			log.Error("token verification unavailable",
				zap.Error(err),
				zap.String("request_id", requestIDFromCtx(c)),
			)
			c.Set(fiber.HeaderRetryAfter, "30")
			return writeAuthError(c, fiber.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "token verification temporarily unavailable")
		}

		log.Warn("unauthenticated request",
			zap.String("reason", rejectReason(err)),
			zap.String("path", c.Path()),
			zap.String("request_id", requestIDFromCtx(c)),
		)
		c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		return writeAuthError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
	}
}

// IdentityFromCtx returns the authenticated identity stored by
// RequireAuth, or nil when the request did not pass through it.
func IdentityFromCtx(c *fiber.Ctx) *Identity {
	id, _ := c.Locals(identityLocalKey).(*Identity)
	return id
}

// rejectReason labels a verification failure for logs without leaking
// token contents.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "missing_token"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	default:
		return "verification_failed"
	}
}

// authErrorPayload matches the API's standard error envelope.
type authErrorPayload struct {
	RequestID string         `json:"request_id"`
	Error     authErrorInner `json:"error"`
}

type authErrorInner struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func writeAuthError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(authErrorPayload{
		RequestID: requestIDFromCtx(c),
		Error: authErrorInner{
			Code:    code,
			Message: message,
		},
	})
}
