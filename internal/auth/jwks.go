package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"launchpad/internal/config"
)

// sessionClaims is the session token payload issued by the identity provider.
type sessionClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// JWKSVerifier validates RS256 session tokens against the provider's
// published JWKS. Keys are cached and refreshed in the background; an
// unknown kid triggers an immediate (rate-limited) refresh so freshly
// rotated keys are picked up without a restart.
//
// The key set is fetched lazily: if the provider is unreachable at
// startup the service still boots, and Verify answers ErrKeyFetch until
// a fetch succeeds.
type JWKSVerifier struct {
	url      string
	issuer   string
	audience string
	log      *zap.Logger

	mu     sync.RWMutex
	jwks   *keyfunc.JWKS
	closed bool
}

// NewJWKSVerifier creates a verifier for the configured provider and
// attempts an initial JWKS fetch. A fetch failure is not fatal; it is
// retried on the first verification. Callers must Close the verifier to
// stop the background refresh.
func NewJWKSVerifier(cfg config.AuthConfig, log *zap.Logger) (*JWKSVerifier, error) {
	if cfg.Issuer == "" {
		return nil, fmt.Errorf("auth issuer is required")
	}
	if cfg.JWKSURL == "" {
		return nil, fmt.Errorf("auth jwks url is required")
	}

	v := &JWKSVerifier{
		url:      cfg.JWKSURL,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		log:      log,
	}

	if _, err := v.keySet(); err != nil {
		log.Warn("initial jwks fetch failed, will retry on first verification",
			zap.String("jwks_url", cfg.JWKSURL),
			zap.Error(err),
		)
	}
	return v, nil
}

// Verify parses and validates a session token. Only RS256 is accepted;
// issuer must match the configured provider, audience only when one is
// configured. The subject claim is required.
func (v *JWKSVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	jwks, err := v.keySet()
	if err != nil {
		return nil, err
	}

	var claims sessionClaims
	_, err = jwt.ParseWithClaims(token, &claims, jwks.Keyfunc, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		return nil, classifyParseError(err)
	}

	if !claims.VerifyIssuer(v.issuer, true) {
		return nil, ErrInvalidToken
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Identity{
		Subject:   claims.Subject,
		Email:     claims.Email,
		SessionID: claims.SessionID,
	}, nil
}

// Close stops the background JWKS refresh.
func (v *JWKSVerifier) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	if v.jwks != nil {
		v.jwks.EndBackground()
		v.jwks = nil
	}
}

// keySet returns the cached JWKS, fetching it on first use.
func (v *JWKSVerifier) keySet() (*keyfunc.JWKS, error) {
	v.mu.RLock()
	jwks := v.jwks
	v.mu.RUnlock()
	if jwks != nil {
		return jwks, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, fmt.Errorf("%w: verifier closed", ErrKeyFetch)
	}
	if v.jwks == nil {
		jwks, err := keyfunc.Get(v.url, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				v.log.Warn("jwks refresh failed", zap.Error(err))
			},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyFetch, err)
		}
		v.jwks = jwks
	}
	return v.jwks, nil
}

// classifyParseError maps jwt parse failures onto the package's error
// taxonomy. Refresh failures behind an unknown kid surface as invalid
// tokens; the key set itself being unreachable is caught before parsing.
func classifyParseError(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}
	return ErrInvalidToken
}

// Compile-time interface check
var _ Verifier = (*JWKSVerifier)(nil)
