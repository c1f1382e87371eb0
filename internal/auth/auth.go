// Package auth verifies bearer tokens issued by the external identity
// provider and exposes the authenticated identity to HTTP handlers.
//
// The provider signs session tokens with RS256 and publishes its public
// keys as a JWKS document; verification happens locally against that
// key set, so no per-request call to the provider is needed.
package auth

import (
	"context"
	"errors"
	"strings"
)

// Identity represents an authenticated subject.
type Identity struct {
	// Subject is the provider's stable user ID and the owner key for all
	// user-scoped rows.
	Subject string
	// Email is the primary email claim, if present in the token.
	Email string
	// SessionID identifies the provider session the token belongs to.
	SessionID string
}

// Error types for authentication failures.
var (
	// ErrNoToken indicates missing Authorization header.
	ErrNoToken = errors.New("missing authorization header")

	// ErrInvalidToken indicates an invalid token format, signature, or claims.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = errors.New("token expired")

	// ErrKeyFetch indicates the provider's JWKS could not be fetched.
	// This should result in HTTP 503 (service unavailable).
	ErrKeyFetch = errors.New("failed to fetch signing keys")
)

// Verifier validates tokens and returns the authenticated identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// ExtractBearerToken extracts the token from Authorization header.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", ErrInvalidToken
	}
	return parts[1], nil
}
