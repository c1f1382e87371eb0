package auth

import (
	"context"
)

// MockVerifier provides fake token verification for tests.
type MockVerifier struct {
	Identity *Identity
	Error    error
}

// Verify returns the configured identity or error.
func (m *MockVerifier) Verify(_ context.Context, _ string) (*Identity, error) {
	if m.Error != nil {
		return nil, m.Error
	}
	return m.Identity, nil
}

// TestIdentity returns a standard test identity.
func TestIdentity() *Identity {
	return &Identity{
		Subject:   "user_test_123",
		Email:     "test@example.com",
		SessionID: "sess_test_123",
	}
}

// Compile-time interface check
var _ Verifier = (*MockVerifier)(nil)
