package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"launchpad/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

const (
	testIssuer = "https://auth.example.test"
	testKID    = "key-1"
)

func generateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func jwksDocument(t *testing.T, pub *rsa.PublicKey) []byte {
	t.Helper()
	doc := map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}
	body, err := json.Marshal(doc)
	require.NoError(t, err)
	return body
}

func newJWKSServer(t *testing.T, pub *rsa.PublicKey) *httptest.Server {
	t.Helper()
	body := jwksDocument(t, pub)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
}

func signToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func validClaims() sessionClaims {
	return sessionClaims{
		Email:     "ada@example.com",
		SessionID: "sess_1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "user_2abc",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestNewJWKSVerifierValidation(t *testing.T) {
	_, err := NewJWKSVerifier(config.AuthConfig{JWKSURL: "https://x/jwks.json"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewJWKSVerifier(config.AuthConfig{Issuer: testIssuer}, zap.NewNop())
	assert.Error(t, err)
}

func TestJWKSVerifierVerify(t *testing.T) {
	key := generateKey(t)
	srv := newJWKSServer(t, &key.PublicKey)
	defer srv.Close()

	v, err := NewJWKSVerifier(config.AuthConfig{Issuer: testIssuer, JWKSURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	defer v.Close()

	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		id, err := v.Verify(ctx, signToken(t, key, testKID, validClaims()))

		require.NoError(t, err)
		assert.Equal(t, "user_2abc", id.Subject)
		assert.Equal(t, "ada@example.com", id.Email)
		assert.Equal(t, "sess_1", id.SessionID)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := validClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

		_, err := v.Verify(ctx, signToken(t, key, testKID, claims))

		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := validClaims()
		claims.Issuer = "https://evil.example.test"

		_, err := v.Verify(ctx, signToken(t, key, testKID, claims))

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing subject", func(t *testing.T) {
		claims := validClaims()
		claims.Subject = ""

		_, err := v.Verify(ctx, signToken(t, key, testKID, claims))

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("symmetric alg rejected", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
		tok.Header["kid"] = testKID
		signed, err := tok.SignedString([]byte("shared-secret"))
		require.NoError(t, err)

		_, err = v.Verify(ctx, signed)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered token", func(t *testing.T) {
		otherKey := generateKey(t)

		_, err := v.Verify(ctx, signToken(t, otherKey, testKID, validClaims()))

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := v.Verify(ctx, "not.a.jwt")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestJWKSVerifierUnknownKID(t *testing.T) {
	key := generateKey(t)
	srv := newJWKSServer(t, &key.PublicKey)
	defer srv.Close()

	v, err := NewJWKSVerifier(config.AuthConfig{Issuer: testIssuer, JWKSURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	defer v.Close()

	rotated := generateKey(t)
	_, err = v.Verify(context.Background(), signToken(t, rotated, "key-unknown", validClaims()))

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWKSVerifierAudience(t *testing.T) {
	key := generateKey(t)
	srv := newJWKSServer(t, &key.PublicKey)
	defer srv.Close()

	ctx := context.Background()

	t.Run("audience enforced when configured", func(t *testing.T) {
		v, err := NewJWKSVerifier(config.AuthConfig{Issuer: testIssuer, JWKSURL: srv.URL, Audience: "launchpad"}, zap.NewNop())
		require.NoError(t, err)
		defer v.Close()

		claims := validClaims()
		claims.Audience = jwt.ClaimStrings{"launchpad"}
		_, err = v.Verify(ctx, signToken(t, key, testKID, claims))
		assert.NoError(t, err)

		claims.Audience = jwt.ClaimStrings{"someone-else"}
		_, err = v.Verify(ctx, signToken(t, key, testKID, claims))
		assert.ErrorIs(t, err, ErrInvalidToken)

		_, err = v.Verify(ctx, signToken(t, key, testKID, validClaims()))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("audience ignored when not configured", func(t *testing.T) {
		v, err := NewJWKSVerifier(config.AuthConfig{Issuer: testIssuer, JWKSURL: srv.URL}, zap.NewNop())
		require.NoError(t, err)
		defer v.Close()

		claims := validClaims()
		claims.Audience = jwt.ClaimStrings{"someone-else"}

		_, err = v.Verify(ctx, signToken(t, key, testKID, claims))

		assert.NoError(t, err)
	})
}

func TestJWKSVerifierLazyFetch(t *testing.T) {
	key := generateKey(t)
	body := jwksDocument(t, &key.PublicKey)

	var up atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if !up.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("not json"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	// Provider down at startup: construction succeeds, verification degrades.
	v, err := NewJWKSVerifier(config.AuthConfig{Issuer: testIssuer, JWKSURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	defer v.Close()

	token := signToken(t, key, testKID, validClaims())

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrKeyFetch)

	// Provider back up: the next verification fetches the key set.
	up.Store(true)

	id, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", id.Subject)
}

func TestJWKSVerifierClosed(t *testing.T) {
	key := generateKey(t)
	srv := newJWKSServer(t, &key.PublicKey)
	defer srv.Close()

	v, err := NewJWKSVerifier(config.AuthConfig{Issuer: testIssuer, JWKSURL: srv.URL}, zap.NewNop())
	require.NoError(t, err)
	v.Close()

	_, err = v.Verify(context.Background(), signToken(t, key, testKID, validClaims()))

	assert.ErrorIs(t, err, ErrKeyFetch)
}
