package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"launchpad/internal/auth"
	"launchpad/internal/config"
	storageMocks "launchpad/internal/storage/mocks"
	"launchpad/views"
)

// newAuthedApp returns an app whose routes run behind a verifier that
// accepts any bearer token as the standard test identity.
func newAuthedApp() *fiber.App {
	app := fiber.New()
	app.Use(auth.RequireAuth(&auth.MockVerifier{Identity: auth.TestIdentity()}, zap.NewNop()))
	return app
}

// authedRequest builds a request carrying a bearer token the mock
// verifier accepts.
func authedRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer test-token")
	return req
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	// Both probes run concurrently, so each subtest gets fresh mocks.
	newHealthApp := func(t *testing.T, dbErr, storeErr error) *fiber.App {
		t.Helper()
		db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		dbMock.ExpectPing().WillReturnError(dbErr)

		store := new(storageMocks.MockStorage)
		store.On("Ping", mock.Anything).Return(storeErr).Maybe()

		app := fiber.New()
		app.Get("/health", HealthCheck(db, store))
		return app
	}

	t.Run("healthy", func(t *testing.T) {
		app := newHealthApp(t, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("database down", func(t *testing.T) {
		app := newHealthApp(t, errors.New("db error"), nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	t.Run("storage down", func(t *testing.T) {
		app := newHealthApp(t, nil, errors.New("bucket gone"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestIndex(t *testing.T) {
	newPageApp := func(message string) *fiber.App {
		app := fiber.New(fiber.Config{
			Views:       views.Engine(),
			ViewsLayout: views.MainLayout,
		})
		app.Get("/", Index(&config.AppConfig{WelcomeMessage: message}))
		return app
	}

	t.Run("message configured shows banner", func(t *testing.T) {
		app := newPageApp("Hello from ops")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), `<div class="banner">Hello from ops</div>`)
	})

	t.Run("empty message omits banner element", func(t *testing.T) {
		app := newPageApp("")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.NotContains(t, string(body), `<div class="banner"`)
		assert.Contains(t, string(body), "<h1>Launchpad</h1>")
	})

	t.Run("message is escaped", func(t *testing.T) {
		app := newPageApp(`<script>alert("x")</script>`)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.NotContains(t, string(body), "<script>")
	})
}

func TestMe(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		app := newAuthedApp()
		app.Get("/me", Me())

		resp, _ := app.Test(authedRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body identityResponse
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "user_test_123", body.Subject)
		assert.Equal(t, "test@example.com", body.Email)
		assert.Equal(t, "sess_test_123", body.SessionID)
	})

	t.Run("no identity in context", func(t *testing.T) {
		app := fiber.New()
		app.Get("/me", Me())

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	RegisterRoutes(app, Deps{
		Cfg:      &config.AppConfig{},
		Verifier: &auth.MockVerifier{Identity: auth.TestIdentity()},
		Log:      zap.NewNop(),
	})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		// Health endpoint only allows GET
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("api requires token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})
}
