package middlewares

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnibridge-console/config"
	"omnibridge-console/logger"
)

func newTestApp(t *testing.T, tokens *Tokens) *fiber.App {
	log := logger.NewTestLogger(t)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	app.Use(requestid.New())
	app.Use(RequestLogger(log))
	app.Use(Idempotency())

	protected := app.Group("/api", IsAuthenticatedHeader(tokens))
	protected.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": UserID(c), "role": Role(c)})
	})
	protected.Post("/refund", RequireRole("admin", "support"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	protected.Post("/echo-key", func(c *fiber.Ctx) error {
		return c.SendString(IdempotencyKey(c))
	})

	type body struct {
		CustomerID string `json:"customerId" validate:"required"`
	}
	app.Post("/validate", func(c *fiber.Ctx) error {
		var b body
		if err := BindAndValidate(c, &b); err != nil {
			return err
		}
		return c.SendString(b.CustomerID)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return io.ErrUnexpectedEOF
	})
	return app
}

func decode(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}

func TestIsAuthenticatedHeader(t *testing.T) {
	tokens := NewTokens(config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 1})
	app := newTestApp(t, tokens)

	token, expires, err := tokens.Generate("user-1", "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	req := httptest.NewRequest("GET", "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "user-1", body["user"])
	assert.Equal(t, "admin", body["role"])
}

func TestRequireRole(t *testing.T) {
	tokens := NewTokens(config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 1})
	app := newTestApp(t, tokens)

	for role, want := range map[string]int{
		"admin":   fiber.StatusNoContent,
		"support": fiber.StatusNoContent,
		"viewer":  fiber.StatusForbidden,
		"":        fiber.StatusForbidden,
	} {
		token, _, err := tokens.Generate("user-1", role)
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/refund", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, role)
	}
}

func TestIsAuthenticatedHeader_Rejects(t *testing.T) {
	tokens := NewTokens(config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 1})
	app := newTestApp(t, tokens)

	other := NewTokens(config.AuthConfig{JWTSecret: "other-secret", TokenTTLHours: 1})
	forged, _, err := other.Generate("user-1", "admin")
	require.NoError(t, err)

	expired := NewTokens(config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 1})
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.Generate("user-1", "admin")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"empty bearer": "Bearer ",
		"wrong secret": "Bearer " + forged,
		"expired":      "Bearer " + stale,
		"alg none":     "Bearer " + none,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/whoami", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestIdempotencyHeader(t *testing.T) {
	tokens := NewTokens(config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 1})
	app := newTestApp(t, tokens)
	token, _, err := tokens.Generate("user-1", "support")
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/echo-key", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(IdempotencyHeader, "  key-123 ")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "key-123", string(raw))

	req = httptest.NewRequest("POST", "/api/echo-key", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(IdempotencyHeader, strings.Repeat("k", 129))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestErrorHandler(t *testing.T) {
	app := newTestApp(t, NewTokens(config.AuthConfig{JWTSecret: "s"}))

	req := httptest.NewRequest("POST", "/validate", strings.NewReader(`{"customerId":"  "}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, map[string]any{"customerId": "required"}, body["errors"])

	req = httptest.NewRequest("POST", "/validate", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "internal server error", decode(t, resp.Body)["message"])
}
