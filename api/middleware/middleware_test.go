package middleware

import (
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"movie_recommendation/util"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestApp(h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Get("/", h, func(c *fiber.Ctx) error {
		userId, ok := GetUserId(c)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(strconv.FormatInt(userId, 10))
	})
	return app
}

func signToken(t *testing.T, userId int64, secret string, expiresIn time.Duration) string {
	t.Helper()
	token, err := util.CreateAccessToken(util.MyJwtClaims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}, secret)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestAuthMiddleware(t *testing.T) {
	app := newTestApp(AuthMiddleware(testSecret))

	code, body := doRequest(t, app, signToken(t, 42, testSecret, time.Hour))
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "42", body)

	code, _ = doRequest(t, app, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = doRequest(t, app, signToken(t, 42, "other-secret", time.Hour))
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = doRequest(t, app, signToken(t, 42, testSecret, -time.Minute))
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, _ = doRequest(t, app, signToken(t, 0, testSecret, time.Hour))
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	app := newTestApp(OptionalAuthMiddleware(testSecret))

	code, body := doRequest(t, app, signToken(t, 7, testSecret, time.Hour))
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "7", body)

	code, body = doRequest(t, app, "garbage")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "anonymous", body)
}
