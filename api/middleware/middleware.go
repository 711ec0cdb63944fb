package middleware

import (
	"regexp"
	"strings"

	"movie_recommendation/pkg/response"
	"movie_recommendation/util"

	"github.com/gofiber/fiber/v2"
)

const jwtUserDataKey = "jwtUserData"

// AuthMiddleware rejects requests without a valid bearer access token.
func AuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := bearerToken(c)
		if accessToken == "" {
			return response.ResponseError(c, "Unauthorized, accessToken not provided", fiber.StatusUnauthorized)
		}

		token, claims, err := util.VerifyToken(accessToken, secret)
		if err != nil {
			return response.ResponseError(c, response.InvalidToken, fiber.StatusUnauthorized)
		}
		if token == nil || claims == nil {
			return response.ResponseError(c, "Unauthorized, Invalid accessToken metaData", fiber.StatusUnauthorized)
		}

		c.Locals("accessToken", accessToken)
		c.Locals(jwtUserDataKey, claims)
		return c.Next()
	}
}

// OptionalAuthMiddleware attaches the user when a valid token is present and never rejects.
func OptionalAuthMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if accessToken := bearerToken(c); accessToken != "" {
			if _, claims, err := util.VerifyToken(accessToken, secret); err == nil && claims != nil {
				c.Locals(jwtUserDataKey, claims)
			}
		}
		return c.Next()
	}
}

// GetUserId returns the authenticated user id set by one of the middlewares.
func GetUserId(c *fiber.Ctx) (int64, bool) {
	claims, ok := c.Locals(jwtUserDataKey).(*util.MyJwtClaims)
	if !ok || claims == nil {
		return 0, false
	}
	return claims.UserId, true
}

func bearerToken(c *fiber.Ctx) string {
	accessToken := strings.TrimSpace(c.Get("Authorization", ""))
	strArr := strings.Fields(accessToken)
	if len(strArr) == 2 && strings.EqualFold(strArr[0], "bearer") {
		return strArr[1]
	}
	return ""
}

var (
	LocalhostRegex = regexp.MustCompile(`(?i)^(https?://)?localhost(:\d{4})?$`)
)
