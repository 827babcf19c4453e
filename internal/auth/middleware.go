package auth

import (
	"github.com/gofiber/fiber/v2"
)

// IsAuthenticated reports whether the request carries a valid session cookie.
// This is the sole predicate protected routes consult.
func IsAuthenticated(c *fiber.Ctx, secret string) bool {
	return VerifyToken(c.Cookies(SessionCookieName), secret)
}

// RequireSession gates protected routes on a valid session token.
func RequireSession(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IsAuthenticated(c, secret) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}
		return c.Next()
	}
}
