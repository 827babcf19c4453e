package handlers

import (
	"log"
	"strings"

	"stash/internal/auth"
	"stash/internal/config"

	"github.com/gofiber/fiber/v2"
)

type loginRequest struct {
	Code string `json:"code"`
}

// AuthStatus reports whether the caller holds a valid session and the current
// lockout view. Read-only: repeated calls never change the stored state.
func AuthStatus(login *auth.Login, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, err := login.Status()
		if err != nil {
			log.Printf("failed to load lockout status: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load status",
			})
		}

		return c.JSON(fiber.Map{
			"authenticated": auth.IsAuthenticated(c, cfg.SessionSecret),
			"lockout":       status,
		})
	}
}

// LoginPost runs a submitted TOTP code through the login state machine and
// sets the session cookie on success.
func LoginPost(login *auth.Login, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
		if strings.TrimSpace(req.Code) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Code is required",
			})
		}

		result, err := login.Attempt(req.Code)
		if err != nil {
			log.Printf("login attempt failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Login failed",
			})
		}

		switch result.Outcome {
		case auth.OutcomeLocked:
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "Too many failed attempts",
				"lockout": result.Status,
			})
		case auth.OutcomeInvalidCode:
			code := fiber.StatusUnauthorized
			if result.Status.Locked {
				// This failure tripped the lockout
				code = fiber.StatusTooManyRequests
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   "Invalid code",
				"lockout": result.Status,
			})
		}

		auth.SetSessionCookie(c, result.Token, cfg.SessionTTLHours, cfg.SecureCookies)
		return c.JSON(fiber.Map{"success": true})
	}
}

// Logout clears the session cookie. The token itself stays valid until it
// expires; there is no server-side revocation.
func Logout(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth.ClearSessionCookie(c, cfg.SecureCookies)
		return c.JSON(fiber.Map{"success": true})
	}
}
