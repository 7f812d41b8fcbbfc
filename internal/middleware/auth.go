// Package middleware provides request-scoped fiber middleware: bearer token
// extraction, context propagation, tracing and structured request logging.
package middleware

import (
	"strings"

	"denuncias/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by this package.
const (
	LocalToken  = "token"
	LocalUserID = "userID"
)

// UserResolver looks up the live user behind a bearer token.
type UserResolver interface {
	CurrentUser(token string) *models.User
}

// BearerToken returns the token carried by the Authorization header. A missing
// header yields an empty token; a header in any other scheme is an error.
func BearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", nil
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", models.NewInvalidRequestError("Invalid authorization header format")
	}
	return parts[1], nil
}

// OptionalAuth stores the caller's token and, when it resolves, their user ID
// in locals. Anonymous requests pass through; the engine decides what they may do.
func OptionalAuth(users UserResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := BearerToken(c)
		if err != nil {
			appErr := models.AsAppError(err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"data":  nil,
				"error": appErr.Body(),
			})
		}
		if token == "" {
			return c.Next()
		}

		c.Locals(LocalToken, token)
		if u := users.CurrentUser(token); u != nil {
			c.Locals(LocalUserID, u.ID)
		}
		return c.Next()
	}
}

// Token returns the bearer token stored by OptionalAuth.
func Token(c *fiber.Ctx) string {
	if token, ok := c.Locals(LocalToken).(string); ok {
		return token
	}
	return ""
}
