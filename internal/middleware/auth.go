// Package middleware provides the HTTP middleware shared by all routes:
// bearer-token auth, request logging, and request metrics.
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/safeforge/safeforge/internal/auth"
)

const (
	// authIDLocal is the Locals key for the authenticated subject.
	authIDLocal = "auth_id"
	// emailLocal is the Locals key for the authenticated user's email.
	emailLocal = "email"
)

// AuthID extracts the authenticated subject from the request context.
// Returns empty string if the request is unauthenticated.
func AuthID(c *fiber.Ctx) string {
	authID, _ := c.Locals(authIDLocal).(string)
	return authID
}

// Email extracts the authenticated user's email from the request context.
// Returns empty string if the request is unauthenticated.
func Email(c *fiber.Ctx) string {
	email, _ := c.Locals(emailLocal).(string)
	return email
}

// RequireAuth validates the bearer token and rejects requests without a
// valid one. The subject and email land in Locals for handlers.
func RequireAuth(jwtManager *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := claimsFromHeader(jwtManager, c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals(authIDLocal, claims.AuthID)
		c.Locals(emailLocal, claims.Email)
		return c.Next()
	}
}

// OptionalAuth validates the bearer token if one is present but lets
// anonymous requests through. The wizard steps use this: a draft can be
// built without signing in, but a signed-in user gets the investment
// attributed to them.
func OptionalAuth(jwtManager *auth.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header != "" {
			claims, err := claimsFromHeader(jwtManager, header)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			c.Locals(authIDLocal, claims.AuthID)
			c.Locals(emailLocal, claims.Email)
		}
		return c.Next()
	}
}

func claimsFromHeader(jwtManager *auth.JWTManager, header string) (*auth.Claims, error) {
	if header == "" {
		return nil, auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, auth.ErrInvalidToken
	}
	return jwtManager.Validate(parts[1])
}
