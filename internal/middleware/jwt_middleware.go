package middleware

import (
	"strings"

	"bookstore/internal/apperror"
	"bookstore/internal/services"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// TokenValidator turns a bearer token into an identity.
type TokenValidator interface {
	ValidateToken(token string) (*services.Identity, error)
}

// Authenticate resolves an optional "Bearer <token>" header into an identity
// stored in the request locals. Requests without the header continue
// anonymously; a malformed or invalid token is rejected.
func Authenticate(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return apperror.Unauthenticated("Authorization header format must be 'Bearer <token>'")
		}

		identity, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return err
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// AuthRequired rejects requests that Authenticate left anonymous.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IdentityFrom(c) == nil {
			return apperror.Unauthenticated("Authentication required")
		}
		return c.Next()
	}
}

// IdentityFrom returns the caller identity, or nil for anonymous requests.
func IdentityFrom(c *fiber.Ctx) *services.Identity {
	identity, _ := c.Locals(identityKey).(*services.Identity)
	return identity
}
