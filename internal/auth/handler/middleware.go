package handler

import (
	"strings"

	"github.com/atreidesdev/listopiaBackend/internal/auth/service"
	"github.com/atreidesdev/listopiaBackend/pkg/constant"
	"github.com/gofiber/fiber/v2"
)

// RequireAuth parses the bearer token and stores the verified claims on the
// request for downstream handlers.
func (h *AuthHandler) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		claims, err := h.tokenService.Verify(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals(constant.LocalsUserKey, claims)
		return c.Next()
	}
}

// RequireRole rejects requests whose verified claims carry none of the given
// roles. Must run after RequireAuth.
func (h *AuthHandler) RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(constant.LocalsUserKey).(*service.AccessClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		for _, role := range roles {
			if claims.Role == role {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient role"})
	}
}
