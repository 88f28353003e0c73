package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func perIPLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	})
}

func RegisterRoutes(app *fiber.App, h *AuthHandler) {
	auth := app.Group("/auth")
	auth.Post("/login", perIPLimiter(10), h.Login)
	auth.Post("/register", perIPLimiter(5), h.Register)
	auth.Post("/refresh-token", h.Refresh)
	auth.Post("/logout", h.RequireAuth(), h.Logout)
}
