package handler

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes wires the user-profile endpoints. requireAuth and
// requireAdmin come from the auth handler so both modules share one token
// verification path.
func RegisterRoutes(app *fiber.App, h *UserHandler, requireAuth, requireAdmin fiber.Handler) {
	users := app.Group("/users")
	users.Get("/profile/:username", h.GetProfile)

	private := users.Group("", requireAuth)
	private.Patch("/email", h.UpdateEmail)
	private.Patch("/username", h.UpdateUsername)
	private.Patch("/password", h.UpdatePassword)
	private.Patch("/profile-name", h.UpdateProfileName)

	admin := private.Group("", requireAdmin)
	admin.Patch("/:id/role", h.SetRole)
	admin.Delete("/:id", h.Deactivate)
}
