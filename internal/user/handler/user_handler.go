package handler

import (
	"errors"
	"strconv"

	authservice "github.com/atreidesdev/listopiaBackend/internal/auth/service"
	"github.com/atreidesdev/listopiaBackend/internal/auth/dto"
	autherror "github.com/atreidesdev/listopiaBackend/internal/errors"
	"github.com/atreidesdev/listopiaBackend/internal/user/service"
	"github.com/atreidesdev/listopiaBackend/pkg/constant"
	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	profiles *service.ProfileService
}

func NewUserHandler(profiles *service.ProfileService) *UserHandler {
	return &UserHandler{profiles: profiles}
}

func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.profiles.Profile(c.Context(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

func (h *UserHandler) UpdateEmail(c *fiber.Ctx) error {
	var input dto.UpdateEmailInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	claims, ok := c.Locals(constant.LocalsUserKey).(*authservice.AccessClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := h.profiles.UpdateEmail(c.Context(), claims.UserID, input.Email); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Email updated"})
}

func (h *UserHandler) UpdateUsername(c *fiber.Ctx) error {
	var input dto.UpdateUsernameInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	claims, ok := c.Locals(constant.LocalsUserKey).(*authservice.AccessClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := h.profiles.UpdateUsername(c.Context(), claims.UserID, input.Username); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Username updated"})
}

func (h *UserHandler) UpdatePassword(c *fiber.Ctx) error {
	var input dto.UpdatePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	claims, ok := c.Locals(constant.LocalsUserKey).(*authservice.AccessClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := h.profiles.UpdatePassword(c.Context(), claims.UserID, input.CurrentPassword, input.NewPassword); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Password updated"})
}

func (h *UserHandler) UpdateProfileName(c *fiber.Ctx) error {
	var input dto.UpdateProfileNameInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	claims, ok := c.Locals(constant.LocalsUserKey).(*authservice.AccessClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if err := h.profiles.UpdateProfileName(c.Context(), claims.UserID, input.ProfileName); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Profile name updated"})
}

func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	var input dto.UpdateRoleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	if err := h.profiles.SetRole(c.Context(), userID, input.Role); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Role updated"})
}

func (h *UserHandler) Deactivate(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user id"})
	}

	if err := h.profiles.Deactivate(c.Context(), userID); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "User deactivated"})
}

func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, autherror.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrPasswordIncorrect):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrEmailTaken), errors.Is(err, autherror.ErrUsernameTaken):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, autherror.ErrInvalidRole):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
