package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"launchpad/internal/auth"
	"launchpad/internal/service"
)

type createProfileRequest struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
}

// GetProfile returns the caller's profile.
//
//	@Summary		Get own profile
//	@Tags			profile
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	model.Profile
//	@Failure		404	{object}	map[string]interface{}
//	@Router			/api/profile [get]
func GetProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := auth.IdentityFromCtx(c)
		if id == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
		}
		p, err := svc.Get(c.UserContext(), id.Subject)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "profile not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(p)
	}
}

// CreateProfile creates the caller's profile; each user has at most one.
//
//	@Summary		Create own profile
//	@Tags			profile
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		createProfileRequest	true	"profile fields"
//	@Success		201		{object}	model.Profile
//	@Failure		409		{object}	map[string]interface{}
//	@Router			/api/profile [post]
func CreateProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := auth.IdentityFromCtx(c)
		if id == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
		}

		var req createProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		if req.DisplayName == "" {
			return writeError(c, fiber.StatusBadRequest, "DISPLAY_NAME_REQUIRED", "display_name is required")
		}

		p, err := svc.Create(c.UserContext(), id.Subject, req.DisplayName, req.Bio)
		if err != nil {
			if errors.Is(err, service.ErrAlreadyExists) {
				return writeError(c, fiber.StatusConflict, "ALREADY_EXISTS", "profile already exists")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// UpdateProfile partially updates the caller's profile; omitted fields
// keep their stored values.
//
//	@Summary		Update own profile
//	@Tags			profile
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		updateProfileRequest	true	"fields to change"
//	@Success		200		{object}	model.Profile
//	@Failure		404		{object}	map[string]interface{}
//	@Router			/api/profile [patch]
func UpdateProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := auth.IdentityFromCtx(c)
		if id == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
		}

		var req updateProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		if req.DisplayName == nil && req.Bio == nil {
			return writeError(c, fiber.StatusBadRequest, "EMPTY_UPDATE", "no fields to update")
		}
		if req.DisplayName != nil && *req.DisplayName == "" {
			return writeError(c, fiber.StatusBadRequest, "DISPLAY_NAME_REQUIRED", "display_name cannot be empty")
		}

		p, err := svc.Update(c.UserContext(), id.Subject, req.DisplayName, req.Bio)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "profile not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(p)
	}
}

// DeleteProfile removes the caller's profile.
//
//	@Summary		Delete own profile
//	@Tags			profile
//	@Security		BearerAuth
//	@Success		204
//	@Failure		404	{object}	map[string]interface{}
//	@Router			/api/profile [delete]
func DeleteProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := auth.IdentityFromCtx(c)
		if id == nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid credentials")
		}
		if err := svc.Delete(c.UserContext(), id.Subject); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "profile not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
