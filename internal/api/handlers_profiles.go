package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/chitra/internal/services"
)

type setActiveProfileRequest struct {
	ProfileID string `json:"profileId"`
}

func (handler *Handler) ListProfiles(c *fiber.Ctx) error {
	profiles, err := handler.deps.Profiles.ListProfiles(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, profiles)
}

func (handler *Handler) AddProfile(c *fiber.Ctx) error {
	var input services.ProfileInput
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	profile, err := handler.deps.Profiles.AddProfile(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, profile)
}

func (handler *Handler) GetActiveProfile(c *fiber.Ctx) error {
	profile, err := handler.deps.Profiles.GetActiveProfile(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, profile)
}

func (handler *Handler) SetActiveProfile(c *fiber.Ctx) error {
	var input setActiveProfileRequest
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(input.ProfileID) == "" {
		return apiError(c, fiber.StatusBadRequest, "profile id is required")
	}
	if err := handler.requireProfile(c, input.ProfileID); err != nil {
		return respondError(c, err)
	}
	if err := handler.deps.Profiles.SetActiveProfile(c.UserContext(), input.ProfileID); err != nil {
		return respondError(c, err)
	}
	return handler.GetActiveProfile(c)
}

func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	var input services.ProfileUpdate
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	profile, err := handler.deps.Profiles.UpdateProfile(c.UserContext(), c.Params("profileID"), input)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, profile)
}

func (handler *Handler) DeleteProfile(c *fiber.Ctx) error {
	if err := handler.deps.Profiles.DeleteProfile(c.UserContext(), c.Params("profileID")); err != nil {
		return respondError(c, err)
	}
	return sendNoContent(c)
}

// ProfileScope rejects nested record routes for profiles that do not exist.
func (handler *Handler) ProfileScope(c *fiber.Ctx) error {
	if err := handler.requireProfile(c, c.Params("profileID")); err != nil {
		return respondError(c, err)
	}
	return c.Next()
}

func (handler *Handler) requireProfile(c *fiber.Ctx, profileID string) error {
	profiles, err := handler.deps.Profiles.ListProfiles(c.UserContext())
	if err != nil {
		return err
	}
	for _, profile := range profiles {
		if profile.ID == profileID {
			return nil
		}
	}
	return services.ErrProfileNotFound
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
