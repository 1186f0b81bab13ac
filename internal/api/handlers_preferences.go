package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/chitra/internal/services"
)

func (handler *Handler) GetPreferences(c *fiber.Ctx) error {
	preferences, err := handler.deps.Preferences.Load(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, preferences)
}

func (handler *Handler) UpdatePreferences(c *fiber.Ctx) error {
	var update services.PreferencesUpdate
	if err := parseBody(c, &update); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	if update.ActiveProfileID != nil && *update.ActiveProfileID != "" {
		if err := handler.requireProfile(c, *update.ActiveProfileID); err != nil {
			return respondError(c, err)
		}
	}
	preferences, err := handler.deps.Preferences.Save(c.UserContext(), update)
	if err != nil {
		return respondError(c, err)
	}
	if handler.deps.Rebuilder != nil && togglesReminders(update) {
		if _, err := handler.deps.Rebuilder.Rebuild(c.UserContext()); err != nil {
			log.Printf("preferences: rebuild reminders failed: %v", err)
		}
	}
	return respondData(c, fiber.StatusOK, preferences)
}

func togglesReminders(update services.PreferencesUpdate) bool {
	return update.VaccinationReminders != nil ||
		update.MedicineReminders != nil ||
		update.FeedingReminders != nil ||
		update.CycleReminders != nil
}
