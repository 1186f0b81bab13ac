package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	if handler.deps.Health == nil {
		return c.JSON(fiber.Map{"status": "ok"})
	}
	if err := handler.deps.Health.Ping(c.UserContext()); err != nil {
		log.Printf("api: health ping failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	version, err := handler.deps.Health.SchemaVersion(c.UserContext())
	if err != nil {
		log.Printf("api: health schema version failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{
		"status":        "ok",
		"schemaVersion": version,
		"reminders":     handler.reminderBackendName(),
	})
}

func (handler *Handler) reminderBackendName() string {
	if handler.deps.Reminders == nil {
		return "none"
	}
	return handler.deps.Reminders.BackendName()
}
