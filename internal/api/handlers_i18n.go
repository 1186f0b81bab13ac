package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) ListLanguages(c *fiber.Ctx) error {
	if handler.deps.Messages == nil {
		return apiError(c, fiber.StatusNotFound, "no message catalog")
	}
	return respondData(c, fiber.StatusOK, fiber.Map{
		"default":   handler.deps.Messages.DefaultLanguage(),
		"supported": handler.deps.Messages.SupportedLanguages(),
	})
}

// GetMessages answers with the default locale's strings for unknown
// languages.
func (handler *Handler) GetMessages(c *fiber.Ctx) error {
	if handler.deps.Messages == nil {
		return apiError(c, fiber.StatusNotFound, "no message catalog")
	}
	return respondData(c, fiber.StatusOK, handler.deps.Messages.Messages(c.Params("lang")))
}
