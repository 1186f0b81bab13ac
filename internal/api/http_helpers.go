package api

import (
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/chitra/internal/db"
	"github.com/terraincognita07/chitra/internal/services"
)

var errInvalidBody = errors.New("invalid request body")

func respondData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "data": data})
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": message})
}

// respondError maps service and storage failures to a status code. Anything
// unrecognized is logged and hidden behind a generic message.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrIncorrectPin):
		return apiError(c, fiber.StatusUnauthorized, err.Error())
	case services.IsNotFound(err):
		return apiError(c, fiber.StatusNotFound, err.Error())
	case services.IsConflict(err):
		return apiError(c, fiber.StatusConflict, err.Error())
	case services.IsValidationError(err):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrStorageUnavailable):
		log.Printf("api: %s %s: %v", c.Method(), c.Path(), err)
		return apiError(c, fiber.StatusServiceUnavailable, "storage unavailable")
	default:
		log.Printf("api: %s %s: %v", c.Method(), c.Path(), err)
		return apiError(c, fiber.StatusInternalServerError, "internal error")
	}
}

func parseBody(c *fiber.Ctx, target any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(target); err != nil {
		return errInvalidBody
	}
	return nil
}

// parseDayQuery reads a YYYY-MM-DD query value as local midnight. Empty
// values yield nil.
func (handler *Handler) parseDayQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	day, err := time.ParseInLocation("2006-01-02", raw, handler.location)
	if err != nil {
		return nil, errors.New("invalid " + key + " date")
	}
	return &day, nil
}

func (handler *Handler) parseRangeQuery(c *fiber.Ctx) (*time.Time, *time.Time, error) {
	from, err := handler.parseDayQuery(c, "from")
	if err != nil {
		return nil, nil, err
	}
	to, err := handler.parseDayQuery(c, "to")
	if err != nil {
		return nil, nil, err
	}
	if to != nil {
		// "to" is inclusive for callers; the store range is half-open.
		next := to.AddDate(0, 0, 1)
		to = &next
	}
	return from, to, nil
}

func parsePositiveIntQuery(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return value, nil
}
