package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/chitra/internal/models"
	"github.com/terraincognita07/chitra/internal/services"
)

const defaultWeightTrendDays = 30

func (handler *Handler) ListCycles(c *fiber.Ctx) error {
	from, to, err := handler.parseRangeQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	cycles, err := handler.deps.Tracking.ListCycles(c.UserContext(), c.Params("profileID"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, cycles)
}

func (handler *Handler) CreateCycle(c *fiber.Ctx) error {
	return handler.saveCycle(c, "", fiber.StatusCreated)
}

func (handler *Handler) UpdateCycle(c *fiber.Ctx) error {
	return handler.saveCycle(c, c.Params("id"), fiber.StatusOK)
}

func (handler *Handler) saveCycle(c *fiber.Ctx, cycleID string, status int) error {
	var input services.CycleInput
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	cycle, err := handler.deps.Tracking.SaveCycle(c.UserContext(), c.Params("profileID"), cycleID, input)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, status, cycle)
}

func (handler *Handler) DeleteCycle(c *fiber.Ctx) error {
	if err := handler.deps.Tracking.DeleteCycle(c.UserContext(), c.Params("profileID"), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return sendNoContent(c)
}

func (handler *Handler) CycleSummary(c *fiber.Ctx) error {
	summary, err := handler.deps.Tracking.CycleSummary(c.UserContext(), c.Params("profileID"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, summary)
}

func (handler *Handler) ListWeights(c *fiber.Ctx) error {
	from, to, err := handler.parseRangeQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	weights, err := handler.deps.Tracking.ListWeights(c.UserContext(), c.Params("profileID"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, weights)
}

func (handler *Handler) AddWeight(c *fiber.Ctx) error {
	var input services.WeightInput
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	entry, err := handler.deps.Tracking.AddWeight(c.UserContext(), c.Params("profileID"), input)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, entry)
}

func (handler *Handler) DeleteWeight(c *fiber.Ctx) error {
	if err := handler.deps.Tracking.DeleteWeight(c.UserContext(), c.Params("profileID"), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return sendNoContent(c)
}

// WeightTrend answers with null data when fewer than two entries fall in the
// window.
func (handler *Handler) WeightTrend(c *fiber.Ctx) error {
	days, err := parsePositiveIntQuery(c, "days", defaultWeightTrendDays)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	unit := c.Query("unit", models.WeightUnitKG)
	if unit != models.WeightUnitKG && unit != models.WeightUnitLB {
		return apiError(c, fiber.StatusBadRequest, "invalid unit")
	}

	trend, ok, err := handler.deps.Tracking.WeightTrend(c.UserContext(), c.Params("profileID"), days, unit)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return respondData(c, fiber.StatusOK, nil)
	}
	return respondData(c, fiber.StatusOK, trend)
}

func (handler *Handler) ListCheckIns(c *fiber.Ctx) error {
	from, to, err := handler.parseRangeQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	checkIns, err := handler.deps.Tracking.ListCheckIns(c.UserContext(), c.Params("profileID"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, checkIns)
}

func (handler *Handler) SaveCheckIn(c *fiber.Ctx) error {
	var input services.CheckInInput
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	checkIn, err := handler.deps.Tracking.SaveCheckIn(c.UserContext(), c.Params("profileID"), input)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, checkIn)
}

func (handler *Handler) DeleteCheckIn(c *fiber.Ctx) error {
	if err := handler.deps.Tracking.DeleteCheckIn(c.UserContext(), c.Params("profileID"), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return sendNoContent(c)
}

func (handler *Handler) ListScreenTime(c *fiber.Ctx) error {
	from, to, err := handler.parseRangeQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	entries, err := handler.deps.Tracking.ListScreenTime(c.UserContext(), c.Params("profileID"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, entries)
}

func (handler *Handler) AddScreenTime(c *fiber.Ctx) error {
	var input services.ScreenTimeInput
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	entry, err := handler.deps.Tracking.AddScreenTime(c.UserContext(), c.Params("profileID"), input)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, entry)
}

func (handler *Handler) DeleteScreenTime(c *fiber.Ctx) error {
	if err := handler.deps.Tracking.DeleteScreenTime(c.UserContext(), c.Params("profileID"), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return sendNoContent(c)
}

func (handler *Handler) DailyScreenTime(c *fiber.Ctx) error {
	day, err := handler.parseDayQuery(c, "date")
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	if day == nil {
		today := services.DateAtLocation(handler.now(), handler.location)
		day = &today
	}
	minutes, err := handler.deps.Tracking.DailyScreenTime(c.UserContext(), c.Params("profileID"), *day)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{
		"date":    day.Format("2006-01-02"),
		"minutes": minutes,
	})
}
