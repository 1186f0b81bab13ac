package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/chitra/internal/services"
)

type attachmentRequest struct {
	Data   string `json:"data"`
	Format string `json:"format"`
}

type medicineActionRequest struct {
	ActionID string    `json:"actionId"`
	DueAt    time.Time `json:"dueAt"`
}

func (handler *Handler) ListVaccinations(c *fiber.Ctx) error {
	entries, err := handler.deps.Vaccinations.List(c.UserContext(), c.Params("profileID"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, entries)
}

func (handler *Handler) CreateVaccination(c *fiber.Ctx) error {
	return handler.saveVaccination(c, "", fiber.StatusCreated)
}

func (handler *Handler) UpdateVaccination(c *fiber.Ctx) error {
	return handler.saveVaccination(c, c.Params("id"), fiber.StatusOK)
}

func (handler *Handler) saveVaccination(c *fiber.Ctx, vaccinationID string, status int) error {
	var input services.VaccinationInput
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	entry, err := handler.deps.Vaccinations.Save(c.UserContext(), c.Params("profileID"), vaccinationID, input)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, status, entry)
}

func (handler *Handler) DeleteVaccination(c *fiber.Ctx) error {
	if err := handler.deps.Vaccinations.Delete(c.UserContext(), c.Params("profileID"), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return sendNoContent(c)
}

func (handler *Handler) SaveVaccinationAttachment(c *fiber.Ctx) error {
	var input attachmentRequest
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	entry, err := handler.deps.Vaccinations.SaveAttachment(c.UserContext(), c.Params("profileID"), c.Params("id"), input.Data, input.Format)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, entry)
}

func (handler *Handler) ListMedicineSchedules(c *fiber.Ctx) error {
	schedules, err := handler.deps.Medicine.ListSchedules(c.UserContext(), c.Params("profileID"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, schedules)
}

func (handler *Handler) CreateMedicineSchedule(c *fiber.Ctx) error {
	return handler.saveMedicineSchedule(c, "", fiber.StatusCreated)
}

func (handler *Handler) UpdateMedicineSchedule(c *fiber.Ctx) error {
	return handler.saveMedicineSchedule(c, c.Params("id"), fiber.StatusOK)
}

func (handler *Handler) saveMedicineSchedule(c *fiber.Ctx, scheduleID string, status int) error {
	var input services.MedicineScheduleInput
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	schedule, err := handler.deps.Medicine.SaveSchedule(c.UserContext(), c.Params("profileID"), scheduleID, input)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, status, schedule)
}

func (handler *Handler) DeleteMedicineSchedule(c *fiber.Ctx) error {
	if err := handler.deps.Medicine.DeleteSchedule(c.UserContext(), c.Params("profileID"), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return sendNoContent(c)
}

func (handler *Handler) PauseMedicineSchedule(c *fiber.Ctx) error {
	return handler.setMedicinePaused(c, true)
}

func (handler *Handler) ResumeMedicineSchedule(c *fiber.Ctx) error {
	return handler.setMedicinePaused(c, false)
}

func (handler *Handler) setMedicinePaused(c *fiber.Ctx, paused bool) error {
	schedule, err := handler.deps.Medicine.SetPaused(c.UserContext(), c.Params("profileID"), c.Params("id"), paused)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, schedule)
}

func (handler *Handler) ListMedicineLogs(c *fiber.Ctx) error {
	logs, err := handler.deps.Medicine.ListLogs(c.UserContext(), c.Params("profileID"), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, logs)
}

// ApplyMedicineAction records an in-app response to a dose. A missing dueAt
// answers the dose currently waiting for a reply.
func (handler *Handler) ApplyMedicineAction(c *fiber.Ctx) error {
	var input medicineActionRequest
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	entry, err := handler.deps.Medicine.ApplyAction(c.UserContext(), c.Params("profileID"), c.Params("id"), input.ActionID, input.DueAt)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, entry)
}

func (handler *Handler) ListFeedingSchedules(c *fiber.Ctx) error {
	schedules, err := handler.deps.Feeding.ListSchedules(c.UserContext(), c.Params("profileID"))
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, schedules)
}

func (handler *Handler) CreateFeedingSchedule(c *fiber.Ctx) error {
	return handler.saveFeedingSchedule(c, "", fiber.StatusCreated)
}

func (handler *Handler) UpdateFeedingSchedule(c *fiber.Ctx) error {
	return handler.saveFeedingSchedule(c, c.Params("id"), fiber.StatusOK)
}

func (handler *Handler) saveFeedingSchedule(c *fiber.Ctx, scheduleID string, status int) error {
	var input services.FeedingScheduleInput
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	schedule, err := handler.deps.Feeding.SaveSchedule(c.UserContext(), c.Params("profileID"), scheduleID, input)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, status, schedule)
}

func (handler *Handler) DeleteFeedingSchedule(c *fiber.Ctx) error {
	if err := handler.deps.Feeding.DeleteSchedule(c.UserContext(), c.Params("profileID"), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return sendNoContent(c)
}

func (handler *Handler) ListFeedingLogs(c *fiber.Ctx) error {
	from, to, err := handler.parseRangeQuery(c)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	logs, err := handler.deps.Feeding.ListLogs(c.UserContext(), c.Params("profileID"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, logs)
}

func (handler *Handler) LogFeeding(c *fiber.Ctx) error {
	var input services.FeedingLogInput
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	entry, err := handler.deps.Feeding.LogFeeding(c.UserContext(), c.Params("profileID"), input)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, entry)
}

func (handler *Handler) DeleteFeedingLog(c *fiber.Ctx) error {
	if err := handler.deps.Feeding.DeleteLog(c.UserContext(), c.Params("profileID"), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return sendNoContent(c)
}
