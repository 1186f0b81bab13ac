package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/chitra/internal/reminders"
)

func (handler *Handler) PendingReminders(c *fiber.Ctx) error {
	pending, err := handler.deps.Reminders.Pending(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{
		"backend":   handler.reminderBackendName(),
		"reminders": pending,
	})
}

// ReminderInbox lists reminders the web backend already showed. Native
// installs deliver through the OS and have no inbox.
func (handler *Handler) ReminderInbox(c *fiber.Ctx) error {
	if handler.deps.Inbox == nil {
		return respondData(c, fiber.StatusOK, []reminders.Notification{})
	}
	return respondData(c, fiber.StatusOK, handler.deps.Inbox.Recent())
}

func (handler *Handler) ReminderActionTypes(c *fiber.Ctx) error {
	if handler.deps.Bridge == nil {
		return respondData(c, fiber.StatusOK, reminders.DefaultActionTypes())
	}
	return respondData(c, fiber.StatusOK, handler.deps.Bridge.ActionTypes())
}

// PerformReminderAction routes a notification button press. On native
// installs the delivered request is dropped from the bridge first, since the
// handler may schedule a follow-up under the same id.
func (handler *Handler) PerformReminderAction(c *fiber.Ctx) error {
	var action reminders.Action
	if err := parseBody(c, &action); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	if action.ActionID == "" {
		return apiError(c, fiber.StatusBadRequest, "action id is required")
	}

	if handler.deps.Bridge != nil && action.NotificationID != 0 {
		if err := handler.deps.Bridge.Cancel(c.UserContext(), []int32{action.NotificationID}); err != nil {
			return respondError(c, err)
		}
	}
	if err := handler.deps.Reminders.HandleAction(c.UserContext(), action); err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"handled": true})
}
