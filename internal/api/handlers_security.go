package api

import (
	"github.com/gofiber/fiber/v2"
)

type pinRequest struct {
	Pin string `json:"pin"`
}

type changePinRequest struct {
	CurrentPin string `json:"currentPin"`
	NewPin     string `json:"newPin"`
}

func (handler *Handler) SecurityStatus(c *fiber.Ctx) error {
	status, err := handler.deps.Security.Status(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, status)
}

// Unlock exchanges a correct PIN for the unlock cookie. Failures are counted
// per client and throttled.
func (handler *Handler) Unlock(c *fiber.Ctx) error {
	var input pinRequest
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	key := requestLimiterKey(c)
	now := handler.now()
	if handler.unlockLimiter.tooManyRecent(key, now, unlockAttemptsLimit, unlockAttemptsWindow) {
		return apiError(c, fiber.StatusTooManyRequests, "too many attempts")
	}

	ok, err := handler.deps.Security.VerifyPin(c.UserContext(), input.Pin)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		handler.unlockLimiter.addFailure(key, now, unlockAttemptsWindow)
		return apiError(c, fiber.StatusUnauthorized, "incorrect pin")
	}

	handler.unlockLimiter.reset(key)
	if err := handler.setUnlockCookie(c); err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"unlocked": true})
}

func (handler *Handler) Lock(c *fiber.Ctx) error {
	if err := handler.deps.Security.MarkLocked(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	handler.clearUnlockCookie(c)
	return respondData(c, fiber.StatusOK, fiber.Map{"locked": true})
}

func (handler *Handler) VerifyPin(c *fiber.Ctx) error {
	var input pinRequest
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	ok, err := handler.deps.Security.VerifyPin(c.UserContext(), input.Pin)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, fiber.Map{"valid": ok})
}

// SetPin enables the gate and unlocks the current client so it is not
// immediately shut out.
func (handler *Handler) SetPin(c *fiber.Ctx) error {
	var input pinRequest
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := handler.deps.Security.SetPin(c.UserContext(), input.Pin); err != nil {
		return respondError(c, err)
	}
	if err := handler.setUnlockCookie(c); err != nil {
		return respondError(c, err)
	}
	return handler.SecurityStatus(c)
}

// ChangePin swaps the PIN and locks out clients unlocked with the old one.
func (handler *Handler) ChangePin(c *fiber.Ctx) error {
	var input changePinRequest
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	if err := handler.deps.Security.ChangePin(c.UserContext(), input.CurrentPin, input.NewPin); err != nil {
		return respondError(c, err)
	}
	// The change voids every other unlock cookie; reissue this client's.
	if err := handler.setUnlockCookie(c); err != nil {
		return respondError(c, err)
	}
	return handler.SecurityStatus(c)
}

// DisablePin requires the current PIN even though the request already passed
// the gate.
func (handler *Handler) DisablePin(c *fiber.Ctx) error {
	var input pinRequest
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	ok, err := handler.deps.Security.VerifyPin(c.UserContext(), input.Pin)
	if err != nil {
		return respondError(c, err)
	}
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "incorrect pin")
	}
	if err := handler.deps.Security.DisablePin(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	handler.clearUnlockCookie(c)
	return handler.SecurityStatus(c)
}
