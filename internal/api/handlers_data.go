package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/chitra/internal/services"
)

type exportFileRequest struct {
	Format string `json:"format"`
}

type activatePaymentRequest struct {
	Plan    string `json:"plan"`
	Receipt string `json:"receipt"`
}

func (handler *Handler) ExportJSON(c *fiber.Ctx) error {
	payload, err := handler.deps.Export.ExportJSON(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	setExportAttachmentHeaders(c, fiber.MIMEApplicationJSON, handler.exportFilename(services.ExportFormatJSON))
	return c.Send(payload)
}

func (handler *Handler) ExportCSV(c *fiber.Ctx) error {
	payload, err := handler.deps.Export.ExportCSV(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	setExportAttachmentHeaders(c, "text/csv", handler.exportFilename(services.ExportFormatCSV))
	return c.Send(payload)
}

func (handler *Handler) ExportToFile(c *fiber.Ctx) error {
	input := exportFileRequest{Format: services.ExportFormatJSON}
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	path, err := handler.deps.Export.ExportToFile(c.UserContext(), input.Format)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusCreated, fiber.Map{"path": path})
}

func (handler *Handler) ImportJSON(c *fiber.Ctx) error {
	if len(c.Body()) > maxImportBodyBytes {
		return apiError(c, fiber.StatusRequestEntityTooLarge, "import payload too large")
	}
	report, err := handler.deps.Export.ImportJSON(c.UserContext(), c.Body())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, report)
}

func (handler *Handler) exportFilename(extension string) string {
	return fmt.Sprintf("chitra-export-%s.%s", handler.now().In(handler.location).Format("2006-01-02"), extension)
}

func setExportAttachmentHeaders(c *fiber.Ctx, contentType string, filename string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
}

func (handler *Handler) GetCarePoints(c *fiber.Ctx) error {
	points, err := handler.deps.CarePoints.Current(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, points)
}

func (handler *Handler) PaymentStatus(c *fiber.Ctx) error {
	payment, err := handler.deps.Payment.Status(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, payment)
}

func (handler *Handler) ActivatePayment(c *fiber.Ctx) error {
	var input activatePaymentRequest
	if err := parseBody(c, &input); err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}
	payment, err := handler.deps.Payment.Activate(c.UserContext(), input.Plan, input.Receipt)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, payment)
}

func (handler *Handler) RevokePayment(c *fiber.Ctx) error {
	payment, err := handler.deps.Payment.Revoke(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, fiber.StatusOK, payment)
}
