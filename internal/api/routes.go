package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.PinGate)

	i18n := api.Group("/i18n")
	i18n.Get("", handler.ListLanguages)
	i18n.Get("/:lang", handler.GetMessages)

	security := api.Group("/security")
	security.Get("/status", handler.SecurityStatus)
	security.Post("/unlock", handler.Unlock)
	security.Post("/lock", handler.Lock)
	security.Post("/verify", handler.VerifyPin)
	security.Post("/pin", handler.SetPin)
	security.Put("/pin", handler.ChangePin)
	security.Delete("/pin", handler.DisablePin)

	preferences := api.Group("/preferences")
	preferences.Get("", handler.GetPreferences)
	preferences.Patch("", handler.UpdatePreferences)

	profiles := api.Group("/profiles")
	profiles.Get("", handler.ListProfiles)
	profiles.Post("", handler.AddProfile)
	profiles.Get("/active", handler.GetActiveProfile)
	profiles.Put("/active", handler.SetActiveProfile)
	profiles.Patch("/:profileID", handler.UpdateProfile)
	profiles.Delete("/:profileID", handler.DeleteProfile)

	profile := profiles.Group("/:profileID")

	cycles := profile.Group("/cycles", handler.ProfileScope)
	cycles.Get("", handler.ListCycles)
	cycles.Post("", handler.CreateCycle)
	cycles.Get("/summary", handler.CycleSummary)
	cycles.Put("/:id", handler.UpdateCycle)
	cycles.Delete("/:id", handler.DeleteCycle)

	weights := profile.Group("/weights", handler.ProfileScope)
	weights.Get("", handler.ListWeights)
	weights.Post("", handler.AddWeight)
	weights.Get("/trend", handler.WeightTrend)
	weights.Delete("/:id", handler.DeleteWeight)

	checkIns := profile.Group("/check-ins", handler.ProfileScope)
	checkIns.Get("", handler.ListCheckIns)
	checkIns.Put("", handler.SaveCheckIn)
	checkIns.Delete("/:id", handler.DeleteCheckIn)

	screenTime := profile.Group("/screen-time", handler.ProfileScope)
	screenTime.Get("", handler.ListScreenTime)
	screenTime.Post("", handler.AddScreenTime)
	screenTime.Get("/daily", handler.DailyScreenTime)
	screenTime.Delete("/:id", handler.DeleteScreenTime)

	vaccinations := profile.Group("/vaccinations", handler.ProfileScope)
	vaccinations.Get("", handler.ListVaccinations)
	vaccinations.Post("", handler.CreateVaccination)
	vaccinations.Put("/:id", handler.UpdateVaccination)
	vaccinations.Delete("/:id", handler.DeleteVaccination)
	vaccinations.Post("/:id/attachment", handler.SaveVaccinationAttachment)

	medicine := profile.Group("/medicine", handler.ProfileScope)
	medicine.Get("", handler.ListMedicineSchedules)
	medicine.Post("", handler.CreateMedicineSchedule)
	medicine.Put("/:id", handler.UpdateMedicineSchedule)
	medicine.Delete("/:id", handler.DeleteMedicineSchedule)
	medicine.Post("/:id/pause", handler.PauseMedicineSchedule)
	medicine.Post("/:id/resume", handler.ResumeMedicineSchedule)
	medicine.Get("/:id/logs", handler.ListMedicineLogs)
	medicine.Post("/:id/actions", handler.ApplyMedicineAction)

	feeding := profile.Group("/feeding", handler.ProfileScope)
	feeding.Get("/schedules", handler.ListFeedingSchedules)
	feeding.Post("/schedules", handler.CreateFeedingSchedule)
	feeding.Put("/schedules/:id", handler.UpdateFeedingSchedule)
	feeding.Delete("/schedules/:id", handler.DeleteFeedingSchedule)
	feeding.Get("/logs", handler.ListFeedingLogs)
	feeding.Post("/logs", handler.LogFeeding)
	feeding.Delete("/logs/:id", handler.DeleteFeedingLog)

	reminders := api.Group("/reminders")
	reminders.Get("/pending", handler.PendingReminders)
	reminders.Get("/inbox", handler.ReminderInbox)
	reminders.Get("/action-types", handler.ReminderActionTypes)
	reminders.Post("/actions", handler.PerformReminderAction)

	export := api.Group("/export")
	export.Get("/json", handler.ExportJSON)
	export.Get("/csv", handler.ExportCSV)
	export.Post("/file", handler.ExportToFile)
	api.Post("/import", handler.ImportJSON)

	api.Get("/care-points", handler.GetCarePoints)

	payment := api.Group("/payment")
	payment.Get("", handler.PaymentStatus)
	payment.Post("", handler.ActivatePayment)
	payment.Delete("", handler.RevokePayment)
}
