package services

import (
	"time"

	"github.com/terraincognita07/chitra/internal/db"
	"github.com/terraincognita07/chitra/internal/reminders"
)

// Suite is the set of domain services backed by one store and one reminder
// scheduler.
type Suite struct {
	Preferences  *PreferencesService
	Profiles     *ProfileService
	Security     *SecurityService
	Tracking     *TrackingService
	Vaccinations *VaccinationService
	Medicine     *MedicineService
	Feeding      *FeedingService
	CarePoints   *CarePointsService
	Payment      *PaymentService
	Export       *ExportService
	Actions      *ActionRouter
	Reminders    *ReminderRebuilder
}

// NewSuite wires the services together. Preferences must already be loaded
// because the scheduler reads category toggles from them. The storage folder
// is read from preferences on every write and falls back to fallbackFolder.
func NewSuite(store *db.Store, preferences *PreferencesService, scheduler ReminderScheduler, location *time.Location, fallbackFolder string) *Suite {
	files := NewDirectorySink(func() string {
		if folder := preferences.Current().StorageFolder; folder != "" {
			return folder
		}
		return fallbackFolder
	})

	points := NewCarePointsService(store.CarePoints, location)
	suite := &Suite{
		Preferences:  preferences,
		Profiles:     NewProfileService(store.Profiles, store, preferences),
		Security:     NewSecurityService(store.Security),
		Tracking:     NewTrackingService(store.Cycles, store.Weights, store.CheckIns, store.ScreenTime, points, location),
		Vaccinations: NewVaccinationService(store.Vaccinations, scheduler, files, points, location),
		Medicine:     NewMedicineService(store.MedicineSchedules, store.MedicineLogs, scheduler, points),
		Feeding:      NewFeedingService(store.FeedingSchedules, store.FeedingLogs, scheduler, points),
		CarePoints:   points,
		Payment:      NewPaymentService(store.Payment),
		Export: NewExportService(ExportCollections{
			Profiles:          store.Profiles,
			Cycles:            store.Cycles,
			Weights:           store.Weights,
			CheckIns:          store.CheckIns,
			Vaccinations:      store.Vaccinations,
			MedicineSchedules: store.MedicineSchedules,
			MedicineLogs:      store.MedicineLogs,
			FeedingSchedules:  store.FeedingSchedules,
			FeedingLogs:       store.FeedingLogs,
			ScreenTime:        store.ScreenTime,
		}, files),
		Actions: NewActionRouter(),
	}

	suite.Actions.Register(ReminderKindMedicine, suite.Medicine.HandleAction)
	suite.Actions.Register(ReminderKindFeeding, suite.Feeding.HandleAction)

	// Schedulers without CancelAll still re-plan; ids supersede old entries.
	resetter, _ := scheduler.(ReminderResetter)
	suite.Reminders = NewReminderRebuilder(resetter, suite.Planners()...)
	suite.Export.UseReminderRebuilder(suite.Reminders)
	suite.Profiles.AddReminderCanceller(suite.Vaccinations)
	suite.Profiles.AddReminderCanceller(suite.Medicine)
	suite.Profiles.AddReminderCanceller(suite.Feeding)
	return suite
}

// UseReminderCopy renders reminder text through catalog in the locale the
// user has selected.
func (suite *Suite) UseReminderCopy(catalog ReminderCopy) {
	language := func() string { return suite.Preferences.Current().Locale }
	suite.Vaccinations.SetReminderCopy(catalog, language)
	suite.Medicine.SetReminderCopy(catalog, language)
	suite.Feeding.SetReminderCopy(catalog, language)
}

// Planners returns every domain that owns recurring reminders.
func (suite *Suite) Planners() []reminders.Planner {
	return []reminders.Planner{suite.Vaccinations, suite.Medicine, suite.Feeding}
}

// RegisterPlanners adds each reminder-owning domain to the sweeper under the
// name it is logged as.
func (suite *Suite) RegisterPlanners(sweeper *reminders.Sweeper) {
	sweeper.Add(ReminderKindVaccination, suite.Vaccinations)
	sweeper.Add(ReminderKindMedicine, suite.Medicine)
	sweeper.Add(ReminderKindFeeding, suite.Feeding)
}
