package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/chitra/internal/db"
	"github.com/terraincognita07/chitra/internal/models"
	"github.com/terraincognita07/chitra/internal/reminders"
)

const (
	MedicineActionTaken    = "taken"
	MedicineActionSnooze10 = "snooze_10"
	MedicineActionSnooze30 = "snooze_30"
	MedicineActionSkip     = "skip"

	medicineFollowUpDelay = 15 * time.Minute
	maxDosesPerDay        = 24
)

var ErrUnknownMedicineAction = fmt.Errorf("%w: unknown medicine action", ErrInvalidRecordInput)

type MedicineScheduleInput struct {
	MedicineName  string    `json:"medicineName"`
	Dosage        string    `json:"dosage"`
	TimesPerDay   int       `json:"timesPerDay"`
	IntervalHours int       `json:"intervalHours"`
	TotalDays     int       `json:"totalDays"`
	StartDate     time.Time `json:"startDate"`
	Notes         string    `json:"notes"`
}

type MedicineService struct {
	schedules RecordCollection[models.MedicineSchedule]
	logs      RecordCollection[models.MedicineLog]
	reminders ReminderScheduler
	points    PointsAwarder
	now       func() time.Time
	text      reminderText
}

func NewMedicineService(
	schedules RecordCollection[models.MedicineSchedule],
	logs RecordCollection[models.MedicineLog],
	scheduler ReminderScheduler,
	points PointsAwarder,
) *MedicineService {
	return &MedicineService{
		schedules: schedules,
		logs:      logs,
		reminders: scheduler,
		points:    points,
		now:       func() time.Time { return schedulerNow(scheduler).UTC() },
	}
}

// SetReminderCopy localizes reminder text using the catalog and the language
// reported at scheduling time.
func (service *MedicineService) SetReminderCopy(catalog ReminderCopy, language func() string) {
	service.text = reminderText{catalog: catalog, language: language}
}

func (service *MedicineService) ListSchedules(ctx context.Context, profileID string) ([]models.MedicineSchedule, error) {
	return service.schedules.ByProfile(ctx, profileID)
}

func (service *MedicineService) ListLogs(ctx context.Context, profileID string, scheduleID string) ([]models.MedicineLog, error) {
	if _, err := service.ownedSchedule(ctx, profileID, scheduleID); err != nil {
		return nil, err
	}
	logs, err := service.logs.GetAllByIndex(ctx, db.IndexBySchedule, scheduleID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].LoggedAt.Before(logs[j].LoggedAt)
	})
	return logs, nil
}

func (service *MedicineService) SaveSchedule(ctx context.Context, profileID string, scheduleID string, input MedicineScheduleInput) (models.MedicineSchedule, error) {
	if err := requireProfileID(profileID); err != nil {
		return models.MedicineSchedule{}, err
	}
	if err := validateMedicineInput(input); err != nil {
		return models.MedicineSchedule{}, err
	}

	now := service.now()
	schedule := models.MedicineSchedule{
		ID:            scheduleID,
		ProfileID:     profileID,
		MedicineName:  strings.TrimSpace(input.MedicineName),
		Dosage:        strings.TrimSpace(input.Dosage),
		TimesPerDay:   input.TimesPerDay,
		IntervalHours: input.IntervalHours,
		TotalDays:     input.TotalDays,
		StartDate:     input.StartDate.UTC(),
		IsActive:      true,
		Notes:         strings.TrimSpace(input.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if scheduleID == "" {
		schedule.ID = uuid.NewString()
	} else {
		existing, err := service.ownedSchedule(ctx, profileID, scheduleID)
		if err != nil {
			return models.MedicineSchedule{}, err
		}
		schedule.CreatedAt = existing.CreatedAt
		schedule.IsActive = existing.IsActive
		schedule.IsPaused = existing.IsPaused
		schedule.RemindersSent = existing.RemindersSent
	}

	if err := service.schedules.Put(ctx, &schedule); err != nil {
		return models.MedicineSchedule{}, err
	}
	service.planNextDose(ctx, schedule, now)
	return schedule, nil
}

func validateMedicineInput(input MedicineScheduleInput) error {
	switch {
	case strings.TrimSpace(input.MedicineName) == "":
		return fmt.Errorf("%w: medicine name is required", ErrInvalidRecordInput)
	case input.TimesPerDay < 1 || input.TimesPerDay > maxDosesPerDay:
		return fmt.Errorf("%w: times per day must be between 1 and %d", ErrInvalidRecordInput, maxDosesPerDay)
	case input.IntervalHours < 1:
		return fmt.Errorf("%w: interval must be at least one hour", ErrInvalidRecordInput)
	case input.TimesPerDay > 1 && (input.TimesPerDay-1)*input.IntervalHours >= 24:
		return fmt.Errorf("%w: doses do not fit into one day", ErrInvalidRecordInput)
	case input.TotalDays < 1:
		return fmt.Errorf("%w: total days must be positive", ErrInvalidRecordInput)
	case input.StartDate.IsZero():
		return fmt.Errorf("%w: start date is required", ErrInvalidRecordInput)
	}
	return nil
}

func (service *MedicineService) DeleteSchedule(ctx context.Context, profileID string, scheduleID string) error {
	if _, err := service.ownedSchedule(ctx, profileID, scheduleID); err != nil {
		return err
	}
	service.cancelScheduleReminders(ctx, scheduleID)

	logs, err := service.logs.GetAllByIndex(ctx, db.IndexBySchedule, scheduleID)
	if err != nil {
		return err
	}
	for _, entry := range logs {
		if err := service.logs.Delete(ctx, entry.ID); err != nil {
			return err
		}
	}
	return service.schedules.Delete(ctx, scheduleID)
}

func (service *MedicineService) SetPaused(ctx context.Context, profileID string, scheduleID string, paused bool) (models.MedicineSchedule, error) {
	schedule, err := service.ownedSchedule(ctx, profileID, scheduleID)
	if err != nil {
		return models.MedicineSchedule{}, err
	}
	schedule.IsPaused = paused
	schedule.UpdatedAt = service.now()
	if err := service.schedules.Put(ctx, &schedule); err != nil {
		return models.MedicineSchedule{}, err
	}
	if paused {
		service.cancelScheduleReminders(ctx, scheduleID)
	} else {
		service.planNextDose(ctx, schedule, service.planAnchor(ctx, schedule, service.now()))
	}
	return schedule, nil
}

func (service *MedicineService) ownedSchedule(ctx context.Context, profileID string, scheduleID string) (models.MedicineSchedule, error) {
	schedule, found, err := service.schedules.Get(ctx, scheduleID)
	if err != nil {
		return models.MedicineSchedule{}, err
	}
	if !found || (profileID != "" && schedule.ProfileID != profileID) {
		return models.MedicineSchedule{}, ErrRecordNotFound
	}
	return schedule, nil
}

// DosePlan lists every dose of the course: TimesPerDay doses each day spaced
// IntervalHours apart from the start time, for TotalDays days.
func DosePlan(schedule models.MedicineSchedule) []time.Time {
	if schedule.TimesPerDay < 1 || schedule.TotalDays < 1 {
		return nil
	}
	doses := make([]time.Time, 0, schedule.TimesPerDay*schedule.TotalDays)
	for day := 0; day < schedule.TotalDays; day++ {
		dayStart := schedule.StartDate.AddDate(0, 0, day)
		for dose := 0; dose < schedule.TimesPerDay; dose++ {
			doses = append(doses, dayStart.Add(time.Duration(dose*schedule.IntervalHours)*time.Hour))
		}
	}
	return doses
}

// NextDose returns the first planned dose strictly after the given time.
func NextDose(schedule models.MedicineSchedule, after time.Time) (time.Time, bool) {
	for _, dose := range DosePlan(schedule) {
		if dose.After(after) {
			return dose, true
		}
	}
	return time.Time{}, false
}

func (service *MedicineService) cancelScheduleReminders(ctx context.Context, scheduleID string) {
	cancelQuietly(ctx, service.reminders, scheduleID, "", reminders.SuffixFollowUp, reminders.SuffixSnooze)
}

// planNextDose schedules the first dose after the given time. The follow-up
// stays on a dose that is already due and unanswered until its nag fires, and
// only then moves on to the next dose.
func (service *MedicineService) planNextDose(ctx context.Context, schedule models.MedicineSchedule, after time.Time) int {
	cancelQuietly(ctx, service.reminders, schedule.ID, "", reminders.SuffixFollowUp)
	if !schedule.IsActive || schedule.IsPaused {
		return 0
	}

	planned := 0
	due, ok := NextDose(schedule, after)
	if ok && scheduleQuietly(ctx, service.reminders, service.doseReminder(schedule, "", due, due,
		service.text.render("reminder.medicine.dose.title", "Time for %s", schedule.MedicineName), service.doseBody(schedule))) {
		planned++
	}

	nagDue := due
	if open, found := service.unansweredDose(ctx, schedule, service.now()); found {
		nagDue, ok = open, true
	}
	if ok && scheduleQuietly(ctx, service.reminders, service.doseReminder(schedule, reminders.SuffixFollowUp, nagDue, nagDue.Add(medicineFollowUpDelay),
		service.text.render("reminder.medicine.followup.title", "%s still pending", schedule.MedicineName),
		service.text.render("reminder.medicine.followup.body", "Did you take your dose?"))) {
		planned++
	}
	return planned
}

// unansweredDose finds the dose whose follow-up window contains now and that
// has no log yet. A snooze counts as an answer: it carries its own reminder.
func (service *MedicineService) unansweredDose(ctx context.Context, schedule models.MedicineSchedule, now time.Time) (time.Time, bool) {
	var open time.Time
	for _, dose := range DosePlan(schedule) {
		if dose.After(now) {
			break
		}
		if now.Before(dose.Add(medicineFollowUpDelay)) {
			open = dose
		}
	}
	if open.IsZero() {
		return time.Time{}, false
	}

	logs, err := service.logs.GetAllByIndex(ctx, db.IndexBySchedule, schedule.ID)
	if err != nil {
		return time.Time{}, false
	}
	for _, entry := range logs {
		if entry.ScheduledFor.Equal(open) {
			return time.Time{}, false
		}
	}
	return open, true
}

func (service *MedicineService) doseBody(schedule models.MedicineSchedule) string {
	if schedule.Dosage == "" {
		return service.text.render("reminder.medicine.dose.body_plain", "Dose due now.")
	}
	return service.text.render("reminder.medicine.dose.body", "Take %s.", schedule.Dosage)
}

func (service *MedicineService) doseReminder(schedule models.MedicineSchedule, suffix string, due time.Time, fireAt time.Time, title string, body string) reminders.Reminder {
	return reminders.Reminder{
		ID:         reminders.NotificationID(schedule.ID, suffix),
		Category:   reminders.CategoryMedicine,
		Title:      title,
		Body:       body,
		FireAt:     fireAt,
		ActionType: reminders.ActionTypeMedicine,
		Metadata: map[string]string{
			reminders.MetaKind:      ReminderKindMedicine,
			reminders.MetaEntityID:  schedule.ID,
			reminders.MetaProfileID: schedule.ProfileID,
			reminders.MetaDueAt:     due.UTC().Format(time.RFC3339),
			metaScheduleID:          schedule.ID,
		},
	}
}

// HandleAction reacts to a button pressed on a dose reminder.
func (service *MedicineService) HandleAction(ctx context.Context, action reminders.Action) error {
	scheduleID := action.Metadata[metaScheduleID]
	if scheduleID == "" {
		scheduleID = action.Metadata[reminders.MetaEntityID]
	}
	var dueAt time.Time
	if raw := action.Metadata[reminders.MetaDueAt]; raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err == nil {
			dueAt = parsed
		}
	}
	_, err := service.ApplyAction(ctx, "", scheduleID, action.ActionID, dueAt)
	return err
}

// ApplyAction records the outcome of a dose and plans what comes next. An
// empty profileID skips the ownership check.
func (service *MedicineService) ApplyAction(ctx context.Context, profileID string, scheduleID string, actionID string, dueAt time.Time) (models.MedicineLog, error) {
	schedule, err := service.ownedSchedule(ctx, profileID, scheduleID)
	if err != nil {
		return models.MedicineLog{}, err
	}

	now := service.now()
	if dueAt.IsZero() {
		// Without an explicit dose, answer the one currently being nagged.
		dueAt = now
		if open, found := service.unansweredDose(ctx, schedule, now); found {
			dueAt = open
		}
	}

	var status string
	switch actionID {
	case MedicineActionTaken:
		status = models.MedicineStatusTaken
	case MedicineActionSkip:
		status = models.MedicineStatusSkipped
	case MedicineActionSnooze10, MedicineActionSnooze30:
		status = models.MedicineStatusSnoozed
	default:
		return models.MedicineLog{}, fmt.Errorf("%w %q", ErrUnknownMedicineAction, actionID)
	}

	entry := models.MedicineLog{
		ID:           uuid.NewString(),
		ProfileID:    schedule.ProfileID,
		ScheduleID:   schedule.ID,
		Status:       status,
		ScheduledFor: dueAt,
		LoggedAt:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := service.logs.Put(ctx, &entry); err != nil {
		return models.MedicineLog{}, err
	}

	schedule.RemindersSent++
	schedule.UpdatedAt = now
	if err := service.schedules.Put(ctx, &schedule); err != nil {
		return models.MedicineLog{}, err
	}

	switch actionID {
	case MedicineActionTaken, MedicineActionSkip:
		cancelQuietly(ctx, service.reminders, schedule.ID, reminders.SuffixFollowUp, reminders.SuffixSnooze)
		after := dueAt
		if now.After(after) {
			after = now
		}
		service.planNextDose(ctx, schedule, after)
		if actionID == MedicineActionTaken && service.points != nil {
			service.points.Award(ctx, now)
		}
	case MedicineActionSnooze10, MedicineActionSnooze30:
		cancelQuietly(ctx, service.reminders, schedule.ID, reminders.SuffixFollowUp)
		delay := 10 * time.Minute
		if actionID == MedicineActionSnooze30 {
			delay = 30 * time.Minute
		}
		scheduleQuietly(ctx, service.reminders, service.doseReminder(schedule, reminders.SuffixSnooze, dueAt, now.Add(delay),
			service.text.render("reminder.medicine.snooze.title", "Snoozed: %s", schedule.MedicineName), service.doseBody(schedule)))
	}
	return entry, nil
}

// PlanReminders re-plans the next dose of every running schedule.
func (service *MedicineService) PlanReminders(ctx context.Context) (int, error) {
	schedules, err := service.schedules.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	now := service.now()
	planned := 0
	for _, schedule := range schedules {
		planned += service.planNextDose(ctx, schedule, service.planAnchor(ctx, schedule, now))
	}
	return planned, nil
}

// planAnchor is the instant after which the next dose is searched: now, or
// the latest dose already taken or skipped when that lies ahead of now.
func (service *MedicineService) planAnchor(ctx context.Context, schedule models.MedicineSchedule, now time.Time) time.Time {
	logs, err := service.logs.GetAllByIndex(ctx, db.IndexBySchedule, schedule.ID)
	if err != nil {
		return now
	}
	anchor := now
	for _, entry := range logs {
		if entry.Status == models.MedicineStatusSnoozed {
			continue
		}
		if entry.ScheduledFor.After(anchor) {
			anchor = entry.ScheduledFor
		}
	}
	return anchor
}

func (service *MedicineService) CancelProfileReminders(ctx context.Context, profileID string) error {
	schedules, err := service.schedules.ByProfile(ctx, profileID)
	if err != nil {
		return err
	}
	for _, schedule := range schedules {
		service.cancelScheduleReminders(ctx, schedule.ID)
	}
	return nil
}
