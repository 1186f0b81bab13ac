package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/chitra/internal/db"
	"github.com/terraincognita07/chitra/internal/models"
	"github.com/terraincognita07/chitra/internal/reminders"
)

const FeedingActionFed = "fed"

type FeedingScheduleInput struct {
	Label         string    `json:"label"`
	FeedingType   string    `json:"feedingType"`
	IntervalHours int       `json:"intervalHours"`
	StartTime     time.Time `json:"startTime"`
	IsActive      *bool     `json:"isActive"`
}

type FeedingLogInput struct {
	ScheduleID      string    `json:"scheduleId"`
	FeedingType     string    `json:"feedingType"`
	AmountML        int       `json:"amountMl"`
	DurationMinutes int       `json:"durationMinutes"`
	FedAt           time.Time `json:"fedAt"`
	Notes           string    `json:"notes"`
}

type FeedingService struct {
	schedules RecordCollection[models.FeedingSchedule]
	logs      RecordCollection[models.FeedingLog]
	reminders ReminderScheduler
	points    PointsAwarder
	now       func() time.Time
	text      reminderText
}

func NewFeedingService(
	schedules RecordCollection[models.FeedingSchedule],
	logs RecordCollection[models.FeedingLog],
	scheduler ReminderScheduler,
	points PointsAwarder,
) *FeedingService {
	return &FeedingService{
		schedules: schedules,
		logs:      logs,
		reminders: scheduler,
		points:    points,
		now:       func() time.Time { return schedulerNow(scheduler).UTC() },
	}
}

// SetReminderCopy localizes reminder text using the catalog and the language
// reported at scheduling time.
func (service *FeedingService) SetReminderCopy(catalog ReminderCopy, language func() string) {
	service.text = reminderText{catalog: catalog, language: language}
}

func (service *FeedingService) ListSchedules(ctx context.Context, profileID string) ([]models.FeedingSchedule, error) {
	return service.schedules.ByProfile(ctx, profileID)
}

func (service *FeedingService) ListLogs(ctx context.Context, profileID string, from *time.Time, to *time.Time) ([]models.FeedingLog, error) {
	return service.logs.ByDateRange(ctx, profileID, from, to)
}

func (service *FeedingService) SaveSchedule(ctx context.Context, profileID string, scheduleID string, input FeedingScheduleInput) (models.FeedingSchedule, error) {
	if err := requireProfileID(profileID); err != nil {
		return models.FeedingSchedule{}, err
	}
	if !models.IsValidFeedingType(input.FeedingType) {
		return models.FeedingSchedule{}, fmt.Errorf("%w: feeding type %q", ErrInvalidRecordInput, input.FeedingType)
	}
	if input.IntervalHours < 1 || input.IntervalHours > 24 {
		return models.FeedingSchedule{}, fmt.Errorf("%w: interval must be between 1 and 24 hours", ErrInvalidRecordInput)
	}
	if input.StartTime.IsZero() {
		return models.FeedingSchedule{}, fmt.Errorf("%w: start time is required", ErrInvalidRecordInput)
	}

	now := service.now()
	schedule := models.FeedingSchedule{
		ID:            scheduleID,
		ProfileID:     profileID,
		Label:         strings.TrimSpace(input.Label),
		FeedingType:   input.FeedingType,
		IntervalHours: input.IntervalHours,
		StartTime:     input.StartTime.UTC(),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if scheduleID == "" {
		schedule.ID = uuid.NewString()
	} else {
		existing, err := service.ownedSchedule(ctx, profileID, scheduleID)
		if err != nil {
			return models.FeedingSchedule{}, err
		}
		schedule.CreatedAt = existing.CreatedAt
		schedule.IsActive = existing.IsActive
	}
	if input.IsActive != nil {
		schedule.IsActive = *input.IsActive
	}

	if err := service.schedules.Put(ctx, &schedule); err != nil {
		return models.FeedingSchedule{}, err
	}
	service.planNextFeeding(ctx, schedule)
	return schedule, nil
}

func (service *FeedingService) DeleteSchedule(ctx context.Context, profileID string, scheduleID string) error {
	if _, err := service.ownedSchedule(ctx, profileID, scheduleID); err != nil {
		return err
	}
	cancelQuietly(ctx, service.reminders, scheduleID, "")
	return service.schedules.Delete(ctx, scheduleID)
}

func (service *FeedingService) ownedSchedule(ctx context.Context, profileID string, scheduleID string) (models.FeedingSchedule, error) {
	schedule, found, err := service.schedules.Get(ctx, scheduleID)
	if err != nil {
		return models.FeedingSchedule{}, err
	}
	if !found || (profileID != "" && schedule.ProfileID != profileID) {
		return models.FeedingSchedule{}, ErrRecordNotFound
	}
	return schedule, nil
}

// LogFeeding records a feed. When it belongs to a schedule, the next reminder
// moves to the feed time plus the schedule interval.
func (service *FeedingService) LogFeeding(ctx context.Context, profileID string, input FeedingLogInput) (models.FeedingLog, error) {
	if err := requireProfileID(profileID); err != nil {
		return models.FeedingLog{}, err
	}

	var schedule *models.FeedingSchedule
	if input.ScheduleID != "" {
		owned, err := service.ownedSchedule(ctx, profileID, input.ScheduleID)
		if err != nil {
			return models.FeedingLog{}, err
		}
		schedule = &owned
		if input.FeedingType == "" {
			input.FeedingType = owned.FeedingType
		}
	}
	if !models.IsValidFeedingType(input.FeedingType) {
		return models.FeedingLog{}, fmt.Errorf("%w: feeding type %q", ErrInvalidRecordInput, input.FeedingType)
	}
	if input.AmountML < 0 || input.DurationMinutes < 0 {
		return models.FeedingLog{}, fmt.Errorf("%w: amount and duration must not be negative", ErrInvalidRecordInput)
	}

	now := service.now()
	fedAt := input.FedAt
	if fedAt.IsZero() {
		fedAt = now
	}
	entry := models.FeedingLog{
		ID:              uuid.NewString(),
		ProfileID:       profileID,
		ScheduleID:      input.ScheduleID,
		FeedingType:     input.FeedingType,
		AmountML:        input.AmountML,
		DurationMinutes: input.DurationMinutes,
		FedAt:           fedAt.UTC(),
		Notes:           strings.TrimSpace(input.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := service.logs.Put(ctx, &entry); err != nil {
		return models.FeedingLog{}, err
	}
	if schedule != nil {
		service.planNextFeeding(ctx, *schedule)
	}
	if service.points != nil {
		service.points.Award(ctx, now)
	}
	return entry, nil
}

// DeleteLog removes a feed and re-plans its schedule, whose next reminder may
// have been anchored on it.
func (service *FeedingService) DeleteLog(ctx context.Context, profileID string, logID string) error {
	entry, found, err := service.logs.Get(ctx, logID)
	if err != nil {
		return err
	}
	if !found || entry.ProfileID != profileID {
		return ErrRecordNotFound
	}
	if err := service.logs.Delete(ctx, logID); err != nil {
		return err
	}

	if entry.ScheduleID == "" {
		return nil
	}
	schedule, found, err := service.schedules.Get(ctx, entry.ScheduleID)
	if err != nil {
		log.Printf("reminders: reload feeding schedule %s: %v", entry.ScheduleID, err)
		return nil
	}
	if found {
		service.planNextFeeding(ctx, schedule)
	}
	return nil
}

// NextFeeding is the last feed of the schedule plus its interval, or the
// schedule start when nothing was logged yet.
func NextFeeding(schedule models.FeedingSchedule, logs []models.FeedingLog) time.Time {
	var last time.Time
	for _, entry := range logs {
		if entry.ScheduleID == schedule.ID && entry.FedAt.After(last) {
			last = entry.FedAt
		}
	}
	if last.IsZero() {
		return schedule.StartTime
	}
	return last.Add(time.Duration(schedule.IntervalHours) * time.Hour)
}

func (service *FeedingService) planNextFeeding(ctx context.Context, schedule models.FeedingSchedule) int {
	cancelQuietly(ctx, service.reminders, schedule.ID, "")
	if !schedule.IsActive {
		return 0
	}
	logs, err := service.logs.GetAllByIndex(ctx, db.IndexBySchedule, schedule.ID)
	if err != nil {
		return 0
	}
	next := NextFeeding(schedule, logs)

	label := schedule.Label
	if label == "" {
		label = service.text.render("reminder.feeding.default_label", "Feeding")
	}
	if scheduleQuietly(ctx, service.reminders, reminders.Reminder{
		ID:         reminders.NotificationID(schedule.ID, ""),
		Category:   reminders.CategoryFeeding,
		Title:      service.text.render("reminder.feeding.title", "%s time", label),
		Body:       service.text.render("reminder.feeding.body", "Next %s feed is due.", schedule.FeedingType),
		FireAt:     next,
		ActionType: reminders.ActionTypeFeeding,
		Metadata: map[string]string{
			reminders.MetaKind:      ReminderKindFeeding,
			reminders.MetaEntityID:  schedule.ID,
			reminders.MetaProfileID: schedule.ProfileID,
			reminders.MetaDueAt:     next.UTC().Format(time.RFC3339),
			metaScheduleID:          schedule.ID,
		},
	}) {
		return 1
	}
	return 0
}

// HandleAction logs a feed when the "fed" button is pressed.
func (service *FeedingService) HandleAction(ctx context.Context, action reminders.Action) error {
	if action.ActionID != FeedingActionFed {
		return nil
	}
	scheduleID := action.Metadata[metaScheduleID]
	schedule, err := service.ownedSchedule(ctx, "", scheduleID)
	if err != nil {
		return err
	}
	_, err = service.LogFeeding(ctx, schedule.ProfileID, FeedingLogInput{ScheduleID: schedule.ID})
	return err
}

func (service *FeedingService) PlanReminders(ctx context.Context) (int, error) {
	schedules, err := service.schedules.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	planned := 0
	for _, schedule := range schedules {
		planned += service.planNextFeeding(ctx, schedule)
	}
	return planned, nil
}

func (service *FeedingService) CancelProfileReminders(ctx context.Context, profileID string) error {
	schedules, err := service.schedules.ByProfile(ctx, profileID)
	if err != nil {
		return err
	}
	for _, schedule := range schedules {
		cancelQuietly(ctx, service.reminders, schedule.ID, "")
	}
	return nil
}
