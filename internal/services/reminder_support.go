package services

import (
	"context"
	"log"
	"time"

	"github.com/terraincognita07/chitra/internal/reminders"
)

const (
	ReminderKindVaccination = "vaccination"
	ReminderKindMedicine    = "medicine"
	ReminderKindFeeding     = "feeding"

	metaScheduleID = "scheduleId"
)

type ReminderScheduler interface {
	Schedule(ctx context.Context, reminder reminders.Reminder) (bool, error)
	ShowNow(ctx context.Context, reminder reminders.Reminder) (bool, error)
	Cancel(ctx context.Context, id int32) error
	CancelEntity(ctx context.Context, entityID string, suffix string) error
	Now() time.Time
}

// scheduleQuietly never fails the caller; reminder problems are logged.
func scheduleQuietly(ctx context.Context, scheduler ReminderScheduler, reminder reminders.Reminder) bool {
	if scheduler == nil {
		return false
	}
	scheduled, err := scheduler.Schedule(ctx, reminder)
	if err != nil {
		log.Printf("reminders: schedule %d failed: %v", reminder.ID, err)
		return false
	}
	return scheduled
}

func cancelQuietly(ctx context.Context, scheduler ReminderScheduler, entityID string, suffixes ...string) {
	if scheduler == nil {
		return
	}
	for _, suffix := range suffixes {
		if err := scheduler.CancelEntity(ctx, entityID, suffix); err != nil {
			log.Printf("reminders: cancel %s%s failed: %v", entityID, suffix, err)
		}
	}
}

func schedulerNow(scheduler ReminderScheduler) time.Time {
	if scheduler == nil {
		return time.Now()
	}
	return scheduler.Now()
}

// ActionHandlerFunc handles one kind of reminder action.
type ActionHandlerFunc func(ctx context.Context, action reminders.Action) error

// ActionRouter dispatches reminder actions to the domain that owns the
// reminder, using the kind stored in its metadata.
type ActionRouter struct {
	handlers map[string]ActionHandlerFunc
}

func NewActionRouter() *ActionRouter {
	return &ActionRouter{handlers: make(map[string]ActionHandlerFunc)}
}

func (router *ActionRouter) Register(kind string, handler ActionHandlerFunc) {
	router.handlers[kind] = handler
}

func (router *ActionRouter) Handle(ctx context.Context, action reminders.Action) error {
	kind := action.Metadata[reminders.MetaKind]
	handler, ok := router.handlers[kind]
	if !ok {
		log.Printf("reminders: ignoring action %s for kind %q", action.ActionID, kind)
		return nil
	}
	return handler(ctx, action)
}

// ReminderResetter drops every pending reminder at once.
type ReminderResetter interface {
	CancelAll(ctx context.Context) error
}

// ReminderRebuilder clears the whole schedule and plans it again from the
// stored records. Data imports and reminder toggle changes go through it so
// no reminder of a replaced record or a disabled category survives.
type ReminderRebuilder struct {
	resetter ReminderResetter
	planners []reminders.Planner
}

func NewReminderRebuilder(resetter ReminderResetter, planners ...reminders.Planner) *ReminderRebuilder {
	return &ReminderRebuilder{resetter: resetter, planners: planners}
}

func (rebuilder *ReminderRebuilder) Rebuild(ctx context.Context) (int, error) {
	if rebuilder.resetter != nil {
		if err := rebuilder.resetter.CancelAll(ctx); err != nil {
			return 0, err
		}
	}
	planned := 0
	for _, planner := range rebuilder.planners {
		count, err := planner.PlanReminders(ctx)
		if err != nil {
			log.Printf("reminders: re-plan failed: %v", err)
			continue
		}
		planned += count
	}
	return planned, nil
}
