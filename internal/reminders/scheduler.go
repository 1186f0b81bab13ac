package reminders

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// CategoryToggles reports whether the user wants reminders of a category.
type CategoryToggles interface {
	RemindersEnabled(category string) bool
}

type Scheduler struct {
	backend Backend
	toggles CategoryToggles
	now     func() time.Time

	mu      sync.RWMutex
	handler ActionHandler
}

func NewScheduler(backend Backend, toggles CategoryToggles) *Scheduler {
	scheduler := &Scheduler{
		backend: backend,
		toggles: toggles,
		now:     time.Now,
	}
	if source, ok := backend.(actionSource); ok {
		source.setActionSink(func(action Action) {
			if err := scheduler.HandleAction(context.Background(), action); err != nil {
				log.Printf("reminders: action %s on %d failed: %v", action.ActionID, action.NotificationID, err)
			}
		})
	}
	return scheduler
}

func (scheduler *Scheduler) BackendName() string {
	return scheduler.backend.Name()
}

func (scheduler *Scheduler) Now() time.Time {
	return scheduler.now()
}

// Schedule hands the reminder to the backend. It reports false without error
// when the category is switched off, the runtime cannot notify, or FireAt is
// not strictly in the future.
func (scheduler *Scheduler) Schedule(ctx context.Context, reminder Reminder) (bool, error) {
	if !scheduler.admit(reminder) {
		return false, nil
	}
	if !reminder.FireAt.After(scheduler.now()) {
		remindersDropped.WithLabelValues(dropReasonPast).Inc()
		return false, nil
	}

	if err := scheduler.backend.Schedule(ctx, reminder); err != nil {
		return false, fmt.Errorf("schedule reminder %d: %w", reminder.ID, err)
	}
	remindersScheduled.WithLabelValues(reminder.Category, scheduler.backend.Name()).Inc()
	return true, nil
}

// ShowNow presents the reminder immediately, skipping the future check.
func (scheduler *Scheduler) ShowNow(ctx context.Context, reminder Reminder) (bool, error) {
	if !scheduler.admit(reminder) {
		return false, nil
	}
	if err := scheduler.backend.Show(ctx, reminder); err != nil {
		return false, fmt.Errorf("show reminder %d: %w", reminder.ID, err)
	}
	remindersScheduled.WithLabelValues(reminder.Category, scheduler.backend.Name()).Inc()
	return true, nil
}

func (scheduler *Scheduler) admit(reminder Reminder) bool {
	if scheduler.toggles != nil && reminder.Category != "" && !scheduler.toggles.RemindersEnabled(reminder.Category) {
		remindersDropped.WithLabelValues(dropReasonDisabled).Inc()
		return false
	}
	if !scheduler.backend.Supported() {
		remindersDropped.WithLabelValues(dropReasonUnsupported).Inc()
		return false
	}
	return true
}

func (scheduler *Scheduler) Cancel(ctx context.Context, id int32) error {
	if err := scheduler.backend.Cancel(ctx, id); err != nil {
		return fmt.Errorf("cancel reminder %d: %w", id, err)
	}
	remindersCancelled.Inc()
	return nil
}

func (scheduler *Scheduler) CancelEntity(ctx context.Context, entityID string, suffix string) error {
	return scheduler.Cancel(ctx, NotificationID(entityID, suffix))
}

func (scheduler *Scheduler) CancelAll(ctx context.Context) error {
	if err := scheduler.backend.CancelAll(ctx); err != nil {
		return fmt.Errorf("cancel all reminders: %w", err)
	}
	remindersCancelled.Inc()
	return nil
}

func (scheduler *Scheduler) Pending(ctx context.Context) ([]Reminder, error) {
	pending, err := scheduler.backend.Pending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending reminders: %w", err)
	}
	return pending, nil
}

// OnAction registers the single handler that receives user actions. A later
// call replaces the earlier handler.
func (scheduler *Scheduler) OnAction(handler ActionHandler) {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	scheduler.handler = handler
}

// HandleAction forwards the action untouched to the registered handler.
func (scheduler *Scheduler) HandleAction(ctx context.Context, action Action) error {
	scheduler.mu.RLock()
	handler := scheduler.handler
	scheduler.mu.RUnlock()

	if handler == nil {
		log.Printf("reminders: no handler for action %s on %d", action.ActionID, action.NotificationID)
		return nil
	}
	return handler(ctx, action)
}
