package reminders

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

// Notification is what a Presenter shows to the user.
type Notification struct {
	ID       int32             `json:"id"`
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Tag      string            `json:"tag"`
	Metadata map[string]string `json:"metadata,omitempty"`
	ShownAt  time.Time         `json:"shownAt"`
}

// Presenter displays a notification right away. It cannot schedule.
type Presenter interface {
	Present(ctx context.Context, notification Notification) error
}

type timerEntry struct {
	reminder Reminder
	timer    *time.Timer
}

// TimerBackend keeps reminders in process memory and presents them when their
// timer expires. Pending entries are lost when the process exits.
type TimerBackend struct {
	presenter Presenter
	now       func() time.Time

	mu      sync.Mutex
	entries map[int32]*timerEntry
}

func NewTimerBackend(presenter Presenter) *TimerBackend {
	return &TimerBackend{
		presenter: presenter,
		now:       time.Now,
		entries:   make(map[int32]*timerEntry),
	}
}

func (backend *TimerBackend) Name() string {
	return "timer"
}

func (backend *TimerBackend) Supported() bool {
	return backend.presenter != nil
}

func (backend *TimerBackend) Schedule(_ context.Context, reminder Reminder) error {
	if backend.presenter == nil {
		return ErrUnsupported
	}

	reminder.Metadata = cloneMetadata(reminder.Metadata)
	entry := &timerEntry{reminder: reminder}

	backend.mu.Lock()
	defer backend.mu.Unlock()

	if previous, ok := backend.entries[reminder.ID]; ok {
		previous.timer.Stop()
	}
	entry.timer = time.AfterFunc(reminder.FireAt.Sub(backend.now()), func() {
		backend.fire(entry)
	})
	backend.entries[reminder.ID] = entry
	remindersPending.Set(float64(len(backend.entries)))
	return nil
}

func (backend *TimerBackend) fire(entry *timerEntry) {
	backend.mu.Lock()
	current, ok := backend.entries[entry.reminder.ID]
	if !ok || current != entry {
		backend.mu.Unlock()
		return
	}
	delete(backend.entries, entry.reminder.ID)
	remindersPending.Set(float64(len(backend.entries)))
	backend.mu.Unlock()

	remindersFired.WithLabelValues(entry.reminder.Category).Inc()
	if err := backend.present(context.Background(), entry.reminder); err != nil {
		log.Printf("reminders: present %d failed: %v", entry.reminder.ID, err)
	}
}

func (backend *TimerBackend) Show(ctx context.Context, reminder Reminder) error {
	if backend.presenter == nil {
		return ErrUnsupported
	}
	return backend.present(ctx, reminder)
}

func (backend *TimerBackend) present(ctx context.Context, reminder Reminder) error {
	return backend.presenter.Present(ctx, Notification{
		ID:       reminder.ID,
		Title:    reminder.Title,
		Body:     reminder.Body,
		Tag:      reminder.Category,
		Metadata: cloneMetadata(reminder.Metadata),
		ShownAt:  backend.now(),
	})
}

func (backend *TimerBackend) Cancel(_ context.Context, id int32) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	if entry, ok := backend.entries[id]; ok {
		entry.timer.Stop()
		delete(backend.entries, id)
	}
	remindersPending.Set(float64(len(backend.entries)))
	return nil
}

func (backend *TimerBackend) CancelAll(_ context.Context) error {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	for id, entry := range backend.entries {
		entry.timer.Stop()
		delete(backend.entries, id)
	}
	remindersPending.Set(0)
	return nil
}

func (backend *TimerBackend) Pending(_ context.Context) ([]Reminder, error) {
	backend.mu.Lock()
	defer backend.mu.Unlock()

	pending := make([]Reminder, 0, len(backend.entries))
	for _, entry := range backend.entries {
		reminder := entry.reminder
		reminder.Metadata = cloneMetadata(reminder.Metadata)
		pending = append(pending, reminder)
	}
	sortReminders(pending)
	return pending, nil
}

func sortReminders(reminders []Reminder) {
	sort.Slice(reminders, func(i, j int) bool {
		if reminders[i].FireAt.Equal(reminders[j].FireAt) {
			return reminders[i].ID < reminders[j].ID
		}
		return reminders[i].FireAt.Before(reminders[j].FireAt)
	})
}
