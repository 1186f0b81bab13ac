package services

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/terraincognita07/chitra/internal/db"
	"github.com/terraincognita07/chitra/internal/reminders"
)

func openServiceStore(t *testing.T) *db.Store {
	t.Helper()

	store, err := db.OpenStore(context.Background(), filepath.Join(t.TempDir(), "chitra.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

type scheduledCall struct {
	reminder reminders.Reminder
	shown    bool
}

// stubScheduler keeps reminders in memory and applies the same future check
// as the real scheduler.
type stubScheduler struct {
	mu      sync.Mutex
	now     time.Time
	pending map[int32]reminders.Reminder
	calls   []scheduledCall
}

func newStubScheduler(now time.Time) *stubScheduler {
	return &stubScheduler{now: now, pending: make(map[int32]reminders.Reminder)}
}

func (stub *stubScheduler) Schedule(_ context.Context, reminder reminders.Reminder) (bool, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if !reminder.FireAt.After(stub.now) {
		return false, nil
	}
	stub.pending[reminder.ID] = reminder
	stub.calls = append(stub.calls, scheduledCall{reminder: reminder})
	return true, nil
}

func (stub *stubScheduler) ShowNow(_ context.Context, reminder reminders.Reminder) (bool, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.calls = append(stub.calls, scheduledCall{reminder: reminder, shown: true})
	return true, nil
}

func (stub *stubScheduler) Cancel(_ context.Context, id int32) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	delete(stub.pending, id)
	return nil
}

func (stub *stubScheduler) CancelEntity(ctx context.Context, entityID string, suffix string) error {
	return stub.Cancel(ctx, reminders.NotificationID(entityID, suffix))
}

func (stub *stubScheduler) CancelAll(context.Context) error {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	clear(stub.pending)
	return nil
}

func (stub *stubScheduler) Now() time.Time {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return stub.now
}

func (stub *stubScheduler) setNow(now time.Time) {
	stub.mu.Lock()
	stub.now = now
	stub.mu.Unlock()
}

func (stub *stubScheduler) pendingFor(entityID string, suffix string) (reminders.Reminder, bool) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	reminder, ok := stub.pending[reminders.NotificationID(entityID, suffix)]
	return reminder, ok
}

func (stub *stubScheduler) pendingCount() int {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	return len(stub.pending)
}

func (stub *stubScheduler) pendingFireTimes() []time.Time {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	times := make([]time.Time, 0, len(stub.pending))
	for _, reminder := range stub.pending {
		times = append(times, reminder.FireAt)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times
}

type countingAwarder struct {
	mu    sync.Mutex
	count int
}

func (awarder *countingAwarder) Award(context.Context, time.Time) {
	awarder.mu.Lock()
	awarder.count++
	awarder.mu.Unlock()
}

func (awarder *countingAwarder) awarded() int {
	awarder.mu.Lock()
	defer awarder.mu.Unlock()
	return awarder.count
}

func mustDate(t *testing.T, raw string) time.Time {
	t.Helper()
	value, err := time.Parse("2006-01-02", raw)
	if err != nil {
		t.Fatalf("parse date %q: %v", raw, err)
	}
	return value
}

func mustTime(t *testing.T, raw string) time.Time {
	t.Helper()
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.Fatalf("parse time %q: %v", raw, err)
	}
	return value
}
