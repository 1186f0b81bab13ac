package reminders

import (
	"context"
	"testing"
	"time"
)

func TestNativeBackendRegistersActionTypesAndReplacesByID(t *testing.T) {
	ctx := context.Background()
	bridge := NewBridgeNotifier()
	backend, err := NewNativeBackend(ctx, bridge)
	if err != nil {
		t.Fatalf("new native backend: %v", err)
	}
	if len(bridge.ActionTypes()) != len(DefaultActionTypes()) {
		t.Fatalf("expected action types to be registered, got %d", len(bridge.ActionTypes()))
	}

	scheduler := NewScheduler(backend, stubToggles{})
	fireAt := time.Now().Add(time.Hour)
	for _, title := range []string{"first", "second"} {
		if _, err := scheduler.Schedule(ctx, Reminder{ID: 11, Category: CategoryVaccination, Title: title, FireAt: fireAt}); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}

	pending, err := scheduler.Pending(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Title != "second" {
		t.Fatalf("expected single replaced request, got %+v", pending)
	}

	if err := scheduler.CancelAll(ctx); err != nil {
		t.Fatalf("cancel all: %v", err)
	}
	pending, _ = scheduler.Pending(ctx)
	if len(pending) != 0 {
		t.Fatalf("expected empty pending list, got %d", len(pending))
	}
}

func TestBridgeActionsReachSchedulerHandler(t *testing.T) {
	ctx := context.Background()
	bridge := NewBridgeNotifier()
	backend, err := NewNativeBackend(ctx, bridge)
	if err != nil {
		t.Fatalf("new native backend: %v", err)
	}
	scheduler := NewScheduler(backend, nil)

	received := make(chan Action, 1)
	scheduler.OnAction(func(_ context.Context, action Action) error {
		received <- action
		return nil
	})

	_, _ = scheduler.Schedule(ctx, Reminder{ID: 3, Title: "Dose", FireAt: time.Now().Add(time.Minute)})
	bridge.Perform(Action{ActionID: "taken", NotificationID: 3})

	select {
	case action := <-received:
		if action.ActionID != "taken" {
			t.Fatalf("unexpected action %+v", action)
		}
	default:
		t.Fatal("expected action to be dispatched synchronously")
	}

	pending, _ := scheduler.Pending(ctx)
	if len(pending) != 0 {
		t.Fatalf("expected acted-on request to leave pending set, got %d", len(pending))
	}
}
