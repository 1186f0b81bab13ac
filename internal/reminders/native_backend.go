package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// NativeRequest is the payload handed to an OS-level notification scheduler.
type NativeRequest struct {
	ID         int32             `json:"id"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	FireAt     time.Time         `json:"fireAt"`
	ActionType string            `json:"actionType,omitempty"`
	Category   string            `json:"category,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// NativeNotifier is the host platform's local-notification scheduler. It is
// durable across restarts and owns delivery once a request is accepted.
type NativeNotifier interface {
	Available() bool
	Schedule(ctx context.Context, request NativeRequest) error
	Cancel(ctx context.Context, ids []int32) error
	CancelAll(ctx context.Context) error
	ListPending(ctx context.Context) ([]NativeRequest, error)
	RegisterActionTypes(ctx context.Context, types []ActionType) error
	OnActionPerformed(listener func(Action))
}

type NativeBackend struct {
	notifier NativeNotifier
	now      func() time.Time
}

// NewNativeBackend registers the default action types with the notifier.
func NewNativeBackend(ctx context.Context, notifier NativeNotifier) (*NativeBackend, error) {
	backend := &NativeBackend{notifier: notifier, now: time.Now}
	if notifier.Available() {
		if err := notifier.RegisterActionTypes(ctx, DefaultActionTypes()); err != nil {
			return nil, fmt.Errorf("register action types: %w", err)
		}
	}
	return backend, nil
}

func (backend *NativeBackend) Name() string {
	return "native"
}

func (backend *NativeBackend) Supported() bool {
	return backend.notifier.Available()
}

// Schedule cancels any request with the same id first so the OS never holds
// two entries for one reminder.
func (backend *NativeBackend) Schedule(ctx context.Context, reminder Reminder) error {
	if err := backend.notifier.Cancel(ctx, []int32{reminder.ID}); err != nil {
		return err
	}
	return backend.notifier.Schedule(ctx, toNativeRequest(reminder))
}

func (backend *NativeBackend) Show(ctx context.Context, reminder Reminder) error {
	reminder.FireAt = backend.now()
	return backend.Schedule(ctx, reminder)
}

func (backend *NativeBackend) Cancel(ctx context.Context, id int32) error {
	return backend.notifier.Cancel(ctx, []int32{id})
}

func (backend *NativeBackend) CancelAll(ctx context.Context) error {
	return backend.notifier.CancelAll(ctx)
}

func (backend *NativeBackend) Pending(ctx context.Context) ([]Reminder, error) {
	requests, err := backend.notifier.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]Reminder, 0, len(requests))
	for _, request := range requests {
		pending = append(pending, Reminder{
			ID:         request.ID,
			Category:   request.Category,
			Title:      request.Title,
			Body:       request.Body,
			FireAt:     request.FireAt,
			ActionType: request.ActionType,
			Metadata:   cloneMetadata(request.Metadata),
		})
	}
	sortReminders(pending)
	return pending, nil
}

func (backend *NativeBackend) setActionSink(sink func(Action)) {
	backend.notifier.OnActionPerformed(sink)
}

func toNativeRequest(reminder Reminder) NativeRequest {
	return NativeRequest{
		ID:         reminder.ID,
		Title:      reminder.Title,
		Body:       reminder.Body,
		FireAt:     reminder.FireAt,
		ActionType: reminder.ActionType,
		Category:   reminder.Category,
		Metadata:   cloneMetadata(reminder.Metadata),
	}
}

// BridgeNotifier is the NativeNotifier used when a native shell hosts the
// service. It holds the requests the shell mirrors into the OS scheduler and
// relays the actions the shell reports back.
type BridgeNotifier struct {
	mu          sync.Mutex
	requests    map[int32]NativeRequest
	actionTypes []ActionType
	listener    func(Action)
}

func NewBridgeNotifier() *BridgeNotifier {
	return &BridgeNotifier{requests: make(map[int32]NativeRequest)}
}

func (bridge *BridgeNotifier) Available() bool {
	return true
}

func (bridge *BridgeNotifier) Schedule(_ context.Context, request NativeRequest) error {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	bridge.requests[request.ID] = request
	return nil
}

func (bridge *BridgeNotifier) Cancel(_ context.Context, ids []int32) error {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	for _, id := range ids {
		delete(bridge.requests, id)
	}
	return nil
}

func (bridge *BridgeNotifier) CancelAll(_ context.Context) error {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	bridge.requests = make(map[int32]NativeRequest)
	return nil
}

func (bridge *BridgeNotifier) ListPending(_ context.Context) ([]NativeRequest, error) {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()

	requests := make([]NativeRequest, 0, len(bridge.requests))
	for _, request := range bridge.requests {
		requests = append(requests, request)
	}
	return requests, nil
}

func (bridge *BridgeNotifier) RegisterActionTypes(_ context.Context, types []ActionType) error {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	bridge.actionTypes = append([]ActionType(nil), types...)
	return nil
}

func (bridge *BridgeNotifier) ActionTypes() []ActionType {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	return append([]ActionType(nil), bridge.actionTypes...)
}

func (bridge *BridgeNotifier) OnActionPerformed(listener func(Action)) {
	bridge.mu.Lock()
	defer bridge.mu.Unlock()
	bridge.listener = listener
}

// Perform reports an action the shell received from the OS. Delivered
// requests are dropped from the pending set.
func (bridge *BridgeNotifier) Perform(action Action) {
	bridge.mu.Lock()
	delete(bridge.requests, action.NotificationID)
	listener := bridge.listener
	bridge.mu.Unlock()

	if listener != nil {
		listener(action)
	}
}
