package reminders

import (
	"context"
	"errors"
	"time"
)

const (
	CategoryVaccination = "vaccination"
	CategoryMedicine    = "medicine"
	CategoryFeeding     = "feeding"
	CategoryCycle       = "cycle"
)

const (
	ActionTypeMedicine = "MEDICINE_REMINDER"
	ActionTypeFeeding  = "FEEDING_REMINDER"
)

// Metadata keys every domain reminder carries.
const (
	MetaEntityID  = "entityId"
	MetaProfileID = "profileId"
	MetaKind      = "kind"
	MetaDueAt     = "dueAt"
)

var ErrUnsupported = errors.New("notifications unsupported on this runtime")

type Reminder struct {
	ID         int32             `json:"id"`
	Category   string            `json:"category"`
	Title      string            `json:"title"`
	Body       string            `json:"body"`
	FireAt     time.Time         `json:"fireAt"`
	ActionType string            `json:"actionType,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Action is a user's response to a delivered reminder.
type Action struct {
	ActionID       string            `json:"actionId"`
	NotificationID int32             `json:"notificationId"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type ActionHandler func(ctx context.Context, action Action) error

type ActionButton struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ActionType struct {
	ID      string         `json:"id"`
	Buttons []ActionButton `json:"buttons"`
}

// DefaultActionTypes are registered with native schedulers on startup.
func DefaultActionTypes() []ActionType {
	return []ActionType{
		{
			ID: ActionTypeMedicine,
			Buttons: []ActionButton{
				{ID: "taken", Title: "Taken"},
				{ID: "snooze_10", Title: "Snooze 10 min"},
				{ID: "snooze_30", Title: "Snooze 30 min"},
				{ID: "skip", Title: "Skip"},
			},
		},
		{
			ID: ActionTypeFeeding,
			Buttons: []ActionButton{
				{ID: "fed", Title: "Fed"},
			},
		},
	}
}

// Backend delivers reminders. Schedule with an id that is already pending
// replaces the pending entry.
type Backend interface {
	Name() string
	Supported() bool
	Schedule(ctx context.Context, reminder Reminder) error
	Show(ctx context.Context, reminder Reminder) error
	Cancel(ctx context.Context, id int32) error
	CancelAll(ctx context.Context) error
	Pending(ctx context.Context) ([]Reminder, error)
}

type actionSource interface {
	setActionSink(sink func(Action))
}

func cloneMetadata(metadata map[string]string) map[string]string {
	if metadata == nil {
		return nil
	}
	cloned := make(map[string]string, len(metadata))
	for key, value := range metadata {
		cloned[key] = value
	}
	return cloned
}
