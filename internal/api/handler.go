package api

import (
	"context"
	"time"

	"github.com/terraincognita07/chitra/internal/reminders"
	"github.com/terraincognita07/chitra/internal/services"
)

const (
	unlockCookieName     = "chitra_unlock"
	unlockTokenPurpose   = "unlock"
	defaultUnlockTTL     = 12 * time.Hour
	unlockAttemptsLimit  = 5
	unlockAttemptsWindow = 15 * time.Minute
	maxImportBodyBytes   = 32 << 20
)

// HealthChecker reports whether the record store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
}

// ReminderCenter is the part of the reminder scheduler the HTTP surface uses.
type ReminderCenter interface {
	BackendName() string
	Pending(ctx context.Context) ([]reminders.Reminder, error)
	HandleAction(ctx context.Context, action reminders.Action) error
}

// ReminderRebuild re-plans every reminder from the stored records.
type ReminderRebuild interface {
	Rebuild(ctx context.Context) (int, error)
}

// NativeBridge is present when a native shell mirrors pending reminders.
type NativeBridge interface {
	ActionTypes() []reminders.ActionType
	Cancel(ctx context.Context, ids []int32) error
}

// ReminderInbox lists reminders already shown in web mode.
type ReminderInbox interface {
	Recent() []reminders.Notification
}

// MessageCatalog serves UI strings to clients.
type MessageCatalog interface {
	DefaultLanguage() string
	SupportedLanguages() []string
	Messages(language string) map[string]string
}

type Dependencies struct {
	Health       HealthChecker
	Preferences  *services.PreferencesService
	Profiles     *services.ProfileService
	Security     *services.SecurityService
	Tracking     *services.TrackingService
	Vaccinations *services.VaccinationService
	Medicine     *services.MedicineService
	Feeding      *services.FeedingService
	CarePoints   *services.CarePointsService
	Payment      *services.PaymentService
	Export       *services.ExportService
	Reminders    ReminderCenter
	Rebuilder    ReminderRebuild
	Bridge       NativeBridge
	Inbox        ReminderInbox
	Messages     MessageCatalog

	SecretKey    string
	UnlockTTL    time.Duration
	CookieSecure bool
	Location     *time.Location
}

type Handler struct {
	deps          Dependencies
	secretKey     []byte
	unlockTTL     time.Duration
	cookieSecure  bool
	location      *time.Location
	unlockLimiter *attemptLimiter
	now           func() time.Time
}

func NewHandler(deps Dependencies) *Handler {
	unlockTTL := deps.UnlockTTL
	if unlockTTL <= 0 {
		unlockTTL = defaultUnlockTTL
	}
	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		deps:          deps,
		secretKey:     []byte(deps.SecretKey),
		unlockTTL:     unlockTTL,
		cookieSecure:  deps.CookieSecure,
		location:      location,
		unlockLimiter: newAttemptLimiter(unlockAttemptsWindow),
		now:           time.Now,
	}
}
