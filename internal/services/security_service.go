package services

import (
	"context"
	"regexp"
	"time"

	"github.com/terraincognita07/chitra/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var pinPattern = regexp.MustCompile(`^[0-9]{6}$`)

type SecurityRepository interface {
	Load(ctx context.Context) (models.SecuritySettings, bool, error)
	Save(ctx context.Context, record *models.SecuritySettings) error
}

type SecurityStatus struct {
	PinEnabled   bool       `json:"pinEnabled"`
	LastLockedAt *time.Time `json:"lastLockedAt,omitempty"`
}

type SecurityService struct {
	settings SecurityRepository
	cost     int
	now      func() time.Time
}

func NewSecurityService(settings SecurityRepository) *SecurityService {
	return &SecurityService{
		settings: settings,
		cost:     bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetCost overrides the bcrypt work factor used for new hashes.
func (service *SecurityService) SetCost(cost int) {
	service.cost = cost
}

func ValidatePinFormat(pin string) error {
	if !pinPattern.MatchString(pin) {
		return ErrInvalidPinFormat
	}
	return nil
}

func (service *SecurityService) load(ctx context.Context) (models.SecuritySettings, error) {
	settings, found, err := service.settings.Load(ctx)
	if err != nil {
		return models.SecuritySettings{}, err
	}
	if !found {
		settings = models.SecuritySettings{ID: models.SecuritySettingsID}
	}
	return settings, nil
}

func (service *SecurityService) Status(ctx context.Context) (SecurityStatus, error) {
	settings, err := service.load(ctx)
	if err != nil {
		return SecurityStatus{}, err
	}
	return SecurityStatus{PinEnabled: settings.PinEnabled, LastLockedAt: settings.LastLockedAt}, nil
}

// SetPin enables the gate. Stored settings are untouched when the format is
// wrong.
func (service *SecurityService) SetPin(ctx context.Context, pin string) error {
	if err := ValidatePinFormat(pin); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), service.cost)
	if err != nil {
		return err
	}

	settings, err := service.load(ctx)
	if err != nil {
		return err
	}
	settings.ID = models.SecuritySettingsID
	settings.PinEnabled = true
	settings.PinHash = string(hash)
	settings.UpdatedAt = service.now()
	return service.settings.Save(ctx, &settings)
}

// VerifyPin returns true for any input while the gate is disabled.
func (service *SecurityService) VerifyPin(ctx context.Context, pin string) (bool, error) {
	settings, err := service.load(ctx)
	if err != nil {
		return false, err
	}
	if !settings.PinEnabled {
		return true, nil
	}
	if !pinPattern.MatchString(pin) || settings.PinHash == "" {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(settings.PinHash), []byte(pin)) == nil, nil
}

// ChangePin also stamps LastLockedAt so sessions unlocked with the old PIN
// end.
func (service *SecurityService) ChangePin(ctx context.Context, currentPin string, newPin string) error {
	settings, err := service.load(ctx)
	if err != nil {
		return err
	}
	if !settings.PinEnabled {
		return ErrPinNotEnabled
	}
	ok, err := service.VerifyPin(ctx, currentPin)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIncorrectPin
	}
	if err := ValidatePinFormat(newPin); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPin), service.cost)
	if err != nil {
		return err
	}

	changedAt := service.now()
	settings.PinHash = string(hash)
	settings.LastLockedAt = &changedAt
	settings.UpdatedAt = changedAt
	return service.settings.Save(ctx, &settings)
}

func (service *SecurityService) DisablePin(ctx context.Context) error {
	settings, err := service.load(ctx)
	if err != nil {
		return err
	}
	settings.ID = models.SecuritySettingsID
	settings.PinEnabled = false
	settings.PinHash = ""
	settings.UpdatedAt = service.now()
	return service.settings.Save(ctx, &settings)
}

// MarkLocked records when the app was last locked.
func (service *SecurityService) MarkLocked(ctx context.Context) error {
	settings, err := service.load(ctx)
	if err != nil {
		return err
	}
	lockedAt := service.now()
	settings.ID = models.SecuritySettingsID
	settings.LastLockedAt = &lockedAt
	settings.UpdatedAt = lockedAt
	return service.settings.Save(ctx, &settings)
}
