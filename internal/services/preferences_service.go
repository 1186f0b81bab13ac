package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/terraincognita07/chitra/internal/models"
)

type PreferencesRepository interface {
	Load(ctx context.Context) (models.Preferences, bool, error)
	Save(ctx context.Context, record *models.Preferences) error
}

// PreferencesUpdate carries a partial change. Nil fields are left untouched.
type PreferencesUpdate struct {
	UnitSystem                *string `json:"unitSystem,omitempty"`
	Locale                    *string `json:"locale,omitempty"`
	Country                   *string `json:"country,omitempty"`
	Theme                     *string `json:"theme,omitempty"`
	ActiveProfileID           *string `json:"activeProfileId,omitempty"`
	StorageFolder             *string `json:"storageFolder,omitempty"`
	StorageFolderAcknowledged *bool   `json:"storageFolderAcknowledged,omitempty"`
	OnboardingCompleted       *bool   `json:"onboardingCompleted,omitempty"`
	PrivacyAccepted           *bool   `json:"privacyAccepted,omitempty"`
	VaccinationReminders      *bool   `json:"vaccinationReminders,omitempty"`
	MedicineReminders         *bool   `json:"medicineReminders,omitempty"`
	FeedingReminders          *bool   `json:"feedingReminders,omitempty"`
	CycleReminders            *bool   `json:"cycleReminders,omitempty"`
}

// PreferencesService owns the single settings record. It is loaded once at
// startup and handed to every consumer; reads are served from memory.
type PreferencesService struct {
	repo          PreferencesRepository
	defaultLocale string
	now           func() time.Time

	mu      sync.RWMutex
	current models.Preferences
	loaded  bool
}

func NewPreferencesService(repo PreferencesRepository, defaultLocale string) *PreferencesService {
	return &PreferencesService{
		repo:          repo,
		defaultLocale: defaultLocale,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Load reads the record, creating it with defaults when absent.
func (service *PreferencesService) Load(ctx context.Context) (models.Preferences, error) {
	preferences, found, err := service.repo.Load(ctx)
	if err != nil {
		return models.Preferences{}, err
	}
	if !found {
		preferences = models.DefaultPreferences(service.defaultLocale, service.now())
		if err := service.repo.Save(ctx, &preferences); err != nil {
			return models.Preferences{}, err
		}
	}

	service.mu.Lock()
	service.current = preferences
	service.loaded = true
	service.mu.Unlock()
	return preferences, nil
}

func (service *PreferencesService) Reload(ctx context.Context) (models.Preferences, error) {
	return service.Load(ctx)
}

// Current returns a copy of the cached record. Before Load it returns
// defaults.
func (service *PreferencesService) Current() models.Preferences {
	service.mu.RLock()
	defer service.mu.RUnlock()
	if !service.loaded {
		return models.DefaultPreferences(service.defaultLocale, service.now())
	}
	return service.current
}

func (service *PreferencesService) Save(ctx context.Context, update PreferencesUpdate) (models.Preferences, error) {
	if err := validatePreferencesUpdate(update); err != nil {
		return models.Preferences{}, err
	}

	service.mu.Lock()
	defer service.mu.Unlock()

	base := service.current
	if !service.loaded {
		stored, found, err := service.repo.Load(ctx)
		if err != nil {
			return models.Preferences{}, err
		}
		base = stored
		if !found {
			base = models.DefaultPreferences(service.defaultLocale, service.now())
		}
	}

	next := applyPreferencesUpdate(base, update)
	next.ID = models.PreferencesID
	next.UpdatedAt = service.now()
	if err := service.repo.Save(ctx, &next); err != nil {
		return models.Preferences{}, err
	}

	service.current = next
	service.loaded = true
	return next, nil
}

func (service *PreferencesService) SetActiveProfileID(ctx context.Context, profileID string) error {
	_, err := service.Save(ctx, PreferencesUpdate{ActiveProfileID: &profileID})
	return err
}

func (service *PreferencesService) ActiveProfileID() string {
	return service.Current().ActiveProfileID
}

func (service *PreferencesService) RemindersEnabled(category string) bool {
	return service.Current().RemindersEnabled(category)
}

func validatePreferencesUpdate(update PreferencesUpdate) error {
	if update.UnitSystem != nil && !models.IsValidUnitSystem(*update.UnitSystem) {
		return fmt.Errorf("%w: unit system %q", ErrInvalidPreferences, *update.UnitSystem)
	}
	if update.Theme != nil && !models.IsValidTheme(*update.Theme) {
		return fmt.Errorf("%w: theme %q", ErrInvalidPreferences, *update.Theme)
	}
	if update.Locale != nil && strings.TrimSpace(*update.Locale) == "" {
		return fmt.Errorf("%w: empty locale", ErrInvalidPreferences)
	}
	return nil
}

func applyPreferencesUpdate(preferences models.Preferences, update PreferencesUpdate) models.Preferences {
	setString(&preferences.UnitSystem, update.UnitSystem)
	setString(&preferences.Country, update.Country)
	setString(&preferences.Theme, update.Theme)
	setString(&preferences.ActiveProfileID, update.ActiveProfileID)
	setString(&preferences.StorageFolder, update.StorageFolder)
	setBool(&preferences.StorageFolderAcknowledged, update.StorageFolderAcknowledged)
	setBool(&preferences.OnboardingCompleted, update.OnboardingCompleted)
	setBool(&preferences.PrivacyAccepted, update.PrivacyAccepted)
	setBool(&preferences.VaccinationReminders, update.VaccinationReminders)
	setBool(&preferences.MedicineReminders, update.MedicineReminders)
	setBool(&preferences.FeedingReminders, update.FeedingReminders)
	setBool(&preferences.CycleReminders, update.CycleReminders)
	if update.Locale != nil {
		preferences.Locale = strings.TrimSpace(*update.Locale)
	}
	return preferences
}

func setString(target *string, value *string) {
	if value != nil {
		*target = *value
	}
}

func setBool(target *bool, value *bool) {
	if value != nil {
		*target = *value
	}
}
