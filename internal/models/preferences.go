package models

import "time"

const PreferencesID = "user_preferences"

const (
	UnitSystemMetric   = "metric"
	UnitSystemImperial = "imperial"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

const (
	ReminderCategoryVaccination = "vaccination"
	ReminderCategoryMedicine    = "medicine"
	ReminderCategoryFeeding     = "feeding"
	ReminderCategoryCycle       = "cycle"
)

type Preferences struct {
	ID                        string    `gorm:"primaryKey" json:"id"`
	UnitSystem                string    `gorm:"not null" json:"unitSystem"`
	Locale                    string    `gorm:"not null" json:"locale"`
	Country                   string    `gorm:"not null" json:"country"`
	Theme                     string    `gorm:"not null" json:"theme"`
	ActiveProfileID           string    `gorm:"not null" json:"activeProfileId"`
	StorageFolder             string    `gorm:"not null" json:"storageFolder"`
	StorageFolderAcknowledged bool      `gorm:"not null" json:"storageFolderAcknowledged"`
	OnboardingCompleted       bool      `gorm:"not null" json:"onboardingCompleted"`
	PrivacyAccepted           bool      `gorm:"not null" json:"privacyAccepted"`
	VaccinationReminders      bool      `gorm:"not null" json:"vaccinationReminders"`
	MedicineReminders         bool      `gorm:"not null" json:"medicineReminders"`
	FeedingReminders          bool      `gorm:"not null" json:"feedingReminders"`
	CycleReminders            bool      `gorm:"not null" json:"cycleReminders"`
	UpdatedAt                 time.Time `json:"updatedAt"`
}

func (Preferences) TableName() string { return "preferences" }

func DefaultPreferences(locale string, now time.Time) Preferences {
	if locale == "" {
		locale = "en"
	}
	return Preferences{
		ID:                   PreferencesID,
		UnitSystem:           UnitSystemMetric,
		Locale:               locale,
		Theme:                ThemeSystem,
		VaccinationReminders: true,
		MedicineReminders:    true,
		FeedingReminders:     true,
		CycleReminders:       true,
		UpdatedAt:            now,
	}
}

func (preferences Preferences) RemindersEnabled(category string) bool {
	switch category {
	case ReminderCategoryVaccination:
		return preferences.VaccinationReminders
	case ReminderCategoryMedicine:
		return preferences.MedicineReminders
	case ReminderCategoryFeeding:
		return preferences.FeedingReminders
	case ReminderCategoryCycle:
		return preferences.CycleReminders
	default:
		return true
	}
}

func IsValidUnitSystem(value string) bool {
	return value == UnitSystemMetric || value == UnitSystemImperial
}

func IsValidTheme(value string) bool {
	switch value {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	default:
		return false
	}
}
