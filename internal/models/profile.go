package models

import "time"

const (
	ProfileTypeMain      = "main"
	ProfileTypeDependent = "dependent"
)

const (
	ProfileModeNormal      = "normal"
	ProfileModePregnant    = "pregnant"
	ProfileModePostpartum  = "postpartum"
	ProfileModeChildcare   = "childcare"
	ProfileModeNoMenstrual = "no_menstrual"
)

const (
	MaxProfiles          = 5
	MaxDependentProfiles = 4
)

// DefaultProfileID identifies the profile synthesized when legacy data is
// found in a store that has no profiles yet.
const DefaultProfileID = "default_profile"

type Profile struct {
	ID                 string     `gorm:"primaryKey" json:"id"`
	Name               string     `gorm:"not null" json:"name"`
	Type               string     `gorm:"not null" json:"type"`
	Avatar             string     `gorm:"not null" json:"avatar"`
	Gender             string     `gorm:"not null" json:"gender,omitempty"`
	DateOfBirth        *time.Time `json:"dateOfBirth,omitempty"`
	Mode               string     `gorm:"not null" json:"mode"`
	PregnancyStartDate *time.Time `json:"pregnancyStartDate,omitempty"`
	ExpectedDueDate    *time.Time `json:"expectedDueDate,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

func (Profile) TableName() string { return "profiles" }

func (profile Profile) IsMain() bool {
	return profile.Type == ProfileTypeMain
}

func IsValidProfileType(value string) bool {
	return value == ProfileTypeMain || value == ProfileTypeDependent
}

func IsValidProfileMode(value string) bool {
	switch value {
	case ProfileModeNormal, ProfileModePregnant, ProfileModePostpartum, ProfileModeChildcare, ProfileModeNoMenstrual:
		return true
	default:
		return false
	}
}

func ProfileAvatars() []string {
	return []string{"🌸", "🌼", "🌷", "🌻", "🍀", "🦋", "🐣", "🐻", "🐰", "🦊", "🐼", "🌙"}
}
