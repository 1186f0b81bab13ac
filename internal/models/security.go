package models

import "time"

const SecuritySettingsID = "security_settings"

type SecuritySettings struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	PinEnabled   bool       `gorm:"not null" json:"pinEnabled"`
	PinHash      string     `gorm:"not null" json:"-"`
	LastLockedAt *time.Time `json:"lastLockedAt,omitempty"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (SecuritySettings) TableName() string { return "security" }
