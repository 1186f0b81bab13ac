package models

import "time"

type VaccinationEntry struct {
	ID               string     `gorm:"primaryKey" json:"id"`
	ProfileID        string     `gorm:"index;not null" json:"profileId"`
	VaccineName      string     `gorm:"not null" json:"vaccineName"`
	DateAdministered time.Time  `gorm:"index;not null" json:"dateAdministered"`
	HospitalName     string     `json:"hospitalName,omitempty"`
	DoctorName       string     `json:"doctorName,omitempty"`
	NextDueDate      *time.Time `json:"nextDueDate,omitempty"`
	AttachmentPath   string     `json:"attachmentPath,omitempty"`
	AttachmentType   string     `json:"attachmentType,omitempty"`
	ReminderEnabled  bool       `gorm:"not null" json:"reminderEnabled"`
	Notes            string     `json:"notes"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (VaccinationEntry) TableName() string { return "vaccinations" }
