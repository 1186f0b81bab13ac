package models

import "time"

const (
	MedicineStatusTaken   = "taken"
	MedicineStatusSnoozed = "snoozed"
	MedicineStatusSkipped = "skipped"
)

type MedicineSchedule struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	ProfileID     string    `gorm:"index;not null" json:"profileId"`
	MedicineName  string    `gorm:"not null" json:"medicineName"`
	Dosage        string    `json:"dosage"`
	TimesPerDay   int       `gorm:"not null" json:"timesPerDay"`
	IntervalHours int       `gorm:"not null" json:"intervalHours"`
	TotalDays     int       `gorm:"not null" json:"totalDays"`
	StartDate     time.Time `gorm:"not null" json:"startDate"`
	IsActive      bool      `gorm:"not null" json:"isActive"`
	IsPaused      bool      `gorm:"not null" json:"isPaused"`
	RemindersSent int       `gorm:"not null" json:"remindersSent"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (MedicineSchedule) TableName() string { return "medicine_schedules" }

type MedicineLog struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	ProfileID    string    `gorm:"index;not null" json:"profileId"`
	ScheduleID   string    `gorm:"index;not null" json:"scheduleId"`
	Status       string    `gorm:"not null" json:"status"`
	ScheduledFor time.Time `json:"scheduledFor"`
	LoggedAt     time.Time `gorm:"not null" json:"loggedAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (MedicineLog) TableName() string { return "medicine_logs" }
