package models

import "time"

const (
	FeedingTypeBreast = "breast"
	FeedingTypeBottle = "bottle"
	FeedingTypeSolid  = "solid"
)

type FeedingSchedule struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	ProfileID     string    `gorm:"index;not null" json:"profileId"`
	Label         string    `json:"label"`
	FeedingType   string    `gorm:"not null" json:"feedingType"`
	IntervalHours int       `gorm:"not null" json:"intervalHours"`
	StartTime     time.Time `gorm:"not null" json:"startTime"`
	IsActive      bool      `gorm:"not null" json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (FeedingSchedule) TableName() string { return "feeding_schedules" }

type FeedingLog struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	ProfileID       string    `gorm:"index;not null" json:"profileId"`
	ScheduleID      string    `gorm:"index;not null" json:"scheduleId,omitempty"`
	FeedingType     string    `gorm:"not null" json:"feedingType"`
	AmountML        int       `json:"amountMl,omitempty"`
	DurationMinutes int       `json:"durationMinutes,omitempty"`
	FedAt           time.Time `gorm:"index;not null" json:"fedAt"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (FeedingLog) TableName() string { return "feeding_logs" }

func IsValidFeedingType(value string) bool {
	switch value {
	case FeedingTypeBreast, FeedingTypeBottle, FeedingTypeSolid:
		return true
	default:
		return false
	}
}
