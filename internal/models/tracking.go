package models

import "time"

const (
	FlowNone   = "none"
	FlowLight  = "light"
	FlowMedium = "medium"
	FlowHeavy  = "heavy"
)

const (
	WeightUnitKG = "kg"
	WeightUnitLB = "lb"
)

const DefaultCycleLength = 28

type CycleEntry struct {
	ID            string     `gorm:"primaryKey" json:"id"`
	ProfileID     string     `gorm:"index;not null" json:"profileId"`
	StartDate     time.Time  `gorm:"index;not null" json:"startDate"`
	EndDate       *time.Time `json:"endDate,omitempty"`
	FlowIntensity string     `gorm:"not null" json:"flowIntensity"`
	Symptoms      []string   `gorm:"serializer:json" json:"symptoms"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (CycleEntry) TableName() string { return "cycles" }

type WeightEntry struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ProfileID string    `gorm:"index;not null" json:"profileId"`
	Date      time.Time `gorm:"index;not null" json:"date"`
	Weight    float64   `gorm:"not null" json:"weight"`
	Unit      string    `gorm:"not null" json:"unit"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (WeightEntry) TableName() string { return "weights" }

type DailyCheckIn struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ProfileID string    `gorm:"index;not null" json:"profileId"`
	Date      time.Time `gorm:"index;not null" json:"date"`
	Mood      string    `json:"mood"`
	Energy    int       `json:"energy"`
	Symptoms  []string  `gorm:"serializer:json" json:"symptoms"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (DailyCheckIn) TableName() string { return "check_ins" }

type ScreenTimeEntry struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ProfileID string    `gorm:"index;not null" json:"profileId"`
	Date      time.Time `gorm:"index;not null" json:"date"`
	Minutes   int       `gorm:"not null" json:"minutes"`
	Category  string    `json:"category"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (ScreenTimeEntry) TableName() string { return "screen_time" }

func IsValidFlow(value string) bool {
	switch value {
	case FlowNone, FlowLight, FlowMedium, FlowHeavy:
		return true
	default:
		return false
	}
}
