package models

import "time"

const (
	CarePointsID = "care_points"
	PaymentID    = "payment"
)

type CarePoints struct {
	ID            string     `gorm:"primaryKey" json:"id"`
	Points        int        `gorm:"not null" json:"points"`
	Streak        int        `gorm:"not null" json:"streak"`
	LastAwardedOn *time.Time `json:"lastAwardedOn,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (CarePoints) TableName() string { return "care_points" }

type Payment struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	Premium     bool       `gorm:"not null" json:"premium"`
	Plan        string     `gorm:"not null" json:"plan"`
	PurchasedAt *time.Time `json:"purchasedAt,omitempty"`
	Receipt     string     `gorm:"not null" json:"receipt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Payment) TableName() string { return "payment" }
