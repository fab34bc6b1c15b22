package models

import (
	"time"
)

// Line represents a shared Twilio phone number inbound buzzer calls arrive on
type Line struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PhoneNumber string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone_number"`
	Country     string    `gorm:"type:varchar(2);not null" json:"country"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Suites []Suite `gorm:"foreignKey:LineID" json:"suites,omitempty"`
}
