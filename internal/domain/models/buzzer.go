package models

import (
	"time"
)

// Buzzer represents the physical intercom device at a building entrance.
// PhoneNumber 在激活成功时设置一次，之后不可变
type Buzzer struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PlaceID     string    `gorm:"type:varchar(100);not null" json:"place_id"` // 地图服务的地点标识
	PhoneNumber *string   `gorm:"type:varchar(20);uniqueIndex" json:"phone_number"`
	Address     string    `gorm:"type:varchar(255);not null" json:"address"`
	Country     string    `gorm:"type:varchar(2);not null" json:"country"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Suites []Suite `gorm:"foreignKey:BuzzerID" json:"suites,omitempty"`
}
