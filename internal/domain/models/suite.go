package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Suite represents a unit inside a building, linking one Buzzer and one Line
type Suite struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	NodeID         string    `gorm:"type:varchar(36);uniqueIndex" json:"node_id"`
	Unit           string    `gorm:"type:varchar(20);not null" json:"unit"`
	ActivationCode *string   `gorm:"type:varchar(10);index" json:"activation_code,omitempty"` // 激活后清空
	BuzzerID       uint      `json:"buzzer_id"`
	LineID         uint      `json:"line_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Buzzer *Buzzer      `gorm:"foreignKey:BuzzerID" json:"buzzer,omitempty"`
	Line   *Line        `gorm:"foreignKey:LineID" json:"line,omitempty"`
	People []PersonSuite `gorm:"foreignKey:SuiteID" json:"people,omitempty"`
	Buzzes []Buzz       `gorm:"foreignKey:SuiteID" json:"buzzes,omitempty"`
}

// BeforeCreate 是一个GORM钩子，在创建新记录前生成NodeID
func (s *Suite) BeforeCreate(tx *gorm.DB) error {
	if s.NodeID == "" {
		s.NodeID = uuid.NewString()
	}
	return nil
}

// IsActivated 激活码被清空即视为已激活
func (s *Suite) IsActivated() bool {
	return s.ActivationCode == nil
}
