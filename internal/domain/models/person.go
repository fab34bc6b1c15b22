package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Person represents a resident or owner reachable by the buzzer.
// 姓名字段均可为空，匹配逻辑必须容忍缺失
type Person struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	NodeID      string    `gorm:"type:varchar(36);uniqueIndex" json:"node_id"`
	FirstName   string    `gorm:"type:varchar(50)" json:"first_name"`
	LastName    string    `gorm:"type:varchar(50)" json:"last_name"`
	Nickname    string    `gorm:"type:varchar(50)" json:"nickname"`
	PhoneNumber *string   `gorm:"type:varchar(20);uniqueIndex" json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Suites []PersonSuite `gorm:"foreignKey:PersonID" json:"suites,omitempty"`
}

// BeforeCreate 是一个GORM钩子，在创建新记录前生成NodeID
func (p *Person) BeforeCreate(tx *gorm.DB) error {
	if p.NodeID == "" {
		p.NodeID = uuid.NewString()
	}
	return nil
}

// FullName 将存在的姓名部分用空格拼接
func (p *Person) FullName() string {
	name := ""
	for _, part := range []string{p.FirstName, p.LastName, p.Nickname} {
		if part == "" {
			continue
		}
		if name != "" {
			name += " "
		}
		name += part
	}
	return name
}

// HasName 至少有一个姓名字段非空
func (p *Person) HasName() bool {
	return p.FirstName != "" || p.LastName != "" || p.Nickname != ""
}
