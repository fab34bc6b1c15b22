package models

import (
	"time"
)

// MatchType represents how a buzz was matched to a person
type MatchType string

const (
	MatchTypeCode     MatchType = "code"
	MatchTypeSpeech   MatchType = "speech"
	MatchTypeFallback MatchType = "fallback"
)

// Buzz represents one inbound call attempt from a buzzer.
// CallSid是运营商分配的通话标识，嵌入在回调URL中，
// 是无状态webhook之间唯一的关联键
type Buzz struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CallSid   string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"call_sid"`
	SuiteID   uint       `json:"suite_id"`
	CallStart time.Time  `json:"call_start"`
	CallEnd   *time.Time `json:"call_end,omitempty"` // 状态回调异步写入
	MatchID   *uint      `json:"match_id,omitempty"`
	MatchType *MatchType `gorm:"type:varchar(10)" json:"match_type,omitempty"`

	// Relations
	Suite *Suite       `gorm:"foreignKey:SuiteID" json:"suite,omitempty"`
	Match *PersonSuite `gorm:"foreignKey:MatchID" json:"match,omitempty"`
}

// HasMatch 是否已经匹配到住户（幂等检查的依据）
func (b *Buzz) HasMatch() bool {
	return b.MatchID != nil
}
