package models

import (
	"time"
)

// PersonSuiteRole represents the role of a person within a suite
type PersonSuiteRole string

const (
	RoleOwner    PersonSuiteRole = "owner"
	RoleResident PersonSuiteRole = "resident"
	RoleVisitor  PersonSuiteRole = "visitor"
)

// PersonSuite associates a Person with a Suite under a role.
// 只有owner角色可以被呼叫名称匹配
type PersonSuite struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Role             PersonSuiteRole `gorm:"type:varchar(10);default:'owner'" json:"role"`
	SuiteID          uint            `gorm:"uniqueIndex:idx_person_suite" json:"suite_id"`
	PersonID         uint            `gorm:"uniqueIndex:idx_person_suite" json:"person_id"`
	HashedUnlockCode *string         `gorm:"type:varchar(100)" json:"-"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	// Relations
	Suite  *Suite  `gorm:"foreignKey:SuiteID;constraint:OnDelete:CASCADE" json:"suite,omitempty"`
	Person *Person `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE" json:"person,omitempty"`
}
