package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Admin represents system administrators for the provisioning API
type Admin struct {
	BaseModel
	Username string `gorm:"type:varchar(50);unique;not null" json:"username"`
	Password string `gorm:"type:varchar(100);not null" json:"-"` // Password not exposed in JSON
	Email    string `gorm:"type:varchar(100);unique" json:"email"`
	Role     string `gorm:"type:varchar(50);default:'admin'" json:"role"`    // Role: system_admin, admin
	Status   string `gorm:"type:varchar(20);default:'active'" json:"status"` // Status: active, inactive, locked
}

// BeforeSave 是一个GORM钩子，保存前对未哈希的密码进行哈希处理
func (a *Admin) BeforeSave(tx *gorm.DB) error {
	if a.Password != "" && len(a.Password) < 60 {
		hashed, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		a.Password = string(hashed)
	}
	return nil
}
