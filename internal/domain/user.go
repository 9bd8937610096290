package domain

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleSuperadmin       Role = "superadmin"
	RoleAdmin            Role = "admin"
	RoleDigitalMarketing Role = "digital_marketing"
	RoleSales            Role = "sales"
	RoleDeveloper        Role = "developer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleDigitalMarketing, RoleSales, RoleDeveloper:
		return true
	}
	return false
}

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FullName     string         `gorm:"size:255" json:"fullname"`
	Email        string         `gorm:"size:255;index;not null" json:"email"`
	Role         Role           `gorm:"size:32;not null" json:"role"`
	PasswordHash string         `gorm:"size:128;not null" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
