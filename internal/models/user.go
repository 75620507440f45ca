package models

import (
	"time"
)

type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"not null" json:"-"`
	Phone     string     `gorm:"size:35" json:"phone"`
	City      string     `gorm:"size:150" json:"city"`
	Avatar    string     `json:"avatar"`
	IsStaff   bool       `gorm:"not null;default:false" json:"is_staff"`
	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
