package models

import (
	"time"
)

type Lesson struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       int64     `gorm:"not null;check:chk_lessons_price,price >= 0" json:"price"`
	Image       string    `json:"image"`
	VideoURL    string    `json:"video_url"`
	OwnerID     *uint     `gorm:"index" json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:SET NULL" json:"-"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (l *Lesson) OwnerRef() *uint { return l.OwnerID }
