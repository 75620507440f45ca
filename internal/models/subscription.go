package models

import (
	"time"
)

// Subscription marks a user as following a course. The row's existence is
// the subscribed state.
type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_subscription_user_course" json:"user_id"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_subscription_user_course" json:"course_id"`
	Course    *Course   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
