package models

import (
	"time"
)

const (
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
)

// Payment records one checkout initiated with the payment provider. Exactly
// one of CourseID and LessonID is set.
type Payment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	User          *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CourseID      *uint     `gorm:"index;check:chk_payments_single_target,(course_id IS NULL) <> (lesson_id IS NULL)" json:"pay_course"`
	Course        *Course   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	LessonID      *uint     `gorm:"index" json:"pay_lesson"`
	Lesson        *Lesson   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Amount        int64     `gorm:"not null" json:"amount"`
	PaymentMethod string    `gorm:"size:10;not null;default:'cash'" json:"payment_method"`
	SessionID     string    `gorm:"not null" json:"session_id"`
	Link          string    `gorm:"type:text;not null" json:"link"`
	PaidAt        time.Time `gorm:"autoCreateTime;index" json:"paid_at"`
}

func (p *Payment) OwnerRef() *uint { return &p.UserID }
