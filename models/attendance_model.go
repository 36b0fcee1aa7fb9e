package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttendanceRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index:idx_attendance_student_date,unique" json:"student_id"`
	Branch    string    `gorm:"size:100;not null" json:"branch"`
	Batch     string    `gorm:"size:100;not null" json:"batch"`
	Date      string    `gorm:"size:10;not null;index:idx_attendance_student_date,unique" json:"date"`
	Present   bool      `gorm:"not null" json:"present"`

	CreatedAt time.Time `json:"created_at"`
}

func (a *AttendanceRecord) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
