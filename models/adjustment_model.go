package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Adjustment is an append-only staff discount. Reason is mandatory.
type Adjustment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Amount    float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	Reason    string    `gorm:"type:text;not null" json:"reason"`

	CreatedAt time.Time `json:"created_at"`
}

func (a *Adjustment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
