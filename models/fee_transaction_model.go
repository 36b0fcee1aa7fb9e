package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeeTransaction is an append-only payment record. ReceiptNo comes from the
// receipt service and is issued before the row is written.
type FeeTransaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Amount    float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	ReceiptNo string    `gorm:"size:64;not null;unique" json:"receipt_no"`

	CreatedAt time.Time `json:"created_at"`
}

func (t *FeeTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
