package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReferralStatusPending  = "pending"
	ReferralStatusApproved = "approved"
	ReferralStatusRejected = "rejected"
)

// Referral records one redeemed invite from the referrer's side. A student
// can be referred at most once (unique ReferredUserID). Status moves from
// pending to approved or rejected, never back.
type Referral struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ReferrerID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"referrer_id"`
	ReferredUserID uuid.UUID  `gorm:"type:uuid;not null;unique" json:"referred_user_id"`
	StudentName    string     `gorm:"size:255" json:"student_name"`
	Status         string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	JoinedAt       time.Time  `json:"joined_at"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`

	Referrer     User `gorm:"foreignkey:ReferrerID" json:"-"`
	ReferredUser User `gorm:"foreignkey:ReferredUserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (r *Referral) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
