package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is one row per portal account. Students carry the full fee
// configuration snapshot taken at registration; the monthly fee is looked up
// from the fee chart once and never edited afterwards. TotalPaid and
// TotalDiscount are only ever incremented.
type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    string    `gorm:"size:255;not null;unique" json:"email"`
	Password string    `gorm:"not null" json:"-"`
	Role     string    `gorm:"size:20;not null;default:'student'" json:"role"`

	Board         string  `gorm:"size:50" json:"board"`
	Class         string  `gorm:"size:10" json:"class"`
	SchoolName    string  `gorm:"size:255" json:"school_name"`
	RollNo        string  `gorm:"size:50" json:"roll_no"`
	DOB           *string `gorm:"size:20" json:"dob,omitempty"`
	Contact       *string `gorm:"size:30" json:"contact,omitempty"`
	FatherContact *string `gorm:"size:30" json:"father_contact,omitempty"`
	MotherContact *string `gorm:"size:30" json:"mother_contact,omitempty"`
	Address       *string `gorm:"type:text" json:"address,omitempty"`
	PhotoURL      *string `gorm:"size:255" json:"photo_url,omitempty"`
	Branch        string  `gorm:"size:100" json:"branch"`
	Batch         string  `gorm:"size:100" json:"batch"`

	ReferralCode *string `gorm:"size:10;unique" json:"referral_code"`
	// Points is a cache of 100 x approved referrals. Every read path
	// recomputes it from the referrals table; the recomputed value wins.
	Points           int        `gorm:"default:0" json:"points"`
	ReferredByCode   *string    `gorm:"size:10" json:"referred_by_code"`
	ReferralStatus   string     `gorm:"size:20;not null;default:'none'" json:"referral_status"`
	ReferralJoinedAt *time.Time `json:"referral_joined_at,omitempty"`

	MonthlyFee        float64 `gorm:"type:numeric(10,2);default:0.00" json:"monthly_fee"`
	SessionStartMonth int     `json:"session_start_month"`
	SessionYear       int     `json:"session_year"`
	TotalPaid         float64 `gorm:"type:numeric(10,2);default:0.00" json:"total_paid"`
	TotalDiscount     float64 `gorm:"type:numeric(10,2);default:0.00" json:"total_discount"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
