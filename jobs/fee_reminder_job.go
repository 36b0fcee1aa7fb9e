package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/scifunedu/scifun_backend/models"
	"github.com/scifunedu/scifun_backend/notifications"
	"github.com/scifunedu/scifun_backend/services"
	"gorm.io/gorm"
)

// SendFeeReminders emails every active student with an outstanding due. It
// uses the same due formula as the dashboards.
func SendFeeReminders(db *gorm.DB) {
	log.Println("Running job: SendFeeReminders...")

	var students []models.User
	err := db.Where("role = ? AND is_active = ?", "student", true).Find(&students).Error
	if err != nil {
		log.Printf("Error listing students for fee reminders: %v", err)
		return
	}

	now := time.Now()
	sent := 0
	for _, student := range students {
		status := services.FeeStatusFor(&student, now)
		if status.Due <= 0 {
			continue
		}

		go notifications.SendEmail(student.FullName, student.Email, "Fee Payment Reminder",
			fmt.Sprintf("<h1>Fee Reminder</h1><p>Hi %s,</p><p>Your current outstanding fee balance is <b>%.2f</b>. Please clear it at your earliest convenience.</p>",
				student.FullName, status.Due))
		sent++
	}

	if sent > 0 {
		log.Printf("Queued fee reminders for %d student(s).", sent)
	}
}
