package jobs

import (
	"log"

	"github.com/google/uuid"
	"github.com/scifunedu/scifun_backend/models"
	"github.com/scifunedu/scifun_backend/services"
	"gorm.io/gorm"
)

// ReconcileReferralPoints recomputes every referrer's point balance from the
// referrals table and rewrites any cached points column that drifted. The
// recomputed value always wins.
func ReconcileReferralPoints(db *gorm.DB) {
	log.Println("Running job: ReconcileReferralPoints...")

	var referrerIDs []uuid.UUID
	err := db.Model(&models.Referral{}).Distinct("referrer_id").Pluck("referrer_id", &referrerIDs).Error
	if err != nil {
		log.Printf("Error listing referrers: %v", err)
		return
	}

	fixed := 0
	for _, referrerID := range referrerIDs {
		points, err := services.RecomputePoints(db, referrerID)
		if err != nil {
			log.Printf("Error recomputing points for %s: %v", referrerID, err)
			continue
		}
		res := db.Model(&models.User{}).
			Where("id = ? AND points <> ?", referrerID, points).
			UpdateColumn("points", points)
		if res.Error != nil {
			log.Printf("Error fixing points for %s: %v", referrerID, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			log.Printf("Points drift fixed for %s: cached value replaced with %d", referrerID, points)
			fixed++
		}
	}

	if fixed > 0 {
		log.Printf("Reconciled points for %d referrer(s).", fixed)
	}
}
