package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scifunedu/scifun_backend/models"
	"gorm.io/gorm"
)

const PointsPerApprovedReferral = 100

type ReferralService struct {
	db *gorm.DB
}

func NewReferralService(db *gorm.DB) *ReferralService {
	return &ReferralService{db: db}
}

// RecomputePoints derives a referrer's point balance from the referrals
// table. The points column on the user is only a cache of this value and is
// never incremented independently.
func RecomputePoints(tx *gorm.DB, referrerID uuid.UUID) (int, error) {
	var approved int64
	err := tx.Model(&models.Referral{}).
		Where("referrer_id = ? AND status = ?", referrerID, models.ReferralStatusApproved).
		Count(&approved).Error
	if err != nil {
		return 0, err
	}
	return int(approved) * PointsPerApprovedReferral, nil
}

// Redeem lets a student use someone else's invite code. Both sides of the
// redemption (the referrer's new pending entry and the student's own
// referral fields) are written in one transaction.
func (s *ReferralService) Redeem(studentID uuid.UUID, code string) (*models.Referral, error) {
	var created *models.Referral
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var student models.User
		if err := tx.First(&student, "id = ?", studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return err
		}
		r, err := s.RedeemTx(tx, &student, code)
		created = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RedeemTx runs the redemption inside the caller's transaction so that
// registration can fold it into the same atomic write as the user insert.
func (s *ReferralService) RedeemTx(tx *gorm.DB, student *models.User, code string) (*models.Referral, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInvalidCode
	}
	if student.ReferredByCode != nil {
		return nil, ErrAlreadyRedeemed
	}
	if student.ReferralCode != nil && code == *student.ReferralCode {
		return nil, ErrSelfReferral
	}

	var referrer models.User
	if err := tx.Where("referral_code = ?", code).First(&referrer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if referrer.ID == student.ID {
		return nil, ErrSelfReferral
	}

	now := time.Now()
	referral := models.Referral{
		ReferrerID:     referrer.ID,
		ReferredUserID: student.ID,
		StudentName:    student.FullName,
		Status:         models.ReferralStatusPending,
		JoinedAt:       now,
	}
	if err := tx.Create(&referral).Error; err != nil {
		return nil, err
	}

	err := tx.Model(&models.User{}).Where("id = ?", student.ID).Updates(map[string]interface{}{
		"referred_by_code":   code,
		"referral_status":    models.ReferralStatusPending,
		"referral_joined_at": now,
	}).Error
	if err != nil {
		return nil, err
	}

	student.ReferredByCode = &code
	student.ReferralStatus = models.ReferralStatusPending
	student.ReferralJoinedAt = &now
	return &referral, nil
}

// Approve moves a pending referral to approved, recomputes the referrer's
// points and mirrors the status onto the referred student. Everything
// happens in one transaction; a missing referrer or referred row aborts the
// whole operation.
func (s *ReferralService) Approve(referralID uuid.UUID) (*models.Referral, error) {
	return s.transition(referralID, models.ReferralStatusApproved)
}

// Reject moves a pending referral to rejected. No points are awarded; the
// referred student's own status mirrors the rejection.
func (s *ReferralService) Reject(referralID uuid.UUID) (*models.Referral, error) {
	return s.transition(referralID, models.ReferralStatusRejected)
}

func (s *ReferralService) transition(referralID uuid.UUID, target string) (*models.Referral, error) {
	var referral models.Referral
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&referral, "id = ?", referralID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReferralNotFound
			}
			return err
		}
		if err := terminalError(referral.Status); err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{"status": target}
		if target == models.ReferralStatusApproved {
			updates["approved_at"] = now
		} else {
			updates["rejected_at"] = now
		}

		// Guarding on status=pending makes a concurrent admin lose
		// cleanly instead of double-applying the transition.
		res := tx.Model(&models.Referral{}).
			Where("id = ? AND status = ?", referral.ID, models.ReferralStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if target == models.ReferralStatusApproved {
				return ErrAlreadyApproved
			}
			return ErrAlreadyRejected
		}

		points, err := RecomputePoints(tx, referral.ReferrerID)
		if err != nil {
			return err
		}
		res = tx.Model(&models.User{}).Where("id = ?", referral.ReferrerID).UpdateColumn("points", points)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStudentNotFound
		}

		res = tx.Model(&models.User{}).Where("id = ?", referral.ReferredUserID).Update("referral_status", target)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStudentNotFound
		}

		referral.Status = target
		if target == models.ReferralStatusApproved {
			referral.ApprovedAt = &now
		} else {
			referral.RejectedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &referral, nil
}

func terminalError(status string) error {
	switch status {
	case models.ReferralStatusApproved:
		return ErrAlreadyApproved
	case models.ReferralStatusRejected:
		return ErrAlreadyRejected
	}
	return nil
}

// ReferralStats summarises a referral list by status.
type ReferralStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

func statsOf(referrals []models.Referral) ReferralStats {
	stats := ReferralStats{Total: len(referrals)}
	for _, r := range referrals {
		switch r.Status {
		case models.ReferralStatusPending:
			stats.Pending++
		case models.ReferralStatusApproved:
			stats.Approved++
		case models.ReferralStatusRejected:
			stats.Rejected++
		}
	}
	return stats
}

// ListMine returns the referrals a student produced, newest first, with
// stats and the recomputed point balance.
func (s *ReferralService) ListMine(referrerID uuid.UUID) ([]models.Referral, ReferralStats, int, error) {
	var referrals []models.Referral
	err := s.db.Where("referrer_id = ?", referrerID).Order("joined_at desc").Find(&referrals).Error
	if err != nil {
		return nil, ReferralStats{}, 0, err
	}
	points, err := RecomputePoints(s.db, referrerID)
	if err != nil {
		return nil, ReferralStats{}, 0, err
	}
	return referrals, statsOf(referrals), points, nil
}

// ReferralListItem is one flattened row of the admin moderation view.
type ReferralListItem struct {
	ID           uuid.UUID  `json:"id"`
	ReferrerUID  uuid.UUID  `json:"referrer_uid"`
	ReferrerName string     `json:"referrer_name"`
	ReferrerCode string     `json:"referrer_code"`
	ReferredUID  uuid.UUID  `json:"referred_uid"`
	ReferredName string     `json:"referred_name"`
	Status       string     `json:"status"`
	JoinedAt     time.Time  `json:"joined_at"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	RejectedAt   *time.Time `json:"rejected_at,omitempty"`
}

// ListAll flattens every referral across students for moderation. Status and
// free-text filters are applied over the full scan, the way the admin view
// consumes them; stats always cover the unfiltered set.
func (s *ReferralService) ListAll(status, search string) ([]ReferralListItem, ReferralStats, error) {
	var referrals []models.Referral
	err := s.db.Preload("Referrer").Preload("ReferredUser").
		Order("joined_at desc").Find(&referrals).Error
	if err != nil {
		return nil, ReferralStats{}, err
	}

	stats := statsOf(referrals)
	search = strings.ToLower(strings.TrimSpace(search))

	items := make([]ReferralListItem, 0, len(referrals))
	for _, r := range referrals {
		if status != "" && status != "all" && r.Status != status {
			continue
		}

		referrerCode := ""
		if r.Referrer.ReferralCode != nil {
			referrerCode = *r.Referrer.ReferralCode
		}
		referredName := r.StudentName
		if referredName == "" {
			referredName = r.ReferredUser.FullName
		}

		if search != "" &&
			!strings.Contains(strings.ToLower(referredName), search) &&
			!strings.Contains(strings.ToLower(r.Referrer.FullName), search) &&
			!strings.Contains(strings.ToLower(referrerCode), search) {
			continue
		}

		items = append(items, ReferralListItem{
			ID:           r.ID,
			ReferrerUID:  r.ReferrerID,
			ReferrerName: r.Referrer.FullName,
			ReferrerCode: referrerCode,
			ReferredUID:  r.ReferredUserID,
			ReferredName: referredName,
			Status:       r.Status,
			JoinedAt:     r.JoinedAt,
			ApprovedAt:   r.ApprovedAt,
			RejectedAt:   r.RejectedAt,
		})
	}

	return items, stats, nil
}
