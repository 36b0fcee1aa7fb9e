package services

import (
	"errors"
	"testing"

	"github.com/scifunedu/scifun_backend/models"
	"gorm.io/gorm"
)

func setupReferralPair(t *testing.T) (*gorm.DB, *ReferralService, *models.User, *models.User) {
	t.Helper()
	db := newTestDB(t)
	svc := NewReferralService(db)
	referrer := createStudent(t, db, "Asha Patil", "asha@example.com", "ASHA1234", 500, 1, 2024)
	referred := createStudent(t, db, "Bhavesh Rao", "bhavesh@example.com", "BHAV5678", 500, 1, 2024)
	return db, svc, referrer, referred
}

func TestRedeem(t *testing.T) {
	db, svc, referrer, referred := setupReferralPair(t)

	referral, err := svc.Redeem(referred.ID, "ASHA1234")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if referral.Status != models.ReferralStatusPending {
		t.Fatalf("expected pending referral, got %s", referral.Status)
	}
	if referral.ReferrerID != referrer.ID || referral.ReferredUserID != referred.ID {
		t.Fatalf("referral links the wrong students")
	}

	var reloaded models.User
	db.First(&reloaded, "id = ?", referred.ID)
	if reloaded.ReferredByCode == nil || *reloaded.ReferredByCode != "ASHA1234" {
		t.Fatalf("referred_by_code not set")
	}
	if reloaded.ReferralStatus != models.ReferralStatusPending {
		t.Fatalf("expected referral status pending, got %s", reloaded.ReferralStatus)
	}
}

func TestRedeemTwiceRejected(t *testing.T) {
	db, svc, _, referred := setupReferralPair(t)

	if _, err := svc.Redeem(referred.ID, "ASHA1234"); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if _, err := svc.Redeem(referred.ID, "ASHA1234"); !errors.Is(err, ErrAlreadyRedeemed) {
		t.Fatalf("expected ErrAlreadyRedeemed, got %v", err)
	}

	var count int64
	db.Model(&models.Referral{}).Count(&count)
	if count != 1 {
		t.Fatalf("second redemption must not change state, referral count = %d", count)
	}
}

func TestRedeemSelfRejected(t *testing.T) {
	_, svc, referrer, _ := setupReferralPair(t)

	if _, err := svc.Redeem(referrer.ID, "ASHA1234"); !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("expected ErrSelfReferral, got %v", err)
	}
}

func TestRedeemUnknownCodeRejected(t *testing.T) {
	_, svc, _, referred := setupReferralPair(t)

	if _, err := svc.Redeem(referred.ID, "NOPE9999"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	if _, err := svc.Redeem(referred.ID, "   "); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode for blank code, got %v", err)
	}
}

func TestApproveAwardsPoints(t *testing.T) {
	db, svc, referrer, referred := setupReferralPair(t)

	referral, err := svc.Redeem(referred.ID, "ASHA1234")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}

	approved, err := svc.Approve(referral.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != models.ReferralStatusApproved || approved.ApprovedAt == nil {
		t.Fatalf("referral not marked approved")
	}

	points, err := RecomputePoints(db, referrer.ID)
	if err != nil {
		t.Fatalf("recompute points: %v", err)
	}
	if points != PointsPerApprovedReferral {
		t.Fatalf("expected %d points, got %d", PointsPerApprovedReferral, points)
	}

	var reloadedReferrer models.User
	db.First(&reloadedReferrer, "id = ?", referrer.ID)
	if reloadedReferrer.Points != PointsPerApprovedReferral {
		t.Fatalf("cached points column not updated, got %d", reloadedReferrer.Points)
	}

	var reloadedReferred models.User
	db.First(&reloadedReferred, "id = ?", referred.ID)
	if reloadedReferred.ReferralStatus != models.ReferralStatusApproved {
		t.Fatalf("referred student's status not mirrored, got %s", reloadedReferred.ReferralStatus)
	}
}

func TestApproveTwiceConflicts(t *testing.T) {
	db, svc, referrer, referred := setupReferralPair(t)

	referral, _ := svc.Redeem(referred.ID, "ASHA1234")
	if _, err := svc.Approve(referral.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := svc.Approve(referral.ID); !errors.Is(err, ErrAlreadyApproved) {
		t.Fatalf("expected ErrAlreadyApproved, got %v", err)
	}

	points, _ := RecomputePoints(db, referrer.ID)
	if points != PointsPerApprovedReferral {
		t.Fatalf("points must be unchanged after failed re-approval, got %d", points)
	}
}

func TestRejectNeverAwardsPoints(t *testing.T) {
	db, svc, referrer, referred := setupReferralPair(t)

	referral, _ := svc.Redeem(referred.ID, "ASHA1234")
	rejected, err := svc.Reject(referral.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != models.ReferralStatusRejected || rejected.RejectedAt == nil {
		t.Fatalf("referral not marked rejected")
	}

	points, _ := RecomputePoints(db, referrer.ID)
	if points != 0 {
		t.Fatalf("rejection must not award points, got %d", points)
	}

	var reloadedReferred models.User
	db.First(&reloadedReferred, "id = ?", referred.ID)
	if reloadedReferred.ReferralStatus != models.ReferralStatusRejected {
		t.Fatalf("referred student's status not mirrored, got %s", reloadedReferred.ReferralStatus)
	}

	if _, err := svc.Reject(referral.ID); !errors.Is(err, ErrAlreadyRejected) {
		t.Fatalf("expected ErrAlreadyRejected, got %v", err)
	}
	if _, err := svc.Approve(referral.ID); !errors.Is(err, ErrAlreadyRejected) {
		t.Fatalf("approving a rejected referral must fail with ErrAlreadyRejected, got %v", err)
	}
}

func TestTransitionUnknownReferral(t *testing.T) {
	_, svc, _, referred := setupReferralPair(t)

	if _, err := svc.Approve(referred.ID); !errors.Is(err, ErrReferralNotFound) {
		t.Fatalf("expected ErrReferralNotFound, got %v", err)
	}
}

func TestListMine(t *testing.T) {
	db, svc, referrer, referred := setupReferralPair(t)
	third := createStudent(t, db, "Chirag Shah", "chirag@example.com", "CHIR1111", 500, 1, 2024)

	r1, _ := svc.Redeem(referred.ID, "ASHA1234")
	if _, err := svc.Redeem(third.ID, "ASHA1234"); err != nil {
		t.Fatalf("redeem third: %v", err)
	}
	if _, err := svc.Approve(r1.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	referrals, stats, points, err := svc.ListMine(referrer.ID)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(referrals) != 2 {
		t.Fatalf("expected 2 referrals, got %d", len(referrals))
	}
	if stats.Total != 2 || stats.Approved != 1 || stats.Pending != 1 || stats.Rejected != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if points != PointsPerApprovedReferral {
		t.Fatalf("expected %d points, got %d", PointsPerApprovedReferral, points)
	}
}

func TestListAllFilters(t *testing.T) {
	db, svc, _, referred := setupReferralPair(t)
	third := createStudent(t, db, "Chirag Shah", "chirag@example.com", "CHIR1111", 500, 1, 2024)

	r1, _ := svc.Redeem(referred.ID, "ASHA1234")
	svc.Redeem(third.ID, "ASHA1234")
	svc.Approve(r1.ID)

	all, stats, err := svc.ListAll("all", "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 || stats.Total != 2 {
		t.Fatalf("expected 2 rows, got %d (stats %+v)", len(all), stats)
	}

	pending, stats, err := svc.ListAll(models.ReferralStatusPending, "")
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Status != models.ReferralStatusPending {
		t.Fatalf("status filter failed: %+v", pending)
	}
	if stats.Total != 2 {
		t.Fatalf("stats must cover the unfiltered set, got %+v", stats)
	}

	byName, _, err := svc.ListAll("all", "chirag")
	if err != nil {
		t.Fatalf("list by name: %v", err)
	}
	if len(byName) != 1 || byName[0].ReferredName != "Chirag Shah" {
		t.Fatalf("search filter failed: %+v", byName)
	}

	byCode, _, err := svc.ListAll("all", "asha12")
	if err != nil {
		t.Fatalf("list by code: %v", err)
	}
	if len(byCode) != 2 {
		t.Fatalf("referrer code search should match both rows, got %d", len(byCode))
	}
}
