package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/scifunedu/scifun_backend/models"
	"github.com/scifunedu/scifun_backend/notifications"
	"github.com/scifunedu/scifun_backend/services"
	"github.com/scifunedu/scifun_backend/websocket"
	"gorm.io/gorm"
)

type ReferralHandler struct {
	db        *gorm.DB
	referrals *services.ReferralService
}

func NewReferralHandler(db *gorm.DB, referrals *services.ReferralService) *ReferralHandler {
	return &ReferralHandler{db: db, referrals: referrals}
}

// ListAll is the admin moderation view: every referral across all students,
// flattened and newest first, with optional status and free-text filters.
func (h *ReferralHandler) ListAll(c *fiber.Ctx) error {
	status := c.Query("status", "all")
	search := c.Query("q")

	items, stats, err := h.referrals.ListAll(status, search)
	if err != nil {
		log.Printf("🔥 Failed to list referrals: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load referrals"})
	}

	return c.JSON(fiber.Map{
		"referrals": items,
		"stats":     stats,
	})
}

// Approve moves a pending referral to approved and awards the referrer's
// points. Re-approving a terminal referral fails with 409.
func (h *ReferralHandler) Approve(c *fiber.Ctx) error {
	referralID, err := uuid.Parse(c.Params("referralId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid referral ID format"})
	}

	referral, err := h.referrals.Approve(referralID)
	if err != nil {
		return referralTransitionError(c, err, "approve")
	}

	h.notifyTransition(referral)
	return c.JSON(fiber.Map{
		"message":  "Referral approved successfully!",
		"referral": referral,
	})
}

// Reject moves a pending referral to rejected. No points are awarded.
func (h *ReferralHandler) Reject(c *fiber.Ctx) error {
	referralID, err := uuid.Parse(c.Params("referralId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid referral ID format"})
	}

	referral, err := h.referrals.Reject(referralID)
	if err != nil {
		return referralTransitionError(c, err, "reject")
	}

	h.notifyTransition(referral)
	return c.JSON(fiber.Map{
		"message":  "Referral rejected.",
		"referral": referral,
	})
}

func referralTransitionError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrReferralNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrAlreadyApproved), errors.Is(err, services.ErrAlreadyRejected):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrStudentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	log.Printf("🔥 Failed to %s referral: %v", action, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to " + action + " referral"})
}

func (h *ReferralHandler) notifyTransition(referral *models.Referral) {
	var referrer models.User
	if err := h.db.Where("id = ?", referral.ReferrerID).First(&referrer).Error; err != nil {
		return
	}

	if referral.Status == models.ReferralStatusApproved {
		go notifications.SendEmail(referrer.FullName, referrer.Email, "Your Referral was Approved!",
			"<h1>Congratulations!</h1><p>A student you referred has been approved. 100 points have been added to your balance.</p>")
	}
	websocket.Push(referral.ReferrerID, "referral_"+referral.Status,
		"Your referral of "+referral.StudentName+" was "+referral.Status+".",
		map[string]interface{}{"referral_id": referral.ID.String()})
	websocket.Push(referral.ReferredUserID, "referral_status",
		"Your referral status is now "+referral.Status+".", nil)
}
