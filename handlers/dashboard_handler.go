package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/scifunedu/scifun_backend/configs"
	"github.com/scifunedu/scifun_backend/models"
	"github.com/scifunedu/scifun_backend/services"
	"github.com/scifunedu/scifun_backend/websocket"
	"gorm.io/gorm"
)

type StudentHandler struct {
	db        *gorm.DB
	fees      *services.FeeService
	referrals *services.ReferralService
}

func NewStudentHandler(db *gorm.DB, fees *services.FeeService, referrals *services.ReferralService) *StudentHandler {
	return &StudentHandler{db: db, fees: fees, referrals: referrals}
}

// GetDashboard assembles the student home view: profile, fee status,
// referral stats and the recomputed point balance. Points always come from
// the referrals table, never from the cached column.
func (h *StudentHandler) GetDashboard(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	referrals, stats, points, err := h.referrals.ListMine(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load referrals"})
	}

	transactions, adjustments, err := h.fees.StatementFor(user.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load fee statement"})
	}

	referralLink := ""
	if user.ReferralCode != nil {
		referralLink = fmt.Sprintf("%s/register?ref=%s", config.Config("FRONTEND_URL"), *user.ReferralCode)
	}

	return c.JSON(fiber.Map{
		"profile":        user,
		"points":         points,
		"referral_link":  referralLink,
		"referrals":      referrals,
		"referral_stats": stats,
		"fee_status":     services.FeeStatusFor(&user, time.Now()),
		"transactions":   transactions,
		"adjustments":    adjustments,
	})
}

type RedeemRequest struct {
	InviteCode string `json:"invite_code" validate:"required,min=5"`
}

// RedeemReferral lets the logged-in student use someone's invite code once.
func (h *StudentHandler) RedeemReferral(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please enter a valid code."})
	}

	referral, err := h.referrals.Redeem(userID, req.InviteCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyRedeemed),
			errors.Is(err, services.ErrSelfReferral),
			errors.Is(err, services.ErrInvalidCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrStudentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong. Try again."})
	}

	websocket.Push(referral.ReferrerID, "referral_joined",
		fmt.Sprintf("%s joined with your referral code!", referral.StudentName),
		map[string]interface{}{"referral_id": referral.ID.String()})

	return c.JSON(fiber.Map{
		"message":  "Referral code redeemed. Waiting for admin approval.",
		"referral": referral,
	})
}

// GetMyReferrals returns the referrals the student produced plus stats.
func (h *StudentHandler) GetMyReferrals(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	referrals, stats, points, err := h.referrals.ListMine(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load referrals"})
	}

	return c.JSON(fiber.Map{
		"referrals": referrals,
		"stats":     stats,
		"points":    points,
	})
}
