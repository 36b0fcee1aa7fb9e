package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/scifunedu/scifun_backend/models"
	"gorm.io/gorm"
)

type AdminHandler struct {
	db *gorm.DB
}

func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// GetDashboardAnalytics summarises the portal for the admin home page.
func (h *AdminHandler) GetDashboardAnalytics(c *fiber.Ctx) error {
	var studentCount int64
	if err := h.db.Model(&models.User{}).Where("role = ?", "student").Count(&studentCount).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var totalCollected float64
	if err := h.db.Model(&models.FeeTransaction{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&totalCollected).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var totalDiscount float64
	if err := h.db.Model(&models.Adjustment{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&totalDiscount).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	referralCounts := map[string]int64{}
	for _, status := range []string{models.ReferralStatusPending, models.ReferralStatusApproved, models.ReferralStatusRejected} {
		var n int64
		if err := h.db.Model(&models.Referral{}).Where("status = ?", status).Count(&n).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
		}
		referralCounts[status] = n
	}

	return c.JSON(fiber.Map{
		"students":            studentCount,
		"total_fee_collected": totalCollected,
		"total_discount":      totalDiscount,
		"referrals":           referralCounts,
	})
}

// ListStudents pages through student accounts for the admin user table.
func (h *AdminHandler) ListStudents(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	var students []models.User
	if err := h.db.Where("role = ?", "student").
		Order("created_at desc").Limit(limit).Offset(offset).
		Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(students)
}

// ToggleUserStatus activates or deactivates an account.
func (h *AdminHandler) ToggleUserStatus(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID format"})
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	user.IsActive = !user.IsActive
	if err := h.db.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}

	return c.JSON(fiber.Map{"message": "User status updated", "is_active": user.IsActive})
}
