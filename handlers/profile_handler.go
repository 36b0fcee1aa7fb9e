package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/scifunedu/scifun_backend/models"
	"gorm.io/gorm"
)

type ProfileHandler struct {
	db *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

type UpdateProfileRequest struct {
	FullName      *string `json:"full_name"`
	PhotoURL      *string `json:"photo_url"`
	SchoolName    *string `json:"school_name"`
	Contact       *string `json:"contact"`
	FatherContact *string `json:"father_contact"`
	MotherContact *string `json:"mother_contact"`
	Address       *string `json:"address"`
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(user)
}

// UpdateProfile patches the editable profile fields. Fee configuration and
// referral fields are deliberately not reachable from here.
func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var user models.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.PhotoURL != nil {
		user.PhotoURL = req.PhotoURL
	}
	if req.SchoolName != nil {
		user.SchoolName = *req.SchoolName
	}
	if req.Contact != nil {
		user.Contact = req.Contact
	}
	if req.FatherContact != nil {
		user.FatherContact = req.FatherContact
	}
	if req.MotherContact != nil {
		user.MotherContact = req.MotherContact
	}
	if req.Address != nil {
		user.Address = req.Address
	}

	if err := h.db.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	return c.JSON(user)
}
