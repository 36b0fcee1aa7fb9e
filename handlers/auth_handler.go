package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	config "github.com/scifunedu/scifun_backend/configs"
	"github.com/scifunedu/scifun_backend/exports"
	"github.com/scifunedu/scifun_backend/models"
	"github.com/scifunedu/scifun_backend/notifications"
	"github.com/scifunedu/scifun_backend/services"
	"github.com/scifunedu/scifun_backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate = validator.New()

type AuthHandler struct {
	db        *gorm.DB
	referrals *services.ReferralService
	exporter  *exports.SheetExporter
}

func NewAuthHandler(db *gorm.DB, referrals *services.ReferralService, exporter *exports.SheetExporter) *AuthHandler {
	return &AuthHandler{db: db, referrals: referrals, exporter: exporter}
}

type RegisterRequest struct {
	FullName      string  `json:"full_name" validate:"required,min=3"`
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=6"`
	Board         string  `json:"board" validate:"required"`
	Class         string  `json:"class" validate:"required"`
	SchoolName    string  `json:"school_name"`
	Phone         string  `json:"phone"`
	DOB           string  `json:"dob"`
	FatherContact string  `json:"father_contact"`
	MotherContact string  `json:"mother_contact"`
	Address       string  `json:"address"`
	RollNo        string  `json:"roll_no"`
	Branch        string  `json:"branch"`
	Batch         string  `json:"batch"`
	ReferralID    *string `json:"referral_id,omitempty"`
}

type UserResponse struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Board        string    `json:"board"`
	Class        string    `json:"class"`
	MonthlyFee   float64   `json:"monthly_fee"`
	ReferralCode string    `json:"referral_code"`
	CreatedAt    time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a student account. The monthly fee is snapshotted from
// the fee chart, the session starts this month, and an optional invite code
// is redeemed inside the same transaction as the user insert.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	fee, ok := utils.GetFee(req.Board, req.Class)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Fee not configured for %s Board - Class %s. Please contact admin.", req.Board, req.Class),
		})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
	}

	now := time.Now()
	rollNo := req.RollNo
	if rollNo == "" {
		rollNo = "Pending"
	}

	var newUser models.User
	err = h.db.Transaction(func(tx *gorm.DB) error {
		code, err := utils.GenerateUniqueReferralCode(tx, req.FullName)
		if err != nil {
			return err
		}

		newUser = models.User{
			FullName:          req.FullName,
			Email:             strings.ToLower(strings.TrimSpace(req.Email)),
			Password:          string(hashedPassword),
			Role:              "student",
			Board:             req.Board,
			Class:             req.Class,
			SchoolName:        req.SchoolName,
			RollNo:            rollNo,
			Branch:            req.Branch,
			Batch:             req.Batch,
			ReferralCode:      &code,
			MonthlyFee:        fee,
			SessionStartMonth: int(now.Month()),
			SessionYear:       now.Year(),
		}
		if req.Phone != "" {
			newUser.Contact = &req.Phone
		}
		if req.DOB != "" {
			newUser.DOB = &req.DOB
		}
		if req.FatherContact != "" {
			newUser.FatherContact = &req.FatherContact
		}
		if req.MotherContact != "" {
			newUser.MotherContact = &req.MotherContact
		}
		if req.Address != "" {
			newUser.Address = &req.Address
		}
		photo := fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", uuid.NewString())
		newUser.PhotoURL = &photo

		if err := tx.Create(&newUser).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") {
				return errors.New("email already exists")
			}
			return err
		}

		if req.ReferralID != nil && strings.TrimSpace(*req.ReferralID) != "" {
			if _, err := h.referrals.RedeemTx(tx, &newUser, *req.ReferralID); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		switch {
		case err.Error() == "email already exists":
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email already exists"})
		case errors.Is(err, services.ErrInvalidCode), errors.Is(err, services.ErrSelfReferral):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("🔥 Registration failed for %s: %v", req.Email, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create user"})
	}

	go notifications.SendEmail(newUser.FullName, newUser.Email, "Welcome to SciFun!",
		"<h1>Welcome!</h1><p>Your student account is ready. Log in to see your dashboard, fee status and referral code.</p>")
	go h.exporter.ExportRegistration(&newUser)

	response := UserResponse{
		ID:           newUser.ID.String(),
		FullName:     newUser.FullName,
		Email:        newUser.Email,
		Role:         newUser.Role,
		Board:        newUser.Board,
		Class:        newUser.Class,
		MonthlyFee:   newUser.MonthlyFee,
		ReferralCode: *newUser.ReferralCode,
		CreatedAt:    newUser.CreatedAt,
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := h.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	if !user.IsActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account is deactivated"})
	}

	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	t, err := token.SignedString([]byte(config.Config("JWT_SECRET")))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create token"})
	}

	return c.JSON(fiber.Map{"token": t})
}

// currentUserID pulls the authenticated subject out of the JWT claims.
func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("missing token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("malformed claims")
	}
	raw, _ := claims["user_id"].(string)
	return uuid.Parse(raw)
}
