package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/scifunedu/scifun_backend/models"
	"github.com/scifunedu/scifun_backend/notifications"
	"github.com/scifunedu/scifun_backend/services"
	"github.com/scifunedu/scifun_backend/websocket"
	"gorm.io/gorm"
)

type FeeHandler struct {
	db   *gorm.DB
	fees *services.FeeService
}

func NewFeeHandler(db *gorm.DB, fees *services.FeeService) *FeeHandler {
	return &FeeHandler{db: db, fees: fees}
}

// SearchStudent finds one student by exact email or by id and returns the
// record together with the computed fee status and history.
func (h *FeeHandler) SearchStudent(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("query"))
	searchType := c.Query("type", "email")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please enter a search query"})
	}

	var student models.User
	var err error
	switch searchType {
	case "uid":
		id, parseErr := uuid.Parse(query)
		if parseErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student UID"})
		}
		err = h.db.Where("id = ? AND role = ?", id, "student").First(&student).Error
	case "email":
		err = h.db.Where("email = ? AND role = ?", strings.ToLower(query), "student").First(&student).Error
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Search type must be email or uid"})
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	transactions, adjustments, err := h.fees.StatementFor(student.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load fee statement"})
	}

	return c.JSON(fiber.Map{
		"student":      student,
		"fee_status":   services.FeeStatusFor(&student, time.Now()),
		"transactions": transactions,
		"adjustments":  adjustments,
	})
}

type CollectFeeRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

// CollectFee records a payment for a student. The receipt must be issued
// before anything is written; a receipt failure leaves the ledger untouched.
func (h *FeeHandler) CollectFee(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
	}

	var req CollectFeeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please enter a valid amount greater than 0"})
	}

	txn, err := h.fees.CollectFee(studentID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrStudentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("🔥 Failed to collect fee for %s: %v", studentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to collect fee"})
	}

	var student models.User
	if err := h.db.Where("id = ?", studentID).First(&student).Error; err == nil {
		go notifications.SendEmail(student.FullName, student.Email, "Fee Payment Received",
			fmt.Sprintf("<h1>Payment Received</h1><p>We received your payment of %.2f. Receipt number: <b>%s</b>.</p>", txn.Amount, txn.ReceiptNo))
		websocket.Push(student.ID, "fee_receipt",
			fmt.Sprintf("Payment of %.2f recorded. Receipt %s.", txn.Amount, txn.ReceiptNo),
			map[string]interface{}{"receipt_no": txn.ReceiptNo})

		return c.JSON(fiber.Map{
			"message":     "Fee collected successfully! Receipt generated.",
			"transaction": txn,
			"fee_status":  services.FeeStatusFor(&student, time.Now()),
		})
	}

	return c.JSON(fiber.Map{
		"message":     "Fee collected successfully! Receipt generated.",
		"transaction": txn,
	})
}

type AdjustmentRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Reason string  `json:"reason" validate:"required"`
}

// AddAdjustment applies a staff discount with a mandatory reason.
func (h *FeeHandler) AddAdjustment(c *fiber.Ctx) error {
	studentID, err := uuid.Parse(c.Params("studentId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid student ID format"})
	}

	var req AdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	adjustment, err := h.fees.AddAdjustment(studentID, req.Amount, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrEmptyReason):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrStudentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("🔥 Failed to add adjustment for %s: %v", studentID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add adjustment"})
	}

	var student models.User
	if err := h.db.Where("id = ?", studentID).First(&student).Error; err == nil {
		return c.JSON(fiber.Map{
			"message":    "Adjustment added successfully!",
			"adjustment": adjustment,
			"fee_status": services.FeeStatusFor(&student, time.Now()),
		})
	}

	return c.JSON(fiber.Map{
		"message":    "Adjustment added successfully!",
		"adjustment": adjustment,
	})
}
