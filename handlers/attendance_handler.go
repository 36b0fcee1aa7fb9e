package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/scifunedu/scifun_backend/models"
	"gorm.io/gorm"
)

// Batches maps each branch to its batch slots. Attendance submissions are
// validated against this map.
var Batches = map[string][]string{
	"Scifun Main Branch": {"4pm-6pm Batch 1", "6pm-8pm Batch 2"},
	"Scifun Branch 2":    {"2pm-4pm Batch 1", "4pm-6pm Batch 2", "6pm-8pm Batch 3"},
}

type AttendanceHandler struct {
	db *gorm.DB
}

func NewAttendanceHandler(db *gorm.DB) *AttendanceHandler {
	return &AttendanceHandler{db: db}
}

func (h *AttendanceHandler) GetBatches(c *fiber.Ctx) error {
	return c.JSON(Batches)
}

func validBranchBatch(branch, batch string) bool {
	for _, b := range Batches[branch] {
		if b == batch {
			return true
		}
	}
	return false
}

// GetBatchStudents returns the roster for one branch/batch.
func (h *AttendanceHandler) GetBatchStudents(c *fiber.Ctx) error {
	branch := c.Query("branch")
	batch := c.Query("batch")
	if !validBranchBatch(branch, batch) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown branch or batch"})
	}

	var students []models.User
	if err := h.db.Where("role = ? AND branch = ? AND batch = ?", "student", branch, batch).
		Order("full_name asc").Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{"students": students})
}

type AttendanceEntry struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	Present   bool   `json:"present"`
}

type SubmitAttendanceRequest struct {
	Branch  string            `json:"branch" validate:"required"`
	Batch   string            `json:"batch" validate:"required"`
	Date    string            `json:"date" validate:"required"`
	Entries []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// SubmitAttendance records a whole batch's attendance for one date in a
// single transaction. Resubmitting a date overwrites the earlier marks.
func (h *AttendanceHandler) SubmitAttendance(c *fiber.Ctx) error {
	var req SubmitAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !validBranchBatch(req.Branch, req.Batch) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown branch or batch"})
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Date must be YYYY-MM-DD"})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, entry := range req.Entries {
			studentID, err := uuid.Parse(entry.StudentID)
			if err != nil {
				return err
			}
			if err := tx.Where("student_id = ? AND date = ?", studentID, req.Date).
				Delete(&models.AttendanceRecord{}).Error; err != nil {
				return err
			}
			record := models.AttendanceRecord{
				StudentID: studentID,
				Branch:    req.Branch,
				Batch:     req.Batch,
				Date:      req.Date,
				Present:   entry.Present,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit attendance"})
	}

	return c.JSON(fiber.Map{"message": "Attendance submitted successfully"})
}

// GetMyAttendance summarises the logged-in student's attendance.
func (h *AttendanceHandler) GetMyAttendance(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var total, attended int64
	if err := h.db.Model(&models.AttendanceRecord{}).Where("student_id = ?", userID).Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	if err := h.db.Model(&models.AttendanceRecord{}).
		Where("student_id = ? AND present = ?", userID, true).Count(&attended).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	percentage := 0.0
	if total > 0 {
		percentage = float64(attended) / float64(total) * 100
	}

	return c.JSON(fiber.Map{
		"attended":   attended,
		"total":      total,
		"percentage": percentage,
	})
}
