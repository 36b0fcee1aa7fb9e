package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scifunedu/scifun_backend/models"
	"gorm.io/gorm"
)

// FeeStatus is the computed fee position of one student at a point in time.
type FeeStatus struct {
	Board             string  `json:"board"`
	Class             string  `json:"class"`
	MonthlyFee        float64 `json:"monthly_fee"`
	SessionStartMonth int     `json:"session_start_month"`
	SessionYear       int     `json:"session_year"`
	MonthsPassed      int     `json:"months_passed"`
	TotalExpected     float64 `json:"total_expected"`
	TotalPaid         float64 `json:"total_paid"`
	TotalDiscount     float64 `json:"total_discount"`
	Due               float64 `json:"due"`
}

// FeeStatusFor is the one due-amount formula in the codebase. The student
// dashboard, the admin fee view and the reminder job all go through it.
// A session starting in the future yields zero months passed, and an
// overpaid account clamps the due to zero rather than carrying credit.
func FeeStatusFor(u *models.User, now time.Time) FeeStatus {
	monthsPassed := (now.Year()-u.SessionYear)*12 + (int(now.Month()) - u.SessionStartMonth) + 1
	if monthsPassed < 0 {
		monthsPassed = 0
	}

	totalExpected := float64(monthsPassed) * u.MonthlyFee
	due := totalExpected - u.TotalPaid - u.TotalDiscount
	if due < 0 {
		due = 0
	}

	return FeeStatus{
		Board:             u.Board,
		Class:             u.Class,
		MonthlyFee:        u.MonthlyFee,
		SessionStartMonth: u.SessionStartMonth,
		SessionYear:       u.SessionYear,
		MonthsPassed:      monthsPassed,
		TotalExpected:     totalExpected,
		TotalPaid:         u.TotalPaid,
		TotalDiscount:     u.TotalDiscount,
		Due:               due,
	}
}

// ReceiptIssuer hands out receipt numbers. A payment is only recorded after
// the issuer has succeeded.
type ReceiptIssuer interface {
	Issue(studentName string, amount float64, studentUID string) (string, error)
}

type FeeService struct {
	db       *gorm.DB
	receipts ReceiptIssuer
}

func NewFeeService(db *gorm.DB, receipts ReceiptIssuer) *FeeService {
	return &FeeService{db: db, receipts: receipts}
}

// CollectFee records a payment: the receipt is issued first, then the
// total_paid increment and the transaction row are written atomically.
// Concurrent collections for the same student cannot lose updates because
// the increment happens in SQL, not on a loaded snapshot.
func (s *FeeService) CollectFee(studentID uuid.UUID, amount float64) (*models.FeeTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var student models.User
	if err := s.db.Where("id = ? AND role = ?", studentID, "student").First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	receiptNo, err := s.receipts.Issue(student.FullName, amount, student.ID.String())
	if err != nil {
		return nil, fmt.Errorf("receipt service: %w", err)
	}

	txn := models.FeeTransaction{
		StudentID: student.ID,
		Amount:    amount,
		ReceiptNo: receiptNo,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ?", student.ID).
			UpdateColumn("total_paid", gorm.Expr("total_paid + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStudentNotFound
		}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, err
	}

	return &txn, nil
}

// AddAdjustment applies a staff discount with a mandatory reason.
func (s *FeeService) AddAdjustment(studentID uuid.UUID, amount float64, reason string) (*models.Adjustment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	adjustment := models.Adjustment{
		StudentID: studentID,
		Amount:    amount,
		Reason:    reason,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND role = ?", studentID, "student").
			UpdateColumn("total_discount", gorm.Expr("total_discount + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStudentNotFound
		}
		return tx.Create(&adjustment).Error
	})
	if err != nil {
		return nil, err
	}

	return &adjustment, nil
}

// StatementFor returns the student's transaction and adjustment history,
// newest first.
func (s *FeeService) StatementFor(studentID uuid.UUID) ([]models.FeeTransaction, []models.Adjustment, error) {
	var transactions []models.FeeTransaction
	if err := s.db.Where("student_id = ?", studentID).Order("created_at desc").Find(&transactions).Error; err != nil {
		return nil, nil, err
	}
	var adjustments []models.Adjustment
	if err := s.db.Where("student_id = ?", studentID).Order("created_at desc").Find(&adjustments).Error; err != nil {
		return nil, nil, err
	}
	return transactions, adjustments, nil
}
