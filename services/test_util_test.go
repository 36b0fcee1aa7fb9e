package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/scifunedu/scifun_backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Referral{},
		&models.FeeTransaction{},
		&models.Adjustment{},
		&models.AttendanceRecord{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func createStudent(t *testing.T, db *gorm.DB, name, email, code string, monthlyFee float64, startMonth, year int) *models.User {
	t.Helper()

	student := &models.User{
		FullName:          name,
		Email:             email,
		Password:          "x",
		Role:              "student",
		Board:             "Maharashtra",
		Class:             "7",
		ReferralCode:      &code,
		MonthlyFee:        monthlyFee,
		SessionStartMonth: startMonth,
		SessionYear:       year,
	}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("create student %s: %v", email, err)
	}
	return student
}
