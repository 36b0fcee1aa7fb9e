package database

import (
	"fmt"

	config "github.com/scifunedu/scifun_backend/configs"
	"github.com/scifunedu/scifun_backend/models"
	"github.com/scifunedu/scifun_backend/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection. The handle is passed down
// explicitly; nothing in the codebase reaches for a package-level DB.
func Connect() (*gorm.DB, error) {
	dsn := config.Config("DATABASE_URL")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Referral{},
		&models.FeeTransaction{},
		&models.Adjustment{},
		&models.AttendanceRecord{},
	)
}

// SeedAdmin creates the admin account from the environment on first boot.
func SeedAdmin(db *gorm.DB) error {
	adminEmail := config.Config("ADMIN_EMAIL")
	adminPassword := config.Config("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		code, err := utils.GenerateUniqueReferralCode(tx, "Admin")
		if err != nil {
			return err
		}
		admin := models.User{
			FullName:     config.Config("ADMIN_FULL_NAME"),
			Email:        adminEmail,
			Password:     string(hashedPassword),
			Role:         "admin",
			ReferralCode: &code,
		}
		return tx.Create(&admin).Error
	})
}
