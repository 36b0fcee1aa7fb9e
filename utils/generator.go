package utils

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/scifunedu/scifun_backend/models"
	"gorm.io/gorm"
)

const referralCodeAttempts = 25

// GenerateUniqueReferralCode builds a referral code from the first four
// letters of the student's name plus a random 4-digit suffix, retrying on
// collision until a free code is found.
func GenerateUniqueReferralCode(tx *gorm.DB, fullName string) (string, error) {
	seededRand := rand.New(rand.NewSource(time.Now().UnixNano()))
	prefix := referralCodePrefix(fullName)

	for i := 0; i < referralCodeAttempts; i++ {
		code := fmt.Sprintf("%s%d", prefix, 1000+seededRand.Intn(9000))

		var count int64
		if err := tx.Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}

	return "", errors.New("could not generate a unique referral code")
}

// referralCodePrefix keeps the first four ASCII letters of the name,
// uppercased, falling back to "STUD" for names with no letters.
func referralCodePrefix(name string) string {
	letters := make([]rune, 0, 4)
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		if r >= 'A' && r <= 'Z' {
			letters = append(letters, r)
		}
		if len(letters) == 4 {
			break
		}
	}
	if len(letters) == 0 {
		return "STUD"
	}
	return string(letters)
}
