package utils

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/scifunedu/scifun_backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestReferralCodePrefix(t *testing.T) {
	cases := map[string]string{
		"Anil Kumar":  "ANIL",
		"bo":          "BO",
		"A. B. Cdef":  "ABCD",
		"1234":        "STUD",
		"":            "STUD",
		"  ravi  ":    "RAVI",
		"Jo-Anne Doe": "JOAN",
	}
	for name, want := range cases {
		if got := referralCodePrefix(name); got != want {
			t.Fatalf("prefix of %q: expected %q got %q", name, want, got)
		}
	}
}

func TestGenerateUniqueReferralCode(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	codePattern := regexp.MustCompile(`^[A-Z]{1,4}[0-9]{4}$`)

	code, err := GenerateUniqueReferralCode(db, "Anil Kumar")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !codePattern.MatchString(code) {
		t.Fatalf("code %q does not match expected format", code)
	}
	if code[:4] != "ANIL" {
		t.Fatalf("expected ANIL prefix, got %q", code)
	}

	// A name without letters falls back to the STUD prefix.
	code, err = GenerateUniqueReferralCode(db, "!!!")
	if err != nil {
		t.Fatalf("generate fallback: %v", err)
	}
	if code[:4] != "STUD" {
		t.Fatalf("expected STUD prefix, got %q", code)
	}

	// Generated codes steer clear of codes already taken.
	taken := code
	user := models.User{FullName: "Taken", Email: "taken@example.com", Password: "x", ReferralCode: &taken}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed taken code: %v", err)
	}
	for i := 0; i < 20; i++ {
		next, err := GenerateUniqueReferralCode(db, "!!!")
		if err != nil {
			t.Fatalf("generate with collision pool: %v", err)
		}
		if next == taken {
			t.Fatalf("generated a code that is already taken: %q", next)
		}
	}
}
