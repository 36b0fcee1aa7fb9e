package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/scifunedu/scifun_backend/exports"
	"github.com/scifunedu/scifun_backend/models"
	"github.com/scifunedu/scifun_backend/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Referral{}, &models.FeeTransaction{}, &models.Adjustment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	referrals := services.NewReferralService(db)
	h := NewAuthHandler(db, referrals, exports.NewSheetExporter(""))

	app := fiber.New()
	app.Post("/api/v1/auth/register", h.Register)
	app.Post("/api/v1/auth/login", h.Login)
	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func registerPayload(email string) map[string]any {
	return map[string]any{
		"full_name": "Anil Kumar",
		"email":     email,
		"password":  "secret123",
		"board":     "Maharashtra",
		"class":     "7",
	}
}

func TestRegister(t *testing.T) {
	app, db := newAuthTestApp(t)

	resp := postJSON(t, app, "/api/v1/auth/register", registerPayload("anil@example.com"))
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)

	code, _ := body["referral_code"].(string)
	if !regexp.MustCompile(`^ANIL[0-9]{4}$`).MatchString(code) {
		t.Fatalf("unexpected referral code %q", code)
	}
	if fee, _ := body["monthly_fee"].(float64); fee != 500 {
		t.Fatalf("expected Maharashtra class 7 fee 500, got %v", fee)
	}

	var user models.User
	if err := db.First(&user, "email = ?", "anil@example.com").Error; err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if user.Role != "student" || !user.IsActive {
		t.Fatalf("unexpected user defaults: role=%s active=%v", user.Role, user.IsActive)
	}
	if user.Password == "secret123" {
		t.Fatalf("password stored in plain text")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app, _ := newAuthTestApp(t)

	if resp := postJSON(t, app, "/api/v1/auth/register", registerPayload("dup@example.com")); resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("first registration failed with %d", resp.StatusCode)
	}
	resp := postJSON(t, app, "/api/v1/auth/register", registerPayload("dup@example.com"))
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}
}

func TestRegisterUnknownBoard(t *testing.T) {
	app, _ := newAuthTestApp(t)

	payload := registerPayload("icse@example.com")
	payload["board"] = "ICSE"
	resp := postJSON(t, app, "/api/v1/auth/register", payload)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unconfigured board, got %d", resp.StatusCode)
	}
}

func TestRegisterWithInviteCode(t *testing.T) {
	app, db := newAuthTestApp(t)

	resp := postJSON(t, app, "/api/v1/auth/register", registerPayload("referrer@example.com"))
	body := decodeBody(t, resp)
	code, _ := body["referral_code"].(string)
	if code == "" {
		t.Fatalf("referrer has no referral code")
	}

	payload := registerPayload("friend@example.com")
	payload["referral_id"] = code
	if resp := postJSON(t, app, "/api/v1/auth/register", payload); resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("referred registration failed with %d", resp.StatusCode)
	}

	var referral models.Referral
	if err := db.First(&referral).Error; err != nil {
		t.Fatalf("no referral row created: %v", err)
	}
	if referral.Status != models.ReferralStatusPending {
		t.Fatalf("expected pending referral, got %s", referral.Status)
	}
	if referral.StudentName != "Anil Kumar" {
		t.Fatalf("unexpected referred student name %q", referral.StudentName)
	}

	// An unknown invite code rejects the whole registration.
	payload = registerPayload("stranger@example.com")
	payload["referral_id"] = "NOPE9999"
	if resp := postJSON(t, app, "/api/v1/auth/register", payload); resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown invite code, got %d", resp.StatusCode)
	}
	var count int64
	db.Model(&models.User{}).Where("email = ?", "stranger@example.com").Count(&count)
	if count != 0 {
		t.Fatalf("user must not be created when invite code is invalid")
	}
}

func TestLogin(t *testing.T) {
	app, db := newAuthTestApp(t)

	if resp := postJSON(t, app, "/api/v1/auth/register", registerPayload("login@example.com")); resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("registration failed with %d", resp.StatusCode)
	}

	resp := postJSON(t, app, "/api/v1/auth/login", map[string]any{"email": "login@example.com", "password": "secret123"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if token, _ := body["token"].(string); token == "" {
		t.Fatalf("expected a token in the response")
	}

	resp = postJSON(t, app, "/api/v1/auth/login", map[string]any{"email": "login@example.com", "password": "wrong"})
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", resp.StatusCode)
	}

	db.Model(&models.User{}).Where("email = ?", "login@example.com").Update("is_active", false)
	resp = postJSON(t, app, "/api/v1/auth/login", map[string]any{"email": "login@example.com", "password": "secret123"})
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403 for deactivated account, got %d", resp.StatusCode)
	}
}
