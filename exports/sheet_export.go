package exports

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/scifunedu/scifun_backend/models"
)

// SheetExporter forwards registration rows to the institute's Apps Script
// webhook for bookkeeping. The export is a best-effort side channel: every
// failure is logged and nothing ever bubbles up to the registration write.
type SheetExporter struct {
	url    string
	client *http.Client
}

func NewSheetExporter(url string) *SheetExporter {
	return &SheetExporter{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type registrationRow struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Board      string `json:"board"`
	Class      string `json:"class"`
	SchoolName string `json:"schoolName"`
	Branch     string `json:"branch"`
	Batch      string `json:"batch"`
	Registered string `json:"registeredAt"`
}

func (e *SheetExporter) ExportRegistration(u *models.User) {
	if e.url == "" {
		return
	}

	row := registrationRow{
		FullName:   u.FullName,
		Email:      u.Email,
		Board:      u.Board,
		Class:      u.Class,
		SchoolName: u.SchoolName,
		Branch:     u.Branch,
		Batch:      u.Batch,
		Registered: u.CreatedAt.Format(time.RFC3339),
	}

	body, err := json.Marshal(row)
	if err != nil {
		log.Printf("🔥 Failed to marshal registration export for %s: %v", u.Email, err)
		return
	}

	resp, err := e.client.Post(e.url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("🔥 Registration export failed for %s: %v", u.Email, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("🔥 Registration export for %s returned status %d", u.Email, resp.StatusCode)
		return
	}
	log.Printf("✅ Registration exported for %s", u.Email)
}
