package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/MR-Munggaran/belajar-sertif/internal/database"
)

func TestImportParticipants_CSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	h := NewParticipantHandler(db)

	event := database.Event{Title: "Webinar Golang", UserID: 1}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}

	// Header row, two valid rows, one blank name.
	csvContent := "name,email\nBudi Santoso,budi@example.com\n ,\nSiti Rahma,\n"
	body, contentType := newMultipartUpload(t, "file", "peserta.csv", []byte(csvContent))

	req := httptest.NewRequest(http.MethodPost, "/v1/events/1/participants/import", body)
	req.Header.Set("Content-Type", contentType)

	w := httptest.NewRecorder()
	c := newAuthedContext(w, req, 1)
	c.Params = gin.Params{{Key: "id", Value: strconv.Itoa(int(event.ID))}}

	h.ImportParticipants(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Imported != 2 || resp.Skipped != 1 {
		t.Errorf("imported=%d skipped=%d, want 2/1", resp.Imported, resp.Skipped)
	}

	var participants []database.Participant
	if err := db.Where("event_id = ?", event.ID).Order("name ASC").Find(&participants).Error; err != nil {
		t.Fatalf("list participants: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(participants))
	}
	if participants[0].Name != "Budi Santoso" || participants[0].Email != "budi@example.com" {
		t.Errorf("first participant = %q/%q", participants[0].Name, participants[0].Email)
	}
	if participants[1].Name != "Siti Rahma" || participants[1].Email != "" {
		t.Errorf("second participant = %q/%q", participants[1].Name, participants[1].Email)
	}
}

func TestRemoveParticipant_OtherEventNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	h := NewParticipantHandler(db)

	eventA := database.Event{Title: "A", UserID: 1}
	eventB := database.Event{Title: "B", UserID: 1}
	if err := db.Create(&eventA).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	if err := db.Create(&eventB).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	p := database.Participant{Name: "Budi", EventID: eventB.ID}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed participant: %v", err)
	}

	// Deleting through the wrong event must not touch the row.
	req := httptest.NewRequest(http.MethodDelete, "/v1/events/1/participants/1", nil)
	w := httptest.NewRecorder()
	c := newAuthedContext(w, req, 1)
	c.Params = gin.Params{
		{Key: "id", Value: strconv.Itoa(int(eventA.ID))},
		{Key: "participantID", Value: strconv.Itoa(int(p.ID))},
	}

	h.RemoveParticipant(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d body=%s", w.Code, w.Body.String())
	}

	var count int64
	db.Model(&database.Participant{}).Where("id = ?", p.ID).Count(&count)
	if count != 1 {
		t.Error("participant was deleted through the wrong event")
	}
}
