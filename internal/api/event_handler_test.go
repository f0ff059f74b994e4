package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MR-Munggaran/belajar-sertif/internal/database"
)

type fakeArtifactStore struct {
	deletedKeys     []string
	deletedPrefixes []string
}

func (f *fakeArtifactStore) DeleteObject(ctx context.Context, objectKey string) error {
	f.deletedKeys = append(f.deletedKeys, objectKey)
	return nil
}

func (f *fakeArtifactStore) DeletePrefix(ctx context.Context, prefix string) error {
	f.deletedPrefixes = append(f.deletedPrefixes, prefix)
	return nil
}

func TestDeleteEvent_RemovesGeneratedArtifacts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	event := database.Event{Title: "Pelatihan Go", UserID: 1}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}
	participant := database.Participant{Name: "Budi Santoso", EventID: event.ID}
	if err := db.Create(&participant).Error; err != nil {
		t.Fatalf("seed participant: %v", err)
	}
	tpl := database.CertificateTemplate{Title: "Sertifikat", Pages: datatypes.JSON(`[]`), UserID: 1}
	if err := db.Create(&tpl).Error; err != nil {
		t.Fatalf("seed template: %v", err)
	}

	completed := database.Certificate{
		UUID:          "11111111-2222-3333-4444-555555555555",
		ParticipantID: participant.ID,
		TemplateID:    tpl.ID,
		Status:        database.CertificateStatusCompleted,
		PdfKey:        "generated-certificates/1/11111111-2222-3333-4444-555555555555.pdf",
	}
	if err := db.Create(&completed).Error; err != nil {
		t.Fatalf("seed certificate: %v", err)
	}
	pending := database.Certificate{
		UUID:          "66666666-7777-8888-9999-000000000000",
		ParticipantID: participant.ID,
		TemplateID:    tpl.ID,
		Status:        database.CertificateStatusPending,
	}
	if err := db.Create(&pending).Error; err != nil {
		t.Fatalf("seed certificate: %v", err)
	}

	store := &fakeArtifactStore{}
	h := NewEventHandler(db, store)

	req := httptest.NewRequest(http.MethodDelete, "/v1/events/"+strconv.Itoa(int(event.ID)), nil)
	w := httptest.NewRecorder()
	c := newAuthedContext(w, req, 1)
	c.Params = gin.Params{{Key: "id", Value: strconv.Itoa(int(event.ID))}}

	h.DeleteEvent(c)
	// gin buffers c.Status until the engine flushes it; calling the handler
	// directly means we must flush ourselves before reading the recorder.
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d body=%s", w.Code, w.Body.String())
	}

	// Only the completed certificate has a stored PDF.
	if len(store.deletedKeys) != 1 || store.deletedKeys[0] != completed.PdfKey {
		t.Errorf("deleted keys = %v, want [%s]", store.deletedKeys, completed.PdfKey)
	}

	wantPrefixes := map[string]bool{
		fmt.Sprintf("thumbnails/certificate/%d/", completed.ID): false,
		fmt.Sprintf("thumbnails/certificate/%d/", pending.ID):   false,
	}
	for _, prefix := range store.deletedPrefixes {
		if _, ok := wantPrefixes[prefix]; !ok {
			t.Errorf("unexpected prefix deleted: %s", prefix)
			continue
		}
		wantPrefixes[prefix] = true
	}
	for prefix, seen := range wantPrefixes {
		if !seen {
			t.Errorf("thumbnail prefix not deleted: %s", prefix)
		}
	}

	var gone database.Event
	if err := db.First(&gone, event.ID).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("event still present after delete: %v", err)
	}
}

func TestDeleteEvent_OtherUserForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	event := database.Event{Title: "Milik orang lain", UserID: 2}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("seed event: %v", err)
	}

	store := &fakeArtifactStore{}
	h := NewEventHandler(db, store)

	req := httptest.NewRequest(http.MethodDelete, "/v1/events/"+strconv.Itoa(int(event.ID)), nil)
	w := httptest.NewRecorder()
	c := newAuthedContext(w, req, 1)
	c.Params = gin.Params{{Key: "id", Value: strconv.Itoa(int(event.ID))}}

	h.DeleteEvent(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d body=%s", w.Code, w.Body.String())
	}
	if len(store.deletedKeys) != 0 || len(store.deletedPrefixes) != 0 {
		t.Errorf("storage touched for a forbidden delete: %v %v", store.deletedKeys, store.deletedPrefixes)
	}
}
