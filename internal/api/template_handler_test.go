package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/MR-Munggaran/belajar-sertif/internal/database"
	"github.com/MR-Munggaran/belajar-sertif/internal/paper"
)

func TestCreateTemplate_NormalizesPages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	h := NewTemplateHandler(db, nil)

	// Element is missing its id, uses the legacy nested position shape and
	// carries a font size below the minimum.
	body := `{"title":"Sertifikat Webinar","pages":[{"elements":[` +
		`{"type":"field","field":"participant.name","text":"Nama Peserta","position":{"x":561,"y":300},"fontSize":3}` +
		`]}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/templates", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c := newAuthedContext(w, req, 1)

	h.CreateTemplate(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var resp templateDetailResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(resp.Pages))
	}

	page := resp.Pages[0]
	if page.ID == "" || page.PageNumber != 1 {
		t.Errorf("page not normalized: id=%q pageNumber=%d", page.ID, page.PageNumber)
	}
	if page.PaperSize != paper.SizeA4 || page.Orientation != paper.Landscape {
		t.Errorf("paper defaults not applied: %s/%s", page.PaperSize, page.Orientation)
	}
	if len(page.Elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(page.Elements))
	}

	el := page.Elements[0]
	if el.ID == "" {
		t.Error("element id not filled")
	}
	if el.X != 561 || el.Y != 300 || el.Position != nil {
		t.Errorf("legacy position not collapsed: x=%v y=%v position=%v", el.X, el.Y, el.Position)
	}
	if el.FontSize != 8 {
		t.Errorf("font size = %v, want clamp to 8", el.FontSize)
	}
	if el.FontFamily != "Arial" || el.Color != "#000000" {
		t.Errorf("style defaults not applied: %q %q", el.FontFamily, el.Color)
	}

	var stored database.CertificateTemplate
	if err := db.First(&stored, resp.ID).Error; err != nil {
		t.Fatalf("load stored template: %v", err)
	}
	if stored.UserID != 1 {
		t.Errorf("stored owner = %d, want 1", stored.UserID)
	}
}

func TestGetTemplate_RepairsStoredPages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	h := NewTemplateHandler(db, nil)

	// A row written before the normalization rules: no page ids, stale page
	// numbers.
	raw := `[{"pageNumber":7,"elements":[{"type":"static","text":"Halo","x":100,"y":100,"fontSize":40}]},{"elements":[]}]`
	model := database.CertificateTemplate{Title: "Lama", Pages: datatypes.JSON(raw), UserID: 1}
	if err := db.Create(&model).Error; err != nil {
		t.Fatalf("seed template: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/templates/"+strconv.Itoa(int(model.ID)), nil)
	w := httptest.NewRecorder()
	c := newAuthedContext(w, req, 1)
	c.Params = gin.Params{{Key: "id", Value: strconv.Itoa(int(model.ID))}}

	h.GetTemplate(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp templateDetailResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(resp.Pages))
	}
	for i, page := range resp.Pages {
		if page.PageNumber != i+1 {
			t.Errorf("page %d has number %d", i, page.PageNumber)
		}
		if page.ID == "" {
			t.Errorf("page %d missing id", i)
		}
	}
}

func TestListTemplates_CorruptRowStillLists(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	h := NewTemplateHandler(db, nil)

	good := database.CertificateTemplate{Title: "Utuh", Pages: datatypes.JSON(`[{"elements":[]}]`), UserID: 1}
	if err := db.Create(&good).Error; err != nil {
		t.Fatalf("seed template: %v", err)
	}
	corrupt := database.CertificateTemplate{Title: "Rusak", Pages: datatypes.JSON(`{not json`), UserID: 1}
	if err := db.Create(&corrupt).Error; err != nil {
		t.Fatalf("seed template: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/templates", nil)
	w := httptest.NewRecorder()
	c := newAuthedContext(w, req, 1)

	h.ListTemplates(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var items []templateListItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(items))
	}
	counts := map[uint]int{}
	for _, item := range items {
		counts[item.ID] = item.PageCount
	}
	if counts[good.ID] != 1 {
		t.Errorf("page count for intact row = %d, want 1", counts[good.ID])
	}
	if counts[corrupt.ID] != 0 {
		t.Errorf("page count for corrupt row = %d, want 0", counts[corrupt.ID])
	}
}

func TestGetTemplate_ForbiddenForOtherUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	h := NewTemplateHandler(db, nil)

	model := database.CertificateTemplate{Title: "Milik orang lain", Pages: datatypes.JSON(`[]`), UserID: 2}
	if err := db.Create(&model).Error; err != nil {
		t.Fatalf("seed template: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/templates/"+strconv.Itoa(int(model.ID)), nil)
	w := httptest.NewRecorder()
	c := newAuthedContext(w, req, 1)
	c.Params = gin.Params{{Key: "id", Value: strconv.Itoa(int(model.ID))}}

	h.GetTemplate(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d body=%s", w.Code, w.Body.String())
	}
}
