package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MR-Munggaran/belajar-sertif/internal/api/middleware"
	"github.com/MR-Munggaran/belajar-sertif/internal/database"
	"github.com/MR-Munggaran/belajar-sertif/internal/export"
	"github.com/MR-Munggaran/belajar-sertif/internal/template"
)

// TemplateHandler stores and serves the page documents the canvas editor
// edits. Pages are normalized through the editor model on every write, so
// whatever a client sends comes back as a well-formed document (ids filled,
// legacy position shapes collapsed, paper defaults applied).
type TemplateHandler struct {
	db       *gorm.DB
	exporter *export.Exporter
}

func NewTemplateHandler(db *gorm.DB, exporter *export.Exporter) *TemplateHandler {
	return &TemplateHandler{db: db, exporter: exporter}
}

type saveTemplateRequest struct {
	Title string          `json:"title" binding:"required,max=255"`
	Pages []template.Page `json:"pages" binding:"required"`
}

type templateListItem struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	PageCount int    `json:"page_count"`
}

type templateDetailResponse struct {
	ID    uint            `json:"id"`
	Title string          `json:"title"`
	Pages []template.Page `json:"pages"`
}

// normalizePages runs the raw page list through the document model and
// returns the canonical JSONB value.
func normalizePages(pages []template.Page) (datatypes.JSON, []template.Page, error) {
	doc := template.New()
	doc.Load(pages)
	normalized := doc.Snapshot()
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, nil, err
	}
	return datatypes.JSON(raw), normalized, nil
}

// POST /v1/templates
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req saveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	raw, normalized, err := normalizePages(req.Pages)
	if err != nil {
		middleware.LoggerFromContext(c).Error("normalize pages failed", slog.Any("error", err))
		Internal(c, "failed to store template")
		return
	}

	model := database.CertificateTemplate{
		Title:  req.Title,
		Pages:  raw,
		UserID: userID,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&model).Error; err != nil {
		Internal(c, "failed to create template")
		return
	}
	c.JSON(http.StatusCreated, templateDetailResponse{
		ID:    model.ID,
		Title: model.Title,
		Pages: normalized,
	})
}

// PUT /v1/templates/:id
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	model, ok := h.ownedTemplate(c)
	if !ok {
		return
	}

	var req saveTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	raw, normalized, err := normalizePages(req.Pages)
	if err != nil {
		Internal(c, "failed to store template")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(model).Updates(map[string]any{
		"title": req.Title,
		"pages": raw,
	}).Error; err != nil {
		Internal(c, "failed to update template")
		return
	}
	c.JSON(http.StatusOK, templateDetailResponse{
		ID:    model.ID,
		Title: req.Title,
		Pages: normalized,
	})
}

// GET /v1/templates
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var templates []database.CertificateTemplate
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&templates).Error; err != nil {
		Internal(c, "failed to list templates")
		return
	}

	items := make([]templateListItem, 0, len(templates))
	for _, t := range templates {
		var pages []template.Page
		if err := json.Unmarshal(t.Pages, &pages); err != nil {
			// The row still lists, with a zero page count.
			middleware.LoggerFromContext(c).Error("decode template pages failed",
				slog.Uint64("template_id", uint64(t.ID)),
				slog.Any("error", err),
			)
		}
		items = append(items, templateListItem{
			ID:        t.ID,
			Title:     t.Title,
			PageCount: len(pages),
		})
	}
	c.JSON(http.StatusOK, items)
}

// GET /v1/templates/:id
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	model, ok := h.ownedTemplate(c)
	if !ok {
		return
	}

	var pages []template.Page
	if err := json.Unmarshal(model.Pages, &pages); err != nil {
		middleware.LoggerFromContext(c).Error("decode template pages failed",
			slog.Uint64("template_id", uint64(model.ID)),
			slog.Any("error", err),
		)
		Internal(c, "failed to decode template")
		return
	}

	// Stored rows may predate the current normalization rules; repair on the
	// way out too.
	doc := template.New()
	doc.Load(pages)

	c.JSON(http.StatusOK, templateDetailResponse{
		ID:    model.ID,
		Title: model.Title,
		Pages: doc.Snapshot(),
	})
}

// DELETE /v1/templates/:id
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	model, ok := h.ownedTemplate(c)
	if !ok {
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(model).Error; err != nil {
		Internal(c, "failed to delete template")
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /v1/templates/:id/preview
// Renders the requested page (default 1) in authoring mode — placeholder
// labels, no selection decoration — exactly as the export will look.
func (h *TemplateHandler) PreviewTemplate(c *gin.Context) {
	model, ok := h.ownedTemplate(c)
	if !ok {
		return
	}

	pageNumber, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || pageNumber < 1 {
		BadRequest(c, "invalid page number")
		return
	}

	var pages []template.Page
	if err := json.Unmarshal(model.Pages, &pages); err != nil {
		Internal(c, "failed to decode template")
		return
	}
	doc := template.New()
	doc.Load(pages)
	if pageNumber > doc.PageCount() {
		NotFound(c, "page not found")
		return
	}

	pngBytes, err := h.exporter.PNG(c.Request.Context(), doc.Pages()[pageNumber-1], nil)
	if err != nil {
		middleware.LoggerFromContext(c).Error("render template preview failed",
			slog.Uint64("template_id", uint64(model.ID)),
			slog.Any("error", err),
		)
		Internal(c, "failed to render preview")
		return
	}
	c.Data(http.StatusOK, "image/png", pngBytes)
}

func (h *TemplateHandler) ownedTemplate(c *gin.Context) (*database.CertificateTemplate, bool) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return nil, false
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid template id")
		return nil, false
	}

	var model database.CertificateTemplate
	if err := h.db.WithContext(c.Request.Context()).First(&model, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "template not found")
		} else {
			Internal(c, "failed to query template")
		}
		return nil, false
	}
	if model.UserID != userID {
		Forbidden(c, "access denied")
		return nil, false
	}
	return &model, true
}
