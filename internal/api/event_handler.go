package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MR-Munggaran/belajar-sertif/internal/api/middleware"
	"github.com/MR-Munggaran/belajar-sertif/internal/database"
)

// eventArtifactStore is the slice of the object store event deletion needs.
type eventArtifactStore interface {
	DeleteObject(ctx context.Context, objectKey string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// EventHandler serves the event CRUD endpoints.
type EventHandler struct {
	db      *gorm.DB
	storage eventArtifactStore
}

func NewEventHandler(db *gorm.DB, storageClient eventArtifactStore) *EventHandler {
	return &EventHandler{db: db, storage: storageClient}
}

type eventRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description" binding:"max=1024"`
	Mentor      string `json:"mentor" binding:"max=255"`
	Date        string `json:"date" binding:"max=64"`
	TemplateID  *uint  `json:"template_id"`
}

type eventResponse struct {
	ID               uint   `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description,omitempty"`
	Mentor           string `json:"mentor,omitempty"`
	Date             string `json:"date,omitempty"`
	TemplateID       *uint  `json:"template_id,omitempty"`
	ParticipantCount int    `json:"participant_count"`
}

// POST /v1/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	if req.TemplateID != nil {
		if err := h.ensureTemplateOwned(c, userID, *req.TemplateID); err != nil {
			return
		}
	}

	event := database.Event{
		Title:       req.Title,
		Description: req.Description,
		Mentor:      req.Mentor,
		EventDate:   req.Date,
		UserID:      userID,
		TemplateID:  req.TemplateID,
	}
	if err := h.db.WithContext(ctx).Create(&event).Error; err != nil {
		middleware.LoggerFromContext(c).Error("create event failed", slog.Any("error", err))
		Internal(c, "failed to create event")
		return
	}

	c.JSON(http.StatusCreated, eventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Mentor:      event.Mentor,
		Date:        event.EventDate,
		TemplateID:  event.TemplateID,
	})
}

// GET /v1/events
func (h *EventHandler) ListEvents(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var events []database.Event
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&events).Error; err != nil {
		Internal(c, "failed to list events")
		return
	}

	items := make([]eventResponse, 0, len(events))
	for _, e := range events {
		var count int64
		h.db.WithContext(c.Request.Context()).
			Model(&database.Participant{}).
			Where("event_id = ?", e.ID).
			Count(&count)
		items = append(items, eventResponse{
			ID:               e.ID,
			Title:            e.Title,
			Description:      e.Description,
			Mentor:           e.Mentor,
			Date:             e.EventDate,
			TemplateID:       e.TemplateID,
			ParticipantCount: int(count),
		})
	}
	c.JSON(http.StatusOK, items)
}

// GET /v1/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, ok := h.ownedEvent(c)
	if !ok {
		return
	}

	var count int64
	h.db.WithContext(c.Request.Context()).
		Model(&database.Participant{}).
		Where("event_id = ?", event.ID).
		Count(&count)

	c.JSON(http.StatusOK, eventResponse{
		ID:               event.ID,
		Title:            event.Title,
		Description:      event.Description,
		Mentor:           event.Mentor,
		Date:             event.EventDate,
		TemplateID:       event.TemplateID,
		ParticipantCount: int(count),
	})
}

// PUT /v1/events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	event, ok := h.ownedEvent(c)
	if !ok {
		return
	}

	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if req.TemplateID != nil {
		if err := h.ensureTemplateOwned(c, event.UserID, *req.TemplateID); err != nil {
			return
		}
	}

	updates := map[string]any{
		"title":       req.Title,
		"description": req.Description,
		"mentor":      req.Mentor,
		"event_date":  req.Date,
		"template_id": req.TemplateID,
	}
	if err := h.db.WithContext(c.Request.Context()).Model(event).Updates(updates).Error; err != nil {
		Internal(c, "failed to update event")
		return
	}
	c.Status(http.StatusOK)
}

// DELETE /v1/events/:id
// Participants and their certificates cascade; generated PDFs and thumbnails
// of the event's certificates are removed from storage best effort.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	event, ok := h.ownedEvent(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	// Generated artifacts are keyed by certificate, not by event; collect them
	// before the cascade removes the rows.
	var certs []database.Certificate
	if err := h.db.WithContext(ctx).
		Joins("JOIN participants ON participants.id = certificates.participant_id").
		Where("participants.event_id = ?", event.ID).
		Find(&certs).Error; err != nil {
		Internal(c, "failed to list event certificates")
		return
	}

	if err := h.db.WithContext(ctx).Select("Participants").Delete(event).Error; err != nil {
		Internal(c, "failed to delete event")
		return
	}

	if h.storage != nil {
		logger := middleware.LoggerFromContext(c)
		for _, cert := range certs {
			if cert.PdfKey != "" {
				if err := h.storage.DeleteObject(ctx, cert.PdfKey); err != nil {
					logger.Warn("delete certificate pdf failed",
						slog.String("key", cert.PdfKey),
						slog.Any("error", err),
					)
				}
			}
			prefix := fmt.Sprintf("thumbnails/certificate/%d/", cert.ID)
			if err := h.storage.DeletePrefix(ctx, prefix); err != nil {
				logger.Warn("delete certificate thumbnail failed",
					slog.String("prefix", prefix),
					slog.Any("error", err),
				)
			}
		}
	}
	c.Status(http.StatusNoContent)
}

// ownedEvent loads the :id event and enforces ownership, writing the error
// response itself on failure.
func (h *EventHandler) ownedEvent(c *gin.Context) (*database.Event, bool) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return nil, false
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid event id")
		return nil, false
	}

	var event database.Event
	if err := h.db.WithContext(c.Request.Context()).First(&event, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "event not found")
		} else {
			Internal(c, "failed to query event")
		}
		return nil, false
	}
	if event.UserID != userID {
		Forbidden(c, "access denied")
		return nil, false
	}
	return &event, true
}

func (h *EventHandler) ensureTemplateOwned(c *gin.Context, userID, templateID uint) error {
	var tpl database.CertificateTemplate
	if err := h.db.WithContext(c.Request.Context()).First(&tpl, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			BadRequest(c, "template not found")
		} else {
			Internal(c, "failed to query template")
		}
		return err
	}
	if tpl.UserID != userID {
		Forbidden(c, "access denied")
		return errors.New("template not owned")
	}
	return nil
}
