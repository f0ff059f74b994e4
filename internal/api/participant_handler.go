package api

import (
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/MR-Munggaran/belajar-sertif/internal/api/middleware"
	"github.com/MR-Munggaran/belajar-sertif/internal/database"
)

// ParticipantHandler manages an event's recipient list.
type ParticipantHandler struct {
	db *gorm.DB
}

func NewParticipantHandler(db *gorm.DB) *ParticipantHandler {
	return &ParticipantHandler{db: db}
}

type participantRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"omitempty,email,max=255"`
}

type participantResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// POST /v1/events/:id/participants
func (h *ParticipantHandler) AddParticipant(c *gin.Context) {
	event, ok := h.ownedEvent(c)
	if !ok {
		return
	}

	var req participantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	p := database.Participant{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		EventID: event.ID,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&p).Error; err != nil {
		Internal(c, "failed to create participant")
		return
	}
	c.JSON(http.StatusCreated, participantResponse{ID: p.ID, Name: p.Name, Email: p.Email})
}

// GET /v1/events/:id/participants
func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	event, ok := h.ownedEvent(c)
	if !ok {
		return
	}

	var participants []database.Participant
	if err := h.db.WithContext(c.Request.Context()).
		Where("event_id = ?", event.ID).
		Order("name ASC").
		Find(&participants).Error; err != nil {
		Internal(c, "failed to list participants")
		return
	}

	items := make([]participantResponse, 0, len(participants))
	for _, p := range participants {
		items = append(items, participantResponse{ID: p.ID, Name: p.Name, Email: p.Email})
	}
	c.JSON(http.StatusOK, items)
}

// DELETE /v1/events/:id/participants/:participantID
func (h *ParticipantHandler) RemoveParticipant(c *gin.Context) {
	event, ok := h.ownedEvent(c)
	if !ok {
		return
	}

	pid, err := strconv.ParseUint(c.Param("participantID"), 10, 64)
	if err != nil || pid == 0 {
		BadRequest(c, "invalid participant id")
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND event_id = ?", uint(pid), event.ID).
		Delete(&database.Participant{})
	if result.Error != nil {
		Internal(c, "failed to delete participant")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "participant not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /v1/events/:id/participants/import
// Imports a CSV recipient list. Expected columns: name[,email]; a header row
// with "name" in the first column is skipped. Blank names are skipped and
// reported, not fatal.
func (h *ParticipantHandler) ImportParticipants(c *gin.Context) {
	event, ok := h.ownedEvent(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer reader.Close()

	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1 // rows may or may not carry an email column
	cr.TrimLeadingSpace = true

	var batch []database.Participant
	skipped := 0
	row := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			BadRequest(c, "invalid csv: "+err.Error())
			return
		}
		row++

		if len(record) == 0 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if row == 1 && strings.EqualFold(name, "name") {
			continue // header row
		}
		if name == "" {
			skipped++
			continue
		}
		email := ""
		if len(record) > 1 {
			email = strings.TrimSpace(record[1])
		}
		batch = append(batch, database.Participant{
			Name:    name,
			Email:   email,
			EventID: event.ID,
		})
	}

	if len(batch) > 0 {
		if err := h.db.WithContext(c.Request.Context()).CreateInBatches(batch, 100).Error; err != nil {
			middleware.LoggerFromContext(c).Error("import participants failed", slog.Any("error", err))
			Internal(c, "failed to import participants")
			return
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"imported": len(batch),
		"skipped":  skipped,
	})
}

func (h *ParticipantHandler) ownedEvent(c *gin.Context) (*database.Event, bool) {
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
