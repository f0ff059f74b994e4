package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/MR-Munggaran/belajar-sertif/internal/api/middleware"
	"github.com/MR-Munggaran/belajar-sertif/internal/database"
	"github.com/MR-Munggaran/belajar-sertif/internal/storage"
	"github.com/MR-Munggaran/belajar-sertif/internal/tasks"
	"github.com/MR-Munggaran/belajar-sertif/internal/template"
)

// CertificateHandler issues certificates and serves their status/downloads.
// Issuing creates a pending row and enqueues a generation task; the worker
// renders and stores the PDF.
type CertificateHandler struct {
	db          *gorm.DB
	asynqClient *asynq.Client
	storage     *storage.Client
}

func NewCertificateHandler(db *gorm.DB, asynqClient *asynq.Client, storageClient *storage.Client) *CertificateHandler {
	return &CertificateHandler{db: db, asynqClient: asynqClient, storage: storageClient}
}

type issueCertificateRequest struct {
	ParticipantID uint `json:"participant_id" binding:"required"`
	TemplateID    uint `json:"template_id" binding:"required"`
}

type certificateResponse struct {
	ID            uint   `json:"id"`
	UUID          string `json:"uuid"`
	Number        string `json:"number"`
	ParticipantID uint   `json:"participant_id"`
	TemplateID    uint   `json:"template_id"`
	IssueDate     string `json:"issue_date"`
	Status        string `json:"status"`
	FailReason    string `json:"fail_reason,omitempty"`
}

func toCertificateResponse(cert *database.Certificate) certificateResponse {
	return certificateResponse{
		ID:            cert.ID,
		UUID:          cert.UUID,
		Number:        cert.Number,
		ParticipantID: cert.ParticipantID,
		TemplateID:    cert.TemplateID,
		IssueDate:     cert.IssueDate,
		Status:        cert.Status,
		FailReason:    cert.FailReason,
	}
}

// newCertificateRow builds a pending certificate with its number and issue
// date fixed at issue time: the number derives from the certificate's UUID so
// it is stable across retries, the date is the day of issue in Indonesian
// format.
func newCertificateRow(participantID, templateID uint) database.Certificate {
	id := uuid.NewString()
	return database.Certificate{
		UUID:          id,
		Number:        "NO. " + strings.ToUpper(id[:8]),
		ParticipantID: participantID,
		TemplateID:    templateID,
		IssueDate:     template.FormatIssueDate(time.Now()),
		Status:        database.CertificateStatusPending,
	}
}

// POST /v1/certificates
func (h *CertificateHandler) IssueCertificate(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req issueCertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	participant, tpl, ok := h.loadIssueTargets(c, userID, req.ParticipantID, req.TemplateID)
	if !ok {
		return
	}

	cert := newCertificateRow(participant.ID, tpl.ID)
	if err := h.db.WithContext(ctx).Create(&cert).Error; err != nil {
		logger.Error("create certificate failed", slog.Any("error", err))
		Internal(c, "failed to create certificate")
		return
	}

	if err := h.enqueueGeneration(c, cert.ID); err != nil {
		logger.Error("enqueue certificate task failed",
			slog.Uint64("certificate_id", uint64(cert.ID)),
			slog.Any("error", err),
		)
		Internal(c, "failed to enqueue generation")
		return
	}

	c.JSON(http.StatusAccepted, toCertificateResponse(&cert))
}

type bulkIssueRequest struct {
	EventID    uint `json:"event_id" binding:"required"`
	TemplateID uint `json:"template_id" binding:"required"`
}

// POST /v1/certificates/bulk
// Issues one certificate per participant of the event.
func (h *CertificateHandler) BulkIssue(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return
	}

	var req bulkIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	logger := middleware.LoggerFromContext(c)

	var event database.Event
	if err := h.db.WithContext(ctx).First(&event, req.EventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "event not found")
		} else {
			Internal(c, "failed to query event")
		}
		return
	}
	if event.UserID != userID {
		Forbidden(c, "access denied")
		return
	}

	var tpl database.CertificateTemplate
	if err := h.db.WithContext(ctx).First(&tpl, req.TemplateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "template not found")
		} else {
			Internal(c, "failed to query template")
		}
		return
	}
	if tpl.UserID != userID {
		Forbidden(c, "access denied")
		return
	}

	var participants []database.Participant
	if err := h.db.WithContext(ctx).Where("event_id = ?", event.ID).Find(&participants).Error; err != nil {
		Internal(c, "failed to list participants")
		return
	}
	if len(participants) == 0 {
		BadRequest(c, "event has no participants")
		return
	}

	issued := make([]certificateResponse, 0, len(participants))
	for _, p := range participants {
		cert := newCertificateRow(p.ID, tpl.ID)
		if err := h.db.WithContext(ctx).Create(&cert).Error; err != nil {
			logger.Error("create certificate failed",
				slog.Uint64("participant_id", uint64(p.ID)),
				slog.Any("error", err),
			)
			continue
		}
		if err := h.enqueueGeneration(c, cert.ID); err != nil {
			logger.Error("enqueue certificate task failed",
				slog.Uint64("certificate_id", uint64(cert.ID)),
				slog.Any("error", err),
			)
			continue
		}
		issued = append(issued, toCertificateResponse(&cert))
	}

	c.JSON(http.StatusAccepted, gin.H{
		"issued":       issued,
		"issued_count": len(issued),
		"total":        len(participants),
	})
}

type certificateDetailResponse struct {
	certificateResponse
	Participant   participantResponse `json:"participant"`
	TemplateTitle string              `json:"template_title"`
	Pages         []template.Page     `json:"pages"`
}

// GET /v1/certificates/:id
// Returns the certificate with its participant and the normalized template
// pages, enough for a client to render the document.
func (h *CertificateHandler) GetCertificate(c *gin.Context) {
	cert, ok := h.ownedCertificate(c)
	if !ok {
		return
	}

	var pages []template.Page
	if err := json.Unmarshal(cert.Template.Pages, &pages); err != nil {
		middleware.LoggerFromContext(c).Error("decode template pages failed",
			slog.Uint64("certificate_id", uint64(cert.ID)),
			slog.Any("error", err),
		)
		Internal(c, "failed to decode template")
		return
	}
	doc := template.New()
	doc.Load(pages)

	c.JSON(http.StatusOK, certificateDetailResponse{
		certificateResponse: toCertificateResponse(cert),
		Participant: participantResponse{
			ID:    cert.Participant.ID,
			Name:  cert.Participant.Name,
			Email: cert.Participant.Email,
		},
		TemplateTitle: cert.Template.Title,
		Pages:         doc.Snapshot(),
	})
}

// GET /v1/certificates/:id/download-link
// Returns a presigned URL for the generated PDF with a friendly filename.
func (h *CertificateHandler) GetDownloadLink(c *gin.Context) {
	cert, ok := h.ownedCertificate(c)
	if !ok {
		return
	}

	if cert.Status != database.CertificateStatusCompleted || cert.PdfKey == "" {
		Conflict(c, "certificate not generated yet")
		return
	}

	filename := "sertifikat-" + strings.ToLower(cert.UUID[:8]) + ".pdf"
	url, err := h.storage.GeneratePresignedURLWithParams(c.Request.Context(), cert.PdfKey, 15*time.Minute, map[string]string{
		"response-content-disposition": `attachment; filename="` + filename + `"`,
	})
	if err != nil {
		middleware.LoggerFromContext(c).Error("generate download link failed",
			slog.Uint64("certificate_id", uint64(cert.ID)),
			slog.Any("error", err),
		)
		Internal(c, "failed to generate download link")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "filename": filename})
}

func (h *CertificateHandler) enqueueGeneration(c *gin.Context, certificateID uint) error {
	task, err := tasks.NewCertificateGenerateTask(certificateID, middleware.GetCorrelationID(c))
	if err != nil {
		return err
	}
	_, err = h.asynqClient.EnqueueContext(c.Request.Context(), task, asynq.MaxRetry(3))
	return err
}

// loadIssueTargets loads the participant and template and checks the caller
// owns both (participant ownership via its event).
func (h *CertificateHandler) loadIssueTargets(c *gin.Context, userID, participantID, templateID uint) (*database.Participant, *database.CertificateTemplate, bool) {
	ctx := c.Request.Context()

	var participant database.Participant
	if err := h.db.WithContext(ctx).Preload("Event").First(&participant, participantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "participant not found")
		} else {
			Internal(c, "failed to query participant")
		}
		return nil, nil, false
	}
	if participant.Event.UserID != userID {
		Forbidden(c, "access denied")
		return nil, nil, false
	}

	var tpl database.CertificateTemplate
	if err := h.db.WithContext(ctx).First(&tpl, templateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "template not found")
		} else {
			Internal(c, "failed to query template")
		}
		return nil, nil, false
	}
	if tpl.UserID != userID {
		Forbidden(c, "access denied")
		return nil, nil, false
	}

	return &participant, &tpl, true
}

func (h *CertificateHandler) ownedCertificate(c *gin.Context) (*database.Certificate, bool) {
	userID, ok := userIDFromContext(c)
	if !ok {
		AbortUnauthorized(c)
		return nil, false
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid certificate id")
		return nil, false
	}

	var cert database.Certificate
	if err := h.db.WithContext(c.Request.Context()).Preload("Template").Preload("Participant").First(&cert, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "certificate not found")
		} else {
			Internal(c, "failed to query certificate")
		}
		return nil, false
	}
	if cert.Template.UserID != userID {
		Forbidden(c, "access denied")
		return nil, false
	}
	return &cert, true
}
