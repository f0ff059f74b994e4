// Package worker consumes certificate generation tasks: it renders the
// template pages with the participant's data substituted in and stores the
// resulting PDF, then notifies the organizer over Redis pub/sub. Rendering
// happens in-process with the same engine the editor endpoints use, so the
// generated document matches the editor preview pixel for pixel.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/MR-Munggaran/belajar-sertif/internal/database"
	"github.com/MR-Munggaran/belajar-sertif/internal/errcode"
	"github.com/MR-Munggaran/belajar-sertif/internal/export"
	"github.com/MR-Munggaran/belajar-sertif/internal/storage"
	"github.com/MR-Munggaran/belajar-sertif/internal/tasks"
	"github.com/MR-Munggaran/belajar-sertif/internal/template"
)

// CertificateTaskHandler consumes certificate:generate tasks.
type CertificateTaskHandler struct {
	db          *gorm.DB
	storage     *storage.Client
	redisClient *redis.Client
	exporter    *export.Exporter
	logger      *slog.Logger
}

// NewCertificateTaskHandler wires the consumer.
func NewCertificateTaskHandler(
	db *gorm.DB,
	storage *storage.Client,
	redisClient *redis.Client,
	exporter *export.Exporter,
	logger *slog.Logger,
) *CertificateTaskHandler {
	return &CertificateTaskHandler{
		db:          db,
		storage:     storage,
		redisClient: redisClient,
		exporter:    exporter,
		logger:      logger,
	}
}

// ProcessTask implements asynq.Handler.
func (h *CertificateTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) (retErr error) {
	log := h.logger

	var payload tasks.CertificateGeneratePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		log.Error("unmarshal task payload failed", slog.Any("error", err))
		return err
	}

	log = log.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.Int("certificate_id", int(payload.CertificateID)),
	)
	log.Info("starting certificate generation task")

	var cert database.Certificate
	err := h.db.WithContext(ctx).
		Preload("Participant").
		Preload("Template").
		First(&cert, payload.CertificateID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("certificate not found, skipping task")
			return nil
		}
		log.Error("query certificate failed", slog.Any("error", err))
		return err
	}

	userID := cert.Template.UserID
	log = log.With(slog.Uint64("user_id", uint64(userID)))

	// On the final failed attempt, fail the row and tell the organizer.
	defer func() {
		if retErr == nil {
			return
		}
		if !isFinalAsynqAttempt(ctx) {
			return
		}

		reason := strings.TrimSpace(retErr.Error())
		if err := h.db.WithContext(ctx).Model(&cert).Updates(map[string]any{
			"status":      database.CertificateStatusFailed,
			"fail_reason": reason,
		}).Error; err != nil {
			log.Error("mark certificate failed", slog.Any("error", err))
		}

		notify := CertificateNotifyMessage{
			Status:        "error",
			CertificateID: cert.ID,
			ParticipantID: cert.ParticipantID,
			CorrelationID: payload.CorrelationID,
			ErrorCode:     errcode.SystemError,
			ErrorMessage:  reason,
		}
		if err := h.publishNotify(ctx, userID, notify); err != nil {
			log.Error("publish error notification failed", slog.Any("error", err))
		}
	}()

	if err := h.db.WithContext(ctx).Model(&cert).
		Update("status", database.CertificateStatusProcessing).Error; err != nil {
		log.Error("mark certificate processing failed", slog.Any("error", err))
		return err
	}

	pdfBytes, firstPage, err := h.renderCertificate(ctx, &cert)
	if err != nil {
		log.Error("render certificate failed", slog.Any("error", err))
		return err
	}

	objectName := fmt.Sprintf("generated-certificates/%d/%s.pdf", userID, cert.UUID)
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(pdfBytes), int64(len(pdfBytes)), "application/pdf"); err != nil {
		log.Error("upload pdf to minio failed", slog.Any("error", err))
		return err
	}

	if err := h.db.WithContext(ctx).Model(&cert).Updates(map[string]any{
		"pdf_key":     objectName,
		"status":      database.CertificateStatusCompleted,
		"fail_reason": "",
	}).Error; err != nil {
		log.Error("update certificate failed", slog.Any("error", err))
		return err
	}

	notify := CertificateNotifyMessage{
		Status:        "completed",
		CertificateID: cert.ID,
		ParticipantID: cert.ParticipantID,
		CorrelationID: payload.CorrelationID,
		PdfKey:        objectName,
		ErrorCode:     errcode.OK,
	}
	if err := h.publishNotify(ctx, userID, notify); err != nil {
		log.Error("publish redis notification failed", slog.Any("error", err))
		return err
	}

	if err := h.generatePreviewImage(ctx, &cert, firstPage); err != nil {
		log.Warn("generate certificate preview failed", slog.Any("error", err))
	}

	log.Info("certificate generation task completed")
	return nil
}

// renderCertificate loads the stored page list and exports the whole document
// with the participant substituted in. It returns the PDF and the first page
// for the preview capture.
func (h *CertificateTaskHandler) renderCertificate(ctx context.Context, cert *database.Certificate) ([]byte, *template.Page, error) {
	var pages []template.Page
	if err := json.Unmarshal(cert.Template.Pages, &pages); err != nil {
		return nil, nil, fmt.Errorf("unmarshal template pages: %w", err)
	}

	doc := template.New()
	doc.Load(pages)

	data := &template.ParticipantData{
		Name:              cert.Participant.Name,
		Email:             cert.Participant.Email,
		CertificateNumber: cert.Number,
		IssueDate:         cert.IssueDate,
	}

	pdfBytes, err := h.exporter.PDF(ctx, doc.Pages(), data)
	if err != nil {
		return nil, nil, fmt.Errorf("export pdf: %w", err)
	}
	return pdfBytes, doc.Pages()[0], nil
}

// generatePreviewImage stores a PNG of the first page as the list thumbnail.
// Best effort; the PDF is already persisted.
func (h *CertificateTaskHandler) generatePreviewImage(ctx context.Context, cert *database.Certificate, page *template.Page) error {
	pngBytes, err := h.exporter.PNG(ctx, page, &template.ParticipantData{
		Name:              cert.Participant.Name,
		Email:             cert.Participant.Email,
		CertificateNumber: cert.Number,
		IssueDate:         cert.IssueDate,
	})
	if err != nil {
		return fmt.Errorf("render preview: %w", err)
	}

	objectName := fmt.Sprintf("thumbnails/certificate/%d/preview.png", cert.ID)
	if _, err := h.storage.UploadFile(ctx, objectName, bytes.NewReader(pngBytes), int64(len(pngBytes)), "image/png"); err != nil {
		return fmt.Errorf("upload preview image: %w", err)
	}
	return nil
}

func (h *CertificateTaskHandler) publishNotify(ctx context.Context, userID uint, notify CertificateNotifyMessage) error {
	data, err := json.Marshal(notify)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	channel := fmt.Sprintf("user_notify:%d", userID)
	if err := h.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish redis notification to %q: %w", channel, err)
	}
	return nil
}

func isFinalAsynqAttempt(ctx context.Context) bool {
	retryCount, ok1 := asynq.GetRetryCount(ctx)
	maxRetry, ok2 := asynq.GetMaxRetry(ctx)
	if !ok1 || !ok2 {
		return false
	}
	return retryCount >= maxRetry
}
