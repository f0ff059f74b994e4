package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names, shared by the queue producer (API) and consumer (worker).
const (
	TypeCertificateGenerate = "certificate:generate"
)

// CertificateGeneratePayload carries the minimum the worker needs to render
// one certificate.
type CertificateGeneratePayload struct {
	CertificateID uint   `json:"certificate_id"`
	CorrelationID string `json:"correlation_id"`
}

// NewCertificateGenerateTask builds a generation task for one certificate row.
func NewCertificateGenerateTask(certificateID uint, correlationID string) (*asynq.Task, error) {
	payload, err := json.Marshal(CertificateGeneratePayload{
		CertificateID: certificateID,
		CorrelationID: correlationID,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCertificateGenerate, payload), nil
}
