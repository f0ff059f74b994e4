package worker

// CertificateNotifyMessage is the WebSocket payload forwarded to the
// organizer's browser via Redis pub/sub when a generation task settles. Field
// names are part of the frontend contract.
type CertificateNotifyMessage struct {
	Status        string `json:"status"`
	CertificateID uint   `json:"certificate_id"`
	ParticipantID uint   `json:"participant_id"`
	CorrelationID string `json:"correlation_id"`
	PdfKey        string `json:"pdf_key,omitempty"`
	ErrorCode     int    `json:"error_code"`
	ErrorMessage  string `json:"error_message"`
}
