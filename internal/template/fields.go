package template

import (
	"fmt"
	"time"
)

// ParticipantData is the field-resolution input supplied per rendering pass by
// the participant/event subsystem. It is never stored on the template.
type ParticipantData struct {
	Name              string
	Email             string
	CertificateNumber string
	IssueDate         string
}

// fallbackNumber is shown when a field element asks for a certificate number
// that the data record does not carry.
const fallbackNumber = "NO. 000"

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatIssueDate renders a date the way certificates print it,
// e.g. "17 Agustus 2026".
func FormatIssueDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), indonesianMonths[t.Month()-1], t.Year())
}

// Resolve maps an element to its display string. Static elements return their
// text unchanged. Field elements substitute from data; a nil data record means
// authoring mode and the placeholder label is shown as-is. Resolve never
// mutates the element.
func Resolve(el *Element, data *ParticipantData) string {
	if el.Kind != KindField || data == nil {
		return el.Text
	}
	switch el.Field {
	case FieldParticipantName:
		return data.Name
	case FieldParticipantEmail:
		return data.Email
	case FieldCertificateNumber:
		if data.CertificateNumber == "" {
			return fallbackNumber
		}
		return data.CertificateNumber
	case FieldCertificateDate:
		if data.IssueDate == "" {
			return FormatIssueDate(time.Now())
		}
		return data.IssueDate
	default:
		// Unknown reference: keep the authored placeholder visible rather
		// than rendering an empty hole.
		return el.Text
	}
}
