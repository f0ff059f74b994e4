package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is an organizer account that owns events and templates.
type User struct {
	gorm.Model
	Username     string  `gorm:"uniqueIndex;size:64"`
	PasswordHash string  `gorm:"size:255"`
	Events       []Event `gorm:"constraint:OnDelete:CASCADE"`
}

// Event is a training or course whose participants receive certificates.
type Event struct {
	gorm.Model
	Title        string `gorm:"size:255"`
	Description  string `gorm:"size:1024"`
	Mentor       string `gorm:"size:255"`
	EventDate    string `gorm:"size:64"` // display date of the event, free-form
	UserID       uint   `gorm:"index"`
	User         User   `gorm:"constraint:OnDelete:CASCADE"`
	TemplateID   *uint  `gorm:"index"` // active certificate template, optional
	Participants []Participant
}

// Participant is one certificate recipient within an event.
type Participant struct {
	gorm.Model
	Name    string `gorm:"size:255"`
	Email   string `gorm:"size:255;index"`
	EventID uint   `gorm:"index"`
	Event   Event  `gorm:"constraint:OnDelete:CASCADE"`
}

// CertificateTemplate stores the page list the canvas editor produces. Pages
// is the JSONB array of pages with their elements, paper size and
// orientation; it round-trips unchanged through the editor model.
type CertificateTemplate struct {
	gorm.Model
	Title  string         `gorm:"size:255"`
	Pages  datatypes.JSON `gorm:"type:jsonb"`
	UserID uint           `gorm:"index"`
	User   User           `gorm:"constraint:OnDelete:CASCADE"`
}

// Certificate generation lifecycle.
const (
	CertificateStatusPending    = "pending"
	CertificateStatusProcessing = "processing"
	CertificateStatusCompleted  = "completed"
	CertificateStatusFailed     = "failed"
)

// Certificate is one issued (or issuing) certificate: a participant rendered
// through a template. Number is the human-facing certificate number printed
// on the document; PdfKey is the object-storage key of the generated PDF.
type Certificate struct {
	gorm.Model
	UUID          string              `gorm:"uniqueIndex;size:36"`
	Number        string              `gorm:"size:64"`
	ParticipantID uint                `gorm:"index"`
	Participant   Participant         `gorm:"constraint:OnDelete:CASCADE"`
	TemplateID    uint                `gorm:"index"`
	Template      CertificateTemplate `gorm:"constraint:OnDelete:CASCADE"`
	IssueDate     string              `gorm:"size:64"` // formatted Indonesian date
	PdfKey        string              `gorm:"size:512"`
	Status        string              `gorm:"size:32"`
	FailReason    string              `gorm:"size:512"`
}
