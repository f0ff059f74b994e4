package api

import (
	"strings"
	"testing"

	"github.com/MR-Munggaran/belajar-sertif/internal/database"
)

func TestNewCertificateRow(t *testing.T) {
	cert := newCertificateRow(7, 3)

	if cert.ParticipantID != 7 || cert.TemplateID != 3 {
		t.Errorf("ids = %d/%d, want 7/3", cert.ParticipantID, cert.TemplateID)
	}
	if cert.Status != database.CertificateStatusPending {
		t.Errorf("status = %q, want pending", cert.Status)
	}
	if len(cert.UUID) != 36 {
		t.Errorf("uuid = %q", cert.UUID)
	}
	if cert.Number != "NO. "+strings.ToUpper(cert.UUID[:8]) {
		t.Errorf("number %q does not derive from uuid %q", cert.Number, cert.UUID)
	}
	if cert.IssueDate == "" {
		t.Error("issue date not set")
	}
}

func TestNewCertificateRow_UniqueNumbers(t *testing.T) {
	a := newCertificateRow(1, 1)
	b := newCertificateRow(1, 1)
	if a.UUID == b.UUID || a.Number == b.Number {
		t.Errorf("two issues collided: %q vs %q", a.Number, b.Number)
	}
}

func TestIsValidUserAssetObjectKey(t *testing.T) {
	cases := []struct {
		key string
		ok  bool
	}{
		{"user-assets/1/logo.png", true},
		{"user-assets/1/Foto.JPG", true},
		{"user-assets/1/bg.webp", true},
		{"", false},
		{"user-assets/2/logo.png", false},
		{"user-assets/1/../2/logo.png", false},
		{"user-assets/1//logo.png", false},
		{"user-assets/1/script.exe", false},
		{"other-prefix/1/logo.png", false},
	}
	for _, tc := range cases {
		if got := isValidUserAssetObjectKey(1, tc.key); got != tc.ok {
			t.Errorf("isValidUserAssetObjectKey(1, %q) = %v, want %v", tc.key, got, tc.ok)
		}
	}
}
