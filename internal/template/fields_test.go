package template

import (
	"testing"
	"time"
)

func TestResolveStaticReturnsTextUnchanged(t *testing.T) {
	el := NewSignatoryText(0, 0)
	got := Resolve(&el, &ParticipantData{Name: "Budi Santoso"})
	if got != "Nama Mentor" {
		t.Errorf("Resolve = %q, want %q", got, "Nama Mentor")
	}
}

func TestResolveParticipantName(t *testing.T) {
	el := NewNameField(0, 0)
	got := Resolve(&el, &ParticipantData{Name: "Budi Santoso"})
	if got != "Budi Santoso" {
		t.Errorf("Resolve = %q, want %q", got, "Budi Santoso")
	}
}

func TestResolveAuthoringModeShowsPlaceholder(t *testing.T) {
	el := NewNameField(0, 0)
	if got := Resolve(&el, nil); got != "Nama Peserta" {
		t.Errorf("Resolve = %q, want placeholder %q", got, "Nama Peserta")
	}
}

func TestResolveEmailAbsentIsEmpty(t *testing.T) {
	el := newElement(KindField, FieldParticipantEmail, "Email", 0, 0, 40)
	if got := Resolve(&el, &ParticipantData{Name: "X"}); got != "" {
		t.Errorf("Resolve = %q, want empty", got)
	}
}

func TestResolveNumberFallback(t *testing.T) {
	el := NewNumberField(0, 0)
	if got := Resolve(&el, &ParticipantData{Name: "X"}); got != "NO. 000" {
		t.Errorf("Resolve = %q, want NO. 000", got)
	}
	if got := Resolve(&el, &ParticipantData{CertificateNumber: "NO. ABCD1234"}); got != "NO. ABCD1234" {
		t.Errorf("Resolve = %q", got)
	}
}

func TestResolveDateFallsBackToToday(t *testing.T) {
	el := NewDateField(0, 0)
	want := FormatIssueDate(time.Now())
	if got := Resolve(&el, &ParticipantData{Name: "X"}); got != want {
		t.Errorf("Resolve = %q, want %q", got, want)
	}
}

func TestResolveDoesNotMutateElement(t *testing.T) {
	el := NewNameField(0, 0)
	before := el
	_ = Resolve(&el, &ParticipantData{Name: "Siti Aminah"})
	if el != before {
		t.Errorf("Resolve mutated element: %+v", el)
	}
}

func TestFormatIssueDate(t *testing.T) {
	d := time.Date(2026, time.August, 17, 0, 0, 0, 0, time.UTC)
	if got := FormatIssueDate(d); got != "17 Agustus 2026" {
		t.Errorf("FormatIssueDate = %q, want %q", got, "17 Agustus 2026")
	}
}
