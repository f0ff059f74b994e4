// Package template holds the in-memory model of a certificate template: pages,
// positioned text elements and the transient editing state (active page,
// selection). The model is pure data plus mutation methods; rendering and I/O
// live elsewhere. All structs marshal to the JSONB shape persisted by the
// template API, so a loaded template round-trips without loss.
package template

import (
	"github.com/google/uuid"

	"github.com/MR-Munggaran/belajar-sertif/internal/paper"
)

// ElementKind separates literally authored text from data-bound fields.
type ElementKind string

const (
	KindStatic ElementKind = "static"
	KindField  ElementKind = "field"
)

// FieldRef names a participant attribute substituted at render time.
type FieldRef string

const (
	FieldParticipantName   FieldRef = "participant.name"
	FieldParticipantEmail  FieldRef = "participant.email"
	FieldCertificateNumber FieldRef = "certificate.number"
	FieldCertificateDate   FieldRef = "certificate.date"
)

// MinFontSize is the floor enforced by every mutation path, including the
// interactive resize gesture.
const MinFontSize = 8.0

// Point is used for the legacy nested position encoding.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is a single positioned, styled piece of text on a page. X and Y are
// the element's visual center in page-pixel space. Rotation is clockwise
// degrees around that center and is deliberately never wrapped to ±180, so a
// multi-turn spin gesture accumulates.
type Element struct {
	ID   string      `json:"id"`
	Kind ElementKind `json:"type"`
	// Field is set only when Kind is KindField; Text then carries the
	// placeholder label shown while authoring.
	Field FieldRef `json:"field,omitempty"`
	Text  string   `json:"text"`

	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Position is accepted on load for rows written by older clients that
	// nested the coordinates; Normalize collapses it into X/Y.
	Position *Point `json:"position,omitempty"`

	FontSize   float64 `json:"fontSize"`
	FontFamily string  `json:"fontFamily"`
	FontWeight string  `json:"fontWeight"` // "normal" | "bold"
	FontStyle  string  `json:"fontStyle"`  // "normal" | "italic"
	Underline  bool    `json:"underline,omitempty"`
	Color      string  `json:"color"`
	TextAlign  string  `json:"textAlign,omitempty"`

	Rotation float64 `json:"rotation,omitempty"`

	// Reserved for future non-text elements.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Normalize repairs a loaded element in place so the model never holds an
// element with missing required fields. Present values are kept as-is.
func (e *Element) Normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Kind != KindField {
		e.Kind = KindStatic
		e.Field = "" // a static element must not carry a field reference
	}
	if e.Position != nil {
		e.X = e.Position.X
		e.Y = e.Position.Y
		e.Position = nil
	}
	if e.FontSize < MinFontSize {
		if e.FontSize <= 0 {
			e.FontSize = 50
		} else {
			e.FontSize = MinFontSize
		}
	}
	if e.FontFamily == "" {
		e.FontFamily = "Arial"
	}
	if e.FontWeight == "" {
		e.FontWeight = "normal"
	}
	if e.FontStyle == "" {
		e.FontStyle = "normal"
	}
	if e.Color == "" {
		e.Color = "#000000"
	}
}

// Bold reports whether the element renders with a bold face.
func (e *Element) Bold() bool { return e.FontWeight == "bold" }

// Italic reports whether the element renders with an italic face.
func (e *Element) Italic() bool { return e.FontStyle == "italic" }

// ElementPatch is a shallow merge applied by Document.UpdateElement. Nil
// pointers leave the corresponding field untouched.
type ElementPatch struct {
	Text       *string  `json:"text,omitempty"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	FontFamily *string  `json:"fontFamily,omitempty"`
	FontWeight *string  `json:"fontWeight,omitempty"`
	FontStyle  *string  `json:"fontStyle,omitempty"`
	Underline  *bool    `json:"underline,omitempty"`
	Color      *string  `json:"color,omitempty"`
	TextAlign  *string  `json:"textAlign,omitempty"`
	Rotation   *float64 `json:"rotation,omitempty"`
}

func (p ElementPatch) apply(e *Element) {
	if p.Text != nil {
		e.Text = *p.Text
	}
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.FontSize != nil {
		size := *p.FontSize
		if size < MinFontSize {
			size = MinFontSize
		}
		e.FontSize = size
	}
	if p.FontFamily != nil {
		e.FontFamily = *p.FontFamily
	}
	if p.FontWeight != nil {
		e.FontWeight = *p.FontWeight
	}
	if p.FontStyle != nil {
		e.FontStyle = *p.FontStyle
	}
	if p.Underline != nil {
		e.Underline = *p.Underline
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.TextAlign != nil {
		e.TextAlign = *p.TextAlign
	}
	if p.Rotation != nil {
		e.Rotation = *p.Rotation
	}
}

// Page is one sheet of the template. Elements paint in list order (list order
// is the z-order). Paper size and orientation are tracked per page; the
// document mirrors the active page's values as its defaults.
type Page struct {
	ID              string            `json:"id"`
	PageNumber      int               `json:"pageNumber"`
	BackgroundImage string            `json:"backgroundImage,omitempty"`
	Elements        []Element         `json:"elements"`
	PaperSize       paper.Size        `json:"paperSize,omitempty"`
	Orientation     paper.Orientation `json:"orientation,omitempty"`
}

// Normalize fills defaults for a loaded page. number is the dense 1-based
// position the page occupies in the list.
func (p *Page) Normalize(number int) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.PageNumber = number
	if p.Elements == nil {
		p.Elements = []Element{}
	}
	for i := range p.Elements {
		p.Elements[i].Normalize()
	}
	if !paper.Valid(p.PaperSize) {
		p.PaperSize = paper.SizeA4
	}
	if p.Orientation != paper.Portrait && p.Orientation != paper.Landscape {
		p.Orientation = paper.Landscape
	}
}

// CanvasSize returns the page's raster dimensions in pixels, always derived
// from (PaperSize, Orientation) so the two can never drift apart.
func (p *Page) CanvasSize() (width, height int) {
	return paper.Dimensions(p.PaperSize, p.Orientation)
}

// Element catalog. The add-element actions in the editor are pre-populated
// with the same labels and sizes the original templates used.

func newElement(kind ElementKind, field FieldRef, text string, x, y, size float64) Element {
	return Element{
		ID:         uuid.NewString(),
		Kind:       kind,
		Field:      field,
		Text:       text,
		X:          x,
		Y:          y,
		FontSize:   size,
		FontFamily: "Arial",
		FontWeight: "normal",
		FontStyle:  "normal",
		Color:      "#000000",
	}
}

// NewNameField creates the participant-name field, bold per house style.
func NewNameField(x, y float64) Element {
	el := newElement(KindField, FieldParticipantName, "Nama Peserta", x, y, 90)
	el.FontWeight = "bold"
	return el
}

// NewNumberField creates the certificate-number field.
func NewNumberField(x, y float64) Element {
	return newElement(KindField, FieldCertificateNumber, "No. 123/SERTIF/2026", x, y, 50)
}

// NewDateField creates the issue-date field.
func NewDateField(x, y float64) Element {
	return newElement(KindField, FieldCertificateDate, "01 Januari 2026", x, y, 45)
}

// NewSignatoryText creates the static signatory/mentor line.
func NewSignatoryText(x, y float64) Element {
	return newElement(KindStatic, "", "Nama Mentor", x, y, 60)
}

// NewFreeText creates an empty static text element.
func NewFreeText(x, y float64) Element {
	return newElement(KindStatic, "", "Teks Tambahan", x, y, 50)
}
