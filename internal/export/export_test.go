package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/MR-Munggaran/belajar-sertif/internal/fonts"
	"github.com/MR-Munggaran/belajar-sertif/internal/paper"
	"github.com/MR-Munggaran/belajar-sertif/internal/render"
	"github.com/MR-Munggaran/belajar-sertif/internal/template"
)

func newTestExporter(loader render.Loader) *Exporter {
	engine := render.NewEngine(fonts.NewLibrary(nil, nil), render.NewBackgrounds(loader, nil), nil)
	return NewExporter(engine)
}

func buildDocument() *template.Document {
	doc := template.New()
	doc.AddElement(template.NewNameField(560, 300))
	doc.AddElement(template.NewDateField(560, 500))
	doc.AddPage()
	doc.AddElement(template.NewFreeText(560, 400))
	return doc
}

func TestPNGExportsActivePage(t *testing.T) {
	e := newTestExporter(nil)
	doc := buildDocument()
	data := &template.ParticipantData{Name: "Budi Santoso", IssueDate: "17 Agustus 2026"}

	raw, err := e.PNG(context.Background(), doc.ActivePage(), data)
	if err != nil {
		t.Fatal(err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" {
		t.Fatalf("format = %s, want png", format)
	}
	if cfg.Width != 1123 || cfg.Height != 794 {
		t.Fatalf("exported %dx%d, want 1123x794", cfg.Width, cfg.Height)
	}
}

func TestPNGMatchesEditorRender(t *testing.T) {
	e := newTestExporter(nil)
	doc := buildDocument()
	doc.Select(doc.ActivePage().Elements[0].ID)
	data := &template.ParticipantData{Name: "Budi Santoso"}

	exported, err := e.PNG(context.Background(), doc.ActivePage(), data)
	if err != nil {
		t.Fatal(err)
	}

	// A direct decoration-free render of the same page must produce the same
	// bytes, selection or not.
	s := render.NewSurface()
	e.engine.Render(s, doc.ActivePage(), data, "", false)
	direct, err := s.PNG()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(exported, direct) {
		t.Fatal("export differs from a direct render of the same page")
	}
}

func TestPDFExportsAllPages(t *testing.T) {
	loader := func(context.Context, string) (image.Image, error) {
		img := image.NewRGBA(image.Rect(0, 0, 4, 4))
		img.SetRGBA(0, 0, color.RGBA{R: 0xff, A: 0xff})
		return img, nil
	}
	e := newTestExporter(loader)

	doc := buildDocument()
	doc.SetBackgroundImage("certs/bg.png")

	raw, err := e.PDF(context.Background(), doc.Pages(), &template.ParticipantData{Name: "Budi Santoso"})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
	if !bytes.Contains(raw, []byte("/Count 2")) {
		t.Fatal("PDF does not contain two pages")
	}
	// Both pages are A4 landscape: 1123x794 px at 96 DPI is 297.13x210.08 mm,
	// which the writer emits as 842.25x595.50 pt.
	if !bytes.Contains(raw, []byte("/MediaBox [0 0 842.25 595.50]")) {
		t.Fatal("PDF page size does not match A4 landscape")
	}
}

func TestPDFMixedPaperSizes(t *testing.T) {
	e := newTestExporter(nil)
	doc := template.New()
	doc.AddPage()
	doc.SetPaperSize(paper.SizeA5)
	doc.SetOrientation(paper.Portrait)

	raw, err := e.PDF(context.Background(), doc.Pages(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(raw, []byte("/Count 2")) {
		t.Fatal("PDF does not contain two pages")
	}
	// Page 1 keeps the A4 landscape default (1123x794 px -> 842.25x595.50 pt),
	// page 2 is A5 portrait (559x794 px -> 419.25x595.50 pt).
	if !bytes.Contains(raw, []byte("/MediaBox [0 0 842.25 595.50]")) {
		t.Fatal("missing A4 landscape page size")
	}
	if !bytes.Contains(raw, []byte("/MediaBox [0 0 419.25 595.50]")) {
		t.Fatal("missing A5 portrait page size")
	}
}

func TestPDFEmptyDocumentFails(t *testing.T) {
	e := newTestExporter(nil)
	if _, err := e.PDF(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error for empty page list")
	}
}
