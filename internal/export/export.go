// Package export captures rendered template pages as downloadable artifacts:
// a PNG of the active page or a multi-page PDF of the whole document. Pages
// are rasterized by the same engine that drives the editor, so the exported
// pixels match what the author saw.
package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/MR-Munggaran/belajar-sertif/internal/paper"
	"github.com/MR-Munggaran/belajar-sertif/internal/render"
	"github.com/MR-Munggaran/belajar-sertif/internal/template"
)

// Exporter renders documents to PNG and PDF bytes.
type Exporter struct {
	engine *render.Engine
}

// NewExporter wraps the render engine for capture.
func NewExporter(engine *render.Engine) *Exporter {
	return &Exporter{engine: engine}
}

// awaitPage blocks until everything the page needs is settled: the background
// image (loaded or failed) and every font family the page references. Capture
// without this readiness gate races the async loads and ships placeholder
// pixels.
func (e *Exporter) awaitPage(ctx context.Context, page *template.Page) error {
	if page.BackgroundImage != "" {
		if err := e.engine.Backgrounds().Await(ctx, page.BackgroundImage); err != nil {
			return fmt.Errorf("await background %s: %w", page.BackgroundImage, err)
		}
	}
	e.engine.PreloadFonts(page)
	if err := e.engine.AwaitFonts(ctx, page); err != nil {
		return fmt.Errorf("await fonts: %w", err)
	}
	return nil
}

// PNG renders one page, decoration-free, and returns the encoded image. data
// may be nil for an authoring-mode capture with placeholder labels.
func (e *Exporter) PNG(ctx context.Context, page *template.Page, data *template.ParticipantData) ([]byte, error) {
	if err := e.awaitPage(ctx, page); err != nil {
		return nil, err
	}
	s := render.NewSurface()
	e.engine.Render(s, page, data, "", false)
	return s.PNG()
}

// PDF renders every page of the document into a single PDF, one PDF page per
// template page, each at its own paper size and orientation. The raster is
// embedded full-bleed so the PDF is pixel-identical to the editor view.
func (e *Exporter) PDF(ctx context.Context, pages []*template.Page, data *template.ParticipantData) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	first := pages[0]
	fw, fh := first.CanvasSize()
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "mm",
		Size:    pdfSize(fw, fh),
	})
	doc.SetAutoPageBreak(false, 0)

	s := render.NewSurface()
	for i, page := range pages {
		if err := e.awaitPage(ctx, page); err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}

		w, h := page.CanvasSize()
		orientation := "P"
		if w > h {
			orientation = "L"
		}
		doc.AddPageFormat(orientation, pdfSize(w, h))

		e.engine.Render(s, page, data, "", false)
		raw, err := s.PNG()
		if err != nil {
			return nil, fmt.Errorf("encode page %d: %w", i+1, err)
		}

		name := fmt.Sprintf("page-%d", i+1)
		doc.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(raw))
		doc.ImageOptions(name, 0, 0, paper.MM(w), paper.MM(h), false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfSize converts canvas pixels to the millimeter page size gofpdf expects.
// gofpdf wants the portrait-ordered size; AddPageFormat applies orientation.
func pdfSize(wPx, hPx int) gofpdf.SizeType {
	w := paper.MM(wPx)
	h := paper.MM(hPx)
	if w > h {
		w, h = h, w
	}
	return gofpdf.SizeType{Wd: w, Ht: h}
}
