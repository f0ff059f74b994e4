package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/MR-Munggaran/belajar-sertif/internal/fonts"
	"github.com/MR-Munggaran/belajar-sertif/internal/template"
)

// Selection decoration geometry, in canvas pixels.
const (
	SelectionPadding   = 10.0 // box padding around the measured text
	HandleSize         = 12.0 // resize square, bottom-right corner
	RotateHandleOffset = 35.0 // rotate circle distance above the box
	RotateHandleRadius = 5.0
)

var (
	selectionColor   = color.RGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff} // #3b82f6
	placeholderEdge  = color.RGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff} // #e5e7eb
	placeholderWhite = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Box is an element's unrotated bounding rectangle in canvas-pixel space,
// centered on the element position. The same box drives the selection
// decoration and the controller's hit-testing.
type Box struct {
	Left, Top, Right, Bottom float64
	Width, Height            float64
}

// Contains reports whether (x, y) falls inside the box grown by pad on every
// side.
func (b Box) Contains(x, y, pad float64) bool {
	return x >= b.Left-pad && x <= b.Right+pad && y >= b.Top-pad && y <= b.Bottom+pad
}

// Engine paints pages onto surfaces. It is not safe for concurrent use of a
// single surface; the editor drives it from one goroutine.
type Engine struct {
	fonts       *fonts.Library
	backgrounds *Backgrounds
	logger      *slog.Logger
}

// NewEngine wires the painter to its font and image caches.
func NewEngine(lib *fonts.Library, backgrounds *Backgrounds, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{fonts: lib, backgrounds: backgrounds, logger: logger}
}

// Backgrounds exposes the image cache (the export path awaits on it).
func (e *Engine) Backgrounds() *Backgrounds { return e.backgrounds }

func (e *Engine) face(el *template.Element) font.Face {
	return e.fonts.Face(el.FontFamily, el.FontSize, fonts.Variant{Bold: el.Bold(), Italic: el.Italic()})
}

// Measure returns the rendered size of text in the element's font. Height is
// by convention the configured font size; both the painter and the hit-tester
// use exactly this.
func (e *Engine) Measure(el *template.Element, text string) (width, height float64) {
	w := font.MeasureString(e.face(el), text)
	return float64(w) / 64, el.FontSize
}

// Bounds returns the element's unrotated bounding box for the given display
// text, centered on (el.X, el.Y).
func (e *Engine) Bounds(el *template.Element, text string) Box {
	w, h := e.Measure(el, text)
	return Box{
		Left:   el.X - w/2,
		Right:  el.X + w/2,
		Top:    el.Y - h/2,
		Bottom: el.Y + h/2,
		Width:  w,
		Height: h,
	}
}

// PreloadFonts kicks off background fetches for every family the page uses.
func (e *Engine) PreloadFonts(page *template.Page) {
	for i := range page.Elements {
		el := &page.Elements[i]
		e.fonts.Load(el.FontFamily, fonts.Variant{Bold: el.Bold(), Italic: el.Italic()})
	}
}

// AwaitFonts blocks until every font the page references has settled (loaded
// or failed over to the fallback face). Export capture gates on this.
func (e *Engine) AwaitFonts(ctx context.Context, page *template.Page) error {
	for i := range page.Elements {
		el := &page.Elements[i]
		v := fonts.Variant{Bold: el.Bold(), Italic: el.Italic()}
		if err := e.fonts.Await(ctx, el.FontFamily, v); err != nil {
			return err
		}
	}
	return nil
}

// Render paints the page onto the surface: background first, then elements in
// list order (list order is the z-order). data selects participant
// substitution (nil = authoring mode). The element whose id equals
// selectionID gets the selection decoration, but only when interactive is
// true — the participant-facing and export renders are always
// decoration-free.
func (e *Engine) Render(s *Surface, page *template.Page, data *template.ParticipantData, selectionID string, interactive bool) {
	width, height := page.CanvasSize()
	s.Resize(width, height)
	dst := s.Image()

	e.paintBackground(dst, page, width, height)

	for i := range page.Elements {
		el := &page.Elements[i]
		text := template.Resolve(el, data)
		selected := interactive && el.ID == selectionID
		e.paintElement(dst, el, text, selected)
	}
}

func (e *Engine) paintBackground(dst *image.RGBA, page *template.Page, width, height int) {
	if page.BackgroundImage != "" && e.backgrounds != nil {
		if img, state := e.backgrounds.Get(page.BackgroundImage); state == ResourceLoaded {
			// Stretch to fill the canvas exactly.
			xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
			return
		}
		// Pending or failed: fall through to the placeholder and pick the
		// image up on a later frame once loaded.
	}

	draw.Draw(dst, dst.Bounds(), image.NewUniform(placeholderWhite), image.Point{}, draw.Src)
	strokeBorder(dst, width, height, 2, placeholderEdge)
}

// paintElement draws one element. All drawing happens in a local buffer whose
// center is the element's visual center; the buffer is then composited into
// the page raster rotated by the element's angle, so text, underline and
// selection decoration rotate as one unit.
func (e *Engine) paintElement(dst *image.RGBA, el *template.Element, text string, selected bool) {
	textW, textH := e.Measure(el, text)
	col := ParseHexColor(el.Color)

	// The buffer must fit the text plus the selection decoration (padded box,
	// corner handle, rotate handle above).
	halfW := textW/2 + SelectionPadding + HandleSize
	halfH := textH/2 + SelectionPadding + RotateHandleOffset + RotateHandleRadius + 2
	bw := int(math.Ceil(halfW))*2 + 2
	bh := int(math.Ceil(halfH))*2 + 2
	buf := image.NewRGBA(image.Rect(0, 0, bw, bh))
	cx := float64(bw) / 2
	cy := float64(bh) / 2

	// Text, center-anchored both axes. The baseline is placed so the
	// ascent/descent span centers on cy, matching the height≈fontSize box
	// convention used by Bounds.
	face := e.face(el)
	metrics := face.Metrics()
	drawer := font.Drawer{
		Dst:  buf,
		Src:  image.NewUniform(col),
		Face: face,
		Dot: fixed.Point26_6{
			X: floatToFixed(cx - textW/2),
			Y: floatToFixed(cy) + (metrics.Ascent-metrics.Descent)/2,
		},
	}
	drawer.DrawString(text)

	if el.Underline {
		lw := math.Max(1, el.FontSize/15)
		fillRectF(buf, cx-textW/2, cy+textH/2, textW, lw, col)
	}

	if selected {
		e.paintSelection(buf, cx, cy, textW, textH)
	}

	compositeRotated(dst, buf, el.X, el.Y, el.Rotation)
}

// paintSelection draws the dashed box, resize handle and rotate handle in the
// element's local frame.
func (e *Engine) paintSelection(buf *image.RGBA, cx, cy, textW, textH float64) {
	p := SelectionPadding
	left := cx - textW/2 - p
	top := cy - textH/2 - p
	w := textW + 2*p
	h := textH + 2*p

	strokeDashedRect(buf, left, top, w, h, 5, 5, selectionColor)

	// Resize handle, bottom-right corner.
	fillRectF(buf,
		left+w-HandleSize/2, top+h-HandleSize/2,
		HandleSize, HandleSize, selectionColor)

	// Guide line up to the rotate handle, then the handle itself.
	fillRectF(buf, cx-0.5, top-RotateHandleOffset, 1, RotateHandleOffset, selectionColor)
	fillCircleF(buf, cx, top-RotateHandleOffset, RotateHandleRadius, selectionColor)
}
