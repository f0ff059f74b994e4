// Package editor implements the direct-manipulation layer of the canvas:
// pointer gestures (drag, resize, rotate), hit-testing against rendered
// element bounds and the screen-to-canvas coordinate mapping. It mutates the
// template document and leaves painting to the render engine, reusing the
// engine's measurement so hits land exactly on what is drawn.
package editor

import (
	"math"

	"github.com/MR-Munggaran/belajar-sertif/internal/render"
	"github.com/MR-Munggaran/belajar-sertif/internal/template"
)

// Mode is the gesture currently in progress.
type Mode int

const (
	ModeNone Mode = iota
	ModeDrag
	ModeResize
	ModeRotate
)

// Cursor is the pointer shape the host surface should show.
type Cursor string

const (
	CursorDefault Cursor = "default"
	CursorMove    Cursor = "move"
	CursorResize  Cursor = "nwse-resize"
	CursorRotate  Cursor = "grab"
)

// Handle hit zones, in canvas pixels. The rotate zone is a horizontal band
// above the selection box so the small circle is easy to grab; the resize
// zone is the bottom-right corner of the padded box.
const (
	rotateZoneMargin = 5.0
	resizeZoneSize   = 10.0
	resizeScale      = 0.5 // font-size points per horizontal pixel dragged
)

// Controller translates pointer events into document mutations. One
// controller per open editor; all calls happen on the UI event goroutine.
type Controller struct {
	doc    *template.Document
	engine *render.Engine

	// Viewport mapping. The canvas raster is displayed scaled into a screen
	// rect; pointer events arrive in screen space.
	scale            float64
	offsetX, offsetY float64

	mode Mode

	// Gesture state captured at PointerDown, all in canvas space.
	lastX, lastY float64
	baseFontSize float64
	lastAngle    float64 // pointer angle at the previous rotate sample, degrees
}

// NewController binds the gesture layer to a document and the engine whose
// measurement defines the hit geometry.
func NewController(doc *template.Document, engine *render.Engine) *Controller {
	return &Controller{doc: doc, engine: engine, scale: 1}
}

// Mode returns the gesture in progress.
func (c *Controller) Mode() Mode { return c.mode }

// SetViewport records where and how large the canvas raster is displayed on
// screen. displayWidth is the on-screen width of the canvas; the raster keeps
// its own aspect ratio, so one scale factor covers both axes.
func (c *Controller) SetViewport(offsetX, offsetY, displayWidth float64) {
	canvasW, _ := c.doc.CanvasSize()
	if displayWidth <= 0 || canvasW <= 0 {
		c.scale = 1
	} else {
		c.scale = float64(canvasW) / displayWidth
	}
	c.offsetX = offsetX
	c.offsetY = offsetY
}

// ToCanvas converts a screen-space pointer position into canvas pixels.
func (c *Controller) ToCanvas(screenX, screenY float64) (x, y float64) {
	return (screenX - c.offsetX) * c.scale, (screenY - c.offsetY) * c.scale
}

// elementBox returns the decorated bounds of an element, using the same
// resolver the renderer uses so authoring-mode placeholders hit-test on their
// visible text.
func (c *Controller) elementBox(el *template.Element) render.Box {
	return c.engine.Bounds(el, template.Resolve(el, nil))
}

// PointerDown starts a gesture at a screen position. Zone priority when an
// element is already selected: rotate handle, then resize handle, then body.
// Otherwise the topmost element whose padded box contains the point becomes
// selected and starts a drag; empty canvas clears the selection.
func (c *Controller) PointerDown(screenX, screenY float64) {
	x, y := c.ToCanvas(screenX, screenY)
	c.lastX, c.lastY = x, y

	if el := c.doc.ActiveElement(); el != nil {
		box := c.elementBox(el)
		padded := paddedBox(box)

		if c.inRotateZone(padded, x, y) {
			c.mode = ModeRotate
			c.lastAngle = pointerAngle(el, x, y)
			return
		}
		if c.inResizeZone(padded, x, y) {
			c.mode = ModeResize
			c.baseFontSize = el.FontSize
			return
		}
	}

	// Topmost first: elements paint in list order, so walk it backwards.
	page := c.doc.ActivePage()
	for i := len(page.Elements) - 1; i >= 0; i-- {
		el := &page.Elements[i]
		if c.elementBox(el).Contains(x, y, render.SelectionPadding) {
			c.doc.Select(el.ID)
			c.mode = ModeDrag
			return
		}
	}

	c.doc.ClearSelection()
	c.mode = ModeNone
}

// PointerMove advances the gesture (or just reports the hover cursor when no
// gesture is active).
func (c *Controller) PointerMove(screenX, screenY float64) Cursor {
	x, y := c.ToCanvas(screenX, screenY)
	dx := x - c.lastX
	dy := y - c.lastY

	el := c.doc.ActiveElement()

	switch c.mode {
	case ModeDrag:
		if el != nil {
			nx, ny := el.X+dx, el.Y+dy
			c.doc.UpdateElement(el.ID, template.ElementPatch{X: &nx, Y: &ny})
		}
		c.lastX, c.lastY = x, y
		return CursorMove

	case ModeResize:
		if el != nil {
			// Scale from the gesture origin, not frame deltas, so jitter does
			// not accumulate. The patch path clamps at the minimum size.
			size := c.baseFontSize + (x-c.gestureOriginX())*resizeScale
			if size < template.MinFontSize {
				size = template.MinFontSize
			}
			c.doc.UpdateElement(el.ID, template.ElementPatch{FontSize: &size})
		}
		return CursorResize

	case ModeRotate:
		if el != nil {
			// Add the shortest-arc delta per sample so rotation accumulates
			// through full turns; it is intentionally never wrapped to ±180.
			angle := pointerAngle(el, x, y)
			delta := shortestArc(angle - c.lastAngle)
			c.lastAngle = angle
			rot := el.Rotation + delta
			c.doc.UpdateElement(el.ID, template.ElementPatch{Rotation: &rot})
		}
		return CursorRotate
	}

	return c.hoverCursor(x, y)
}

// PointerUp ends the gesture. The selection survives so the decoration stays
// visible.
func (c *Controller) PointerUp() {
	c.mode = ModeNone
}

// Insert places a catalog element (template.NewNameField and friends) at the
// document's next stacking position and selects it.
func (c *Controller) Insert(build func(x, y float64) template.Element) {
	x, y := c.doc.InsertPoint()
	c.doc.AddElement(build(x, y))
}

// Resize gestures measure from where the pointer went down; lastX is frozen
// for the duration (drag is the only mode that advances it).
func (c *Controller) gestureOriginX() float64 { return c.lastX }

func (c *Controller) hoverCursor(x, y float64) Cursor {
	if el := c.doc.ActiveElement(); el != nil {
		padded := paddedBox(c.elementBox(el))
		if c.inRotateZone(padded, x, y) {
			return CursorRotate
		}
		if c.inResizeZone(padded, x, y) {
			return CursorResize
		}
	}
	page := c.doc.ActivePage()
	for i := len(page.Elements) - 1; i >= 0; i-- {
		if c.elementBox(&page.Elements[i]).Contains(x, y, render.SelectionPadding) {
			return CursorMove
		}
	}
	return CursorDefault
}

// paddedBox grows the measured bounds by the selection padding, matching the
// dashed box the renderer draws.
func paddedBox(b render.Box) render.Box {
	return render.Box{
		Left:   b.Left - render.SelectionPadding,
		Top:    b.Top - render.SelectionPadding,
		Right:  b.Right + render.SelectionPadding,
		Bottom: b.Bottom + render.SelectionPadding,
		Width:  b.Width + 2*render.SelectionPadding,
		Height: b.Height + 2*render.SelectionPadding,
	}
}

// inRotateZone matches the band above the padded box up to the rotate handle.
func (c *Controller) inRotateZone(padded render.Box, x, y float64) bool {
	return x >= padded.Left && x <= padded.Right &&
		y < padded.Top-rotateZoneMargin &&
		y >= padded.Top-render.RotateHandleOffset-render.RotateHandleRadius-rotateZoneMargin
}

// inResizeZone matches the bottom-right corner of the padded box.
func (c *Controller) inResizeZone(padded render.Box, x, y float64) bool {
	return x > padded.Right-resizeZoneSize && x <= padded.Right+resizeZoneSize &&
		y > padded.Bottom-resizeZoneSize && y <= padded.Bottom+resizeZoneSize
}

// pointerAngle is the pointer's angle around the element center, in degrees,
// measured the same way canvas rotation is applied (0° pointing right,
// clockwise positive in screen coordinates).
func pointerAngle(el *template.Element, x, y float64) float64 {
	return math.Atan2(y-el.Y, x-el.X) * 180 / math.Pi
}

// shortestArc maps an angular difference into (-180, 180].
func shortestArc(d float64) float64 {
	for d > 180 {
		d -= 360
	}
	for d <= -180 {
		d += 360
	}
	return d
}
