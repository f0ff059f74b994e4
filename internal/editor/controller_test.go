package editor

import (
	"math"
	"testing"

	"github.com/MR-Munggaran/belajar-sertif/internal/fonts"
	"github.com/MR-Munggaran/belajar-sertif/internal/render"
	"github.com/MR-Munggaran/belajar-sertif/internal/template"
)

func newFixture(elements ...template.Element) (*template.Document, *Controller) {
	doc := template.New()
	for _, el := range elements {
		doc.AddElement(el)
	}
	doc.ClearSelection()
	engine := render.NewEngine(fonts.NewLibrary(nil, nil), render.NewBackgrounds(nil, nil), nil)
	return doc, NewController(doc, engine)
}

func TestDragMovesElementByPointerDelta(t *testing.T) {
	doc, c := newFixture(template.NewNameField(500, 300))
	el := &doc.ActivePage().Elements[0]

	c.PointerDown(500, 300) // element center
	if c.Mode() != ModeDrag {
		t.Fatalf("mode = %v, want drag", c.Mode())
	}
	c.PointerMove(540, 325)
	c.PointerUp()

	if el.X != 540 || el.Y != 325 {
		t.Fatalf("element at (%v, %v), want (540, 325)", el.X, el.Y)
	}
	if doc.ActiveElementID() != el.ID {
		t.Error("selection lost after drag")
	}
}

func TestDragAccumulatesAcrossMoves(t *testing.T) {
	doc, c := newFixture(template.NewFreeText(100, 100))
	el := &doc.ActivePage().Elements[0]

	c.PointerDown(100, 100)
	c.PointerMove(120, 110)
	c.PointerMove(140, 125)
	c.PointerUp()

	if el.X != 140 || el.Y != 125 {
		t.Fatalf("element at (%v, %v), want (140, 125)", el.X, el.Y)
	}
}

func TestPointerDownOnEmptyCanvasClearsSelection(t *testing.T) {
	doc, c := newFixture(template.NewFreeText(200, 200))

	c.PointerDown(200, 200)
	if doc.ActiveElementID() == "" {
		t.Fatal("center hit did not select")
	}
	c.PointerUp()

	c.PointerDown(900, 700)
	if doc.ActiveElementID() != "" {
		t.Fatal("empty-canvas click kept the selection")
	}
	if c.Mode() != ModeNone {
		t.Fatalf("mode = %v, want none", c.Mode())
	}
}

func TestTopmostElementWinsOverlappingHit(t *testing.T) {
	doc, c := newFixture(
		template.NewFreeText(300, 300),
		template.NewFreeText(300, 300),
	)
	top := doc.ActivePage().Elements[1].ID

	c.PointerDown(300, 300)
	if got := doc.ActiveElementID(); got != top {
		t.Fatalf("selected %s, want topmost %s", got, top)
	}
}

func TestResizeGrowsFontWithHorizontalDrag(t *testing.T) {
	doc, c := newFixture(template.NewFreeText(400, 300))
	el := &doc.ActivePage().Elements[0]
	doc.Select(el.ID)

	engine := render.NewEngine(fonts.NewLibrary(nil, nil), render.NewBackgrounds(nil, nil), nil)
	box := engine.Bounds(el, el.Text)
	hx := box.Right + render.SelectionPadding
	hy := box.Bottom + render.SelectionPadding

	c.PointerDown(hx, hy)
	if c.Mode() != ModeResize {
		t.Fatalf("mode = %v, want resize", c.Mode())
	}
	c.PointerMove(hx+40, hy)
	c.PointerUp()

	if want := 50 + 40*0.5; el.FontSize != want {
		t.Fatalf("font size = %v, want %v", el.FontSize, want)
	}
}

func TestResizeClampsAtMinimumFontSize(t *testing.T) {
	doc, c := newFixture(template.NewFreeText(400, 300))
	el := &doc.ActivePage().Elements[0]
	doc.Select(el.ID)

	engine := render.NewEngine(fonts.NewLibrary(nil, nil), render.NewBackgrounds(nil, nil), nil)
	box := engine.Bounds(el, el.Text)
	hx := box.Right + render.SelectionPadding
	hy := box.Bottom + render.SelectionPadding

	c.PointerDown(hx, hy)
	c.PointerMove(hx-10000, hy)
	c.PointerUp()

	if el.FontSize != template.MinFontSize {
		t.Fatalf("font size = %v, want clamp at %v", el.FontSize, template.MinFontSize)
	}
}

func TestRotationAccumulatesThroughFullTurn(t *testing.T) {
	doc, c := newFixture(template.NewFreeText(400, 300))
	el := &doc.ActivePage().Elements[0]
	doc.Select(el.ID)

	engine := render.NewEngine(fonts.NewLibrary(nil, nil), render.NewBackgrounds(nil, nil), nil)
	box := engine.Bounds(el, el.Text)
	// Grab the rotate handle straight above the padded box.
	hx := el.X
	hy := box.Top - render.SelectionPadding - render.RotateHandleOffset

	c.PointerDown(hx, hy)
	if c.Mode() != ModeRotate {
		t.Fatalf("mode = %v, want rotate", c.Mode())
	}

	// Sweep the pointer clockwise around the center in 30-degree steps for a
	// full revolution and a quarter more.
	start := math.Atan2(hy-el.Y, hx-el.X)
	r := 120.0
	steps := 15 // 15 * 30 = 450 degrees
	for i := 1; i <= steps; i++ {
		a := start + float64(i)*30*math.Pi/180
		c.PointerMove(el.X+r*math.Cos(a), el.Y+r*math.Sin(a))
	}
	c.PointerUp()

	if math.Abs(el.Rotation-450) > 1e-6 {
		t.Fatalf("rotation = %v, want 450 (unwrapped)", el.Rotation)
	}
}

func TestViewportScalesScreenCoordinates(t *testing.T) {
	doc, c := newFixture(template.NewFreeText(400, 300))
	el := &doc.ActivePage().Elements[0]

	// Canvas is 1123 wide (A4 landscape), displayed at half size with a
	// (50, 20) screen offset.
	canvasW, _ := doc.CanvasSize()
	c.SetViewport(50, 20, float64(canvasW)/2)

	sx := 50 + el.X/2
	sy := 20 + el.Y/2
	c.PointerDown(sx, sy)
	if doc.ActiveElementID() != el.ID {
		t.Fatal("scaled pointer position missed the element")
	}
	c.PointerMove(sx+20, sy+10) // 20 screen px = 40 canvas px
	c.PointerUp()

	if el.X != 440 || el.Y != 320 {
		t.Fatalf("element at (%v, %v), want (440, 320)", el.X, el.Y)
	}
}

func TestHoverCursorOverZones(t *testing.T) {
	doc, c := newFixture(template.NewFreeText(400, 300))
	el := &doc.ActivePage().Elements[0]
	doc.Select(el.ID)

	engine := render.NewEngine(fonts.NewLibrary(nil, nil), render.NewBackgrounds(nil, nil), nil)
	box := engine.Bounds(el, el.Text)

	if got := c.PointerMove(el.X, el.Y); got != CursorMove {
		t.Errorf("cursor over body = %v, want move", got)
	}
	if got := c.PointerMove(box.Right+render.SelectionPadding, box.Bottom+render.SelectionPadding); got != CursorResize {
		t.Errorf("cursor over resize handle = %v, want resize", got)
	}
	if got := c.PointerMove(el.X, box.Top-render.SelectionPadding-render.RotateHandleOffset); got != CursorRotate {
		t.Errorf("cursor over rotate handle = %v, want rotate", got)
	}
	if got := c.PointerMove(50, 50); got != CursorDefault {
		t.Errorf("cursor over empty canvas = %v, want default", got)
	}
}

func TestInsertStacksElementsFromCenter(t *testing.T) {
	doc, c := newFixture()

	c.Insert(template.NewNameField)
	c.Insert(template.NewDateField)
	c.Insert(template.NewFreeText)

	w, h := doc.CanvasSize()
	els := doc.ActivePage().Elements
	if len(els) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(els))
	}
	for i, el := range els {
		wantX := float64(w) / 2
		wantY := float64(h)/2 + float64(i)*100
		if el.X != wantX || el.Y != wantY {
			t.Errorf("element %d at (%v, %v), want (%v, %v)", i, el.X, el.Y, wantX, wantY)
		}
	}
	if doc.ActiveElementID() != els[2].ID {
		t.Error("last inserted element not selected")
	}
}
