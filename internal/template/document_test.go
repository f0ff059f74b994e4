package template

import (
	"encoding/json"
	"testing"

	"github.com/MR-Munggaran/belajar-sertif/internal/paper"
)

func TestNewDocumentHasOneBlankPage(t *testing.T) {
	d := New()
	if d.PageCount() != 1 {
		t.Fatalf("page count = %d, want 1", d.PageCount())
	}
	p := d.ActivePage()
	if p.PageNumber != 1 {
		t.Errorf("pageNumber = %d, want 1", p.PageNumber)
	}
	if len(p.Elements) != 0 {
		t.Errorf("blank page has %d elements", len(p.Elements))
	}
	if d.ActiveElementID() != "" {
		t.Errorf("new document has selection %q", d.ActiveElementID())
	}
}

func TestRemoveLastPageIsNoOp(t *testing.T) {
	d := New()
	id := d.ActivePage().ID
	if d.RemovePage(id) {
		t.Fatal("RemovePage removed the only page")
	}
	if d.PageCount() != 1 {
		t.Fatalf("page count = %d, want 1", d.PageCount())
	}
}

func TestRemovePageRenumbers(t *testing.T) {
	d := New()
	d.AddPage()
	d.AddPage()
	second := d.Pages()[1].ID
	if !d.RemovePage(second) {
		t.Fatal("RemovePage failed")
	}
	for i, p := range d.Pages() {
		if p.PageNumber != i+1 {
			t.Errorf("page[%d].PageNumber = %d, want %d", i, p.PageNumber, i+1)
		}
	}
}

func TestRemoveActivePageActivatesFirst(t *testing.T) {
	d := New()
	first := d.ActivePage().ID
	d.AddPage() // second page becomes active
	active := d.ActivePage().ID

	if !d.RemovePage(active) {
		t.Fatal("RemovePage failed")
	}
	if d.PageCount() != 1 {
		t.Fatalf("page count = %d, want 1", d.PageCount())
	}
	if d.ActivePage().ID != first {
		t.Errorf("active page = %s, want first page %s", d.ActivePage().ID, first)
	}
	if d.ActivePage().PageNumber != 1 {
		t.Errorf("pageNumber = %d, want 1", d.ActivePage().PageNumber)
	}
}

func TestSetActivePageUnknownIDIsNoOp(t *testing.T) {
	d := New()
	want := d.ActivePage().ID
	d.SetActivePage("nope")
	if d.ActivePage().ID != want {
		t.Errorf("active page changed to %s", d.ActivePage().ID)
	}
}

func TestSwitchingPageClearsSelection(t *testing.T) {
	d := New()
	d.AddElement(NewFreeText(100, 100))
	if d.ActiveElementID() == "" {
		t.Fatal("AddElement did not select the new element")
	}
	first := d.ActivePage().ID
	d.AddPage()
	if d.ActiveElementID() != "" {
		t.Error("selection survived AddPage")
	}
	d.SetActivePage(first)
	d.Select(d.ActivePage().Elements[0].ID)
	d.SetActivePage(d.Pages()[1].ID)
	if d.ActiveElementID() != "" {
		t.Error("selection survived SetActivePage")
	}
}

func TestRemoveSelectedElementClearsSelection(t *testing.T) {
	d := New()
	el := NewFreeText(10, 10)
	d.AddElement(el)
	d.RemoveElement(el.ID)
	if d.ActiveElementID() != "" {
		t.Error("selection survived RemoveElement")
	}
	if len(d.ActivePage().Elements) != 0 {
		t.Error("element not removed")
	}
}

func TestUpdateElementShallowMerge(t *testing.T) {
	d := New()
	el := NewFreeText(10, 20)
	d.AddElement(el)

	size := 72.0
	d.UpdateElement(el.ID, ElementPatch{FontSize: &size})

	got := d.ActiveElement()
	if got.FontSize != 72 {
		t.Errorf("fontSize = %v, want 72", got.FontSize)
	}
	if got.X != 10 || got.Y != 20 {
		t.Errorf("position changed to (%v,%v)", got.X, got.Y)
	}
	if got.Text != "Teks Tambahan" {
		t.Errorf("text changed to %q", got.Text)
	}
}

func TestUpdateElementEnforcesMinFontSize(t *testing.T) {
	d := New()
	el := NewFreeText(0, 0)
	d.AddElement(el)

	tiny := 2.0
	d.UpdateElement(el.ID, ElementPatch{FontSize: &tiny})
	if got := d.ActiveElement().FontSize; got != MinFontSize {
		t.Errorf("fontSize = %v, want floor %v", got, MinFontSize)
	}
}

func TestUpdateElementUnknownIDIsNoOp(t *testing.T) {
	d := New()
	el := NewFreeText(0, 0)
	d.AddElement(el)
	x := 999.0
	d.UpdateElement("missing", ElementPatch{X: &x})
	if d.ActivePage().Elements[0].X != 0 {
		t.Error("patch applied to wrong element")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	pages := []Page{
		{
			ID:          "p1",
			PageNumber:  1,
			PaperSize:   paper.SizeA4,
			Orientation: paper.Landscape,
			Elements: []Element{
				{
					ID: "e1", Kind: KindField, Field: FieldParticipantName,
					Text: "Nama Peserta", X: 400, Y: 280, FontSize: 90,
					FontFamily: "Roboto", FontWeight: "bold", FontStyle: "normal",
					Color: "#112233",
				},
			},
		},
	}

	d := New()
	d.Load(pages)

	got := d.Snapshot()
	if len(got) != 1 {
		t.Fatalf("page count = %d", len(got))
	}
	el := got[0].Elements[0]
	if el.ID != "e1" || el.X != 400 || el.Y != 280 || el.FontSize != 90 || el.FontFamily != "Roboto" || el.Color != "#112233" {
		t.Errorf("element mutated on load: %+v", el)
	}
	if d.ActivePage().ID != "p1" {
		t.Errorf("active page = %s, want p1", d.ActivePage().ID)
	}
	if d.ActiveElementID() != "" {
		t.Error("load left a selection")
	}
}

func TestLoadNormalizesDefaults(t *testing.T) {
	raw := []byte(`[{"elements":[{"text":"Halo","position":{"x":120,"y":340}}]}]`)
	var pages []Page
	if err := json.Unmarshal(raw, &pages); err != nil {
		t.Fatal(err)
	}

	d := New()
	d.Load(pages)

	p := d.ActivePage()
	if p.ID == "" || p.PageNumber != 1 {
		t.Errorf("page not normalized: %+v", p)
	}
	if p.PaperSize != paper.SizeA4 || p.Orientation != paper.Landscape {
		t.Errorf("paper defaults not filled: %s/%s", p.PaperSize, p.Orientation)
	}
	el := p.Elements[0]
	if el.ID == "" || el.Kind != KindStatic || el.FontFamily != "Arial" || el.Color != "#000000" {
		t.Errorf("element not normalized: %+v", el)
	}
	if el.X != 120 || el.Y != 340 {
		t.Errorf("nested position not collapsed: (%v,%v)", el.X, el.Y)
	}
	if el.Position != nil {
		t.Error("position kept after normalization")
	}
}

func TestLoadEmptyResetsToBlankPage(t *testing.T) {
	d := New()
	d.AddElement(NewFreeText(1, 2))
	d.Load(nil)
	if d.PageCount() != 1 {
		t.Fatalf("page count = %d, want 1", d.PageCount())
	}
	if len(d.ActivePage().Elements) != 0 {
		t.Error("blank reset kept elements")
	}
}

func TestNormalizeStripsFieldRefFromStatic(t *testing.T) {
	el := Element{ID: "x", Kind: KindStatic, Field: FieldParticipantName, Text: "t", FontSize: 20}
	el.Normalize()
	if el.Field != "" {
		t.Errorf("static element kept field ref %q", el.Field)
	}
}

func TestSetPaperSizeTracksActivePage(t *testing.T) {
	d := New()
	d.SetPaperSize(paper.SizeLetter)
	d.SetOrientation(paper.Portrait)
	if d.ActivePage().PaperSize != paper.SizeLetter {
		t.Errorf("active page paper = %s", d.ActivePage().PaperSize)
	}
	w, h := d.CanvasSize()
	if w != 816 || h != 1056 {
		t.Errorf("canvas = %dx%d, want 816x1056", w, h)
	}
	// New pages inherit the document mirror.
	p := d.AddPage()
	if p.PaperSize != paper.SizeLetter || p.Orientation != paper.Portrait {
		t.Errorf("new page paper = %s/%s", p.PaperSize, p.Orientation)
	}
	// Invalid values are ignored.
	d.SetPaperSize(paper.Size("B0"))
	if d.PaperSize() != paper.SizeLetter {
		t.Errorf("invalid paper size accepted: %s", d.PaperSize())
	}
}
