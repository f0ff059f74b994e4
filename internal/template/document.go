package template

import (
	"github.com/google/uuid"

	"github.com/MR-Munggaran/belajar-sertif/internal/paper"
)

// Document is the owned, single-writer template model the render engine reads
// and the interaction controller mutates. All mutation happens synchronously
// on one goroutine (the UI event path); the struct carries no locking.
//
// Invariants maintained by every method:
//   - at least one page always exists;
//   - page numbers are a dense 1-based sequence in list order;
//   - the active page id always references an existing page;
//   - the selection references an element on the active page, or nothing.
type Document struct {
	paperSize   paper.Size
	orientation paper.Orientation

	pages           []*Page
	activePageID    string
	activeElementID string
}

// New creates a document with a single blank page.
func New() *Document {
	d := &Document{
		paperSize:   paper.SizeA4,
		orientation: paper.Landscape,
	}
	d.appendBlankPage()
	return d
}

func (d *Document) appendBlankPage() *Page {
	p := &Page{
		ID:          uuid.NewString(),
		PageNumber:  len(d.pages) + 1,
		Elements:    []Element{},
		PaperSize:   d.paperSize,
		Orientation: d.orientation,
	}
	d.pages = append(d.pages, p)
	d.activePageID = p.ID
	d.activeElementID = ""
	return p
}

// Pages returns the page list in display order. Callers must treat the slice
// as read-only; mutation goes through the document methods.
func (d *Document) Pages() []*Page { return d.pages }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return len(d.pages) }

// ActivePage returns the page currently being edited. A document always has
// an active page.
func (d *Document) ActivePage() *Page {
	for _, p := range d.pages {
		if p.ID == d.activePageID {
			return p
		}
	}
	// Unreachable as long as the invariants hold, but never return nil.
	return d.pages[0]
}

// ActiveElementID returns the current selection, or "" when nothing is
// selected.
func (d *Document) ActiveElementID() string { return d.activeElementID }

// ActiveElement returns the selected element on the active page, or nil.
func (d *Document) ActiveElement() *Element {
	if d.activeElementID == "" {
		return nil
	}
	page := d.ActivePage()
	for i := range page.Elements {
		if page.Elements[i].ID == d.activeElementID {
			return &page.Elements[i]
		}
	}
	return nil
}

// Select marks the element as active. Selecting an id not present on the
// active page clears the selection instead.
func (d *Document) Select(id string) {
	page := d.ActivePage()
	for i := range page.Elements {
		if page.Elements[i].ID == id {
			d.activeElementID = id
			return
		}
	}
	d.activeElementID = ""
}

// ClearSelection drops the active element.
func (d *Document) ClearSelection() { d.activeElementID = "" }

// CanvasSize returns the active page's raster dimensions.
func (d *Document) CanvasSize() (width, height int) {
	return d.ActivePage().CanvasSize()
}

// PaperSize returns the document-level paper size mirror.
func (d *Document) PaperSize() paper.Size { return d.paperSize }

// Orientation returns the document-level orientation mirror.
func (d *Document) Orientation() paper.Orientation { return d.orientation }

// SetPaperSize updates the active page's paper size and the document mirror
// used as the default for new pages. Unknown sizes are ignored.
func (d *Document) SetPaperSize(s paper.Size) {
	if !paper.Valid(s) {
		return
	}
	d.paperSize = s
	d.ActivePage().PaperSize = s
}

// SetOrientation updates the active page's orientation and the document
// mirror. Values other than portrait/landscape are ignored.
func (d *Document) SetOrientation(o paper.Orientation) {
	if o != paper.Portrait && o != paper.Landscape {
		return
	}
	d.orientation = o
	d.ActivePage().Orientation = o
}

// AddPage appends a blank page, makes it active and clears the selection.
func (d *Document) AddPage() *Page {
	return d.appendBlankPage()
}

// RemovePage deletes the page with the given id and renumbers the remainder
// 1..N. Removing the last remaining page, or an unknown id, is a no-op.
// Returns whether a page was removed.
func (d *Document) RemovePage(id string) bool {
	if len(d.pages) <= 1 {
		return false
	}
	idx := -1
	for i, p := range d.pages {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	d.pages = append(d.pages[:idx], d.pages[idx+1:]...)
	for i, p := range d.pages {
		p.PageNumber = i + 1
	}
	if d.activePageID == id {
		d.activePageID = d.pages[0].ID
		d.activeElementID = ""
	}
	return true
}

// SetActivePage switches editing to the page with the given id and clears the
// selection (selection is scoped to a single page). Unknown ids are ignored.
func (d *Document) SetActivePage(id string) {
	for _, p := range d.pages {
		if p.ID == id {
			d.activePageID = p.ID
			d.activeElementID = ""
			return
		}
	}
}

// Load replaces the entire page list with persisted pages, normalizing every
// page and element so the model never holds missing required fields. An empty
// input resets to one blank page. The first page becomes active with no
// selection.
func (d *Document) Load(pages []Page) {
	d.pages = d.pages[:0]
	if len(pages) == 0 {
		d.appendBlankPage()
		return
	}
	for i := range pages {
		p := pages[i] // copy, the caller keeps ownership of its slice
		p.Normalize(i + 1)
		d.pages = append(d.pages, &p)
	}
	first := d.pages[0]
	d.activePageID = first.ID
	d.activeElementID = ""
	d.paperSize = first.PaperSize
	d.orientation = first.Orientation
}

// Snapshot returns a deep copy of the page list in the persisted wire shape.
func (d *Document) Snapshot() []Page {
	out := make([]Page, 0, len(d.pages))
	for _, p := range d.pages {
		cp := *p
		cp.Elements = make([]Element, len(p.Elements))
		copy(cp.Elements, p.Elements)
		out = append(out, cp)
	}
	return out
}

// InsertPoint returns where the next added element should sit: centered
// horizontally, with each new element stacked 100px below the previous one
// starting from the vertical center of the active page.
func (d *Document) InsertPoint() (x, y float64) {
	w, h := d.CanvasSize()
	page := d.ActivePage()
	return float64(w) / 2, float64(h)/2 + float64(len(page.Elements))*100
}

// SetBackgroundImage sets (or clears, with "") the active page's background
// image reference.
func (d *Document) SetBackgroundImage(ref string) {
	d.ActivePage().BackgroundImage = ref
}

// AddElement appends the element to the active page and selects it.
func (d *Document) AddElement(el Element) {
	el.Normalize()
	page := d.ActivePage()
	page.Elements = append(page.Elements, el)
	d.activeElementID = el.ID
}

// RemoveElement deletes the element from the active page. Removing the
// selected element clears the selection. Unknown ids are a no-op.
func (d *Document) RemoveElement(id string) {
	page := d.ActivePage()
	for i := range page.Elements {
		if page.Elements[i].ID == id {
			page.Elements = append(page.Elements[:i], page.Elements[i+1:]...)
			if d.activeElementID == id {
				d.activeElementID = ""
			}
			return
		}
	}
}

// UpdateElement shallow-merges the patch into the matching element on the
// active page. Unknown ids are a no-op.
func (d *Document) UpdateElement(id string, patch ElementPatch) {
	page := d.ActivePage()
	for i := range page.Elements {
		if page.Elements[i].ID == id {
			patch.apply(&page.Elements[i])
			return
		}
	}
}
