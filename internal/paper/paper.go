// Package paper maps paper-size and orientation choices to canvas pixel
// dimensions at the fixed editor resolution of 96 DPI.
package paper

// Size identifies a supported paper format.
type Size string

// Orientation selects portrait or landscape layout.
type Orientation string

const (
	SizeA4     Size = "A4"
	SizeA5     Size = "A5"
	SizeLetter Size = "Letter"
	SizeLegal  Size = "Legal"

	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// DPI is the raster resolution the pixel table below is derived from.
const DPI = 96

// Portrait pixel dimensions at 96 DPI.
var dimensions = map[Size]struct{ Width, Height int }{
	SizeA4:     {Width: 794, Height: 1123},
	SizeA5:     {Width: 559, Height: 794},
	SizeLetter: {Width: 816, Height: 1056},
	SizeLegal:  {Width: 816, Height: 1344},
}

// Valid reports whether s names a known paper size.
func Valid(s Size) bool {
	_, ok := dimensions[s]
	return ok
}

// Dimensions returns the canvas size in pixels for the given paper size and
// orientation. Landscape is always the exact 90° swap of portrait. Unknown
// sizes fall back to A4 so callers never receive a zero canvas.
func Dimensions(s Size, o Orientation) (width, height int) {
	d, ok := dimensions[s]
	if !ok {
		d = dimensions[SizeA4]
	}
	if o == Landscape {
		return d.Height, d.Width
	}
	return d.Width, d.Height
}

// MM converts a pixel length at 96 DPI to millimeters (for PDF page sizing).
func MM(px int) float64 {
	return float64(px) * 25.4 / DPI
}
