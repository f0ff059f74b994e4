// Package render paints template pages onto an in-memory raster surface. The
// engine owns the one text-measurement routine shared with hit-testing, so the
// selection box the editor draws and the region the controller tests can never
// drift apart. Rendering is deterministic: the same page, data and font state
// produce identical pixels, which is what makes the edit view, the
// participant view and the export byte-compatible.
package render

import (
	"bytes"
	"image"
	"image/png"
)

// Surface is the raster backing store a page is painted onto.
type Surface struct {
	img *image.RGBA
}

// NewSurface returns an empty surface; the first Render sizes it.
func NewSurface() *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, 1, 1))}
}

// Resize reallocates the backing raster only when the dimensions actually
// change, leaving the pixels untouched otherwise.
func (s *Surface) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	b := s.img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return
	}
	s.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Size returns the current raster dimensions.
func (s *Surface) Size() (width, height int) {
	b := s.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image exposes the backing raster.
func (s *Surface) Image() *image.RGBA { return s.img }

// PNG serializes the raster to a PNG byte stream.
func (s *Surface) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
