package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/math/fixed"
)

func floatToFixed(f float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(f * 64))
}

// ParseHexColor parses "#rrggbb" (or the short "#rgb" form). Anything it
// cannot parse comes back black, matching how browsers treat a broken color
// on a canvas fill.
func ParseHexColor(s string) color.RGBA {
	black := color.RGBA{A: 0xff}
	if len(s) == 0 || s[0] != '#' {
		return black
	}
	hex := s[1:]
	var r, g, b uint8
	switch len(hex) {
	case 6:
		r = hexByte(hex[0], hex[1])
		g = hexByte(hex[2], hex[3])
		b = hexByte(hex[4], hex[5])
	case 3:
		r = hexByte(hex[0], hex[0])
		g = hexByte(hex[1], hex[1])
		b = hexByte(hex[2], hex[2])
	default:
		return black
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func hexByte(hi, lo byte) uint8 {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(c byte) uint8 {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// fillRectF fills an axis-aligned rectangle given in float coordinates,
// rounded outward to whole pixels.
func fillRectF(dst *image.RGBA, x, y, w, h float64, col color.RGBA) {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	x1 := int(math.Ceil(x + w))
	y1 := int(math.Ceil(y + h))
	b := dst.Bounds()
	if x0 < b.Min.X {
		x0 = b.Min.X
	}
	if y0 < b.Min.Y {
		y0 = b.Min.Y
	}
	if x1 > b.Max.X {
		x1 = b.Max.X
	}
	if y1 > b.Max.Y {
		y1 = b.Max.Y
	}
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			dst.SetRGBA(px, py, col)
		}
	}
}

// fillCircleF fills a solid disc centered at (cx, cy).
func fillCircleF(dst *image.RGBA, cx, cy, r float64, col color.RGBA) {
	x0 := int(math.Floor(cx - r))
	y0 := int(math.Floor(cy - r))
	x1 := int(math.Ceil(cx + r))
	y1 := int(math.Ceil(cy + r))
	rr := r * r
	for py := y0; py <= y1; py++ {
		for px := x0; px <= x1; px++ {
			dx := float64(px) + 0.5 - cx
			dy := float64(py) + 0.5 - cy
			if dx*dx+dy*dy <= rr {
				if image.Pt(px, py).In(dst.Bounds()) {
					dst.SetRGBA(px, py, col)
				}
			}
		}
	}
}

// strokeBorder draws an inset border of the given thickness along the raster
// edge.
func strokeBorder(dst *image.RGBA, width, height, thickness int, col color.RGBA) {
	t := float64(thickness)
	w := float64(width)
	h := float64(height)
	fillRectF(dst, 0, 0, w, t, col)
	fillRectF(dst, 0, h-t, w, t, col)
	fillRectF(dst, 0, 0, t, h, col)
	fillRectF(dst, w-t, 0, t, h, col)
}

// strokeDashedRect outlines a rectangle with a 1px dashed stroke. dash and gap
// are the on/off run lengths in pixels.
func strokeDashedRect(dst *image.RGBA, x, y, w, h float64, dash, gap float64, col color.RGBA) {
	dashedHLine(dst, x, x+w, y, dash, gap, col)
	dashedHLine(dst, x, x+w, y+h, dash, gap, col)
	dashedVLine(dst, y, y+h, x, dash, gap, col)
	dashedVLine(dst, y, y+h, x+w, dash, gap, col)
}

func dashedHLine(dst *image.RGBA, x0, x1, y float64, dash, gap float64, col color.RGBA) {
	py := int(math.Round(y))
	period := dash + gap
	for px := int(math.Round(x0)); px <= int(math.Round(x1)); px++ {
		if math.Mod(float64(px)-x0, period) < dash {
			if image.Pt(px, py).In(dst.Bounds()) {
				dst.SetRGBA(px, py, col)
			}
		}
	}
}

func dashedVLine(dst *image.RGBA, y0, y1, x float64, dash, gap float64, col color.RGBA) {
	px := int(math.Round(x))
	period := dash + gap
	for py := int(math.Round(y0)); py <= int(math.Round(y1)); py++ {
		if math.Mod(float64(py)-y0, period) < dash {
			if image.Pt(px, py).In(dst.Bounds()) {
				dst.SetRGBA(px, py, col)
			}
		}
	}
}

// compositeRotated alpha-blends src onto dst with src's center placed at
// (cx, cy) and the whole buffer rotated by angleDeg clockwise. It walks the
// destination footprint and inverse-maps each pixel back into src with
// bilinear sampling, so there are no holes at any angle. A zero angle takes a
// direct blend path.
func compositeRotated(dst *image.RGBA, src *image.RGBA, cx, cy, angleDeg float64) {
	sb := src.Bounds()
	sw := float64(sb.Dx())
	sh := float64(sb.Dy())
	scx := sw / 2
	scy := sh / 2

	if angleDeg == 0 {
		blendAt(dst, src, int(math.Round(cx-scx)), int(math.Round(cy-scy)))
		return
	}

	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sincos(rad)

	// Destination bounding box of the rotated buffer.
	half := math.Hypot(scx, scy)
	x0 := int(math.Floor(cx - half))
	y0 := int(math.Floor(cy - half))
	x1 := int(math.Ceil(cx + half))
	y1 := int(math.Ceil(cy + half))
	db := dst.Bounds()
	if x0 < db.Min.X {
		x0 = db.Min.X
	}
	if y0 < db.Min.Y {
		y0 = db.Min.Y
	}
	if x1 > db.Max.X {
		x1 = db.Max.X
	}
	if y1 > db.Max.Y {
		y1 = db.Max.Y
	}

	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			// Inverse rotation: destination pixel back to source space.
			dx := float64(px) + 0.5 - cx
			dy := float64(py) + 0.5 - cy
			sx := cos*dx + sin*dy + scx
			sy := -sin*dx + cos*dy + scy
			if sx < 0 || sy < 0 || sx >= sw || sy >= sh {
				continue
			}
			r, g, b, a := bilinearRGBA(src, sx, sy)
			if a == 0 {
				continue
			}
			blendPixel(dst, px, py, r, g, b, a)
		}
	}
}

// blendAt alpha-blends src over dst with src's origin at (ox, oy).
func blendAt(dst *image.RGBA, src *image.RGBA, ox, oy int) {
	sb := src.Bounds()
	db := dst.Bounds()
	for sy := sb.Min.Y; sy < sb.Max.Y; sy++ {
		for sx := sb.Min.X; sx < sb.Max.X; sx++ {
			px := ox + sx - sb.Min.X
			py := oy + sy - sb.Min.Y
			if px < db.Min.X || py < db.Min.Y || px >= db.Max.X || py >= db.Max.Y {
				continue
			}
			c := src.RGBAAt(sx, sy)
			if c.A == 0 {
				continue
			}
			blendPixel(dst, px, py, float64(c.R), float64(c.G), float64(c.B), float64(c.A))
		}
	}
}

func blendPixel(dst *image.RGBA, px, py int, r, g, b, a float64) {
	if a >= 255 {
		dst.SetRGBA(px, py, color.RGBA{uint8(r), uint8(g), uint8(b), 0xff})
		return
	}
	d := dst.RGBAAt(px, py)
	alpha := a / 255
	inv := 1 - alpha
	dst.SetRGBA(px, py, color.RGBA{
		R: uint8(r*alpha + float64(d.R)*inv),
		G: uint8(g*alpha + float64(d.G)*inv),
		B: uint8(b*alpha + float64(d.B)*inv),
		A: uint8(math.Min(255, a+float64(d.A)*inv)),
	})
}

// bilinearRGBA samples src at a fractional position.
func bilinearRGBA(src *image.RGBA, x, y float64) (r, g, b, a float64) {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	sample := func(px, py int) color.RGBA {
		b := src.Bounds()
		if px < b.Min.X || py < b.Min.Y || px >= b.Max.X || py >= b.Max.Y {
			return color.RGBA{}
		}
		return src.RGBAAt(px, py)
	}

	c00 := sample(x0, y0)
	c10 := sample(x0+1, y0)
	c01 := sample(x0, y0+1)
	c11 := sample(x0+1, y0+1)

	lerp2 := func(a00, a10, a01, a11 uint8) float64 {
		top := float64(a00)*(1-fx) + float64(a10)*fx
		bot := float64(a01)*(1-fx) + float64(a11)*fx
		return top*(1-fy) + bot*fy
	}

	return lerp2(c00.R, c10.R, c01.R, c11.R),
		lerp2(c00.G, c10.G, c01.G, c11.G),
		lerp2(c00.B, c10.B, c01.B, c11.B),
		lerp2(c00.A, c10.A, c01.A, c11.A)
}
