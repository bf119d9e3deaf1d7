package hsv

import (
	"image"
)

// Image is a planar HSV image. Each plane holds one byte per pixel in
// row-major order starting at Rect.Min.
type Image struct {
	H, S, V []uint8
	Rect    image.Rectangle
}

// NewImage allocates a zeroed HSV image covering r.
func NewImage(r image.Rectangle) *Image {
	n := r.Dx() * r.Dy()
	return &Image{
		H:    make([]uint8, n),
		S:    make([]uint8, n),
		V:    make([]uint8, n),
		Rect: r,
	}
}

// Bounds returns the image rectangle.
func (m *Image) Bounds() image.Rectangle { return m.Rect }

// Offset returns the plane index of (x, y).
func (m *Image) Offset(x, y int) int {
	return (y-m.Rect.Min.Y)*m.Rect.Dx() + (x - m.Rect.Min.X)
}

// HSVAt returns the sample at (x, y). Points outside the image yield the zero Color.
func (m *Image) HSVAt(x, y int) Color {
	if !(image.Point{X: x, Y: y}).In(m.Rect) {
		return Color{}
	}
	i := m.Offset(x, y)
	return Color{H: m.H[i], S: m.S[i], V: m.V[i]}
}

// SetHSV stores c at (x, y). Points outside the image are ignored.
func (m *Image) SetHSV(x, y int, c Color) {
	if !(image.Point{X: x, Y: y}).In(m.Rect) {
		return
	}
	i := m.Offset(x, y)
	m.H[i], m.S[i], m.V[i] = c.H, c.S, c.V
}

// FromNRGBA converts an RGB image into HSV. Alpha is ignored.
func FromNRGBA(src *image.NRGBA) *Image {
	b := src.Bounds()
	dst := NewImage(b)

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		p := src.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			c := FromRGB(src.Pix[p], src.Pix[p+1], src.Pix[p+2])
			dst.H[i], dst.S[i], dst.V[i] = c.H, c.S, c.V
			p += 4
			i++
		}
	}

	return dst
}

// ToNRGBA converts the image back to opaque RGB.
func (m *Image) ToNRGBA() *image.NRGBA {
	dst := image.NewNRGBA(m.Rect)

	i := 0
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		p := dst.PixOffset(m.Rect.Min.X, y)
		for x := m.Rect.Min.X; x < m.Rect.Max.X; x++ {
			r, g, b := ToRGB(Color{H: m.H[i], S: m.S[i], V: m.V[i]})
			dst.Pix[p], dst.Pix[p+1], dst.Pix[p+2], dst.Pix[p+3] = r, g, b, 255
			p += 4
			i++
		}
	}

	return dst
}
