// Package mask builds binary selection masks over HSV images.
//
// Masks are *image.Gray values holding 255 for selected pixels and 0
// elsewhere, sharing the bounds of the image they were computed from.
package mask

import (
	"image"

	"github.com/MeKo-Tech/filamentrecolor/internal/hsv"
	"github.com/disintegration/gift"
)

const (
	// On marks a selected pixel.
	On uint8 = 255
	// Off marks an unselected pixel.
	Off uint8 = 0
)

// InRange selects every pixel whose H, S and V components all lie within
// [lo, hi], both ends inclusive.
func InRange(img *hsv.Image, lo, hi hsv.Color) *image.Gray {
	b := img.Bounds()
	m := image.NewGray(b)

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		p := m.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			c := hsv.Color{H: img.H[i], S: img.S[i], V: img.V[i]}
			if hsv.InRange(c, lo, hi) {
				m.Pix[p] = On
			}
			p++
			i++
		}
	}

	return m
}

// Selected reports whether (x, y) is selected in m.
func Selected(m *image.Gray, x, y int) bool {
	return m.GrayAt(x, y).Y != Off
}

// Open removes specks smaller than size×size pixels with a morphological
// opening (erode, then dilate). size is rounded up to the next odd value;
// sizes below 2 return m unchanged.
func Open(m *image.Gray, size int) *image.Gray {
	if size < 2 {
		return m
	}
	if size%2 == 0 {
		size++
	}

	g := gift.New(
		gift.Minimum(size, true),
		gift.Maximum(size, true),
	)

	dst := image.NewGray(g.Bounds(m.Bounds()))
	g.Draw(dst, m)

	// gift anchors its output at the origin
	dst.Rect = m.Bounds()

	return dst
}

// Count returns the number of selected pixels.
func Count(m *image.Gray) int {
	b := m.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.Pix[m.PixOffset(b.Min.X, y) : m.PixOffset(b.Min.X, y)+b.Dx()]
		for _, v := range row {
			if v != Off {
				n++
			}
		}
	}
	return n
}

// Coverage returns the selected fraction of the mask in [0, 1].
func Coverage(m *image.Gray) float64 {
	total := m.Bounds().Dx() * m.Bounds().Dy()
	if total == 0 {
		return 0
	}
	return float64(Count(m)) / float64(total)
}
