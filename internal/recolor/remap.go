// Package recolor swaps the color of a hue range in photographs.
//
// Pixels whose HSV value falls inside a HueRange get the hue and saturation
// of a TargetColor. Their brightness is derived from the original pixel
// according to the target's Category, so shading on the recolored object
// survives. Everything outside the range is copied through unchanged.
package recolor

import (
	"image"

	"github.com/MeKo-Tech/filamentrecolor/internal/hsv"
	"github.com/MeKo-Tech/filamentrecolor/internal/mask"
	"golang.org/x/image/draw"
)

type options struct {
	cleanup         int
	maskedRangeOnly bool
}

// Option tunes Remap and Mask.
type Option func(*options)

// WithMaskCleanup removes selected specks smaller than size×size pixels
// before recoloring. Zero disables cleanup.
func WithMaskCleanup(size int) Option {
	return func(o *options) { o.cleanup = size }
}

// WithMaskedRangeOnly makes Normal targets rescale brightness using the
// min/max of selected pixels only. By default the min/max is taken over the
// whole image with unselected pixels counted as 0.
func WithMaskedRangeOnly(enabled bool) Option {
	return func(o *options) { o.maskedRangeOnly = enabled }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Opaque copies img into a new NRGBA image and drops its alpha channel.
func Opaque(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 255
	}
	return dst
}

// Mask returns the pixels of img that Remap would recolor.
func Mask(img image.Image, rng HueRange, opts ...Option) *image.Gray {
	o := buildOptions(opts)
	return selection(hsv.FromNRGBA(Opaque(img)), rng, o)
}

func selection(h *hsv.Image, rng HueRange, o options) *image.Gray {
	m := mask.InRange(h, rng.Low, rng.High)
	if o.cleanup > 0 {
		m = mask.Open(m, o.cleanup)
	}
	return m
}

// Remap recolors the pixels of img that fall inside rng. img is not modified.
func Remap(img image.Image, target TargetColor, rng HueRange, opts ...Option) *image.NRGBA {
	out, _ := Apply(img, target, rng, opts...)
	return out
}

// Apply is Remap that also returns the selection mask it used.
func Apply(img image.Image, target TargetColor, rng HueRange, opts ...Option) (*image.NRGBA, *image.Gray) {
	o := buildOptions(opts)

	dst := Opaque(img)
	h := hsv.FromNRGBA(dst)
	sel := selection(h, rng, o)

	selected := selectedFlags(sel)
	values := brightness(maskedValues(h.V, selected), selected, target.Category, o.maskedRangeOnly)
	lut := targetLUT(target)

	b := dst.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		p := dst.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			if selected[i] {
				c := lut[values[i]]
				dst.Pix[p], dst.Pix[p+1], dst.Pix[p+2] = c[0], c[1], c[2]
			}
			p += 4
			i++
		}
	}

	return dst, sel
}

// selectedFlags flattens a mask into row-major flags.
func selectedFlags(m *image.Gray) []bool {
	b := m.Bounds()
	flags := make([]bool, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		p := m.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			flags = append(flags, m.Pix[p] != mask.Off)
			p++
		}
	}
	return flags
}

// maskedValues copies v with every unselected entry set to 0.
func maskedValues(v []uint8, selected []bool) []uint8 {
	out := make([]uint8, len(v))
	for i, val := range v {
		if selected[i] {
			out[i] = val
		}
	}
	return out
}

// brightness derives the new V plane from the masked one.
func brightness(masked []uint8, selected []bool, cat Category, maskedRangeOnly bool) []uint8 {
	out := make([]uint8, len(masked))

	switch cat {
	case White:
		copy(out, masked)

	case Black:
		for i, v := range masked {
			out[i] = uint8(float64(v) * blackFactor)
		}

	default:
		lo, hi, ok := valueRange(masked, selected, maskedRangeOnly)
		if !ok || lo == hi {
			copy(out, masked)
			return out
		}
		span := float64(hi - lo)
		for i, v := range masked {
			if maskedRangeOnly && !selected[i] {
				continue
			}
			out[i] = uint8(float64(v-lo) / span * 255)
		}
	}

	return out
}

// valueRange returns the min and max of masked. With maskedOnly, unselected
// entries are skipped and ok is false when nothing is selected.
func valueRange(masked []uint8, selected []bool, maskedOnly bool) (lo, hi uint8, ok bool) {
	lo = 255
	for i, v := range masked {
		if maskedOnly && !selected[i] {
			continue
		}
		ok = true
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi, ok
}

// targetLUT maps every brightness to the RGB of the target hue/saturation.
func targetLUT(t TargetColor) [256][3]uint8 {
	var lut [256][3]uint8
	for v := 0; v < 256; v++ {
		r, g, b := hsv.ToRGB(hsv.Color{H: t.Hue, S: t.Saturation, V: uint8(v)})
		lut[v] = [3]uint8{r, g, b}
	}
	return lut
}
