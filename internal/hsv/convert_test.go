package hsv

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRGBKnownColors(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b uint8
		want    Color
	}{
		{"red", 255, 0, 0, Color{0, 255, 255}},
		{"green", 0, 255, 0, Color{60, 255, 255}},
		{"blue", 0, 0, 255, Color{120, 255, 255}},
		{"yellow filament", 200, 200, 43, Color{30, 200, 200}},
		{"gray", 128, 128, 128, Color{0, 0, 128}},
		{"black", 0, 0, 0, Color{0, 0, 0}},
		{"white", 255, 255, 255, Color{0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromRGB(tt.r, tt.g, tt.b))
		})
	}
}

func TestFromRGBHueStaysBelowScale(t *testing.T) {
	for r := 0; r < 256; r += 5 {
		for g := 0; g < 256; g += 5 {
			for b := 0; b < 256; b += 5 {
				c := FromRGB(uint8(r), uint8(g), uint8(b))
				if c.H >= HueScale {
					t.Fatalf("hue %d out of range for rgb(%d,%d,%d)", c.H, r, g, b)
				}
			}
		}
	}
}

func TestToRGBKnownColors(t *testing.T) {
	tests := []struct {
		name    string
		in      Color
		r, g, b uint8
	}{
		{"red", Color{0, 255, 255}, 255, 0, 0},
		{"green", Color{60, 255, 255}, 0, 255, 0},
		{"blue", Color{120, 255, 255}, 0, 0, 255},
		{"dim red", Color{0, 255, 200}, 200, 0, 0},
		{"yellow filament", Color{30, 200, 200}, 200, 200, 43},
		{"hue wraps at 180", Color{180, 255, 255}, 255, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, g, b := ToRGB(tt.in)
			assert.Equal(t, [3]uint8{tt.r, tt.g, tt.b}, [3]uint8{r, g, b})
		})
	}
}

func TestGrayRoundTripIsExact(t *testing.T) {
	for v := 0; v < 256; v++ {
		r, g, b := ToRGB(Color{V: uint8(v)})
		require.Equal(t, [3]uint8{uint8(v), uint8(v), uint8(v)}, [3]uint8{r, g, b}, "v=%d", v)
		require.Equal(t, Color{V: uint8(v)}, FromRGB(r, g, b), "v=%d", v)
	}
}

func TestInRangeIsInclusive(t *testing.T) {
	lo := Color{15, 50, 50}
	hi := Color{50, 255, 255}

	assert.True(t, InRange(lo, lo, hi))
	assert.True(t, InRange(hi, lo, hi))
	assert.True(t, InRange(Color{30, 200, 200}, lo, hi))
	assert.False(t, InRange(Color{14, 200, 200}, lo, hi))
	assert.False(t, InRange(Color{51, 200, 200}, lo, hi))
	assert.False(t, InRange(Color{30, 49, 200}, lo, hi))
	assert.False(t, InRange(Color{30, 200, 49}, lo, hi))
}

func TestImageConversion(t *testing.T) {
	src := image.NewNRGBA(image.Rect(2, 3, 4, 5))
	src.SetNRGBA(2, 3, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(3, 3, color.NRGBA{G: 255, A: 255})
	src.SetNRGBA(2, 4, color.NRGBA{B: 255, A: 255})
	src.SetNRGBA(3, 4, color.NRGBA{R: 200, G: 200, B: 43, A: 255})

	h := FromNRGBA(src)
	require.Equal(t, src.Bounds(), h.Bounds())
	assert.Equal(t, Color{0, 255, 255}, h.HSVAt(2, 3))
	assert.Equal(t, Color{60, 255, 255}, h.HSVAt(3, 3))
	assert.Equal(t, Color{120, 255, 255}, h.HSVAt(2, 4))
	assert.Equal(t, Color{30, 200, 200}, h.HSVAt(3, 4))
	assert.Equal(t, Color{}, h.HSVAt(0, 0))

	back := h.ToNRGBA()
	require.Equal(t, src.Bounds(), back.Bounds())
	assert.Equal(t, src.Pix, back.Pix)
}

func TestSetHSVIgnoresOutOfBounds(t *testing.T) {
	h := NewImage(image.Rect(0, 0, 1, 1))
	h.SetHSV(5, 5, Color{1, 2, 3})
	h.SetHSV(0, 0, Color{4, 5, 6})
	assert.Equal(t, Color{4, 5, 6}, h.HSVAt(0, 0))
}
