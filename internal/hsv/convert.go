// Package hsv implements the 8-bit HSV color space used for filament masking.
//
// Hue is stored in half degrees (0..179) so that it fits in a byte, saturation
// and value span 0..255. This is the layout most photo tooling uses for 8-bit
// HSV, so ranges picked in other tools can be used unchanged.
package hsv

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// HueScale is the number of hue steps in a full turn.
const HueScale = 180

// Color is a single HSV sample.
type Color struct {
	H, S, V uint8
}

// Fixed-point precision for the forward conversion.
const hsvShift = 12

var sdivTable, hdivTable = buildDivTables()

// buildDivTables precomputes the reciprocals used by FromRGB so the forward
// conversion runs on integer math only.
func buildDivTables() (sdiv, hdiv [256]int) {
	for i := 1; i < 256; i++ {
		sdiv[i] = int(math.RoundToEven(float64(255<<hsvShift) / float64(i)))
		hdiv[i] = int(math.RoundToEven(float64(HueScale<<hsvShift) / (6 * float64(i))))
	}
	return
}

// FromRGB converts RGB (0–255) to HSV using integer math only.
func FromRGB(r, g, b uint8) Color {
	R, G, B := int(r), int(g), int(b)
	v := max(R, G, B)
	diff := v - min(R, G, B)

	s := (diff*sdivTable[v] + 1<<(hsvShift-1)) >> hsvShift

	var h int
	switch v {
	case R:
		h = G - B
	case G:
		h = B - R + 2*diff
	default:
		h = R - G + 4*diff
	}
	h = (h*hdivTable[diff] + 1<<(hsvShift-1)) >> hsvShift
	if h < 0 {
		h += HueScale
	}

	return Color{H: uint8(h), S: uint8(s), V: uint8(v)}
}

// ToRGB converts an HSV sample back to RGB. Hue values past 179 wrap around.
func ToRGB(c Color) (r, g, b uint8) {
	deg := math.Mod(float64(c.H)*360/HueScale, 360)
	return colorful.Hsv(deg, float64(c.S)/255, float64(c.V)/255).Clamped().RGB255()
}

// InRange reports whether every component of c lies within [lo, hi].
func InRange(c, lo, hi Color) bool {
	return c.H >= lo.H && c.H <= hi.H &&
		c.S >= lo.S && c.S <= hi.S &&
		c.V >= lo.V && c.V <= hi.V
}
