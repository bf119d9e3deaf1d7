package recolor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/filamentrecolor/internal/hsv"
)

// Category selects how the brightness of recolored pixels is derived.
type Category int

const (
	// Normal rescales masked brightness to the full 0..255 range.
	Normal Category = iota
	// White keeps the original brightness of masked pixels.
	White
	// Black darkens masked pixels to a fifth of their brightness.
	Black
)

// blackFactor scales brightness for the Black category.
const blackFactor = 0.2

func (c Category) String() string {
	switch c {
	case Normal:
		return "normal"
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory parses a category name as printed by Category.String.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal":
		return Normal, nil
	case "white":
		return White, nil
	case "black":
		return Black, nil
	default:
		return Normal, fmt.Errorf("unknown category %q (want normal, white or black)", s)
	}
}

// CategoryOf derives the category from a literal HSV triple:
// (0,0,255) is White, (0,0,0) is Black, anything else is Normal.
func CategoryOf(c hsv.Color) Category {
	switch c {
	case hsv.Color{H: 0, S: 0, V: 255}:
		return White
	case hsv.Color{H: 0, S: 0, V: 0}:
		return Black
	default:
		return Normal
	}
}

// TargetColor is a named recoloring target. Only Hue and Saturation are
// written into recolored pixels; Value matters only through Category.
type TargetColor struct {
	Name       string
	Hue        uint8
	Saturation uint8
	Value      uint8
	Category   Category
}

// NewTarget builds a target and fixes its category from the triple.
func NewTarget(name string, c hsv.Color) TargetColor {
	return TargetColor{
		Name:       name,
		Hue:        c.H,
		Saturation: c.S,
		Value:      c.V,
		Category:   CategoryOf(c),
	}
}

// HSV returns the literal triple the target was configured with.
func (t TargetColor) HSV() hsv.Color {
	return hsv.Color{H: t.Hue, S: t.Saturation, V: t.Value}
}

func (t TargetColor) String() string {
	return fmt.Sprintf("%s (%d,%d,%d %s)", t.Name, t.Hue, t.Saturation, t.Value, t.Category)
}

// ParseTriple parses "h,s,v" into an HSV color. Each component must fit in
// a byte; hue must not exceed hsv.HueScale.
func ParseTriple(s string) (hsv.Color, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return hsv.Color{}, fmt.Errorf("expected 3 comma-separated values, got %d", len(parts))
	}

	var vals [3]uint8
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
		if err != nil {
			return hsv.Color{}, fmt.Errorf("invalid number at position %d: %w", i, err)
		}
		vals[i] = uint8(v)
	}

	c := hsv.Color{H: vals[0], S: vals[1], V: vals[2]}
	if int(c.H) > hsv.HueScale {
		return hsv.Color{}, fmt.Errorf("hue %d exceeds %d", c.H, hsv.HueScale)
	}
	return c, nil
}

// ParseTarget parses "name=h,s,v".
func ParseTarget(s string) (TargetColor, error) {
	name, triple, ok := strings.Cut(s, "=")
	if !ok {
		return TargetColor{}, fmt.Errorf("expected name=h,s,v, got %q", s)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return TargetColor{}, fmt.Errorf("missing color name in %q", s)
	}

	c, err := ParseTriple(triple)
	if err != nil {
		return TargetColor{}, fmt.Errorf("color %s: %w", name, err)
	}
	return NewTarget(name, c), nil
}
