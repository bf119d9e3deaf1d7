package recolor

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/filamentrecolor/internal/hsv"
)

// ColorTable is an ordered set of targets. Batch runs follow table order.
type ColorTable []TargetColor

// DefaultColorTable returns the stock filament colors.
func DefaultColorTable() ColorTable {
	return ColorTable{
		NewTarget("rojo", hsv.Color{H: 0, S: 255, V: 255}),
		NewTarget("azul", hsv.Color{H: 120, S: 255, V: 255}),
		NewTarget("verde", hsv.Color{H: 60, S: 255, V: 255}),
		NewTarget("blanco", hsv.Color{H: 0, S: 0, V: 255}),
		NewTarget("negro", hsv.Color{H: 0, S: 0, V: 0}),
	}
}

// Validate checks that the table is non-empty and that every name is unique
// and usable as a single directory name.
func (t ColorTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("color table is empty")
	}

	seen := make(map[string]struct{}, len(t))
	for _, c := range t {
		switch {
		case c.Name == "":
			return fmt.Errorf("color with empty name")
		case c.Name == "." || c.Name == "..":
			return fmt.Errorf("invalid color name %q", c.Name)
		case strings.ContainsAny(c.Name, `/\`):
			return fmt.Errorf("color name %q must not contain path separators", c.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("duplicate color name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	return nil
}

// Lookup returns the target with the given name.
func (t ColorTable) Lookup(name string) (TargetColor, bool) {
	for _, c := range t {
		if c.Name == name {
			return c, true
		}
	}
	return TargetColor{}, false
}

// Names returns the color names in table order.
func (t ColorTable) Names() []string {
	names := make([]string, len(t))
	for i, c := range t {
		names[i] = c.Name
	}
	return names
}

// HueRange bounds the HSV values that get recolored, inclusive per component.
type HueRange struct {
	Low  hsv.Color
	High hsv.Color
}

// DefaultHueRange targets yellow filament.
func DefaultHueRange() HueRange {
	return HueRange{
		Low:  hsv.Color{H: 15, S: 50, V: 50},
		High: hsv.Color{H: 50, S: 255, V: 255},
	}
}

// Validate rejects ranges whose lower bound exceeds the upper bound on any
// component.
func (r HueRange) Validate() error {
	if r.Low.H > r.High.H || r.Low.S > r.High.S || r.Low.V > r.High.V {
		return fmt.Errorf("lower bound %v exceeds upper bound %v", r.Low, r.High)
	}
	if int(r.High.H) > hsv.HueScale {
		return fmt.Errorf("hue bound %d exceeds %d", r.High.H, hsv.HueScale)
	}
	return nil
}

// Contains reports whether c falls within the range.
func (r HueRange) Contains(c hsv.Color) bool {
	return hsv.InRange(c, r.Low, r.High)
}

func (r HueRange) String() string {
	return fmt.Sprintf("(%d,%d,%d)-(%d,%d,%d)",
		r.Low.H, r.Low.S, r.Low.V, r.High.H, r.High.S, r.High.V)
}
