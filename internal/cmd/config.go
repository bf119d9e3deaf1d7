package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/MeKo-Tech/filamentrecolor/internal/hsv"
	"github.com/MeKo-Tech/filamentrecolor/internal/recolor"
)

// colorEntry is one item of the run.colors config list.
type colorEntry struct {
	Name       string `mapstructure:"name"`
	Category   string `mapstructure:"category"`
	Hue        int    `mapstructure:"hue"`
	Saturation int    `mapstructure:"saturation"`
	Value      int    `mapstructure:"value"`
}

func (e colorEntry) target() (recolor.TargetColor, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return recolor.TargetColor{}, fmt.Errorf("color entry without name")
	}
	if e.Hue < 0 || e.Hue > hsv.HueScale {
		return recolor.TargetColor{}, fmt.Errorf("color %s: hue %d out of range 0-%d", name, e.Hue, hsv.HueScale)
	}
	if e.Saturation < 0 || e.Saturation > 255 || e.Value < 0 || e.Value > 255 {
		return recolor.TargetColor{}, fmt.Errorf("color %s: saturation and value must be within 0-255", name)
	}

	t := recolor.NewTarget(name, hsv.Color{H: uint8(e.Hue), S: uint8(e.Saturation), V: uint8(e.Value)})
	if e.Category != "" {
		cat, err := recolor.ParseCategory(e.Category)
		if err != nil {
			return recolor.TargetColor{}, fmt.Errorf("color %s: %w", name, err)
		}
		t.Category = cat
	}
	return t, nil
}

// configColorEntries reads run.colors from the loaded configuration.
func configColorEntries() ([]colorEntry, error) {
	var entries []colorEntry
	if err := viper.UnmarshalKey("run.colors", &entries); err != nil {
		return nil, fmt.Errorf("invalid run.colors: %w", err)
	}
	return entries, nil
}

// resolveColors picks the color table: --color flags first, then the config
// list, then the default table.
func resolveColors(flagColors []string, entries []colorEntry) (recolor.ColorTable, error) {
	var table recolor.ColorTable

	switch {
	case len(flagColors) > 0:
		for _, s := range flagColors {
			t, err := recolor.ParseTarget(s)
			if err != nil {
				return nil, err
			}
			table = append(table, t)
		}
	case len(entries) > 0:
		for _, e := range entries {
			t, err := e.target()
			if err != nil {
				return nil, err
			}
			table = append(table, t)
		}
	default:
		table = recolor.DefaultColorTable()
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// resolveHueRange parses the lower and upper bounds. An empty bound keeps
// the default.
func resolveHueRange(lower, upper string) (recolor.HueRange, error) {
	rng := recolor.DefaultHueRange()

	if strings.TrimSpace(lower) != "" {
		c, err := recolor.ParseTriple(lower)
		if err != nil {
			return recolor.HueRange{}, fmt.Errorf("invalid lower bound: %w", err)
		}
		rng.Low = c
	}
	if strings.TrimSpace(upper) != "" {
		c, err := recolor.ParseTriple(upper)
		if err != nil {
			return recolor.HueRange{}, fmt.Errorf("invalid upper bound: %w", err)
		}
		rng.High = c
	}

	if err := rng.Validate(); err != nil {
		return recolor.HueRange{}, err
	}
	return rng, nil
}
