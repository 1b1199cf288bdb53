// Package board rasterizes chess positions into RGBA images.
package board

import (
	"fmt"
	"image/color"
	"sort"
	"strconv"
	"strings"
)

// Palette is a named pair of square colors.
type Palette struct {
	Name  string
	Light color.RGBA
	Dark  color.RGBA
}

// DefaultPalette is used when no style is configured.
const DefaultPalette = "default"

var palettes = map[string]Palette{
	"default": {Name: "default", Light: mustHex("#F0D9B5"), Dark: mustHex("#B58863")},
	"wood":    {Name: "wood", Light: mustHex("#FFCE9E"), Dark: mustHex("#D18B47")},
	"marble":  {Name: "marble", Light: mustHex("#E8E8E8"), Dark: mustHex("#7C7C7C")},
	"blue":    {Name: "blue", Light: mustHex("#DEE3E6"), Dark: mustHex("#8CA2AD")},
	"green":   {Name: "green", Light: mustHex("#FFFFDD"), Dark: mustHex("#86A666")},
}

// LookupPalette returns the palette registered under name.
func LookupPalette(name string) (Palette, error) {
	p, ok := palettes[strings.ToLower(name)]
	if !ok {
		return Palette{}, fmt.Errorf("unknown board style %q (available: %s)", name, strings.Join(PaletteNames(), ", "))
	}
	return p, nil
}

// PaletteNames lists the registered styles in alphabetical order.
func PaletteNames() []string {
	names := make([]string, 0, len(palettes))
	for n := range palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseHex parses "#RRGGBB" or "#RRGGBBAA".
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 && len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(s) == 6 {
		v = v<<8 | 0xFF
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func mustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}
