package chart

import (
	"fmt"
	"strconv"
)

// Reserved palette indices. Index 0 is the background and index 1 the
// foreground; data series never use them.
const (
	ColorBackground = 0
	ColorForeground = 1

	// firstDataColor is the index assigned to palette entry 0.
	firstDataColor = 2
)

// RGB is one palette colour with 8-bit channels.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// Hex returns the colour as six lowercase hex digits without a leading '#'.
func (c RGB) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// RGBFromInts builds an RGB from integer channels, rejecting values outside 0..255.
func RGBFromInts(v []int) (RGB, error) {
	if len(v) != 3 {
		return RGB{}, fmt.Errorf("colour needs 3 channels, got %d", len(v))
	}
	for _, c := range v {
		if c < 0 || c > 255 {
			return RGB{}, fmt.Errorf("colour channel %d outside 0..255", c)
		}
	}
	return RGB{R: uint8(v[0]), G: uint8(v[1]), B: uint8(v[2])}, nil
}

// Palette is an ordered list of colours. Entry k is declared as colour
// index k+2 in generated scripts.
type Palette []RGB

// Index returns the colour index palette entry k is declared under.
func (p Palette) Index(k int) int {
	return k + firstDataColor
}

// Clone returns a copy of p.
func (p Palette) Clone() Palette {
	return append(Palette(nil), p...)
}

// DefaultPalette returns the palette used when a configuration names none.
// It follows Grace's default colour map from index 2 on.
func DefaultPalette() Palette {
	return Palette{
		{R: 255, G: 0, B: 0},
		{R: 0, G: 139, B: 0},
		{R: 0, G: 0, B: 255},
		{R: 255, G: 165, B: 0},
		{R: 148, G: 0, B: 211},
		{R: 0, G: 200, B: 200},
		{R: 255, G: 0, B: 255},
		{R: 165, G: 42, B: 42},
	}
}

// Color is the colour assigned to one series: either a declared palette
// index or a backend colour name.
type Color struct {
	Index int
	Name  string
}

// IsNamed reports whether the colour is a backend colour name.
func (c Color) IsNamed() bool {
	return c.Name != ""
}

// Var returns the script variable the palette colour is declared as.
func (c Color) Var() string {
	return "color" + strconv.Itoa(c.Index)
}

func (c Color) String() string {
	if c.IsNamed() {
		return c.Name
	}
	return strconv.Itoa(c.Index)
}

// ScatterColor returns the colour of the i-th series of a scatter subplot
// for a palette of paletteSize entries. Indices saturate at the last
// palette entry and never fall on the reserved 0 and 1.
func ScatterColor(i, paletteSize int) Color {
	if paletteSize < 1 {
		paletteSize = 1
	}
	return Color{Index: min(i+1, paletteSize) + 1}
}

// Fixed bar colours per backend.
var barColorNames = map[Backend][3]string{
	BackendStat:    {"green", "blue", "red"},
	BackendGeneral: {"g", "b", "r"},
	BackendMacro:   {"g", "b", "r"},
}

// BarColors returns the colours of n bar series, cycling through the
// backend's three fixed colours.
func BarColors(b Backend, n int) []Color {
	names, ok := barColorNames[b]
	if !ok {
		names = barColorNames[BackendGeneral]
	}
	colors := make([]Color, n)
	for i := range colors {
		colors[i] = Color{Name: names[i%len(names)]}
	}
	return colors
}
