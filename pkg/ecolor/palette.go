package ecolor

import(
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// A TransferFunction maps a normalized scalar in [0,1] to a display
// color. NaN is "no value", and maps to black; callers are expected to
// mask it out with alpha rather than draw it.
type TransferFunction interface {
	Map(v float64) colorful.Color
	Name() string
}

// LUTSize matches the 256 entry lookup tables of the usual plotting
// colormaps, so quantization lines up with them.
const LUTSize = 256

// A Stop pins a color at a position along a Gradient.
type Stop struct {
	Pos float64
	Col colorful.Color
}

// Gradient is a piecewise-linear (in sRGB) colormap, sampled into a LUT.
type Gradient struct {
	name string
	lut  [LUTSize]colorful.Color
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(fmt.Sprintf("bad palette color %q: %v", s, err))
	}
	return c
}

// HexStops is a shorthand for stops spaced evenly across [0,1].
func HexStops(hexes ...string) []Stop {
	stops := make([]Stop, len(hexes))
	for i, h := range hexes {
		pos := 0.0
		if len(hexes) > 1 {
			pos = float64(i) / float64(len(hexes)-1)
		}
		stops[i] = Stop{Pos: pos, Col: mustHex(h)}
	}
	return stops
}

// NewGradient samples the stops (which must be sorted, starting at 0 and
// ending at 1) into a LUT.
func NewGradient(name string, stops []Stop) (*Gradient, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("gradient %s: need at least two stops", name)
	}
	if stops[0].Pos != 0 || stops[len(stops)-1].Pos != 1 {
		return nil, fmt.Errorf("gradient %s: stops must span [0,1]", name)
	}
	if !sort.SliceIsSorted(stops, func(i, j int) bool { return stops[i].Pos < stops[j].Pos }) {
		return nil, fmt.Errorf("gradient %s: stops out of order", name)
	}

	g := Gradient{name: name}
	seg := 0
	for i:=0; i<LUTSize; i++ {
		x := float64(i) / float64(LUTSize-1)
		for seg < len(stops)-2 && x > stops[seg+1].Pos {
			seg++
		}
		a, b := stops[seg], stops[seg+1]
		t := 0.0
		if b.Pos > a.Pos {
			t = (x - a.Pos) / (b.Pos - a.Pos)
		}
		g.lut[i] = a.Col.BlendRgb(b.Col, t).Clamped()
	}
	return &g, nil
}

func (g *Gradient)Name() string { return g.name }

func (g *Gradient)Map(v float64) colorful.Color {
	if math.IsNaN(v) {
		return colorful.Color{}
	}
	idx := int(v * LUTSize)
	if idx < 0 { idx = 0 }
	if idx >= LUTSize { idx = LUTSize-1 }
	return g.lut[idx]
}

var(
	palettes = map[string]TransferFunction{}
)

// Register adds a palette under its (case-insensitive) name.
func Register(tf TransferFunction) {
	palettes[strings.ToLower(tf.Name())] = tf
}

// Lookup resolves a palette name.
func Lookup(name string) (TransferFunction, error) {
	if tf, exists := palettes[strings.ToLower(name)]; exists {
		return tf, nil
	}
	return nil, fmt.Errorf("no palette named '%s', wanted one of %s", name, ListPalettes())
}

func ListPalettes() string {
	names := []string{}
	for n := range palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return fmt.Sprintf("%v", names)
}
