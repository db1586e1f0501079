package ecolor

import(
	"github.com/lucasb-eyer/go-colorful"
)

// The built-in palettes. The plain names follow the classic plotting
// colormaps exactly; the cet_* ones are the perceptually uniform colorcet
// maps, approximated by control points read off the published tables.

func mustGradient(name string, stops []Stop) *Gradient {
	g, err := NewGradient(name, stops)
	if err != nil {
		panic(err)
	}
	return g
}

func init() {
	Register(mustGradient("hot", []Stop{
		{0.0,      colorful.Color{R: 0.0416}},
		{0.365079, colorful.Color{R: 1}},
		{0.746032, colorful.Color{R: 1, G: 1}},
		{1.0,      colorful.Color{R: 1, G: 1, B: 1}},
	}))
	Register(mustGradient("cool",    HexStops("#00ffff", "#ff00ff")))
	Register(mustGradient("autumn",  HexStops("#ff0000", "#ffff00")))
	Register(mustGradient("winter",  HexStops("#0000ff", "#00ff80")))
	Register(mustGradient("spring",  HexStops("#ff00ff", "#ffff00")))
	Register(mustGradient("summer",  HexStops("#008066", "#ffff66")))
	Register(mustGradient("gray",    HexStops("#000000", "#ffffff")))

	// ColorBrewer's 9-class Greys, both ways round
	greys := []string{"#ffffff", "#f0f0f0", "#d9d9d9", "#bdbdbd", "#969696", "#737373", "#525252", "#252525", "#000000"}
	Register(mustGradient("greys",   HexStops(greys...)))
	Register(mustGradient("greys_r", HexStops(reversed(greys)...)))

	Register(mustGradient("cet_linear_kryw_0_100_c71",
		HexStops("#000000", "#4c0000", "#8e0a00", "#c83000", "#ec6a00", "#f8a400", "#fbd53a", "#fdf3a8", "#ffffff")))
	Register(mustGradient("cet_linear_blue_5_95_c73",
		HexStops("#0b0953", "#131c8c", "#1b33bd", "#2453e0", "#3478f0", "#4f9cf5", "#77bdf8", "#a9dbfb", "#dff5ff")))
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i := range in {
		out[len(in)-1-i] = in[i]
	}
	return out
}
