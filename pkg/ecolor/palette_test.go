package ecolor

import (
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func TestLookupCaseInsensitive(t *testing.T) {
	for _, name := range []string{"hot", "HOT", "Cool", "greys_r", "cet_linear_kryw_0_100_c71", "CET_LINEAR_BLUE_5_95_C73"} {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("viridis-but-wrong"); err == nil {
		t.Error("expected error for unknown palette")
	}
}

func TestGradientEndpoints(t *testing.T) {
	tests := []struct {
		name   string
		v      float64
		expect colorful.Color
	}{
		{"gray", 0, colorful.Color{}},
		{"gray", 1, colorful.Color{R: 1, G: 1, B: 1}},
		{"greys_r", 0, colorful.Color{}},
		{"greys_r", 1, colorful.Color{R: 1, G: 1, B: 1}},
		{"hot", 1, colorful.Color{R: 1, G: 1, B: 1}},
		{"cool", 0, colorful.Color{G: 1, B: 1}},
		{"cool", 1, colorful.Color{R: 1, B: 1}},
	}

	for _, tc := range tests {
		tf, _ := Lookup(tc.name)
		got := tf.Map(tc.v)
		if !got.AlmostEqualRgb(tc.expect) {
			t.Errorf("%s(%v): expected %v, got %v", tc.name, tc.v, tc.expect, got)
		}
	}
}

func TestMapClampsAndHandlesNaN(t *testing.T) {
	tf, _ := Lookup("hot")
	if tf.Map(-5) != tf.Map(0) {
		t.Error("values below 0 should clamp to the first LUT entry")
	}
	if tf.Map(7) != tf.Map(1) {
		t.Error("values above 1 should clamp to the last LUT entry")
	}
	if got := tf.Map(math.NaN()); got != (colorful.Color{}) {
		t.Errorf("NaN should map to black, got %v", got)
	}
}

func TestGradientIsMonotonicInLuminance(t *testing.T) {
	for _, name := range []string{"hot", "gray", "greys_r", "cet_linear_kryw_0_100_c71", "cet_linear_blue_5_95_c73"} {
		tf, _ := Lookup(name)
		prev := -1.0
		for i := 0; i < LUTSize; i++ {
			_, _, l := tf.Map(float64(i) / float64(LUTSize-1)).Hcl()
			if l+1e-9 < prev {
				t.Errorf("%s: lightness drops at LUT entry %d (%f < %f)", name, i, l, prev)
				break
			}
			prev = l
		}
	}
}

func TestNewGradientRejectsBadStops(t *testing.T) {
	bad := [][]Stop{
		HexStops("#000000"),
		{{0.1, colorful.Color{}}, {1, colorful.Color{}}},
		{{0, colorful.Color{}}, {0.8, colorful.Color{}}, {0.5, colorful.Color{}}, {1, colorful.Color{}}},
	}
	for i, stops := range bad {
		if _, err := NewGradient("bad", stops); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
