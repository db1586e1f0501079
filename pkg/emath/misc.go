package emath

import "math"

// Some functions that only operate on basic types, that are useful

// Clamp01 pins f into [0,1]. NaN is passed through.
func Clamp01(f float64) float64 {
	if f < 0 { return 0 }
	if f > 1 { return 1 }
	return f
}

// Snap rounds values that are within float noise of an integer, e.g. cos(90deg).
func Snap(f float64) float64 {
	if r := math.Round(f); math.Abs(f-r) < 1e-12 {
		return r
	}
	return f
}

// To8 maps a unit channel value to a byte, truncating like a uint8 cast of
// (f * 255).
func To8(f float64) uint8 {
	if math.IsNaN(f) { return 0 }
	return uint8(Clamp01(f) * 255.0)
}
