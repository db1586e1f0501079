package overlay

import(
	"fmt"

	"github.com/abworrall/zmap-overlay/pkg/emath"
)

// A Window is the display range for the anatomical volume. It clips,
// it does not rescale: output stays in the input's units.
type Window struct {
	Center float64
	Width  float64
}

// NewWindow returns nil (no windowing) if neither value is given.
func NewWindow(center, width *float64) (*Window, error) {
	switch {
	case center == nil && width == nil:
		return nil, nil
	case center == nil || width == nil:
		return nil, invalidf("window center and width must be given together")
	case *width <= 0:
		return nil, invalidf("window width (%g) must be > 0", *width)
	}
	return &Window{Center: *center, Width: *width}, nil
}

func (w *Window)String() string {
	if w == nil {
		return "Window[none]"
	}
	lo, hi := w.Bounds()
	return fmt.Sprintf("Window[c=%g w=%g -> %g..%g]", w.Center, w.Width, lo, hi)
}

func (w *Window)Bounds() (lo, hi float64) {
	return w.Center - w.Width/2, w.Center + w.Width/2
}

// Clip applies the window to one sample. Samples below lo are raised to
// lo, or to zero if lo is negative; samples above hi drop to hi.
func (w *Window)Clip(v float64) float64 {
	if w == nil {
		return v
	}
	lo, hi := w.Bounds()
	if v < lo {
		if lo < 0 {
			return 0
		}
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Apply returns a windowed copy of v. With no window, v comes back as-is.
func (w *Window)Apply(v *emath.Volume) emath.Volume {
	if w == nil {
		return *v
	}
	return v.Map(w.Clip)
}
