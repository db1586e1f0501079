package overlay

import (
	"errors"
	"testing"
)

func TestWindowApply(t *testing.T) {
	tests := []struct {
		center, width float64
		in, want      []float64
	}{
		{500, 200, []float64{0, 300, 500, 700, 1000}, []float64{400, 400, 500, 600, 600}},
		{50, 200, []float64{-100, -60, -10, 100, 200}, []float64{0, 0, -10, 100, 150}},
	}

	for _, tc := range tests {
		w, err := NewWindow(ptr(tc.center), ptr(tc.width))
		if err != nil {
			t.Fatalf("NewWindow: %v", err)
		}
		v := volumeOf(t, len(tc.in), 1, 1, tc.in...)
		out := w.Apply(&v)
		for i, want := range tc.want {
			if got := out.Values()[i]; got != want {
				t.Errorf("%s: in %v, expected %v, got %v", w, tc.in[i], want, got)
			}
		}
	}
}

func TestWindowIdempotent(t *testing.T) {
	w, _ := NewWindow(ptr(40), ptr(400))
	v := volumeOf(t, 6, 1, 1, -500, -160, -3, 0, 240, 9000)
	once := w.Apply(&v)
	twice := w.Apply(&once)
	for i := range once.Values() {
		if once.Values()[i] != twice.Values()[i] {
			t.Errorf("voxel %d: %v then %v", i, once.Values()[i], twice.Values()[i])
		}
	}
}

func TestNoWindowIsIdentity(t *testing.T) {
	w, err := NewWindow(nil, nil)
	if err != nil || w != nil {
		t.Fatalf("expected nil window, got %v, %v", w, err)
	}
	v := volumeOf(t, 3, 1, 1, -1e6, 0, 1e6)
	out := w.Apply(&v)
	for i, want := range []float64{-1e6, 0, 1e6} {
		if out.Values()[i] != want {
			t.Errorf("voxel %d changed to %v", i, out.Values()[i])
		}
	}
}

func TestWindowNeedsBoth(t *testing.T) {
	for _, tc := range []struct{ c, w *float64 }{
		{ptr(10), nil},
		{nil, ptr(10)},
		{ptr(10), ptr(0)},
	} {
		if _, err := NewWindow(tc.c, tc.w); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("NewWindow(%v,%v): expected invalid argument, got %v", tc.c, tc.w, err)
		}
	}
}
