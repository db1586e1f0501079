package overlay

import (
	"testing"

	"github.com/abworrall/zmap-overlay/pkg/emath"
)

func ptr(f float64) *float64 { return &f }

func volumeOf(t *testing.T, nx, ny, nz int, vals ...float64) emath.Volume {
	t.Helper()
	v, err := emath.NewVolumeFromValues(nx, ny, nz, vals)
	if err != nil {
		t.Fatalf("NewVolumeFromValues: %v", err)
	}
	return v
}

func filled(nx, ny, nz int, f float64) emath.Volume {
	v := emath.NewVolume(nx, ny, nz)
	vals := v.Values()
	for i := range vals {
		vals[i] = f
	}
	return v
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
