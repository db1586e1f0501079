package overlay

import(
	"math"

	"github.com/abworrall/zmap-overlay/pkg/emath"
)

// Channels are the per-voxel overlay inputs derived from a statistic
// volume. Positive and Negative hold values in [0,1], or NaN where the
// voxel is outside that channel's region; Alpha holds 0 or the opacity.
type Channels struct {
	Positive emath.Volume
	Negative emath.Volume
	Alpha    emath.Volume
}

// Split maps a z-map onto the dual polarity transfer function. Voxels
// at or beyond +zMin go to Positive, at or beyond -zMin go to Negative,
// both normalized so that |z| == zMax (and beyond) is 1. Voxels of
// interest get the given opacity, everything else is transparent.
func Split(stat *emath.Volume, zMin, zMax float64, opacity uint8) (Channels, error) {
	if zMin < 0 {
		return Channels{}, invalidf("zmin (%g) must be >= 0", zMin)
	}
	if zMin >= zMax {
		return Channels{}, invalidf("zmin (%g) must be less than zmax (%g)", zMin, zMax)
	}

	span := zMax - zMin
	ch := Channels{
		Positive: stat.Map(func(s float64) float64 {
			if math.IsNaN(s) || s < zMin {
				return math.NaN()
			}
			return math.Min((s - zMin) / span, 1)
		}),
		Negative: stat.Map(func(s float64) float64 {
			// With zMin == 0, a zero voxel belongs to Positive only
			if math.IsNaN(s) || s > -zMin || (zMin == 0 && s == 0) {
				return math.NaN()
			}
			return math.Min((-s - zMin) / span, 1)
		}),
	}
	ch.Alpha = alphaFrom(&ch.Positive, &ch.Negative, opacity)

	return ch, nil
}

// SplitQC treats the statistic as a segmentation map: every voxel > 0 is
// of interest, and its (clamped) value drives the gray palette.
func SplitQC(qc *emath.Volume, opacity uint8) Channels {
	ch := Channels{
		Positive: qc.Map(func(s float64) float64 {
			if math.IsNaN(s) || s <= 0 {
				return math.NaN()
			}
			return emath.Clamp01(s)
		}),
		Negative: qc.Map(func(float64) float64 { return math.NaN() }),
	}
	ch.Alpha = qc.Map(func(s float64) float64 {
		if s > 0 {
			return float64(opacity)
		}
		return 0
	})
	return ch
}

func nanToZero(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func alphaFrom(pos, neg *emath.Volume, opacity uint8) emath.Volume {
	alpha := emath.NewVolume(pos.Nx, pos.Ny, pos.Nz)
	alpha.PixDim = pos.PixDim
	p, n, a := pos.Values(), neg.Values(), alpha.Values()
	for i := range a {
		if nanToZero(p[i]) + nanToZero(n[i]) > 0 {
			a[i] = float64(opacity)
		}
	}
	return alpha
}
