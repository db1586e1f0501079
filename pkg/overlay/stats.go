package overlay

import(
	"fmt"
	"math"

	"github.com/codahale/hdrhistogram"
	"github.com/skypies/util/histogram"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/abworrall/zmap-overlay/pkg/emath"
)

// StatSummary describes a statistic volume, in terms of the overlay
// thresholds.
type StatSummary struct {
	Voxels   int
	NaNs     int
	Positive int // voxels >= +zMin
	Negative int // voxels <= -zMin

	// Of |z|, over the non-NaN voxels
	Mean, StdDev  float64
	P50, P90, P99 float64

	// |z| in tenths, 0 to 20 in steps of one; the top bucket takes the rest
	Hist          histogram.Histogram
}

// For the quantiles, |z| is recorded in thousandths
const(
	histScale = 1000
	histMax   = 1e9
)

const(
	bucketScale = 10
	bucketMax   = 200
)

func Summarize(v *emath.Volume, zMin float64) StatSummary {
	s := StatSummary{
		Voxels: v.Len(),
		Hist:   histogram.Histogram{NumBuckets:20, ValMin:0, ValMax:bucketMax},
	}
	h := hdrhistogram.New(0, histMax, 3)

	abs := make([]float64, 0, v.Len())
	for _, z := range v.Values() {
		if math.IsNaN(z) {
			s.NaNs++
			continue
		}
		if z >= zMin {
			s.Positive++
		} else if z <= -zMin {
			s.Negative++
		}

		a := math.Abs(z)
		abs = append(abs, a)
		s.Hist.Add(histogram.ScalarVal(int(math.Min(a*bucketScale, bucketMax-1))))
		if err := h.RecordValue(int64(math.Min(a*histScale, histMax))); err != nil {
			log.Debugf("summary: %v", err)
		}
	}

	if len(abs) > 0 {
		s.Mean, s.StdDev = stat.MeanStdDev(abs, nil)
		s.P50 = float64(h.ValueAtQuantile(50)) / histScale
		s.P90 = float64(h.ValueAtQuantile(90)) / histScale
		s.P99 = float64(h.ValueAtQuantile(99)) / histScale
	}

	return s
}

func (s StatSummary)String() string {
	return fmt.Sprintf("%d voxels (%d NaN), %d >= +zmin, %d <= -zmin; |z| mean %.2f sd %.2f, p50 %.2f p90 %.2f p99 %.2f",
		s.Voxels, s.NaNs, s.Positive, s.Negative, s.Mean, s.StdDev, s.P50, s.P90, s.P99)
}
