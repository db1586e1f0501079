package overlay

import(
	"image"
	"image/color"
	"math"

	"github.com/mdouchement/hdr/hdrcolor"
	log "github.com/sirupsen/logrus"

	"github.com/abworrall/zmap-overlay/pkg/emath"
)

// Gray16Offset is where zero lands in exported 16 bit slices; each unit
// of the volume is Gray16Scale steps.
const(
	Gray16Offset = 32767
	Gray16Scale  = 1000
)

// ToGray16 maps round(v*1000)+32767 into [0,65535]. NaN is treated as 0.
func ToGray16(v float64) uint16 {
	if math.IsNaN(v) {
		v = 0
	}
	f := math.Round(v*Gray16Scale) + Gray16Offset
	return uint16(math.Max(0, math.Min(f, math.MaxUint16)))
}

// Gray16Grid renders a grid as a single channel 16 bit image, row for
// row with no reorientation.
func Gray16Grid(g *emath.FloatGrid) *image.Gray16 {
	img := image.NewGray16(g.Bounds())
	for y:=0; y<g.Dy(); y++ {
		for x:=0; x<g.Dx(); x++ {
			img.SetGray16(x, y, color.Gray16{ToGray16(g.Get(x,y))})
		}
	}
	return img
}

// FloatImage wraps a grid as an hdr.Image, gray with the raw values;
// negatives (which RGBE can't hold) become 0.
type FloatImage struct {
	*emath.FloatGrid
}

func (fi FloatImage)ColorModel() color.Model   { return hdrcolor.RGBModel }
func (fi FloatImage)At(x, y int) color.Color   { return fi.HDRAt(x,y) }
func (fi FloatImage)Size() int                 { return fi.Dx() * fi.Dy() }

func (fi FloatImage)HDRAt(x, y int) hdrcolor.Color {
	v := fi.Get(x,y)
	if math.IsNaN(v) || v < 0 {
		v = 0
	}
	return hdrcolor.RGB{R: v, G: v, B: v}
}

// ExportSlices writes every slice of v along the axis to the sink, as
// 16 bit gray (tiff or png) or float (hdr). Returns how many were written.
func ExportSlices(v *emath.Volume, axis int, sink Sink, prefix, format string) (int, error) {
	ext, err := formatExt(format)
	if err != nil {
		return 0, err
	}
	if ext == "jpg" {
		return 0, invalidf("slice export needs a lossless format, not jpg")
	}
	if axis < 0 || axis > 2 {
		return 0, invalidf("axis (%d) must be 0, 1 or 2", axis)
	}

	n := v.Shape()[axis]
	for i:=0; i<n; i++ {
		g, err := v.Slice(axis, i)
		if err != nil {
			return i, err
		}

		var img image.Image = Gray16Grid(&g)
		if ext == "hdr" {
			img = FloatImage{&g}
		}

		if err := sink.WriteImage(SliceFilename(prefix, i+1, ext), img); err != nil {
			return i, err
		}
	}

	log.Printf("exported %d slices of %s along axis %d", n, v, axis)
	return n, nil
}
