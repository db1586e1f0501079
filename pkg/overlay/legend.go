package overlay

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"

	"github.com/abworrall/zmap-overlay/pkg/emath"
)

// A Legend is the colorbar pasted onto every slice. From the top: a
// label strip, the hot gradient (saturated first), a flat band for the
// transparent |z| < zMin range, the cool gradient, and another label strip.
type Legend struct {
	*image.RGBA
	LabelRows   int
	HotCoolRows int
	CenterRows  int
}

type LegendSpec struct {
	ZMin, ZMax  float64
	Fraction    float64 // bar height as a fraction of ImageHeight
	ImageHeight int     // displayed slice height, before any upscaling
	Palettes
	Face        font.Face
	LabelColor  color.Color
}

// LegendGeometry works out the row counts. The scale is chosen so the
// whole -zMax..+zMax bar is Fraction of the image height; each part
// then gets rows in proportion to the z range it covers.
func LegendGeometry(zMin, zMax, fraction float64, imageHeight int) (hotCool, center int) {
	shrink := fraction * float64(imageHeight) / (zMax * 2 * 10)
	hotCool = int((zMax - zMin) * 10 * shrink)
	center = int(zMin * 2 * 10 * shrink)
	return
}

func legendLabels(zMax float64) (string, string, string) {
	n := int(zMax)
	return fmt.Sprintf("+%d", n), "0", fmt.Sprintf("-%d", n)
}

func BuildLegend(s LegendSpec) *Legend {
	hotCool, center := LegendGeometry(s.ZMin, s.ZMax, s.Fraction, s.ImageHeight)
	barHeight := center + 2*hotCool

	top, mid, bottom := legendLabels(s.ZMax)
	textW, textH := measureString(s.Face, top)
	labelRows := int(math.Ceil(textH)) + 1 // a pixel of space between label and bar

	width := int(0.3 * float64(barHeight))
	if tw := int(math.Ceil(textW)); width < tw {
		width = tw
	}
	height := 2*labelRows + barHeight

	l := Legend{
		RGBA:        image.NewRGBA(image.Rect(0, 0, width, height)),
		LabelRows:   labelRows,
		HotCoolRows: hotCool,
		CenterRows:  center,
	}

	blank := s.Gray.Map(0)
	row := 0
	fill := func(n int, colAt func(i int) colorful.Color) {
		for i:=0; i<n; i++ {
			c := rgbaOf(colAt(i))
			for x:=0; x<width; x++ {
				l.SetRGBA(x, row, c)
			}
			row++
		}
	}
	flat := func(int) colorful.Color { return blank }

	fill(labelRows, flat)
	fill(hotCool,   func(i int) colorful.Color { return s.Hot.Map(1 - linspaceAt(i, hotCool)) })
	fill(center,    flat)
	fill(hotCool,   func(i int) colorful.Color { return s.Cool.Map(linspaceAt(i, hotCool)) })
	fill(labelRows, flat)

	dc := gg.NewContextForRGBA(l.RGBA)
	dc.SetFontFace(s.Face)
	dc.SetColor(s.LabelColor)

	_, midH := dc.MeasureString(mid)
	w, h := float64(width), float64(height)
	drawCentered(dc, top,    w, 0,                         0)
	drawCentered(dc, mid,    w, (h - midH)/2 - 1,          1) // one pixel right and up
	drawCentered(dc, bottom, w, h - float64(labelRows),    0)

	return &l
}

// linspaceAt is the i'th of n evenly spaced values from 0 to 1 inclusive.
func linspaceAt(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func rgbaOf(c colorful.Color) color.RGBA {
	return color.RGBA{emath.To8(c.R), emath.To8(c.G), emath.To8(c.B), 0xFF}
}
