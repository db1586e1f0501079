package overlay

import(
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"

	"github.com/abworrall/zmap-overlay/pkg/emath"
)

// SliceInputs are the per-slice grids the compositor works from, all in
// volume layout (columns along the second axis, rows along the first).
type SliceInputs struct {
	Anat      emath.FloatGrid
	Positive  emath.FloatGrid
	Negative  emath.FloatGrid
	Alpha     emath.FloatGrid

	// If set, the gray ramp spans this range instead of the slice's own.
	AnatRange *[2]float64
}

// A Compositor turns SliceInputs into finished, opaque rasters. One
// Compositor is shared by all the workers.
type Compositor struct {
	Palettes
	Upscale      int
	Scaler       draw.Scaler
	Legend      *Legend     // nil for no legend
	LegendOffset int
	Face         font.Face
	LabelColor   color.Color
	Lines        []string
	LineSpacing  int

	textMu       sync.Mutex // font faces cache glyphs, and aren't goroutine safe
}

func (c *Compositor)Composite(in SliceInputs) *image.RGBA {
	bg := c.grayLayer(in.Anat, in.AnatRange)
	fg := c.colorLayer(in)
	draw.Draw(bg, bg.Bounds(), fg, image.Point{}, draw.Over)

	img := orient(bg)
	img = c.upscale(img)

	if c.Legend != nil {
		at := image.Pt(c.LegendOffset, c.LegendOffset)
		draw.Draw(img, c.Legend.Bounds().Add(at), c.Legend.RGBA, image.Point{}, draw.Src)
	}

	c.drawLines(img)
	flatten(img)

	return img
}

// grayLayer ramps the anatomical grid through the gray palette. A flat
// range (e.g. an empty slice) gets gray(0) everywhere.
func (c *Compositor)grayLayer(g emath.FloatGrid, rng *[2]float64) *image.RGBA {
	var lo, hi float64
	if rng != nil {
		lo, hi = rng[0], rng[1]
	} else {
		lo, hi, _ = g.MinMax()
	}

	img := image.NewRGBA(g.Bounds())
	for y:=0; y<g.Dy(); y++ {
		for x:=0; x<g.Dx(); x++ {
			v := 0.0
			if f := g.Get(x,y); hi > lo && !math.IsNaN(f) {
				v = (f - lo) / (hi - lo)
			}
			img.SetRGBA(x, y, rgbaOf(c.Gray.Map(v)))
		}
	}
	return img
}

// colorLayer is hot(positive) + cool(negative), with the alpha channel
// attached. A NaN channel contributes nothing.
func (c *Compositor)colorLayer(in SliceInputs) *image.NRGBA {
	g := in.Positive
	img := image.NewNRGBA(g.Bounds())
	for y:=0; y<g.Dy(); y++ {
		for x:=0; x<g.Dx(); x++ {
			var r, gr, b float64
			if p := in.Positive.Get(x,y); !math.IsNaN(p) {
				col := c.Hot.Map(p)
				r, gr, b = r+col.R, gr+col.G, b+col.B
			}
			if n := in.Negative.Get(x,y); !math.IsNaN(n) {
				col := c.Cool.Map(n)
				r, gr, b = r+col.R, gr+col.G, b+col.B
			}
			a := in.Alpha.Get(x,y)
			img.SetNRGBA(x, y, color.NRGBA{emath.To8(r), emath.To8(gr), emath.To8(b), uint8(math.Max(0, math.Min(a, 255)))})
		}
	}
	return img
}

// orient puts the slice into radiological display orientation. The
// output is transposed in size: a w*h slice becomes h*w.
func orient(src *image.RGBA) *image.RGBA {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewRGBA(image.Rect(0, 0, h, w))
	m := emath.Radiological(w, h)
	draw.NearestNeighbor.Transform(dst, f64.Aff3(m), src, src.Bounds(), draw.Src, nil)
	return dst
}

func (c *Compositor)upscale(src *image.RGBA) *image.RGBA {
	if c.Upscale <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*c.Upscale, b.Dy()*c.Upscale))
	c.Scaler.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// drawLines stacks the text lines up from the bottom edge, last line
// lowest.
func (c *Compositor)drawLines(img *image.RGBA) {
	if len(c.Lines) == 0 {
		return
	}

	c.textMu.Lock()
	defer c.textMu.Unlock()

	dc := gg.NewContextForRGBA(img)
	dc.SetFontFace(c.Face)
	dc.SetColor(c.LabelColor)

	w, h := float64(img.Bounds().Dx()), img.Bounds().Dy()
	for i, line := range c.Lines {
		y := h - (len(c.Lines)-i) * c.LineSpacing
		drawCentered(dc, line, w, float64(y), 0)
	}
}

func flatten(img *image.RGBA) {
	for i:=3; i<len(img.Pix); i+=4 {
		img.Pix[i] = 0xFF
	}
}
