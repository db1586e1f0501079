package overlay

import(
	"fmt"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// LoadFace opens a TTF at the given point size; with no filename it
// falls back to the embedded Go Regular.
func LoadFace(filename string, points float64) (font.Face, error) {
	if filename != "" {
		face, err := gg.LoadFontFace(filename, points)
		if err != nil {
			return nil, ioErr(fmt.Errorf("font '%s': %v", filename, err))
		}
		return face, nil
	}

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing embedded font: %v", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: points, Hinting: font.HintingFull}), nil
}

// measureString returns the advance width and line height of s.
func measureString(face font.Face, s string) (float64, float64) {
	dc := gg.NewContext(1, 1)
	dc.SetFontFace(face)
	return dc.MeasureString(s)
}

// drawText puts s with the top of its line box at y (gg's y is the baseline).
func drawText(dc *gg.Context, s string, x, y float64) {
	dc.DrawStringAnchored(s, x, y, 0, 1)
}

// drawCentered centers s horizontally in a canvas of width w, measuring
// this particular string rather than assuming a fixed glyph width.
func drawCentered(dc *gg.Context, s string, w, y, nudgeX float64) {
	sw, _ := dc.MeasureString(s)
	drawText(dc, s, (w - sw)/2 + nudgeX, y)
}
