package emath

import(
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg" // Move to https://pkg.go.dev/golang.org/x/image/font#Drawer sometime
	"gonum.org/v1/gonum/floats"
)

// A FloatGrid is a 2D grid of floats, typically one slice out of a
// Volume. NaN marks "no value here".
type FloatGrid struct {
	stride int
	values []float64
}

func NewFloatGrid(w, h int) FloatGrid {
	return FloatGrid{
		stride: w,
		values: make([]float64, w*h),
	}
}

func (fg *FloatGrid)Set(x, y int, v float64) { fg.values[fg.stride*y + x] = v }
func (fg *FloatGrid)Get(x, y int) float64    { return fg.values[fg.stride*y + x] }
func (fg *FloatGrid)Dx() int                 { return fg.stride }
func (fg *FloatGrid)Bounds() image.Rectangle { return image.Rect(0, 0, fg.Dx(), fg.Dy()) }

func (fg *FloatGrid)Dy() int {
	if fg.stride == 0 { return 0 }
	return len(fg.values) / fg.stride
}

// MinMax returns the range of the non-NaN values. ok is false if there
// are none.
func (fg *FloatGrid)MinMax() (min, max float64, ok bool) {
	return minMax(fg.values)
}

func minMax(vals []float64) (float64, float64, bool) {
	finite := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, 0, false
	}
	return floats.Min(finite), floats.Max(finite), true
}

func (fg *FloatGrid)Stats() string {
	min, max, _ := fg.MinMax()
	return fmt.Sprintf("fg[%dx%d, vals{%f,%f}]", fg.Dx(), fg.Dy(), min, max)
}

// ToImg saves a simple grayscale, based on the range of values in the
// grid, with a title in the corner. NaN cells are drawn dark red. Handy
// for eyeballing intermediate channels.
func (fg *FloatGrid)ToImg(title, filename string) error {
	min, max, _ := fg.MinMax()

	img := image.NewRGBA64(fg.Bounds())
	for x:=0; x<fg.Dx(); x++ {
		for y:=0; y<fg.Dy(); y++ {
			v := fg.Get(x,y)
			if math.IsNaN(v) {
				img.Set(x, y, color.RGBA64{0x8000, 0, 0, 0xFFFF})
				continue
			}
			gray := 0.0
			if max > min {
				gray = (v - min) / (max - min)
			}
			col := color.RGBA64{uint16(gray * 65535.0), uint16(gray * 65535.0), uint16(gray * 65535.0), 0xFFFF}
			img.Set(x, y, col)
		}
	}

	dc := gg.NewContextForImage(img)
	dc.SetRGB(1,1,1)
	dc.DrawString(title, 2, 12)
	return dc.SavePNG(filename)
}
