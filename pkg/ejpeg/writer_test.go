package ejpeg

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

func decode(t *testing.T, img image.Image, quality int) image.Image {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, img, &Options{Quality: quality}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out, err := jpeg.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return out
}

func TestSinglePixelKeepsItsColor(t *testing.T) {
	// Odd sizes, so the edge blocks are partial
	img := image.NewRGBA(image.Rect(0, 0, 13, 10))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xFF
	}
	img.SetRGBA(5, 3, color.RGBA{135, 26, 0, 255})

	out := decode(t, img, 100)
	if out.Bounds() != img.Bounds() {
		t.Fatalf("bounds %s, expected %s", out.Bounds(), img.Bounds())
	}
	if ycc, ok := out.(*image.YCbCr); !ok || ycc.SubsampleRatio != image.YCbCrSubsampleRatio444 {
		t.Errorf("expected 4:4:4 YCbCr, got %T", out)
	}

	for y := 0; y < 10; y++ {
		for x := 0; x < 13; x++ {
			want := img.RGBAAt(x, y)
			got := color.RGBAModel.Convert(out.At(x, y)).(color.RGBA)
			if !near(got.R, want.R, 8) || !near(got.G, want.G, 8) || !near(got.B, want.B, 8) {
				t.Errorf("(%d,%d): expected ~%v, got %v", x, y, want, got)
			}
		}
	}
}

func TestGradientRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 8), uint8(y * 10), uint8(255 - x*8), 255})
		}
	}
	out := decode(t, img, 100)
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			want := img.RGBAAt(x, y)
			got := color.RGBAModel.Convert(out.At(x, y)).(color.RGBA)
			if !near(got.R, want.R, 6) || !near(got.G, want.G, 6) || !near(got.B, want.B, 6) {
				t.Fatalf("(%d,%d): expected ~%v, got %v", x, y, want, got)
			}
		}
	}
}

func TestLowQualityStillDecodes(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 17, 9))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 7)
	}
	decode(t, img, 10)
}

func TestZigzagIsAPermutation(t *testing.T) {
	seen := map[int]bool{}
	for _, n := range zigzag {
		seen[n] = true
	}
	if len(seen) != 64 || zigzag[1] != 1 || zigzag[2] != 8 || zigzag[63] != 63 {
		t.Errorf("bad zigzag: %v", zigzag)
	}
	if n := len(acSpec.value); n != 162 {
		t.Errorf("expected 162 AC symbols, got %d", n)
	}
}
