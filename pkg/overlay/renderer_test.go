package overlay

import (
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/abworrall/zmap-overlay/pkg/emath"
	"github.com/abworrall/zmap-overlay/pkg/nifti"
)

// A 10x10x3 flat anatomy, with z=5 at voxel (4,6) of every slice.
func testVolumes() (emath.Volume, emath.Volume) {
	anat := filled(10, 10, 3, 100)
	stat := filled(10, 10, 3, 0)
	for z := 0; z < 3; z++ {
		stat.Set(4, 6, z, 5)
	}
	return anat, stat
}

func plainConfig() Config {
	c := NewConfig()
	c.ShowLegend = false
	c.Disclaimer = ""
	c.Upscale = 1
	return c
}

func TestRendererEndToEnd(t *testing.T) {
	for _, workers := range []int{1, 3} {
		c := plainConfig()
		c.Workers = workers
		r, err := NewRenderer(c)
		if err != nil {
			t.Fatalf("NewRenderer: %v", err)
		}
		anat, stat := testVolumes()
		if err := r.SetVolumes(anat, stat); err != nil {
			t.Fatalf("SetVolumes: %v", err)
		}

		sink := NewMemorySink()
		n, err := r.Run(sink)
		if err != nil || n != 3 {
			t.Fatalf("Run: %d, %v", n, err)
		}

		names := sink.Names()
		want := []string{"bia-slice001.jpg", "bia-slice002.jpg", "bia-slice003.jpg"}
		if len(names) != len(want) {
			t.Fatalf("expected %v, got %v", want, names)
		}

		p, _ := c.GetPalettes()
		hot := p.Hot.Map(1.0 / 3)
		expect := color.RGBA{emath.To8(hot.R * 191 / 255), emath.To8(hot.G * 191 / 255), emath.To8(hot.B * 191 / 255), 255}

		for i, name := range want {
			if names[i] != name {
				t.Errorf("expected %s, got %s", name, names[i])
			}
			img := sink.Images[name].(*image.RGBA)
			if img.Bounds() != image.Rect(0, 0, 10, 10) {
				t.Fatalf("%s: bounds %s", name, img.Bounds())
			}
			for y := 0; y < 10; y++ {
				for x := 0; x < 10; x++ {
					got := img.RGBAAt(x, y)
					if x == 5 && y == 3 {
						if absDiff(got.R, expect.R) > 2 || absDiff(got.G, expect.G) > 2 || absDiff(got.B, expect.B) > 2 {
							t.Errorf("%s overlay pixel: expected ~%v, got %v", name, expect, got)
						}
					} else if got != (color.RGBA{0, 0, 0, 255}) {
						t.Errorf("%s (%d,%d): expected black, got %v", name, x, y, got)
					}
				}
			}
		}
	}
}

func TestRendererRejectsConfigBeforeIO(t *testing.T) {
	c := NewConfig()
	c.ZMin, c.ZMax = 10, 5
	if _, err := NewRenderer(c); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
}

func TestRendererShapeMismatch(t *testing.T) {
	r, err := NewRenderer(plainConfig())
	if err != nil {
		t.Fatal(err)
	}
	err = r.SetVolumes(filled(10, 10, 3, 1), filled(10, 10, 4, 1))
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected shape mismatch, got %v", err)
	}
}

func TestRendererLoadFiles(t *testing.T) {
	dir := t.TempDir()
	anat, stat := testVolumes()
	anatFile, statFile := filepath.Join(dir, "anat.nii"), filepath.Join(dir, "zmap.nii.gz")
	if err := nifti.Save(anatFile, &anat, "anat"); err != nil {
		t.Fatal(err)
	}
	if err := nifti.Save(statFile, &stat, "zmap"); err != nil {
		t.Fatal(err)
	}

	c := NewConfig()
	c.Format = "png"
	c.Age, c.PredictedAge = ptr(40), ptr(45)
	r, err := NewRenderer(c)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.LoadFiles(anatFile, statFile); err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}

	outDir := filepath.Join(dir, "out", "slices")
	sink, err := NewFileSink(outDir, c.Format)
	if err != nil {
		t.Fatal(err)
	}
	if n, err := r.Run(sink); err != nil || n != 3 {
		t.Fatalf("Run: %d, %v", n, err)
	}

	matches, _ := filepath.Glob(filepath.Join(outDir, "bia-slice*.png"))
	if len(matches) != 3 {
		t.Errorf("expected 3 files, got %v", matches)
	}

	if err := r.LoadFiles(filepath.Join(dir, "nope.nii"), statFile); !errors.Is(err, ErrIO) {
		t.Errorf("expected i/o error, got %v", err)
	}
}

func TestRendererQCMode(t *testing.T) {
	c, _ := Preset("qc-fixed")
	c.Disclaimer, c.Upscale = "", 1
	r, err := NewRenderer(c)
	if err != nil {
		t.Fatal(err)
	}
	anat := filled(4, 4, 1, 10)
	qc := filled(4, 4, 1, 0)
	qc.Set(1, 2, 0, 1)
	if err := r.SetVolumes(anat, qc); err != nil {
		t.Fatal(err)
	}

	img, err := r.RenderSlice(0)
	if err != nil {
		t.Fatal(err)
	}
	// gray(1) at opacity 50, over black
	got := img.RGBAAt(4-1-1, 4-1-2)
	p, _ := c.GetPalettes()
	want := emath.To8(p.Gray.Map(1).R * 50 / 255)
	if absDiff(got.R, want) > 2 {
		t.Errorf("expected ~%d, got %v", want, got)
	}
}

type failingSink struct{}

func (failingSink) WriteImage(string, image.Image) error { return ErrIO }

func TestRendererStopsOnSinkError(t *testing.T) {
	r, _ := NewRenderer(plainConfig())
	anat, stat := testVolumes()
	r.SetVolumes(anat, stat)
	if n, err := r.Run(failingSink{}); !errors.Is(err, ErrIO) || n != 0 {
		t.Errorf("expected i/o error after 0 slices, got %d, %v", n, err)
	}
}

func TestRendererDebugDump(t *testing.T) {
	c := plainConfig()
	c.DebugDir = filepath.Join(t.TempDir(), "debug")
	r, _ := NewRenderer(c)
	anat, stat := testVolumes()
	r.SetVolumes(anat, stat)
	if err := r.Prepare(); err != nil {
		t.Fatal(err)
	}
	matches, _ := filepath.Glob(filepath.Join(c.DebugDir, "debug-*-slice002.png"))
	if len(matches) != 4 {
		t.Errorf("expected 4 debug images, got %v", matches)
	}
}

// failAtSink refuses one named image and keeps the rest.
type failAtSink struct {
	*MemorySink
	name string
}

func (s failAtSink) WriteImage(name string, img image.Image) error {
	if name == s.name {
		return ErrIO
	}
	return s.MemorySink.WriteImage(name, img)
}

func TestRendererWorkersWriteLikeSequential(t *testing.T) {
	anat, stat := filled(6, 6, 8, 1), filled(6, 6, 8, 0)
	for _, workers := range []int{1, 2, 4, 8} {
		c := plainConfig()
		c.Workers = workers
		r, err := NewRenderer(c)
		if err != nil {
			t.Fatal(err)
		}
		r.SetVolumes(anat, stat)

		sink := failAtSink{NewMemorySink(), "bia-slice004.jpg"}
		n, err := r.Run(sink)
		if !errors.Is(err, ErrIO) || n != 3 {
			t.Errorf("workers %d: expected i/o error after 3 slices, got %d, %v", workers, n, err)
		}
		names := sink.Names()
		want := []string{"bia-slice001.jpg", "bia-slice002.jpg", "bia-slice003.jpg"}
		if len(names) != len(want) {
			t.Errorf("workers %d: expected %v written, got %v", workers, want, names)
			continue
		}
		for i := range want {
			if names[i] != want[i] {
				t.Errorf("workers %d: expected %v written, got %v", workers, want, names)
				break
			}
		}
	}
}

func TestRendererJPEGKeepsOverlayVoxel(t *testing.T) {
	r, err := NewRenderer(plainConfig())
	if err != nil {
		t.Fatal(err)
	}
	anat, stat := testVolumes()
	r.SetVolumes(anat, stat)

	want, err := r.RenderSlice(0)
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	sink, err := NewFileSink(dir, "jpg")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(sink); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "bia-slice001.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := jpeg.Decode(f)
	if err != nil {
		t.Fatal(err)
	}

	for _, pt := range []image.Point{{5, 3}, {4, 3}, {6, 3}, {5, 2}, {5, 4}} {
		w := want.RGBAAt(pt.X, pt.Y)
		g := color.RGBAModel.Convert(got.At(pt.X, pt.Y)).(color.RGBA)
		if absDiff(g.R, w.R) > 8 || absDiff(g.G, w.G) > 8 || absDiff(g.B, w.B) > 8 {
			t.Errorf("%v: expected ~%v, got %v", pt, w, g)
		}
	}
}
