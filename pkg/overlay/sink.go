package overlay

import(
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/tiff"

	"github.com/abworrall/zmap-overlay/pkg/ejpeg"
)

// A Sink receives finished rasters by name. Implementations must be safe
// for concurrent use.
type Sink interface {
	WriteImage(name string, img image.Image) error
}

// SliceFilename names the i'th slice; i counts from 1.
func SliceFilename(prefix string, i int, ext string) string {
	return fmt.Sprintf("%s-slice%03d.%s", prefix, i, ext)
}

func formatExt(format string) (string, error) {
	switch strings.ToLower(format) {
	case "jpg", "jpeg": return "jpg", nil
	case "png":         return "png", nil
	case "tif", "tiff": return "tiff", nil
	case "hdr":         return "hdr", nil
	}
	return "", invalidf("output format '%s' not one of [jpg png tiff hdr]", format)
}

// FileSink writes each raster into a directory, encoded per Format.
type FileSink struct {
	Dir    string
	Format string
}

// NewFileSink creates the output directory if it isn't there.
func NewFileSink(dir, format string) (*FileSink, error) {
	ext, err := formatExt(format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, ioErr(fmt.Errorf("output dir: %v", err))
	}
	return &FileSink{Dir: dir, Format: ext}, nil
}

func (fs *FileSink)WriteImage(name string, img image.Image) error {
	filename := filepath.Join(fs.Dir, name)

	writer, err := os.Create(filename)
	if err != nil {
		return ioErr(fmt.Errorf("open+w '%s': %v", filename, err))
	}

	err = encode(writer, fs.Format, img)
	if cerr := writer.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return ioErr(fmt.Errorf("writing '%s': %v", filename, err))
	}

	log.Debugf(" -- wrote %s", filename)
	return nil
}

func encode(w io.Writer, ext string, img image.Image) error {
	switch ext {
	case "jpg":
		return ejpeg.Encode(w, img, &ejpeg.Options{Quality: 100})
	case "png":
		return png.Encode(w, img)
	case "tiff":
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case "hdr":
		if h, ok := img.(hdr.Image); ok {
			return rgbe.Encode(w, h)
		}
		return rgbe.Encode(w, ldrImage{img})
	}
	return invalidf("output format '%s'", ext)
}

// ldrImage presents an 8/16 bit image as linear floats, so composited
// rasters can go out as .hdr too.
type ldrImage struct {
	image.Image
}

func (li ldrImage)ColorModel() color.Model { return hdrcolor.RGBModel }
func (li ldrImage)Size() int               { return li.Bounds().Dx() * li.Bounds().Dy() }

func (li ldrImage)HDRAt(x, y int) hdrcolor.Color {
	r, g, b, _ := li.Image.At(x, y).RGBA()
	return hdrcolor.RGB{R: float64(r)/0xFFFF, G: float64(g)/0xFFFF, B: float64(b)/0xFFFF}
}

func (li ldrImage)At(x, y int) color.Color { return li.HDRAt(x, y) }

// MemorySink keeps everything it's given; for tests and previews.
type MemorySink struct {
	mu     sync.Mutex
	Images map[string]image.Image
}

func NewMemorySink() *MemorySink {
	return &MemorySink{Images: map[string]image.Image{}}
}

func (ms *MemorySink)WriteImage(name string, img image.Image) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.Images[name] = img
	return nil
}

func (ms *MemorySink)Names() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	names := []string{}
	for name := range ms.Images {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
