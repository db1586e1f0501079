package overlay

import(
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/abworrall/zmap-overlay/pkg/emath"
	"github.com/abworrall/zmap-overlay/pkg/nifti"
)

// A Renderer produces one overlay raster per axial slice, from an
// anatomical volume and a statistic volume of the same shape.
type Renderer struct {
	Config

	Anat       emath.Volume
	Stat       emath.Volume

	windowed   emath.Volume
	anatRange *[2]float64
	channels   Channels
	compositor *Compositor
}

// NewRenderer fails on a bad config, before anything is read.
func NewRenderer(c Config) (*Renderer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Renderer{Config: c}, nil
}

func (r *Renderer)LoadFiles(anatFile, statFile string) error {
	anat, _, err := nifti.Load(anatFile)
	if err != nil {
		return ioErr(fmt.Errorf("anatomical volume: %w", err))
	}
	stat, _, err := nifti.Load(statFile)
	if err != nil {
		return ioErr(fmt.Errorf("statistic volume: %w", err))
	}
	log.Printf("loaded %s %s, %s %s", anatFile, anat, statFile, stat)
	log.Debugf("NaN voxels: %d anatomical, %d statistic", anat.CountNaN(), stat.CountNaN())

	return r.SetVolumes(anat, stat)
}

func (r *Renderer)SetVolumes(anat, stat emath.Volume) error {
	if !anat.SameShape(&stat) {
		return fmt.Errorf("%w: anatomical %s, statistic %s", ErrShapeMismatch, anat, stat)
	}
	r.Anat, r.Stat = anat, stat
	r.compositor = nil
	return nil
}

// Prepare does all the whole-volume work: windowing, the transfer
// function, the legend and the text face.
func (r *Renderer)Prepare() error {
	if r.Anat.Len() == 0 {
		return invalidf("no volumes to render")
	}

	window, err := NewWindow(r.WindowCenter, r.WindowWidth)
	if err != nil {
		return err
	}
	r.windowed = window.Apply(&r.Anat)
	log.Debugf("anatomical window: %s", window)

	r.anatRange = nil
	if r.Contrast == "volume" {
		if lo, hi, ok := r.windowed.MinMax(); ok {
			r.anatRange = &[2]float64{lo, hi}
		}
	}

	palettes, err := r.GetPalettes()
	if err != nil {
		return err
	}

	if r.Mode == "qc" {
		r.channels = SplitQC(&r.Stat, r.Opacity())
		palettes.Hot = palettes.Gray
	} else {
		if r.channels, err = Split(&r.Stat, r.ZMin, r.ZMax, r.Opacity()); err != nil {
			return err
		}
		summary := Summarize(&r.Stat, r.ZMin)
		log.WithFields(log.Fields{"zmin": r.ZMin, "zmax": r.ZMax}).Debugf("statistic: %s", summary)
		log.Debugf("|z| histogram (tenths): %v", &summary.Hist)
	}

	face, err := LoadFace(r.FontFile, r.FontSize)
	if err != nil {
		return err
	}
	labelColor, err := r.GetLabelColor()
	if err != nil {
		return err
	}
	scaler, err := r.GetScaler()
	if err != nil {
		return err
	}

	r.compositor = &Compositor{
		Palettes:     palettes,
		Upscale:      r.Upscale,
		Scaler:       scaler,
		LegendOffset: r.LegendOffset,
		Face:         face,
		LabelColor:   labelColor,
		Lines:        r.TextLines(),
		LineSpacing:  r.LineSpacing,
	}

	if r.ShowLegend && r.Mode == "zmap" {
		r.compositor.Legend = BuildLegend(LegendSpec{
			ZMin:        r.ZMin,
			ZMax:        r.ZMax,
			Fraction:    r.LegendHeightFraction,
			ImageHeight: r.Anat.Ny, // slices display Ny tall, before upscaling
			Palettes:    palettes,
			Face:        face,
			LabelColor:  labelColor,
		})
		log.Debugf("legend: %s (%d rows per gradient, %d center)", r.compositor.Legend.Bounds(), r.compositor.Legend.HotCoolRows, r.compositor.Legend.CenterRows)
	}

	if r.DebugDir != "" {
		r.dumpGrids(r.Anat.Nz / 2)
	}

	return nil
}

func (r *Renderer)sliceInputs(z int) (SliceInputs, error) {
	in := SliceInputs{AnatRange: r.anatRange}
	for _, x := range []struct{ v *emath.Volume; dst *emath.FloatGrid }{
		{&r.windowed, &in.Anat},
		{&r.channels.Positive, &in.Positive},
		{&r.channels.Negative, &in.Negative},
		{&r.channels.Alpha, &in.Alpha},
	} {
		g, err := x.v.Slice(2, z)
		if err != nil {
			return in, invalidf("%v", err)
		}
		*x.dst = g
	}
	return in, nil
}

// RenderSlice composites slice z (counting from 0) along the third axis.
func (r *Renderer)RenderSlice(z int) (*image.RGBA, error) {
	if r.compositor == nil {
		if err := r.Prepare(); err != nil {
			return nil, err
		}
	}
	in, err := r.sliceInputs(z)
	if err != nil {
		return nil, err
	}
	return r.compositor.Composite(in), nil
}

type sliceJob struct {
	Z   int
	Img *image.RGBA
	Err error
}

// Run renders every slice into the sink, returning how many were
// written. Slices are written in order whatever the worker count, and
// the first failure stops everything after it; files already written
// are left alone.
func (r *Renderer)Run(sink Sink) (int, error) {
	if r.compositor == nil {
		if err := r.Prepare(); err != nil {
			return 0, err
		}
	}
	ext, err := formatExt(r.Format)
	if err != nil {
		return 0, err
	}

	nz := r.Anat.Nz
	if r.Workers <= 1 {
		for z:=0; z<nz; z++ {
			img, err := r.RenderSlice(z)
			if err == nil {
				err = r.write(sink, z, ext, img)
			}
			if err != nil {
				return z, err
			}
		}
		log.Printf("rendered %d slices", nz)
		return nz, nil
	}

	var wg sync.WaitGroup
	stopAt      := int64(nz) // slices above this are not started
	jobsChan    := make(chan sliceJob, nz)
	resultsChan := make(chan sliceJob, nz)

	// Kick off worker pool
	for i:=0; i<r.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobsChan {
				if int64(job.Z) > atomic.LoadInt64(&stopAt) {
					continue
				}
				if job.Img, job.Err = r.RenderSlice(job.Z); job.Err != nil {
					lowerTo(&stopAt, job.Z)
				}
				resultsChan<- job
			}
		}()
	}

	// Feed in jobs
	for z:=0; z<nz; z++ {
		jobsChan<- sliceJob{Z: z}
	}
	close(jobsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Results arrive in any order; hold them until their turn to be written
	pending := map[int]sliceJob{}
	next := 0
	var firstErr error
	for result := range resultsChan {
		pending[result.Z] = result
		for firstErr == nil {
			job, exists := pending[next]
			if !exists {
				break
			}
			delete(pending, next)
			if job.Err == nil {
				job.Err = r.write(sink, job.Z, ext, job.Img)
			}
			if job.Err != nil {
				firstErr = job.Err
				lowerTo(&stopAt, job.Z)
				break
			}
			next++
		}
	}
	if firstErr != nil {
		return next, firstErr
	}

	log.Printf("rendered %d slices (%d workers)", nz, r.Workers)
	return nz, nil
}

// lowerTo sets *p to z, if z is lower.
func lowerTo(p *int64, z int) {
	for {
		cur := atomic.LoadInt64(p)
		if int64(z) >= cur || atomic.CompareAndSwapInt64(p, cur, int64(z)) {
			return
		}
	}
}

func (r *Renderer)write(sink Sink, z int, ext string, img *image.RGBA) error {
	name := SliceFilename(r.Prefix, z+1, ext)
	if err := sink.WriteImage(name, img); err != nil {
		return fmt.Errorf("slice %d: %w", z+1, err)
	}
	log.Debugf(" -- %s", name)
	return nil
}

// dumpGrids writes the intermediate grids of one slice as grayscale PNGs.
func (r *Renderer)dumpGrids(z int) {
	in, err := r.sliceInputs(z)
	if err != nil {
		log.Warnf("debug dump: %v", err)
		return
	}
	if err := os.MkdirAll(r.DebugDir, 0755); err != nil {
		log.Warnf("debug dump: %v", err)
		return
	}
	for name, g := range map[string]*emath.FloatGrid{
		"anat": &in.Anat, "positive": &in.Positive, "negative": &in.Negative, "alpha": &in.Alpha,
	} {
		filename := filepath.Join(r.DebugDir, fmt.Sprintf("debug-%s-slice%03d.png", name, z+1))
		log.Debugf("debug dump %s: %s", filename, g.Stats())
		if err := g.ToImg(fmt.Sprintf("%s z=%d", name, z+1), filename); err != nil {
			log.Warnf("debug dump: %v", err)
		}
	}
}
