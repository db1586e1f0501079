package main

import(
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/abworrall/zmap-overlay/pkg/ecolor"
	"github.com/abworrall/zmap-overlay/pkg/overlay"
)

var(
	fVerbosity int
	fConfigFile string
	fPreset string

	fZMin float64
	fZMax float64
	fHot string
	fCool string
	fTransparency int
	fWindowCenter float64
	fWindowWidth float64
	fContrast string
	fUpscale int
	fNoLegend bool
	fFontFile string
	fDisclaimer string
	fAge float64
	fPredictedAge float64
	fPrefix string
	fFormat string
	fWorkers int
	fDebugDir string
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fConfigFile, "config", "", "YAML config file; flags override it")
	flag.StringVar(&fPreset, "preset", "zmap", fmt.Sprintf("base style, one of %v", overlay.Presets))

	flag.Float64Var(&fZMin, "zmin", 2.5, "overlay is transparent for |z| below this")
	flag.Float64Var(&fZMax, "zmax", 10, "colors saturate at |z| of this")
	flag.StringVar(&fHot, "hot", "", "palette for positive z: "+ecolor.ListPalettes())
	flag.StringVar(&fCool, "cool", "", "palette for negative z: "+ecolor.ListPalettes())
	flag.IntVar(&fTransparency, "transparency", 25, "overlay transparency, percent")
	flag.Float64Var(&fWindowCenter, "wc", 0, "anatomical window center (needs -ww)")
	flag.Float64Var(&fWindowWidth, "ww", 0, "anatomical window width (needs -wc)")
	flag.StringVar(&fContrast, "contrast", "slice", "gray range per 'slice' or for the whole 'volume'")
	flag.IntVar(&fUpscale, "upscale", 2, "integer upscale factor for the output")
	flag.BoolVar(&fNoLegend, "nolegend", false, "don't draw the colorbar")
	flag.StringVar(&fFontFile, "font", "", "TTF font file for labels (default Go Regular)")
	flag.StringVar(&fDisclaimer, "disclaimer", "Not for diagnostic use", "text at the bottom of each slice")
	flag.Float64Var(&fAge, "age", 0, "chronological age, for the BrainAGE line (needs -predicted)")
	flag.Float64Var(&fPredictedAge, "predicted", 0, "predicted age, for the BrainAGE line (needs -age)")
	flag.StringVar(&fPrefix, "prefix", "bia", "output filename prefix")
	flag.StringVar(&fFormat, "format", "jpg", "output format: jpg, png, tiff or hdr")
	flag.IntVar(&fWorkers, "workers", 1, "slices rendered in parallel")
	flag.StringVar(&fDebugDir, "debugdir", "", "dump intermediate grids of the middle slice here")
	flag.Parse()
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: zoverlay [flags] anat.nii[.gz] zmap.nii[.gz] outdir\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "zoverlay: %v\n", err)
	os.Exit(1)
}

func getConfig() (overlay.Config, error) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var c overlay.Config
	var err error
	if fConfigFile != "" {
		c, err = overlay.LoadConfig(fConfigFile)
	} else {
		c, err = overlay.Preset(fPreset)
	}
	if err != nil {
		return c, err
	}

	// Only the flags that were given override the config file
	if set["v"]            { c.Verbosity = fVerbosity }
	if set["zmin"]         { c.ZMin = fZMin }
	if set["zmax"]         { c.ZMax = fZMax }
	if set["hot"]          { c.Hot = fHot }
	if set["cool"]         { c.Cool = fCool }
	if set["transparency"] { c.Transparency = fTransparency }
	if set["wc"]           { c.WindowCenter = &fWindowCenter }
	if set["ww"]           { c.WindowWidth = &fWindowWidth }
	if set["contrast"]     { c.Contrast = fContrast }
	if set["upscale"]      { c.Upscale = fUpscale }
	if set["nolegend"]     { c.ShowLegend = !fNoLegend }
	if set["font"]         { c.FontFile = fFontFile }
	if set["disclaimer"]   { c.Disclaimer = fDisclaimer }
	if set["age"]          { c.Age = &fAge }
	if set["predicted"]    { c.PredictedAge = &fPredictedAge }
	if set["prefix"]       { c.Prefix = fPrefix }
	if set["format"]       { c.Format = fFormat }
	if set["workers"]      { c.Workers = fWorkers }
	if set["debugdir"]     { c.DebugDir = fDebugDir }

	return c, nil
}

func main() {
	if flag.NArg() != 3 {
		usage()
	}
	anatFile, statFile, outDir := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	cfg, err := getConfig()
	if err != nil {
		fail(err)
	}
	if cfg.Verbosity > 0 {
		log.SetLevel(log.DebugLevel)
	}

	r, err := overlay.NewRenderer(cfg)
	if err != nil {
		fail(err)
	}
	log.Debugf("Final configuration:-\n\n%s\n", cfg.AsYaml())

	if err := r.LoadFiles(anatFile, statFile); err != nil {
		fail(err)
	}

	sink, err := overlay.NewFileSink(outDir, cfg.Format)
	if err != nil {
		fail(err)
	}

	n, err := r.Run(sink)
	if err != nil {
		fail(err)
	}
	log.Printf("%d slices written to %s", n, outDir)
}
