package main

import(
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/abworrall/zmap-overlay/pkg/nifti"
	"github.com/abworrall/zmap-overlay/pkg/overlay"
)

var(
	fVerbosity int
	fAxis int
	fFormat string
	fPrefix string
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.IntVar(&fAxis, "a", 2, "axis of the volume to take slices along (0, 1 or 2)")
	flag.StringVar(&fFormat, "format", "tiff", "tiff (16 bit gray), png (16 bit gray) or hdr (floats)")
	flag.StringVar(&fPrefix, "prefix", "bia", "output filename prefix")
	flag.Parse()
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "niislice: %v\n", err)
	os.Exit(1)
}

func main() {
	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "usage: niislice [flags] volume.nii[.gz] outdir\n")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if fVerbosity > 0 {
		log.SetLevel(log.DebugLevel)
	}

	v, hdr, err := nifti.Load(flag.Arg(0))
	if err != nil {
		fail(fmt.Errorf("%w: %w", overlay.ErrIO, err))
	}
	log.Debugf("%s: %s", flag.Arg(0), hdr)

	sink, err := overlay.NewFileSink(flag.Arg(1), fFormat)
	if err != nil {
		fail(err)
	}
	if _, err := overlay.ExportSlices(&v, fAxis, sink, fPrefix, fFormat); err != nil {
		fail(err)
	}
}
