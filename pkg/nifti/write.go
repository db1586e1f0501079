package nifti

import(
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/abworrall/zmap-overlay/pkg/emath"
)

// NewHeader builds a little-endian float32 header for v.
func NewHeader(v *emath.Volume, descrip string) Header {
	h := Header{
		SizeOfHdr: headerSize,
		Dim:       [8]int16{3, int16(v.Nx), int16(v.Ny), int16(v.Nz), 1, 1, 1, 1},
		DataType:  DTFloat32,
		BitPix:    32,
		PixDim:    [8]float32{1, float32(v.PixDim[0]), float32(v.PixDim[1]), float32(v.PixDim[2]), 1, 1, 1, 1},
		VoxOffset: minVoxOffset,
		Magic:     [4]byte{'n', '+', '1', 0},
	}
	copy(h.Descrip[:], descrip)
	return h
}

// Encode writes v as an uncompressed single-file NIfTI-1 stream.
func Encode(w io.Writer, v *emath.Volume, descrip string) error {
	bw := bufio.NewWriter(w)
	h := NewHeader(v, descrip)

	if err := binary.Write(bw, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("header: %v", err)
	}
	if _, err := bw.Write([]byte{0, 0, 0, 0}); err != nil { // no extensions
		return err
	}

	buf := make([]byte, 4)
	for _, val := range v.Values() {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(val)))
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes v to filename, gzipped if the name ends in .gz.
func Save(filename string, v *emath.Volume, descrip string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("open+w '%s': %v", filename, err)
	}
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(filename), ".gz") {
		return Encode(f, v, descrip)
	}

	gz := gzip.NewWriter(f)
	if err := Encode(gz, v, descrip); err != nil {
		return err
	}
	return gz.Close()
}
