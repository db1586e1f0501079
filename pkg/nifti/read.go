package nifti

import(
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"

	"github.com/abworrall/zmap-overlay/pkg/emath"
)

// MaxVoxels caps the size of volume Decode will accept.
const MaxVoxels = 1 << 28

// Load reads a .nii or .nii.gz file (gzip is sniffed, not guessed from
// the extension) into a float volume, with scl_slope/scl_inter applied.
func Load(filename string) (emath.Volume, Header, error) {
	f, err := os.Open(filename)
	if err != nil {
		return emath.Volume{}, Header{}, fmt.Errorf("open+r '%s': %v", filename, err)
	}
	defer f.Close()

	v, h, err := Decode(f)
	if err != nil {
		return v, h, fmt.Errorf("nifti '%s': %v", filename, err)
	}

	log.WithFields(log.Fields{"file": filename, "shape": v.String()}).Debugf("Loaded %s", h)
	return v, h, nil
}

// Decode reads a whole single-file NIfTI-1 stream.
func Decode(r io.Reader) (emath.Volume, Header, error) {
	h := Header{}

	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return emath.Volume{}, h, fmt.Errorf("gzip: %v", err)
		}
		defer gz.Close()
		br = bufio.NewReader(gz)
	}

	hdrBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(br, hdrBytes); err != nil {
		return emath.Volume{}, h, fmt.Errorf("header: %v", err)
	}
	order, err := byteOrder(hdrBytes)
	if err != nil {
		return emath.Volume{}, h, err
	}
	if err := binary.Read(bytes.NewReader(hdrBytes), order, &h); err != nil {
		return emath.Volume{}, h, fmt.Errorf("header: %v", err)
	}
	if err := h.Validate(); err != nil {
		return emath.Volume{}, h, err
	}

	// Skip the extension flag and any extensions
	offset := int64(h.VoxOffset)
	if offset < minVoxOffset {
		offset = minVoxOffset
	}
	if _, err := io.CopyN(io.Discard, br, offset - headerSize); err != nil {
		return emath.Volume{}, h, fmt.Errorf("seeking to vox_offset %d: %v", offset, err)
	}

	nx, ny, nz := h.Shape()
	nBytes := bytesPerVoxel[h.DataType]
	if nVox := int64(nx)*int64(ny)*int64(nz); nVox > MaxVoxels {
		return emath.Volume{}, h, fmt.Errorf("%dx%dx%d is %d voxels, more than the %d we'll load", nx, ny, nz, nVox, MaxVoxels)
	}

	// The buffer grows as data arrives, so a header promising more than
	// the file holds fails at EOF instead of allocating up front.
	want := int64(nx*ny*nz*nBytes)
	var data bytes.Buffer
	if n, err := io.CopyN(&data, br, want); err != nil {
		return emath.Volume{}, h, fmt.Errorf("voxel data (%d of %d bytes): %v", n, want, err)
	}
	raw := data.Bytes()

	vals := make([]float64, nx*ny*nz)
	for i := range vals {
		vals[i] = decodeSample(raw[i*nBytes:(i+1)*nBytes], h.DataType, order)
	}

	if slope, inter, ok := h.scaling(); ok {
		for i := range vals {
			vals[i] = vals[i]*slope + inter
		}
	}

	v, err := emath.NewVolumeFromValues(nx, ny, nz, vals)
	if err != nil {
		return v, h, err
	}
	for i:=0; i<3; i++ {
		if d := float64(h.PixDim[i+1]); d > 0 {
			v.PixDim[i] = d
		}
	}
	return v, h, nil
}

func decodeSample(b []byte, dt int16, order binary.ByteOrder) float64 {
	switch dt {
	case DTUint8:   return float64(b[0])
	case DTInt8:    return float64(int8(b[0]))
	case DTInt16:   return float64(int16(order.Uint16(b)))
	case DTUint16:  return float64(order.Uint16(b))
	case DTInt32:   return float64(int32(order.Uint32(b)))
	case DTUint32:  return float64(order.Uint32(b))
	case DTInt64:   return float64(int64(order.Uint64(b)))
	case DTUint64:  return float64(order.Uint64(b))
	case DTFloat32: return float64(math.Float32frombits(order.Uint32(b)))
	case DTFloat64: return math.Float64frombits(order.Uint64(b))
	}
	return math.NaN()
}
