// Package nifti reads and writes single-file NIfTI-1 volumes (.nii and
// .nii.gz).
//
// Based on the official definition of the nifti1 header,
// https://nifti.nimh.nih.gov/pub/dist/src/niftilib/nifti1.h
package nifti

import(
	"encoding/binary"
	"fmt"
	"strings"
)

// Header is the 348 byte NIfTI-1 header, field for field.
//
// C     Go
// -------------
// int   int32
// float float32
// short int16
// char  byte
type Header struct {
	SizeOfHdr          int32    // Must be 348
	UnusedDataType     [10]byte
	UnusedDbName       [18]byte
	UnusedExtents      int32
	UnusedSessionError int16
	UnusedRegular      byte
	DimInfo            byte     // MRI slice ordering

	Dim           [8]int16   // Data array dimensions
	IntentP1      float32
	IntentP2      float32
	IntentP3      float32
	IntentCode    int16
	DataType      int16      // Defines data type
	BitPix        int16      // Number bits/voxel
	SliceStart    int16
	PixDim        [8]float32 // Grid spacing
	VoxOffset     float32    // Offset into .nii file
	SclSlope      float32    // Data scaling: slope
	SclInter      float32    // Data scaling: offset
	SliceEnd      int16
	SliceCode     byte
	XYZTUnits     byte
	CalMax        float32
	CalMin        float32
	SliceDuration float32
	TOffset       float32
	UnusedGlmax   int32
	UnusedGlmin   int32

	Descrip [80]byte
	AuxFile [24]byte

	QFormCode int16
	SFormCode int16

	QuaternB float32
	QuaternC float32
	QuaternD float32
	QOffsetX float32
	QOffsetY float32
	QOffsetZ float32

	SRowX [4]float32
	SRowY [4]float32
	SRowZ [4]float32

	IntentName [16]byte

	Magic [4]byte // "n+1\0" for single file
}

const(
	headerSize    = 348
	minVoxOffset  = 352 // header + 4 byte extension flag
)

// NIfTI-1 datatype codes we can decode
const(
	DTUint8   = 2
	DTInt16   = 4
	DTInt32   = 8
	DTFloat32 = 16
	DTFloat64 = 64
	DTInt8    = 256
	DTUint16  = 512
	DTUint32  = 768
	DTInt64   = 1024
	DTUint64  = 1280
)

var bytesPerVoxel = map[int16]int{
	DTUint8: 1, DTInt8: 1,
	DTInt16: 2, DTUint16: 2,
	DTInt32: 4, DTUint32: 4, DTFloat32: 4,
	DTInt64: 8, DTUint64: 8, DTFloat64: 8,
}

func (h Header)String() string {
	return fmt.Sprintf("nifti1[dim=%v type=%d bitpix=%d pixdim=%v scl=(%g,%g) descrip=%q]",
		h.Dim, h.DataType, h.BitPix, h.PixDim, h.SclSlope, h.SclInter, h.Description())
}

func (h Header)Description() string {
	return strings.TrimRight(string(h.Descrip[:]), "\x00 ")
}

// byteOrder sniffs endianness from sizeof_hdr, which must read as 348.
func byteOrder(b []byte) (binary.ByteOrder, error) {
	switch {
	case binary.LittleEndian.Uint32(b[0:4]) == headerSize: return binary.LittleEndian, nil
	case binary.BigEndian.Uint32(b[0:4]) == headerSize:    return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("not a NIfTI-1 file (sizeof_hdr is neither 348 LE nor BE)")
}

// Validate checks we can turn this header into a 3D volume.
func (h Header)Validate() error {
	if string(h.Magic[:3]) != "n+1" {
		if string(h.Magic[:3]) == "ni1" {
			return fmt.Errorf("split .hdr/.img NIfTI pairs are not supported")
		}
		return fmt.Errorf("bad magic %q", h.Magic[:])
	}

	ndim := int(h.Dim[0])
	if ndim < 1 || ndim > 7 {
		return fmt.Errorf("dim[0]=%d out of range", ndim)
	}
	for i:=1; i<=3 && i<=ndim; i++ {
		if h.Dim[i] < 1 {
			return fmt.Errorf("dim[%d]=%d", i, h.Dim[i])
		}
	}
	for i:=4; i<=ndim; i++ {
		if h.Dim[i] > 1 {
			return fmt.Errorf("only 3D volumes supported, dim[%d]=%d", i, h.Dim[i])
		}
	}

	if _, exists := bytesPerVoxel[h.DataType]; !exists {
		return fmt.Errorf("datatype %d not supported", h.DataType)
	}
	return nil
}

// Shape returns (nx, ny, nz); missing dims are 1.
func (h Header)Shape() (int, int, int) {
	s := [3]int{1, 1, 1}
	for i:=1; i<=3 && i<=int(h.Dim[0]); i++ {
		s[i-1] = int(h.Dim[i])
	}
	return s[0], s[1], s[2]
}

// scaling reports the slope/intercept to apply; slope 0 means none.
func (h Header)scaling() (float64, float64, bool) {
	if h.SclSlope == 0 || (h.SclSlope == 1 && h.SclInter == 0) {
		return 1, 0, false
	}
	return float64(h.SclSlope), float64(h.SclInter), true
}
