package emath

import(
	"fmt"
	"math"
)

// A Volume is a 3D grid of scalar samples, x varying fastest (the NIfTI
// on-disk order).
type Volume struct {
	Nx, Ny, Nz int
	PixDim     [3]float64 // voxel spacing, informational
	values     []float64
}

func NewVolume(nx, ny, nz int) Volume {
	return Volume{
		Nx: nx, Ny: ny, Nz: nz,
		PixDim: [3]float64{1, 1, 1},
		values: make([]float64, nx*ny*nz),
	}
}

// NewVolumeFromValues wraps vals (x fastest); len(vals) must be nx*ny*nz.
func NewVolumeFromValues(nx, ny, nz int, vals []float64) (Volume, error) {
	if nx*ny*nz != len(vals) {
		return Volume{}, fmt.Errorf("volume %dx%dx%d needs %d values, got %d", nx, ny, nz, nx*ny*nz, len(vals))
	}
	v := NewVolume(nx, ny, nz)
	copy(v.values, vals)
	return v, nil
}

func (v *Volume)Index(x, y, z int) int          { return x + v.Nx*(y + v.Ny*z) }
func (v *Volume)At(x, y, z int) float64         { return v.values[v.Index(x, y, z)] }
func (v *Volume)Set(x, y, z int, val float64)   { v.values[v.Index(x, y, z)] = val }
func (v *Volume)Shape() [3]int                  { return [3]int{v.Nx, v.Ny, v.Nz} }
func (v *Volume)Len() int                       { return len(v.values) }
func (v *Volume)Values() []float64              { return v.values }
func (v Volume)String() string                  { return fmt.Sprintf("vol[%dx%dx%d]", v.Nx, v.Ny, v.Nz) }

func (v *Volume)SameShape(o *Volume) bool { return v.Shape() == o.Shape() }

func (v *Volume)Copy() Volume {
	c := *v
	c.values = make([]float64, len(v.values))
	copy(c.values, v.values)
	return c
}

// Map returns a new volume with f applied to every sample.
func (v *Volume)Map(f func(float64) float64) Volume {
	c := v.Copy()
	for i, val := range c.values {
		c.values[i] = f(val)
	}
	return c
}

func (v *Volume)MinMax() (min, max float64, ok bool) {
	return minMax(v.values)
}

// CountNaN returns how many samples are NaN.
func (v *Volume)CountNaN() int {
	n := 0
	for _, val := range v.values {
		if math.IsNaN(val) { n++ }
	}
	return n
}

// Slice cuts the plane at index i along axis (0, 1 or 2). Rows of the
// returned grid run along the lower remaining axis, columns along the
// higher one; e.g. an axis 2 slice is Ny wide and Nx high, with
// grid(col=y, row=x) == vol(x, y, i).
func (v *Volume)Slice(axis, i int) (FloatGrid, error) {
	dims := v.Shape()
	if axis < 0 || axis > 2 {
		return FloatGrid{}, fmt.Errorf("axis %d not in [0,2]", axis)
	}
	if i < 0 || i >= dims[axis] {
		return FloatGrid{}, fmt.Errorf("slice %d out of range [0,%d) on axis %d", i, dims[axis], axis)
	}

	var rowAxis, colAxis int
	switch axis {
	case 0: rowAxis, colAxis = 1, 2
	case 1: rowAxis, colAxis = 0, 2
	case 2: rowAxis, colAxis = 0, 1
	}

	g := NewFloatGrid(dims[colAxis], dims[rowAxis])
	pos := [3]int{}
	pos[axis] = i
	for row:=0; row<dims[rowAxis]; row++ {
		for col:=0; col<dims[colAxis]; col++ {
			pos[rowAxis], pos[colAxis] = row, col
			g.Set(col, row, v.At(pos[0], pos[1], pos[2]))
		}
	}
	return g, nil
}
