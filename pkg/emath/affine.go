package emath

// Some basic affine transformations, used to reorient slices

import(
	"math"
	"golang.org/x/image/math/f64"  // Will be "image/math/f64" at some point, hopefully make this file redundant
)

// Use a local type so we can hang methods off it
type Aff3 f64.Aff3

// Cut-n-pasted from image@0.7.0/draw/scale:matMul
func (p Aff3)Mult(q Aff3) Aff3 {
	return Aff3{
		p[3*0+0]*q[3*0+0] + p[3*0+1]*q[3*1+0],
		p[3*0+0]*q[3*0+1] + p[3*0+1]*q[3*1+1],
		p[3*0+0]*q[3*0+2] + p[3*0+1]*q[3*1+2] + p[3*0+2],
		p[3*1+0]*q[3*0+0] + p[3*1+1]*q[3*1+0],
		p[3*1+0]*q[3*0+1] + p[3*1+1]*q[3*1+1],
		p[3*1+0]*q[3*0+2] + p[3*1+1]*q[3*1+2] + p[3*1+2],
	}
}

func Identity() Aff3 {
	return Aff3{1, 0, 0,   0, 1, 0}
}

func (m1 Aff3)Translate(tx, ty float64) Aff3 {
	return m1.Mult(Aff3{1, 0, tx,   0, 1, ty})
}

func (m1 Aff3)Scale(sx, sy float64) Aff3 {
	return m1.Mult(Aff3{sx, 0, 0,   0, sy, 0})
}

// Rotate snaps cos/sin to exact values, so quarter turns stay pixel exact.
func (m1 Aff3)Rotate(thetaDeg float64) Aff3 {
	cosTheta := Snap(math.Cos(thetaDeg * math.Pi / 180.0))
	sinTheta := Snap(math.Sin(thetaDeg * math.Pi / 180.0))
	return m1.Mult(Aff3{cosTheta, -1*sinTheta, 0,    sinTheta, cosTheta, 0})
}

// Apply maps a point through the transform.
func (m Aff3)Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// Radiological maps a w*h raster (rows along the volume's first axis) into
// conventional radiological orientation: rotate 90deg counter-clockwise,
// then mirror horizontally. The output raster is h*w.
//
// In image coords (y down) a visual CCW quarter turn is Rotate(-90)
// followed by a shift of w; the mirror then flips x about the new width h.
func Radiological(w, h int) Aff3 {
	// Remember they compose back to front - rightmost operations performed first
	return Identity().Translate(float64(h), 0).Scale(-1, 1).Translate(0, float64(w)).Rotate(-90)
}
