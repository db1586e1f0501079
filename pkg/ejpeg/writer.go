// Package ejpeg is a baseline JPEG encoder that keeps full resolution
// chroma (4:4:4). The stdlib encoder always subsamples color 4:2:0, which
// smears single-voxel overlays into their neighbours.
package ejpeg

import(
	"bufio"
	"errors"
	"image"
	"image/color"
	"io"
	"math"
	"math/bits"
)

const DefaultQuality = 100

type Options struct {
	Quality int // 1 to 100
}

// Base quantization tables, in zig-zag order.
var baseQuant = [2][64]int{
	// Luminance
	{
		16, 11, 12, 14, 12, 10, 16, 14,
		13, 14, 18, 17, 16, 19, 24, 40,
		26, 24, 22, 22, 24, 49, 35, 37,
		29, 40, 58, 51, 61, 60, 57, 51,
		56, 55, 64, 72, 92, 78, 64, 68,
		87, 69, 55, 56, 80, 109, 81, 87,
		95, 98, 103, 104, 103, 62, 77, 113,
		121, 112, 100, 120, 92, 101, 103, 99,
	},
	// Chrominance
	{
		17, 18, 18, 24, 21, 24, 47, 26,
		26, 47, 99, 66, 56, 66, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
		99, 99, 99, 99, 99, 99, 99, 99,
	},
}

// zigzag[k] is the natural (row-major) index of the k'th coefficient.
var zigzag = func() [64]int {
	var zz [64]int
	k := 0
	for s:=0; s<15; s++ {
		lo, hi := 0, s
		if s > 7 {
			lo, hi = s-7, 7
		}
		if s%2 == 0 {
			for row:=hi; row>=lo; row-- {
				zz[k] = row*8 + (s-row)
				k++
			}
		} else {
			for row:=lo; row<=hi; row++ {
				zz[k] = row*8 + (s-row)
				k++
			}
		}
	}
	return zz
}()

// cosTable[x][u] = C(u)/2 * cos((2x+1)u*pi/16)
var cosTable = func() [8][8]float64 {
	var t [8][8]float64
	for x:=0; x<8; x++ {
		for u:=0; u<8; u++ {
			c := 0.5
			if u == 0 {
				c = 0.5 / math.Sqrt2
			}
			t[x][u] = c * math.Cos(float64(2*x+1) * float64(u) * math.Pi / 16)
		}
	}
	return t
}()

// The typical tables from the JPEG standard (Annex K). One DC and one AC
// table serve all three components.
type huffSpec struct {
	count [16]byte
	value []byte
}

var dcSpec = huffSpec{
	count: [16]byte{0, 1, 5, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0},
	value: []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

var acSpec = huffSpec{
	count: [16]byte{0, 2, 1, 3, 3, 2, 4, 3, 5, 5, 4, 4, 0, 0, 1, 125},
	value: acSymbols(),
}

// acSymbols lists all 162 AC symbols, commonest (short run, small size)
// first so they get the short codes.
func acSymbols() []byte {
	syms := []byte{0x00} // EOB
	for total:=1; total<=25; total++ {
		for run:=0; run<16; run++ {
			size := total - run
			if size >= 1 && size <= 10 {
				syms = append(syms, byte(run<<4 | size))
			}
		}
	}
	return append(syms, 0xF0) // ZRL
}

type huffCode struct {
	code uint32
	size uint8
}

func buildCodes(spec huffSpec) [256]huffCode {
	var lut [256]huffCode
	code, k := uint32(0), 0
	for n:=0; n<16; n++ {
		for i:=0; i<int(spec.count[n]); i++ {
			lut[spec.value[k]] = huffCode{code, uint8(n+1)}
			code++
			k++
		}
		code <<= 1
	}
	return lut
}

var(
	dcCodes = buildCodes(dcSpec)
	acCodes = buildCodes(acSpec)
)

type encoder struct {
	w      *bufio.Writer
	err    error
	bits   uint32
	nBits  uint
	quant  [2][64]int
}

func (e *encoder)write(p []byte) {
	if e.err == nil {
		_, e.err = e.w.Write(p)
	}
}

func (e *encoder)marker(m byte, payload []byte) {
	n := len(payload) + 2
	e.write([]byte{0xFF, m, byte(n>>8), byte(n)})
	e.write(payload)
}

// emit appends the low `size` bits of v to the entropy coded segment,
// stuffing a zero after any 0xFF byte.
func (e *encoder)emit(v uint32, size uint8) {
	for i:=int(size)-1; i>=0; i-- {
		e.bits = e.bits<<1 | (v>>uint(i))&1
		e.nBits++
		if e.nBits == 8 {
			b := byte(e.bits)
			e.write([]byte{b})
			if b == 0xFF {
				e.write([]byte{0})
			}
			e.bits, e.nBits = 0, 0
		}
	}
}

// flush pads the final byte with 1s.
func (e *encoder)flush() {
	for e.nBits != 0 {
		e.emit(1, 1)
	}
}

func (e *encoder)emitHuff(lut *[256]huffCode, sym byte) {
	c := lut[sym]
	e.emit(c.code, c.size)
}

// emitValue writes the size category symbol, then the value bits.
func (e *encoder)emitValue(lut *[256]huffCode, run int, v int) {
	a := v
	if a < 0 {
		a = -a
		v--
	}
	size := uint8(bits.Len(uint(a)))
	e.emitHuff(lut, byte(run<<4) | size)
	if size > 0 {
		e.emit(uint32(v)&(1<<size-1), size)
	}
}

func scaleQuant(quality int) [2][64]int {
	if quality < 1 { quality = 1 }
	if quality > 100 { quality = 100 }
	scale := 200 - 2*quality
	if quality < 50 {
		scale = 5000 / quality
	}
	var q [2][64]int
	for t := range baseQuant {
		for i, b := range baseQuant[t] {
			x := (b*scale + 50) / 100
			if x < 1 { x = 1 }
			if x > 255 { x = 255 }
			q[t][i] = x
		}
	}
	return q
}

// fdct transforms a level shifted block, in place, into natural order
// coefficients.
func fdct(b *[64]float64) {
	var tmp [64]float64
	for y:=0; y<8; y++ {
		for u:=0; u<8; u++ {
			sum := 0.0
			for x:=0; x<8; x++ {
				sum += b[y*8+x] * cosTable[x][u]
			}
			tmp[y*8+u] = sum
		}
	}
	for u:=0; u<8; u++ {
		for v:=0; v<8; v++ {
			sum := 0.0
			for y:=0; y<8; y++ {
				sum += tmp[y*8+u] * cosTable[y][v]
			}
			b[v*8+u] = sum
		}
	}
}

// block encodes one component block, returning its quantized DC.
func (e *encoder)block(b *[64]float64, q *[64]int, prevDC int) int {
	fdct(b)

	var coef [64]int
	for k:=0; k<64; k++ {
		c := int(math.Round(b[zigzag[k]] / float64(q[k])))
		if c > 1023 { c = 1023 }
		if c < -1023 { c = -1023 }
		coef[k] = c
	}

	e.emitValue(&dcCodes, 0, coef[0]-prevDC)

	run := 0
	for k:=1; k<64; k++ {
		if coef[k] == 0 {
			run++
			continue
		}
		for run > 15 {
			e.emitHuff(&acCodes, 0xF0)
			run -= 16
		}
		e.emitValue(&acCodes, run, coef[k])
		run = 0
	}
	if run > 0 {
		e.emitHuff(&acCodes, 0x00)
	}
	return coef[0]
}

func (e *encoder)headers(w, h int) {
	e.write([]byte{0xFF, 0xD8}) // SOI
	e.marker(0xE0, []byte{'J', 'F', 'I', 'F', 0, 1, 1, 0, 0, 1, 0, 1, 0, 0})

	dqt := []byte{}
	for t := range e.quant {
		dqt = append(dqt, byte(t))
		for _, x := range e.quant[t] {
			dqt = append(dqt, byte(x))
		}
	}
	e.marker(0xDB, dqt)

	// Three components, all sampled 1x1
	e.marker(0xC0, []byte{
		8, byte(h>>8), byte(h), byte(w>>8), byte(w), 3,
		1, 0x11, 0,
		2, 0x11, 1,
		3, 0x11, 1,
	})

	dht := []byte{}
	for i, spec := range []huffSpec{dcSpec, acSpec} {
		dht = append(dht, byte(i<<4))
		dht = append(dht, spec.count[:]...)
		dht = append(dht, spec.value...)
	}
	e.marker(0xC4, dht)

	e.marker(0xDA, []byte{3, 1, 0x00, 2, 0x00, 3, 0x00, 0, 63, 0})
}

// Encode writes m as a baseline JPEG with no chroma subsampling.
func Encode(w io.Writer, m image.Image, o *Options) error {
	b := m.Bounds()
	if b.Dx() < 1 || b.Dy() < 1 || b.Dx() > 0xFFFF || b.Dy() > 0xFFFF {
		return errors.New("jpeg: image size out of range")
	}
	quality := DefaultQuality
	if o != nil {
		quality = o.Quality
	}

	e := encoder{w: bufio.NewWriter(w), quant: scaleQuant(quality)}
	e.headers(b.Dx(), b.Dy())

	var yb, cbb, crb [64]float64
	var prevY, prevCb, prevCr int
	for my:=b.Min.Y; my<b.Max.Y; my+=8 {
		for mx:=b.Min.X; mx<b.Max.X; mx+=8 {
			for j:=0; j<8; j++ {
				for i:=0; i<8; i++ {
					// Replicate the edge pixels into partial blocks
					x, y := mx+i, my+j
					if x >= b.Max.X { x = b.Max.X-1 }
					if y >= b.Max.Y { y = b.Max.Y-1 }
					r, g, bl, _ := m.At(x, y).RGBA()
					yy, cb, cr := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
					yb[j*8+i] = float64(yy) - 128
					cbb[j*8+i] = float64(cb) - 128
					crb[j*8+i] = float64(cr) - 128
				}
			}
			prevY = e.block(&yb, &e.quant[0], prevY)
			prevCb = e.block(&cbb, &e.quant[1], prevCb)
			prevCr = e.block(&crb, &e.quant[1], prevCr)
		}
	}

	e.flush()
	e.write([]byte{0xFF, 0xD9}) // EOI
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}
