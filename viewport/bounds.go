// Package viewport maps a square region of the complex plane onto the
// six vertices of the screen quad.
package viewport

// Vertices is the number of vertices in the quad. The two triangles do not
// share vertices.
const Vertices = 6

// ScreenQuad holds the xy positions of the quad vertices, in the order the
// real and imaginary arrays of Quad are paired with.
var ScreenQuad = [Vertices * 2]float32{
	-1, -1,
	1, 1,
	-1, 1,

	-1, -1,
	1, 1,
	1, -1,
}

// Bounds is the square [Real-Range, Real+Range] x [Imag-Range, Imag+Range].
// Range is expected to be positive but is not checked; zero gives a
// degenerate quad and a negative range mirrors it.
type Bounds struct {
	Real  float64
	Imag  float64
	Range float64
}

// Quad holds the per vertex complex coordinates of the screen quad.
type Quad struct {
	Real [Vertices]float32
	Imag [Vertices]float32
}

func (b Bounds) Quad() Quad {
	lr, hr := float32(b.Real-b.Range), float32(b.Real+b.Range)
	li, hi := float32(b.Imag-b.Range), float32(b.Imag+b.Range)

	return Quad{
		Real: [Vertices]float32{
			lr, hr, lr,
			lr, hr, hr,
		},
		Imag: [Vertices]float32{
			li, hi, hi,
			li, hi, li,
		},
	}
}

// Zoom scales the range by factor, keeping the center.
func (b Bounds) Zoom(factor float64) Bounds {
	b.Range *= factor
	return b
}

// Pan moves the center by (dx, dy) given in screen units, where the quad
// spans [-1, 1] on both axes.
func (b Bounds) Pan(dx, dy float64) Bounds {
	b.Real += dx * b.Range
	b.Imag += dy * b.Range
	return b
}

// At returns the complex coordinate under the screen position (x, y).
func (b Bounds) At(x, y float64) complex128 {
	return complex(b.Real+x*b.Range, b.Imag+y*b.Range)
}
