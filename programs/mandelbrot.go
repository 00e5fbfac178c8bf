package programs

import (
	"github.com/go-gl/mathgl/mgl32"
)

func init() {
	NewProgram(Program{
		Name:         "mandelbrot",
		VertexFile:   DefaultVertexFile,
		FragmentFile: "mandelbrot.frag",
		Center:       complex(-0.5, 0),
		Range:        2,
		GetPixel: func(uniforms Uniforms, c complex128) mgl32.Vec3 {
			return Colour(escape(c, uniforms.MaxIterations, func(z complex128) complex128 {
				return z*z + c
			}))
		},
	})
}
