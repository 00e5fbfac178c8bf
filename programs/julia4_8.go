package programs

import "github.com/go-gl/mathgl/mgl32"

func init() {
	NewProgram(Program{
		Name:         "julia4_8",
		VertexFile:   DefaultVertexFile,
		FragmentFile: "julia4_8.frag",
		Constant:     complex(-0.98487460613250732421875, 0),
		Range:        1.2,
		GetPixel:     julia4_8Pixel,
	})
}

// julia4_8Pixel iterates z^4 + z^8 + c.
func julia4_8Pixel(uniforms Uniforms, z complex128) mgl32.Vec3 {
	c := uniforms.Constant()
	return Colour(escape(z, uniforms.MaxIterations, func(z complex128) complex128 {
		z2 := z * z
		z4 := z2 * z2
		return z4 + z4*z4 + c
	}))
}
