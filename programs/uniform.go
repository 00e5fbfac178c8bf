package programs

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Uniforms are uploaded to the shader program field by field, each to the
// uniform named by its tag.
type Uniforms struct {
	Camera        mgl32.Mat4 `uniform:"camera"`
	World         mgl32.Vec2 `uniform:"world"`
	C             mgl32.Vec2 `uniform:"c"`
	MaxIterations int32      `uniform:"max_iterations"`
}

func (u Uniforms) Constant() complex128 {
	return complex(float64(u.C[0]), float64(u.C[1]))
}

func (u *Uniforms) SetConstant(c complex128) {
	u.C = mgl32.Vec2{float32(real(c)), float32(imag(c))}
}

// DefaultUniforms returns the uniforms for p before any user input.
func (p Program) DefaultUniforms(maxIterations int32) Uniforms {
	u := Uniforms{
		Camera:        mgl32.Ident4(),
		World:         mgl32.Vec2{1, 1},
		MaxIterations: maxIterations,
	}
	u.SetConstant(p.Constant)
	return u
}
