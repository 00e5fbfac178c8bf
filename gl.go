package main

import (
	"fmt"
	"log"
	"reflect"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/juliashaders/programs"
	"github.com/stewi1014/juliashaders/viewport"
)

var (
	glDebugSeverities = map[uint32]string{
		gl.DEBUG_SEVERITY_HIGH:   "high",
		gl.DEBUG_SEVERITY_MEDIUM: "medium",
		gl.DEBUG_SEVERITY_LOW:    "low",
	}
	glDebugSources = map[uint32]string{
		gl.DEBUG_SOURCE_API:             "api",
		gl.DEBUG_SOURCE_APPLICATION:     "application",
		gl.DEBUG_SOURCE_OTHER:           "other",
		gl.DEBUG_SOURCE_SHADER_COMPILER: "shaderCompiler",
		gl.DEBUG_SOURCE_THIRD_PARTY:     "thirdParty",
		gl.DEBUG_SOURCE_WINDOW_SYSTEM:   "windowSystem",
	}
	glDebugTypes = map[uint32]string{
		gl.DEBUG_TYPE_ERROR:               "error",
		gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR: "deprecatedBehavior",
		gl.DEBUG_TYPE_MARKER:              "marker",
		gl.DEBUG_TYPE_OTHER:               "other",
		gl.DEBUG_TYPE_PERFORMANCE:         "performance",
		gl.DEBUG_TYPE_PORTABILITY:         "portability",
		gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:  "undefinedBehavior",
	}
)

func glDebugLabel(labels map[uint32]string, v uint32) string {
	if l, ok := labels[v]; ok {
		return l
	}
	return fmt.Sprintf("0x%x", v)
}

// glDebugMessage logs driver messages above notification severity.
func glDebugMessage(source, gltype, id, severity uint32, length int32, message string, user unsafe.Pointer) {
	if severity == gl.DEBUG_SEVERITY_NOTIFICATION {
		return
	}
	log.Printf("gl %v(%v): %v; %v",
		glDebugLabel(glDebugSources, source),
		glDebugLabel(glDebugSeverities, severity),
		glDebugLabel(glDebugTypes, gltype),
		message,
	)
}

// initGL loads the GL functions for the current context.
func initGL(debug bool) error {
	err := gl.Init()
	if err != nil {
		return fmt.Errorf("gl.Init: %w", err)
	}
	version := gl.GoStr(gl.GetString(gl.VERSION))
	log.Println("OpenGL version", version)

	gl.DebugMessageCallback(glDebugMessage, nil)
	if debug {
		gl.Enable(gl.DEBUG_OUTPUT)
	}
	gl.ClearColor(0.075, 0.075, 0.075, 1)
	return nil
}

// glQuad is the screen quad and the shader program drawing it.
// The position buffer never changes; the real and imaginary buffers are
// rewritten whenever the viewport bounds change.
type glQuad struct {
	vao      uint32
	vertVBO  uint32
	realVBO  uint32
	imagVBO  uint32
	program  uint32
	uniforms map[string]int32
}

func newGLQuad() *glQuad {
	q := &glQuad{}

	gl.GenVertexArrays(1, &q.vao)
	gl.BindVertexArray(q.vao)

	gl.GenBuffers(1, &q.vertVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vertVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(viewport.ScreenQuad)*4, gl.Ptr(&viewport.ScreenQuad[0]), gl.STATIC_DRAW)

	for _, vbo := range []*uint32{&q.realVBO, &q.imagVBO} {
		gl.GenBuffers(1, vbo)
		gl.BindBuffer(gl.ARRAY_BUFFER, *vbo)
		gl.BufferData(gl.ARRAY_BUFFER, viewport.Vertices*4, nil, gl.DYNAMIC_DRAW)
	}

	return q
}

// uploadBounds rewrites the per vertex complex coordinates.
func (q *glQuad) uploadBounds(quad viewport.Quad) {
	gl.BindBuffer(gl.ARRAY_BUFFER, q.realVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, viewport.Vertices*4, gl.Ptr(&quad.Real[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, q.imagVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, viewport.Vertices*4, gl.Ptr(&quad.Imag[0]))
}

func (q *glQuad) loadProgram(sources programs.Sources) error {
	vertexShader, err := compileShader(sources.VertexFile, sources.Vertex, gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(sources.FragmentFile, sources.Fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		return err
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.BindFragDataLocation(program, 0, gl.Str("outputColor\x00"))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		infoLog := readInfoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return fmt.Errorf("linking %v with %v: %v", sources.VertexFile, sources.FragmentFile, infoLog)
	}

	if q.program != 0 {
		gl.DeleteProgram(q.program)
	}
	q.program = program
	gl.UseProgram(q.program)

	q.uniforms = make(map[string]int32)
	t := reflect.TypeOf(programs.Uniforms{})
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("uniform")
		q.uniforms[name] = gl.GetUniformLocation(q.program, gl.Str(name+"\x00"))
	}

	gl.BindVertexArray(q.vao)
	q.bindAttrib("vert", q.vertVBO, 2)
	q.bindAttrib("vertex_z_r", q.realVBO, 1)
	q.bindAttrib("vertex_z_i", q.imagVBO, 1)

	return nil
}

func (q *glQuad) bindAttrib(name string, vbo uint32, size int32) {
	loc := gl.GetAttribLocation(q.program, gl.Str(name+"\x00"))
	if loc < 0 {
		log.Printf("attribute %v is unused by the shader", name)
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.EnableVertexAttribArray(uint32(loc))
	gl.VertexAttribPointerWithOffset(uint32(loc), size, gl.FLOAT, false, size*4, 0)
}

func (q *glQuad) draw(uniforms *programs.Uniforms) {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(q.program)
	loadUniforms(q.uniforms, uniforms)
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, viewport.Vertices)
}

type uniformSetter func(loc, count int32, ptr unsafe.Pointer)

var uniformSetters = map[reflect.Type]uniformSetter{
	reflect.TypeOf(mgl32.Vec2{}): func(loc, count int32, ptr unsafe.Pointer) {
		gl.Uniform2fv(loc, count, (*float32)(ptr))
	},
	reflect.TypeOf(mgl32.Vec3{}): func(loc, count int32, ptr unsafe.Pointer) {
		gl.Uniform3fv(loc, count, (*float32)(ptr))
	},
	reflect.TypeOf(mgl32.Mat4{}): func(loc, count int32, ptr unsafe.Pointer) {
		gl.UniformMatrix4fv(loc, count, false, (*float32)(ptr))
	},
	reflect.TypeOf(int32(0)): func(loc, count int32, ptr unsafe.Pointer) {
		gl.Uniform1iv(loc, count, (*int32)(ptr))
	},
	reflect.TypeOf(float32(0)): func(loc, count int32, ptr unsafe.Pointer) {
		gl.Uniform1fv(loc, count, (*float32)(ptr))
	},
}

// loadUniforms uploads each field of uniforms to the location named by its
// tag. Arrays of a supported type upload as uniform arrays.
func loadUniforms(locations map[string]int32, uniforms *programs.Uniforms) {
	v := reflect.ValueOf(uniforms).Elem()
	for i := 0; i < v.NumField(); i++ {
		loc, ok := locations[v.Type().Field(i).Tag.Get("uniform")]
		if !ok || loc < 0 {
			continue
		}

		f := v.Field(i)
		count := int32(1)
		set, ok := uniformSetters[f.Type()]
		if !ok && f.Kind() == reflect.Array {
			count = int32(f.Len())
			set, ok = uniformSetters[f.Type().Elem()]
		}
		if !ok {
			log.Printf("unsupported uniform type %v", f.Type())
			continue
		}

		set(loc, count, f.Addr().UnsafePointer())
	}
}

// compileShader compiles source, naming file in any error.
func compileShader(file, source string, shaderType uint32) (uint32, error) {
	csource, free := gl.Strs(source + "\x00")
	defer free()

	shader := gl.CreateShader(shaderType)
	gl.ShaderSource(shader, 1, csource, nil)
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		infoLog := readInfoLog(shader, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compiling %v: %v", file, infoLog)
	}

	return shader, nil
}

// readInfoLog fetches the compile or link log of a shader or program.
func readInfoLog(
	object uint32,
	getiv func(uint32, uint32, *int32),
	getLog func(uint32, int32, *int32, *uint8),
) string {
	var length int32
	getiv(object, gl.INFO_LOG_LENGTH, &length)
	if length == 0 {
		return "no log"
	}

	buf := make([]byte, length+1)
	getLog(object, length, nil, &buf[0])
	return strings.TrimRight(string(buf), "\x00\n")
}
