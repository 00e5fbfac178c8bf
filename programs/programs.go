package programs

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/stewi1014/juliashaders/viewport"
)

var (
	ErrNoCPUImplementation = errors.New("fractal does not have a CPU implementation")
	ErrUnknownProgram      = errors.New("unknown program")
)

var (
	NullColour = mgl32.Vec3{0.1, 0.1, 0.1}
)

// DefaultVertexFile is shared by every program in the catalog.
const DefaultVertexFile = "default.vert"

func NumPrograms() int {
	return len(programs)
}

func GetProgram(i int) Program {
	return programs[i]
}

// Next returns the program registered after the one called name, wrapping
// around. An unknown name gives the first program.
func Next(name string) Program {
	n := NumPrograms()
	for i := 0; i < n; i++ {
		if GetProgram(i).Name == name {
			return GetProgram((i + 1) % n)
		}
	}
	return GetProgram(0)
}

func NewProgram(p Program) error {
	if _, err := lookup(p.Name); err == nil {
		return fmt.Errorf("program %q already registered", p.Name)
	}
	programs = append(programs, p)
	return nil
}

// Programs returns the catalog in registration order.
func Programs() []Program {
	return append([]Program(nil), programs...)
}

func Names() []string {
	names := make([]string, len(programs))
	for i, p := range programs {
		names[i] = p.Name
	}
	return names
}

func lookup(name string) (Program, error) {
	for _, p := range programs {
		if p.Name == name {
			return p, nil
		}
	}
	return Program{}, fmt.Errorf("%w %q", ErrUnknownProgram, name)
}

// Find returns the program called name, or failing that the closest fuzzy
// match, so "jul3" finds "julia3".
func Find(name string) (Program, error) {
	if p, err := lookup(name); err == nil {
		return p, nil
	}

	ranks := fuzzy.RankFindFold(name, Names())
	if len(ranks) == 0 {
		return Program{}, fmt.Errorf("%w %q, have %v", ErrUnknownProgram, name, Names())
	}
	sort.Sort(ranks)
	return programs[ranks[0].OriginalIndex], nil
}

var programs []Program

// PixelFunc computes the colour of the point z of the complex plane.
type PixelFunc func(uniforms Uniforms, z complex128) mgl32.Vec3

type Program struct {
	Name         string
	VertexFile   string
	FragmentFile string

	// Constant is the default value of the c uniform.
	Constant complex128
	// Center and Range give the region shown after selecting the program.
	Center complex128
	Range  float64

	GetPixel PixelFunc
}

func (p Program) DefaultBounds() viewport.Bounds {
	return viewport.Bounds{
		Real:  real(p.Center),
		Imag:  imag(p.Center),
		Range: p.Range,
	}
}

// escape iterates step from z until it leaves the |re|+|im| <= 4 diamond.
// escaped is false if it was still inside after max iterations.
func escape(z complex128, max int32, step func(z complex128) complex128) (iterations int32, escaped bool) {
	for math.Abs(real(z))+math.Abs(imag(z)) <= 4 {
		if iterations == max {
			return iterations, false
		}
		z = step(z)
		iterations++
	}
	return iterations, true
}

// Colour matches colour() in the fragment shaders.
func Colour(iterations int32, escaped bool) mgl32.Vec3 {
	if !escaped {
		return NullColour
	}
	n := 3 + float64(iterations)*0.15
	return mgl32.Vec3{
		float32(0.5 + 0.5*math.Cos(n)),
		float32(0.5 + 0.5*math.Cos(n+0.6)),
		float32(0.5 + 0.5*math.Cos(n+1.0)),
	}
}

// juliaPixel builds the CPU implementation of z -> z^power + c.
func juliaPixel(power int) PixelFunc {
	return func(uniforms Uniforms, z complex128) mgl32.Vec3 {
		c := uniforms.Constant()
		return Colour(escape(z, uniforms.MaxIterations, func(z complex128) complex128 {
			w := z
			for i := 1; i < power; i++ {
				w *= z
			}
			return w + c
		}))
	}
}
