package camera

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the lowest height the camera target may reach.
const Epsilon = 0.00001

// WorldSize holds the half extents of the navigable box.
// The box spans [-X, X], [-Y, Y] and [0, Z].
type WorldSize struct {
	X, Y, Z float64

	DiagL float64 // long diagonal of the whole box
	DiagX float64 // diagonal of the xz face
	DiagY float64 // diagonal of the yz face
}

func NewWorldSize(x, y, z float64) WorldSize {
	return WorldSize{
		X:     x,
		Y:     y,
		Z:     z,
		DiagL: math.Sqrt(math.Pow(2*x, 2) + math.Pow(2*y, 2) + math.Pow(z, 2)),
		DiagX: math.Sqrt(math.Pow(2*x, 2) + math.Pow(z, 2)),
		DiagY: math.Sqrt(math.Pow(2*y, 2) + math.Pow(z, 2)),
	}
}

// Scale multiplies each component of v by the matching half extent.
func (w WorldSize) Scale(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v[0] * w.X, v[1] * w.Y, v[2] * w.Z}
}

// Speed is the step size of each navigation action.
type Speed struct {
	Angular float64 `yaml:"angular"` // radians per rotation step
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Z       float64 `yaml:"z"`

	// XY is the step length of a horizontal move, derived from X and Y.
	XY float64 `yaml:"-"`
}

// Settings describes the initial camera and how it reacts to navigation.
// Position, Target and TargetSpeed are given as fractions of the world size,
// Far as a fraction of the long diagonal.
type Settings struct {
	FOV               float64    `yaml:"fov"`
	Near              float64    `yaml:"near"`
	Far               float64    `yaml:"far"`
	Position          mgl64.Vec3 `yaml:"position"`
	Target            mgl64.Vec3 `yaml:"target"`
	TargetMovesCamera bool       `yaml:"targetMoveCamera"`
	TargetSpeed       Speed      `yaml:"targetSpeed"`
}

func DefaultSettings() Settings {
	return Settings{
		FOV:               56,
		Near:              0.1,
		Far:               9,
		Position:          mgl64.Vec3{0, -1.6, 1.5},
		Target:            mgl64.Vec3{0, 0, 0},
		TargetMovesCamera: true,
		TargetSpeed: Speed{
			Angular: 0.05,
			X:       0.010,
			Y:       0.010,
			Z:       0.005,
		},
	}
}

// scaledSpeed converts a fractional speed into world units.
func scaledSpeed(s Speed, world WorldSize) Speed {
	scaled := Speed{
		Angular: s.Angular,
		X:       s.X * world.X,
		Y:       s.Y * world.Y,
		Z:       s.Z * world.Z,
	}
	scaled.XY = Dist2(scaled.X, scaled.Y)
	return scaled
}

// Validate reports settings that would give a degenerate projection or
// reverse the navigation keys.
func (s Settings) Validate(world WorldSize) error {
	if s.FOV <= 0 || s.FOV >= 180 {
		return fmt.Errorf("fov must be between 0 and 180 degrees, got %v", s.FOV)
	}
	if s.Near <= 0 {
		return fmt.Errorf("near must be positive, got %v", s.Near)
	}
	if far := s.Far * world.DiagL; far <= s.Near {
		return fmt.Errorf("far plane %v must lie beyond near plane %v", far, s.Near)
	}
	sp := s.TargetSpeed
	if sp.Angular < 0 || sp.X < 0 || sp.Y < 0 || sp.Z < 0 {
		return fmt.Errorf("targetSpeed must not be negative, got %+v", sp)
	}
	return nil
}
