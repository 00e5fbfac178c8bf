package camera

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Axis is one of the three world axes.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Direction is a decoded navigation input.
type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
	RotateLeft
	RotateRight
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	case RotateLeft:
		return "rotate-left"
	case RotateRight:
		return "rotate-right"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Pose is the camera position and its Euler rotation (pitch, roll, yaw).
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Vec3
}

type axisLimits struct {
	min, max float64
	speed    float64
}

// Controller owns the camera target and pose.
// It is not safe for concurrent use; all calls must come from the UI thread.
type Controller struct {
	world    WorldSize
	speed    Speed
	settings Settings

	target mgl64.Vec3
	pose   Pose

	initialTarget mgl64.Vec3
	initialPose   Pose
}

func NewController(world WorldSize, settings Settings) *Controller {
	target := world.Scale(settings.Target)
	c := &Controller{
		world:    world,
		speed:    scaledSpeed(settings.TargetSpeed, world),
		settings: settings,
		target:   target,
		pose: Pose{
			// the configured position is relative to the target
			Position: world.Scale(settings.Position).Add(target),
		},
	}

	for _, axis := range []Axis{AxisX, AxisY, AxisZ} {
		l := c.limits(axis)
		c.target[axis], _ = ClampAxis(c.target[axis], l.min, l.max)
	}
	c.updateRotation()

	c.initialTarget = c.target
	c.initialPose = c.pose
	return c
}

func (c *Controller) limits(axis Axis) axisLimits {
	switch axis {
	case AxisX:
		return axisLimits{min: -c.world.X, max: c.world.X, speed: c.speed.X}
	case AxisY:
		return axisLimits{min: -c.world.Y, max: c.world.Y, speed: c.speed.Y}
	case AxisZ:
		return axisLimits{min: Epsilon, max: c.world.Z, speed: c.speed.Z}
	}
	panic(fmt.Sprintf("invalid axis %v", axis))
}

func (c *Controller) Target() mgl64.Vec3 { return c.target }
func (c *Controller) Pose() Pose         { return c.pose }
func (c *Controller) World() WorldSize   { return c.world }
func (c *Controller) Speed() Speed       { return c.speed }

// ClampAxis limits value to [min, max].
// inBounds reports whether value was already inside the range.
func ClampAxis(value, min, max float64) (clamped float64, inBounds bool) {
	if min <= value && value <= max {
		return value, true
	}
	return math.Min(max, math.Max(value, min)), false
}

// MoveAlongAxis adds delta to the target on axis and clamps it to the world.
// The camera follows by the same delta if the move stayed inside the world and
// the target moves the camera.
func (c *Controller) MoveAlongAxis(axis Axis, delta float64) (applied float64, inBounds bool) {
	l := c.limits(axis)
	before := c.target[axis]

	c.target[axis], inBounds = ClampAxis(before+delta, l.min, l.max)
	if inBounds && c.settings.TargetMovesCamera {
		c.pose.Position[axis] += delta
	}
	c.updateRotation()

	return c.target[axis] - before, inBounds
}

// yaw is the horizontal direction from the target to the camera.
func (c *Controller) yaw() float64 {
	return Angle(c.pose.Position.Y()-c.target.Y(), c.pose.Position.X()-c.target.X())
}

func (c *Controller) moveHorizontal(angle, direction float64) (clamped bool) {
	dx := c.limits(AxisX).speed * math.Cos(angle) * direction
	dy := c.limits(AxisY).speed * math.Sin(angle) * direction

	_, okX := c.MoveAlongAxis(AxisX, dx)
	_, okY := c.MoveAlongAxis(AxisY, dy)
	return !okX || !okY
}

// MoveParallel moves along the camera to target ray.
// Positive direction moves away from the target.
func (c *Controller) MoveParallel(direction float64) (clamped bool) {
	return c.moveHorizontal(c.yaw(), direction)
}

// MoveOrthogonal strafes perpendicular to the camera to target ray.
func (c *Controller) MoveOrthogonal(direction float64) (clamped bool) {
	return c.moveHorizontal(c.yaw()+math.Pi/2, direction)
}

func (c *Controller) MoveVertical(direction float64) (clamped bool) {
	_, ok := c.MoveAlongAxis(AxisZ, c.limits(AxisZ).speed*direction)
	return !ok
}

// RotateTarget orbits the target around the camera in the horizontal plane.
// The camera itself stays put.
func (c *Controller) RotateTarget(direction float64) (clamped bool) {
	dx := c.pose.Position.X() - c.target.X()
	dy := c.pose.Position.Y() - c.target.Y()

	angle := math.Pi + Angle(dy, dx) + direction*c.speed.Angular
	r := Dist2(dx, dy)

	var okX, okY bool
	lx, ly := c.limits(AxisX), c.limits(AxisY)
	c.target[0], okX = ClampAxis(c.pose.Position.X()+r*math.Cos(angle), lx.min, lx.max)
	c.target[1], okY = ClampAxis(c.pose.Position.Y()+r*math.Sin(angle), ly.min, ly.max)
	c.updateRotation()

	return !okX || !okY
}

// Apply runs the navigation action for d.
// It reports whether the world limits stopped any part of the move.
func (c *Controller) Apply(d Direction) (clamped bool) {
	switch d {
	case Forward:
		return c.MoveParallel(-1)
	case Backward:
		return c.MoveParallel(1)
	case Left:
		return c.MoveOrthogonal(-1)
	case Right:
		return c.MoveOrthogonal(1)
	case Up:
		return c.MoveVertical(1)
	case Down:
		return c.MoveVertical(-1)
	case RotateLeft:
		return c.RotateTarget(1)
	case RotateRight:
		return c.RotateTarget(-1)
	}
	return false
}

// Reset restores the target and pose the controller was created with.
func (c *Controller) Reset() {
	c.target = c.initialTarget
	c.pose = c.initialPose
}

func (c *Controller) updateRotation() {
	d := c.target.Sub(c.pose.Position)
	c.pose.Rotation = mgl64.Vec3{
		Angle(d.Z(), Dist2(d.X(), d.Y())),
		0,
		Angle(d.Y(), d.X()),
	}
}

var up = mgl64.Vec3{0, 0, 1}

// View returns the look-at matrix from the camera to the target.
func (c *Controller) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.pose.Position, c.target, up)
}

func (c *Controller) Projection(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(
		mgl64.DegToRad(c.settings.FOV),
		aspect,
		c.settings.Near,
		c.settings.Far*c.world.DiagL,
	)
}

// Matrix returns projection * view in single precision, ready for a uniform.
func (c *Controller) Matrix(aspect float64) mgl32.Mat4 {
	return Mat32(c.Projection(aspect).Mul4(c.View()))
}

func Mat32(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}
