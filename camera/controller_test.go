package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func newTestController() *Controller {
	return NewController(NewWorldSize(1, 1, 1), DefaultSettings())
}

func TestDist2(t *testing.T) {
	assert.Equal(t, 5.0, Dist2(3, 4))
	assert.Equal(t, 5.0, Dist2(-3, -4))
	assert.Equal(t, 0.0, Dist2(0, 0))
}

func TestWorldSizeDiagonals(t *testing.T) {
	w := NewWorldSize(1, 2, 3)
	assert.InDelta(t, math.Sqrt(4+16+9), w.DiagL, tolerance)
	assert.InDelta(t, math.Sqrt(4+9), w.DiagX, tolerance)
	assert.InDelta(t, math.Sqrt(16+9), w.DiagY, tolerance)
}

func TestClampAxis(t *testing.T) {
	tests := []struct {
		value, min, max float64
		want            float64
		inBounds        bool
	}{
		{0.5, -1, 1, 0.5, true},
		{-1, -1, 1, -1, true},
		{1, -1, 1, 1, true},
		{1.5, -1, 1, 1, false},
		{-7, -1, 1, -1, false},
		{0, Epsilon, 1, Epsilon, false},
	}

	for _, tt := range tests {
		got, ok := ClampAxis(tt.value, tt.min, tt.max)
		assert.Equal(t, tt.want, got, "ClampAxis(%v, %v, %v)", tt.value, tt.min, tt.max)
		assert.Equal(t, tt.inBounds, ok, "ClampAxis(%v, %v, %v)", tt.value, tt.min, tt.max)
		assert.GreaterOrEqual(t, got, tt.min)
		assert.LessOrEqual(t, got, tt.max)
	}
}

func TestNewControllerClampsTarget(t *testing.T) {
	c := newTestController()
	assert.Equal(t, Epsilon, c.Target().Z())
	assert.Equal(t, mgl64.Vec3{0, -1.6, 1.5}, c.Pose().Position)
}

func TestNewControllerPositionRelativeToTarget(t *testing.T) {
	settings := DefaultSettings()
	settings.Target = mgl64.Vec3{0.5, 0.5, 0.5}
	c := NewController(NewWorldSize(1, 1, 1), settings)

	assert.True(t, c.Pose().Position.ApproxEqualThreshold(mgl64.Vec3{0.5, -1.1, 2}, tolerance), "got %v", c.Pose().Position)
	assert.Equal(t, mgl64.Vec3{0.5, 0.5, 0.5}, c.Target())

	world := NewWorldSize(2, 3, 4)
	c = NewController(world, settings)
	offset := c.Pose().Position.Sub(c.Target())
	assert.True(t, offset.ApproxEqualThreshold(world.Scale(DefaultSettings().Position), tolerance), "got %v", offset)
}

func TestSettingsValidate(t *testing.T) {
	world := NewWorldSize(1, 1, 1)
	require.NoError(t, DefaultSettings().Validate(world))

	tests := map[string]func(s *Settings){
		"fov":      func(s *Settings) { s.FOV = 180 },
		"near":     func(s *Settings) { s.Near = 0 },
		"far":      func(s *Settings) { s.Far = 0.01 },
		"speed":    func(s *Settings) { s.TargetSpeed.Z = -1 },
		"rotation": func(s *Settings) { s.TargetSpeed.Angular = -0.05 },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			s := DefaultSettings()
			mutate(&s)
			assert.Error(t, s.Validate(world))
		})
	}
}

func TestSpeedScaledByWorld(t *testing.T) {
	c := NewController(NewWorldSize(10, 20, 30), DefaultSettings())
	s := c.Speed()
	assert.InDelta(t, 0.1, s.X, tolerance)
	assert.InDelta(t, 0.2, s.Y, tolerance)
	assert.InDelta(t, 0.15, s.Z, tolerance)
	assert.InDelta(t, Dist2(0.1, 0.2), s.XY, tolerance)
	assert.Equal(t, 0.05, s.Angular)
}

func TestMoveAlongAxisClampsToWorld(t *testing.T) {
	c := newTestController()
	cameraBefore := c.Pose().Position

	applied, inBounds := c.MoveAlongAxis(AxisX, c.World().X*2)
	assert.False(t, inBounds)
	assert.Equal(t, c.World().X, c.Target().X())
	assert.Equal(t, c.World().X, applied)
	assert.Equal(t, cameraBefore, c.Pose().Position, "camera must not follow a clamped move")
}

func TestMoveAlongAxisMovesCamera(t *testing.T) {
	c := newTestController()
	cameraBefore := c.Pose().Position

	applied, inBounds := c.MoveAlongAxis(AxisY, 0.25)
	assert.True(t, inBounds)
	assert.InDelta(t, 0.25, applied, tolerance)
	assert.InDelta(t, cameraBefore.Y()+0.25, c.Pose().Position.Y(), tolerance)
}

func TestMoveAlongAxisCameraFixed(t *testing.T) {
	settings := DefaultSettings()
	settings.TargetMovesCamera = false
	c := NewController(NewWorldSize(1, 1, 1), settings)
	cameraBefore := c.Pose().Position

	_, inBounds := c.MoveAlongAxis(AxisX, 0.5)
	assert.True(t, inBounds)
	assert.InDelta(t, 0.5, c.Target().X(), tolerance)
	assert.Equal(t, cameraBefore, c.Pose().Position)
}

func TestMoveVerticalStaysInWorld(t *testing.T) {
	c := newTestController()

	for i := 0; i < 1000; i++ {
		c.MoveVertical(1)
		require.LessOrEqual(t, c.Target().Z(), c.World().Z)
	}
	assert.Equal(t, c.World().Z, c.Target().Z())

	for i := 0; i < 1000; i++ {
		c.MoveVertical(-1)
		require.GreaterOrEqual(t, c.Target().Z(), Epsilon)
	}
	assert.Equal(t, Epsilon, c.Target().Z())
}

func TestMoveParallelRoundTrip(t *testing.T) {
	c := newTestController()
	target, camera := c.Target(), c.Pose().Position

	require.False(t, c.MoveParallel(1))
	assert.False(t, c.Target().ApproxEqualThreshold(target, tolerance), "target should have moved")

	require.False(t, c.MoveParallel(-1))
	assert.True(t, c.Target().ApproxEqualThreshold(target, tolerance), "got %v want %v", c.Target(), target)
	assert.True(t, c.Pose().Position.ApproxEqualThreshold(camera, tolerance))
}

func TestMoveParallelTowardsTarget(t *testing.T) {
	c := newTestController()
	before := Dist2(c.Pose().Position.X()-c.Target().X(), c.Pose().Position.Y()-c.Target().Y())

	c.MoveParallel(-1)
	// camera follows the target, so the horizontal distance is unchanged
	after := Dist2(c.Pose().Position.X()-c.Target().X(), c.Pose().Position.Y()-c.Target().Y())
	assert.InDelta(t, before, after, tolerance)
	// the camera sits at -y, so moving forward increases y
	assert.InDelta(t, c.Speed().Y, c.Target().Y(), tolerance)
}

func TestMoveOrthogonalRoundTrip(t *testing.T) {
	c := newTestController()
	target := c.Target()

	c.MoveOrthogonal(1)
	assert.InDelta(t, c.Speed().X, math.Abs(c.Target().X()), tolerance)
	assert.InDelta(t, 0, c.Target().Y(), tolerance)

	c.MoveOrthogonal(-1)
	assert.True(t, c.Target().ApproxEqualThreshold(target, tolerance))
}

func TestRotateTargetPreservesRadius(t *testing.T) {
	c := newTestController()
	camera := c.Pose().Position
	radius := c.Target().Sub(camera).Len()

	for _, dir := range []float64{1, 1, -1, 1, -1, -1, -1} {
		require.False(t, c.RotateTarget(dir))
		assert.InDelta(t, radius, c.Target().Sub(c.Pose().Position).Len(), 1e-9)
		assert.Equal(t, camera, c.Pose().Position, "rotation must not move the camera")
	}
}

func TestRotateTargetClamps(t *testing.T) {
	c := newTestController()

	var clamped bool
	for i := 0; i < 100 && !clamped; i++ {
		clamped = c.RotateTarget(1)
	}
	assert.True(t, clamped, "a full turn around a camera outside the world must hit the limits")
	assert.LessOrEqual(t, math.Abs(c.Target().X()), c.World().X)
	assert.LessOrEqual(t, math.Abs(c.Target().Y()), c.World().Y)
}

func TestApplyDirections(t *testing.T) {
	tests := []struct {
		dir   Direction
		check func(t *testing.T, before, after mgl64.Vec3)
	}{
		{Forward, func(t *testing.T, before, after mgl64.Vec3) { assert.Greater(t, after.Y(), before.Y()) }},
		{Backward, func(t *testing.T, before, after mgl64.Vec3) { assert.Less(t, after.Y(), before.Y()) }},
		{Left, func(t *testing.T, before, after mgl64.Vec3) { assert.NotEqual(t, before.X(), after.X()) }},
		{Right, func(t *testing.T, before, after mgl64.Vec3) { assert.NotEqual(t, before.X(), after.X()) }},
		{Up, func(t *testing.T, before, after mgl64.Vec3) { assert.Greater(t, after.Z(), before.Z()) }},
		{RotateLeft, func(t *testing.T, before, after mgl64.Vec3) { assert.NotEqual(t, before.X(), after.X()) }},
		{RotateRight, func(t *testing.T, before, after mgl64.Vec3) { assert.NotEqual(t, before.X(), after.X()) }},
	}

	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			c := newTestController()
			before := c.Target()
			assert.False(t, c.Apply(tt.dir))
			tt.check(t, before, c.Target())
		})
	}

	t.Run("left and right are opposite", func(t *testing.T) {
		left, right := newTestController(), newTestController()
		left.Apply(Left)
		right.Apply(Right)
		assert.InDelta(t, -left.Target().X(), right.Target().X(), tolerance)
	})

	t.Run("down at the floor clamps", func(t *testing.T) {
		c := newTestController()
		assert.True(t, c.Apply(Down))
		assert.Equal(t, Epsilon, c.Target().Z())
	})
}

func TestReset(t *testing.T) {
	c := newTestController()
	target, pose := c.Target(), c.Pose()

	c.Apply(Forward)
	c.Apply(RotateLeft)
	c.Apply(Up)
	c.Reset()

	assert.Equal(t, target, c.Target())
	assert.Equal(t, pose, c.Pose())
}

func TestPoseRotationFacesTarget(t *testing.T) {
	c := newTestController()
	r := c.Pose().Rotation
	// camera at -y looking towards +y and downwards
	assert.InDelta(t, math.Pi/2, r.Z(), tolerance)
	assert.Less(t, r.X(), 0.0)
}

func TestMatrixProjectsTarget(t *testing.T) {
	c := newTestController()
	m := c.Projection(1).Mul4(c.View())
	clip := m.Mul4x1(c.Target().Vec4(1))
	ndc := clip.Vec3().Mul(1 / clip.W())

	assert.InDelta(t, 0, ndc.X(), 1e-6)
	assert.InDelta(t, 0, ndc.Y(), 1e-6)

	m32 := c.Matrix(1)
	for i := range m {
		assert.InDelta(t, m[i], float64(m32[i]), 1e-5)
	}
}
