package viewport

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// settleFraction is how close, relative to the goal range, the animated
// bounds must get before snapping to the goal.
const settleFraction = 1e-4

// minSettle bounds the snapping distance from below so a goal with a zero
// range still settles.
const minSettle = 1e-18

// Animator eases a Mapper towards goal bounds with critically damped springs.
type Animator struct {
	mapper *Mapper
	spring harmonica.Spring

	goal   Bounds
	vel    Bounds
	moving bool
}

// NewAnimator steps at fps frames per second.
func NewAnimator(m *Mapper, fps int) *Animator {
	return &Animator{
		mapper: m,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
		goal:   m.Bounds(),
	}
}

// MoveTo sets the bounds the animation heads for.
func (a *Animator) MoveTo(goal Bounds) {
	a.goal = goal
	a.moving = true
}

// ZoomTo keeps the current goal center and heads for a new range.
func (a *Animator) ZoomTo(r float64) {
	goal := a.goal
	if !a.moving {
		goal = a.mapper.Bounds()
	}
	goal.Range = r
	a.MoveTo(goal)
}

func (a *Animator) Goal() Bounds  { return a.goal }
func (a *Animator) Moving() bool { return a.moving }

// Stop halts the animation where it is.
func (a *Animator) Stop() {
	a.moving = false
	a.vel = Bounds{}
}

// Step advances one frame and reports whether the animation is still moving.
func (a *Animator) Step() bool {
	if !a.moving {
		return false
	}

	cur := a.mapper.Bounds()
	cur.Real, a.vel.Real = a.spring.Update(cur.Real, a.vel.Real, a.goal.Real)
	cur.Imag, a.vel.Imag = a.spring.Update(cur.Imag, a.vel.Imag, a.goal.Imag)
	cur.Range, a.vel.Range = a.spring.Update(cur.Range, a.vel.Range, a.goal.Range)

	eps := math.Max(math.Abs(a.goal.Range)*settleFraction, minSettle)
	if math.Abs(cur.Real-a.goal.Real) < eps &&
		math.Abs(cur.Imag-a.goal.Imag) < eps &&
		math.Abs(cur.Range-a.goal.Range) < eps {
		cur = a.goal
		a.Stop()
	}

	a.mapper.Set(cur)
	return a.moving
}
