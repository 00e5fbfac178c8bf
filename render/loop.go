// Package render drives frames: helpers first, then one draw.
package render

import "time"

// FrameInterval is the delay between animation frames.
const FrameInterval = time.Second / 60

// Scheduler runs f once on the UI thread at some later point.
type Scheduler interface {
	Schedule(f func())
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(f func())

func (s SchedulerFunc) Schedule(f func()) { s(f) }

// Loop issues frames on demand, or continuously while animating.
// Stopping is cooperative: a scheduled tick that finds the flag cleared
// does nothing and does not reschedule.
type Loop struct {
	draw      func()
	scheduler Scheduler
	helpers   []func()

	animating bool
	ticking   bool
	frames    uint64
}

func NewLoop(draw func(), scheduler Scheduler) *Loop {
	return &Loop{
		draw:      draw,
		scheduler: scheduler,
	}
}

// AddHelper registers f to run before every draw.
func (l *Loop) AddHelper(f func()) {
	l.helpers = append(l.helpers, f)
}

// RenderFrame updates the helpers then draws once.
func (l *Loop) RenderFrame() {
	for _, h := range l.helpers {
		h()
	}
	l.draw()
	l.frames++
}

func (l *Loop) StartAnimation() {
	l.animating = true
	if !l.ticking {
		l.ticking = true
		l.scheduler.Schedule(l.tick)
	}
}

func (l *Loop) StopAnimation() {
	l.animating = false
}

func (l *Loop) Animating() bool { return l.animating }

// Frames returns the number of frames rendered so far.
func (l *Loop) Frames() uint64 { return l.frames }

func (l *Loop) tick() {
	if !l.animating {
		l.ticking = false
		return
	}
	l.scheduler.Schedule(l.tick)
	l.RenderFrame()
}
