package render

import "time"

// FPSMeter counts frames and reports the rate over the last full second.
// Register Frame as a loop helper.
type FPSMeter struct {
	now   func() time.Time
	start time.Time
	count int
	fps   float64
}

func NewFPSMeter() *FPSMeter {
	return &FPSMeter{now: time.Now}
}

func (m *FPSMeter) Frame() {
	now := m.now()
	if m.start.IsZero() {
		m.start = now
	}

	m.count++
	if elapsed := now.Sub(m.start); elapsed >= time.Second {
		m.fps = float64(m.count) / elapsed.Seconds()
		m.count = 0
		m.start = now
	}
}

func (m *FPSMeter) FPS() float64 { return m.fps }
