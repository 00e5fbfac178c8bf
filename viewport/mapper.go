package viewport

// Mapper owns the viewport bounds and the quad arrays derived from them.
// Changes mark the arrays dirty and request a redraw; the renderer collects
// them with TakeDirty before uploading.
type Mapper struct {
	bounds   Bounds
	defaults Bounds
	quad     Quad
	dirty    bool
	redraw   func()
}

// NewMapper returns a mapper showing def. redraw may be nil.
func NewMapper(def Bounds, redraw func()) *Mapper {
	m := &Mapper{
		defaults: def,
		redraw:   redraw,
	}
	m.Set(def)
	return m
}

// SetBounds centers the view on (centerReal, centerImag) with half range r.
func (m *Mapper) SetBounds(centerReal, centerImag, r float64) {
	m.Set(Bounds{Real: centerReal, Imag: centerImag, Range: r})
}

func (m *Mapper) Set(b Bounds) {
	m.bounds = b
	m.quad = b.Quad()
	m.dirty = true
	if m.redraw != nil {
		m.redraw()
	}
}

func (m *Mapper) Bounds() Bounds { return m.bounds }
func (m *Mapper) Quad() Quad     { return m.quad }
func (m *Mapper) Dirty() bool    { return m.dirty }

// TakeDirty returns the quad and whether it changed since the last call.
func (m *Mapper) TakeDirty() (Quad, bool) {
	dirty := m.dirty
	m.dirty = false
	return m.quad, dirty
}

func (m *Mapper) Zoom(factor float64) {
	m.Set(m.bounds.Zoom(factor))
}

func (m *Mapper) Pan(dx, dy float64) {
	m.Set(m.bounds.Pan(dx, dy))
}

// Recenter keeps the range and moves the center.
func (m *Mapper) Recenter(centerReal, centerImag float64) {
	m.SetBounds(centerReal, centerImag, m.bounds.Range)
}

// SetDefault changes the bounds Reset returns to and shows them.
// Used when switching programs.
func (m *Mapper) SetDefault(def Bounds) {
	m.defaults = def
	m.Set(def)
}

func (m *Mapper) Defaults() Bounds { return m.defaults }

func (m *Mapper) Reset() {
	m.Set(m.defaults)
}
