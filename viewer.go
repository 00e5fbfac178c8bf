package main

import (
	"fmt"
	"io/fs"
	"log"
	"math"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stewi1014/juliashaders/camera"
	"github.com/stewi1014/juliashaders/config"
	"github.com/stewi1014/juliashaders/programs"
	"github.com/stewi1014/juliashaders/render"
	"github.com/stewi1014/juliashaders/viewport"
)

const (
	scrollZoom    = 0.1
	minRange      = 1e-12
	maxRange      = 8
	minIterations = 1
)

// Viewer is the state shared by both window backends: the camera, the
// viewport bounds and the GL objects drawing them. All methods must be called
// on the UI thread, and Draw and Realize with the GL context current.
type Viewer struct {
	cfg     config.Config
	shaders fs.FS

	controller *camera.Controller
	mapper     *viewport.Mapper
	animator   *viewport.Animator
	loop       *render.Loop
	fps        *render.FPSMeter

	program  programs.Program
	uniforms programs.Uniforms
	quad     *glQuad

	width, height int
	continuous    bool
	atEdge        bool

	onStatus   func(StatusMessage)
	lastStatus StatusMessage
}

// NewViewer builds the viewer state. present is called when a frame should
// reach the screen; scheduler runs animation ticks.
func NewViewer(
	cfg config.Config,
	shaders fs.FS,
	present func(),
	scheduler render.Scheduler,
) (*Viewer, error) {
	program, err := programs.Find(cfg.Viewer.Program)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:        cfg,
		shaders:    shaders,
		controller: camera.NewController(cfg.World.Size(), cfg.Camera),
		program:    program,
		uniforms:   program.DefaultUniforms(cfg.Viewer.MaxIterations),
		fps:        render.NewFPSMeter(),
		width:      1,
		height:     1,
	}
	v.uniforms.World = mgl32.Vec2{float32(cfg.World.X), float32(cfg.World.Y)}

	v.mapper = viewport.NewMapper(program.DefaultBounds(), present)
	v.animator = viewport.NewAnimator(v.mapper, int(math.Round(1/render.FrameInterval.Seconds())))
	v.loop = render.NewLoop(present, scheduler)
	v.loop.AddHelper(v.stepAnimation)
	v.loop.AddHelper(v.fps.Frame)
	v.loop.AddHelper(v.trackStatus)

	if cfg.Viewer.Animate {
		v.SetAnimate(true)
	}

	return v, nil
}

// Realize creates the GL objects. The GL context must be current.
func (v *Viewer) Realize() error {
	err := initGL(v.cfg.Viewer.Debug)
	if err != nil {
		return err
	}

	v.quad = newGLQuad()
	return v.loadProgram(v.program)
}

func (v *Viewer) loadProgram(p programs.Program) error {
	sources, err := programs.LoadSources(v.shaders, p)
	if err != nil {
		return err
	}

	if v.quad != nil {
		err = v.quad.loadProgram(sources)
		if err != nil {
			return fmt.Errorf("loading %v: %w", p.Name, err)
		}
		v.quad.uploadBounds(v.mapper.Quad())
	}
	return nil
}

// SelectProgram switches to the program called name and resets the view to
// its default bounds and constant.
func (v *Viewer) SelectProgram(name string) error {
	p, err := programs.Find(name)
	if err != nil {
		return err
	}

	err = v.loadProgram(p)
	if err != nil {
		return err
	}

	v.program = p
	v.uniforms.SetConstant(p.Constant)
	v.animator.Stop()
	v.mapper.SetDefault(p.DefaultBounds())
	v.loop.RenderFrame()
	return nil
}

// NextProgram cycles through the catalog.
func (v *Viewer) NextProgram() error {
	return v.SelectProgram(programs.Next(v.program.Name).Name)
}

// ReloadShaders recompiles the current program if it uses any of the named
// shader files.
func (v *Viewer) ReloadShaders(names []string) error {
	for _, name := range names {
		if v.program.Uses(name) {
			log.Printf("reloading %v after %v changed", v.program.Name, name)
			err := v.loadProgram(v.program)
			v.loop.RenderFrame()
			return err
		}
	}
	return nil
}

// Navigate applies a decoded direction key to the camera.
func (v *Viewer) Navigate(d camera.Direction) {
	v.atEdge = v.controller.Apply(d)
	if v.atEdge && v.cfg.Viewer.Debug {
		log.Printf("%v stopped at world limits, target %v", d, v.controller.Target())
	}
	v.loop.RenderFrame()
}

func (v *Viewer) ResetCamera() {
	v.controller.Reset()
	v.atEdge = false
	v.loop.RenderFrame()
}

// ResetView returns the plane to the current program's default bounds.
func (v *Viewer) ResetView() {
	v.animator.Stop()
	v.mapper.Reset()
	v.loop.RenderFrame()
}

// Scroll zooms in for positive steps and out for negative ones.
func (v *Viewer) Scroll(steps float64) {
	v.animator.Stop()
	v.mapper.Set(clampRange(v.mapper.Bounds().Zoom(math.Pow(1-scrollZoom, steps))))
	v.loop.RenderFrame()
}

// Drag pans the view by a pointer movement given in pixels.
func (v *Viewer) Drag(dx, dy float64) {
	v.animator.Stop()
	v.mapper.Pan(-2*dx/float64(v.width), 2*dy/float64(v.height))
	v.loop.RenderFrame()
}

// ZoomTo animates the view towards half range r.
func (v *Viewer) ZoomTo(r float64) {
	v.animator.ZoomTo(clampRange(viewport.Bounds{Range: r}).Range)
	v.loop.StartAnimation()
}

func (v *Viewer) SetConstant(c complex128) {
	v.uniforms.SetConstant(c)
	v.loop.RenderFrame()
}

func (v *Viewer) SetMaxIterations(n int32) {
	if n < minIterations {
		n = minIterations
	}
	v.uniforms.MaxIterations = n
	v.loop.RenderFrame()
}

func (v *Viewer) Animating() bool {
	return v.continuous
}

// SetAnimate switches continuous rendering on or off.
func (v *Viewer) SetAnimate(animate bool) {
	v.continuous = animate
	if animate {
		v.loop.StartAnimation()
	} else if !v.animator.Moving() {
		v.loop.StopAnimation()
	}
}

func (v *Viewer) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	v.width, v.height = width, height
	if v.quad != nil {
		gl.Viewport(0, 0, int32(width), int32(height))
	}
	v.loop.RenderFrame()
}

// Draw renders the current state. The GL context must be current.
func (v *Viewer) Draw() {
	if v.quad == nil {
		return
	}

	if quad, dirty := v.mapper.TakeDirty(); dirty {
		v.quad.uploadBounds(quad)
	}

	v.uniforms.Camera = v.controller.Matrix(float64(v.width) / float64(v.height))
	v.quad.draw(&v.uniforms)
}

// OnStatus registers f to receive the viewer status after frames that
// changed it.
func (v *Viewer) OnStatus(f func(StatusMessage)) {
	v.onStatus = f
}

func (v *Viewer) Status() StatusMessage {
	return StatusMessage{
		Program:  v.program.Name,
		Uniforms: v.uniforms,
		Bounds:   v.mapper.Bounds(),
		Target:   v.controller.Target(),
		AtEdge:   v.atEdge,
		FPS:      math.Round(v.fps.FPS()),
	}
}

func (v *Viewer) stepAnimation() {
	if !v.animator.Step() && !v.continuous {
		v.loop.StopAnimation()
	}
}

// trackStatus reports the target, bounds and frame rate when they change.
func (v *Viewer) trackStatus() {
	status := v.Status()
	if status == v.lastStatus {
		return
	}
	v.lastStatus = status
	if v.onStatus != nil {
		v.onStatus(status)
	}
}

func clampRange(b viewport.Bounds) viewport.Bounds {
	b.Range = math.Max(minRange, math.Min(maxRange, b.Range))
	return b
}
