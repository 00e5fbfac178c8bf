package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"sync"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stewi1014/juliashaders/camera"
	"github.com/stewi1014/juliashaders/config"
	"github.com/stewi1014/juliashaders/render"
)

var glfwDirections = map[glfw.Key]camera.Direction{
	glfw.KeyW:     camera.Forward,
	glfw.KeyUp:    camera.Forward,
	glfw.KeyS:     camera.Backward,
	glfw.KeyDown:  camera.Backward,
	glfw.KeyA:     camera.Left,
	glfw.KeyD:     camera.Right,
	glfw.KeyE:     camera.Up,
	glfw.KeyQ:     camera.Down,
	glfw.KeyLeft:  camera.RotateLeft,
	glfw.KeyRight: camera.RotateRight,
}

// GLFWWindow is a standalone render window without the config window.
// Its state lives on the thread running glfwMain; other goroutines reach it
// through Post.
type GLFWWindow struct {
	*glfw.Window
	viewer *Viewer

	mu      sync.Mutex
	pending []func()

	needsDraw    bool
	dragging     bool
	dragX, dragY float64
}

func NewGLFWWindow(cfg config.Config, shaders fs.FS) (*GLFWWindow, error) {
	width, height := cfg.Viewer.Width, cfg.Viewer.Height
	if width <= 0 || height <= 0 {
		width, height = 1200, 800
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if cfg.Viewer.Debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}
	window, err := glfw.CreateWindow(
		width,
		height,
		"Julia Shaders",
		nil,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("glfw.CreateWindow failed: %w", err)
	}

	w := &GLFWWindow{
		Window: window,
	}

	w.viewer, err = NewViewer(
		cfg,
		shaders,
		func() { w.needsDraw = true },
		render.SchedulerFunc(func(f func()) {
			time.AfterFunc(render.FrameInterval, func() { w.Post(f) })
		}),
	)
	if err != nil {
		window.Destroy()
		return nil, err
	}
	w.viewer.OnStatus(func(status StatusMessage) {
		w.SetTitle(fmt.Sprintf(
			"Julia Shaders - %v %.6g%+.6gi x%.3g - %v fps",
			status.Program, status.Bounds.Real, status.Bounds.Imag, status.Bounds.Range, status.FPS,
		))
	})

	w.MakeContextCurrent()
	err = w.viewer.Realize()
	if err != nil {
		window.Destroy()
		return nil, err
	}

	w.SetKeyCallback(w.key)
	w.SetScrollCallback(w.scroll)
	w.SetMouseButtonCallback(w.mouseButton)
	w.SetCursorPosCallback(w.cursorPos)
	w.SetFramebufferSizeCallback(w.framebufferSize)
	w.framebufferSize(window, 0, 0)

	return w, nil
}

// Post runs f on the window thread. It is safe to call from any goroutine.
func (w *GLFWWindow) Post(f func()) {
	w.mu.Lock()
	w.pending = append(w.pending, f)
	w.mu.Unlock()
	glfw.PostEmptyEvent()
}

// Run processes events and draws until the window closes or ctx is done.
func (w *GLFWWindow) Run(ctx context.Context) {
	stop := context.AfterFunc(ctx, glfw.PostEmptyEvent)
	defer stop()

	for !w.ShouldClose() && ctx.Err() == nil {
		glfw.WaitEventsTimeout(render.FrameInterval.Seconds())

		w.mu.Lock()
		pending := w.pending
		w.pending = nil
		w.mu.Unlock()
		for _, f := range pending {
			f()
		}

		if w.needsDraw {
			w.needsDraw = false
			w.viewer.Draw()
			w.SwapBuffers()
		}
	}
}

// ReloadShaders recompiles the shown program if it uses a changed file.
func (w *GLFWWindow) ReloadShaders(names []string) {
	err := w.viewer.ReloadShaders(names)
	if err != nil {
		log.Println(err)
	}
}

func (w *GLFWWindow) key(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action == glfw.Release {
		return
	}

	if d, ok := glfwDirections[key]; ok {
		w.viewer.Navigate(d)
		return
	}

	if action != glfw.Press {
		return
	}

	var err error
	switch key {
	case glfw.KeyTab:
		err = w.viewer.NextProgram()
	case glfw.KeySpace:
		w.viewer.SetAnimate(!w.viewer.Animating())
	case glfw.KeyR:
		w.viewer.ResetCamera()
		w.viewer.ResetView()
	case glfw.KeyEscape:
		w.SetShouldClose(true)
	}
	if err != nil {
		log.Println(err)
	}
}

func (w *GLFWWindow) scroll(_ *glfw.Window, xoff, yoff float64) {
	w.viewer.Scroll(yoff)
}

func (w *GLFWWindow) mouseButton(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if button != glfw.MouseButtonLeft {
		return
	}

	w.dragging = action == glfw.Press
	if w.dragging {
		w.dragX, w.dragY = w.GetCursorPos()
	}
}

func (w *GLFWWindow) cursorPos(_ *glfw.Window, x, y float64) {
	if !w.dragging {
		return
	}

	// cursor positions are in screen coordinates, which may differ from pixels
	winWidth, winHeight := w.GetSize()
	fbWidth, fbHeight := w.GetFramebufferSize()
	sx, sy := float64(fbWidth)/float64(max(winWidth, 1)), float64(fbHeight)/float64(max(winHeight, 1))

	w.viewer.Drag((x-w.dragX)*sx, (y-w.dragY)*sy)
	w.dragX, w.dragY = x, y
}

func (w *GLFWWindow) framebufferSize(_ *glfw.Window, _, _ int) {
	width, height := w.GetFramebufferSize()
	w.viewer.Resize(width, height)
}

// glfwMain runs the GLFW backend on the calling goroutine, which must be
// locked to the main OS thread.
func glfwMain(ctx context.Context, cfg config.Config, shaders fs.FS, shaderDir string) error {
	err := glfw.Init()
	if err != nil {
		return fmt.Errorf("glfw.Init failed: %w", err)
	}
	defer glfw.Terminate()

	w, err := NewGLFWWindow(cfg, shaders)
	if err != nil {
		return err
	}
	defer w.Destroy()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if shaderDir != "" {
		go func() {
			err := watchShaders(ctx, shaderDir, func(names []string) {
				w.Post(func() { w.ReloadShaders(names) })
			})
			if err != nil {
				cancel(err)
			}
		}()
	}

	w.Run(ctx)
	return context.Cause(ctx)
}
