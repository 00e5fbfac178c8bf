package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net"
	"reflect"

	"github.com/gotk3/gotk3/gdk"
	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/juliashaders/camera"
	"github.com/stewi1014/juliashaders/config"
	"github.com/stewi1014/juliashaders/render"
)

var gtkDirections = map[uint]camera.Direction{
	gdk.KEY_w:     camera.Forward,
	gdk.KEY_Up:    camera.Forward,
	gdk.KEY_s:     camera.Backward,
	gdk.KEY_Down:  camera.Backward,
	gdk.KEY_a:     camera.Left,
	gdk.KEY_d:     camera.Right,
	gdk.KEY_e:     camera.Up,
	gdk.KEY_q:     camera.Down,
	gdk.KEY_Left:  camera.RotateLeft,
	gdk.KEY_Right: camera.RotateRight,
}

func NewRenderWindow(
	app *gtk.Application,
	conn net.Conn,
	ctx context.Context,
	quit func(error),
	cfg config.Config,
	shaders fs.FS,
) (*RenderWindow, error) {
	var err error
	w := &RenderWindow{
		ctx:         ctx,
		quit:        quit,
		sendMessage: make(chan interface{}, 16),
	}

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		return nil, fmt.Errorf("gtk.ApplicationWindowNew: %w", err)
	}

	width, height := cfg.Viewer.Width, cfg.Viewer.Height
	if width <= 0 || height <= 0 {
		width, height = getWindowSize()
	}
	w.SetDefaultSize(width, height)

	w.gla, err = gtk.GLAreaNew()
	if err != nil {
		return nil, fmt.Errorf("gtk.GLAreaNew: %w", err)
	}

	w.viewer, err = NewViewer(
		cfg,
		shaders,
		w.gla.QueueRender,
		render.SchedulerFunc(func(f func()) {
			glib.TimeoutAdd(uint(render.FrameInterval.Milliseconds()), func() bool {
				f()
				return false
			})
		}),
	)
	if err != nil {
		return nil, err
	}
	w.viewer.OnStatus(func(status StatusMessage) {
		// a full queue only drops a status, newer ones follow
		select {
		case w.sendMessage <- status:
		default:
		}
	})

	w.gla.SetRequiredVersion(4, 6)
	w.gla.Connect("realize", w.glaRealize)
	w.gla.Connect("render", w.glaRender)
	w.gla.Connect("resize", w.resize)

	w.gla.SetEvents(
		int(gdk.BUTTON_PRESS_MASK) |
			int(gdk.BUTTON_RELEASE_MASK) |
			int(gdk.POINTER_MOTION_MASK) |
			int(gdk.SCROLL_MASK),
	)
	w.gla.Connect("scroll-event", w.scroll)
	w.gla.Connect("button-press-event", w.button)
	w.gla.Connect("button-release-event", w.button)
	w.gla.Connect("motion-notify-event", w.motion)
	w.Connect("key-press-event", w.keyPress)

	go sendMessages(ctx, conn, w.sendMessage, quit)
	go receiveMessages(conn, w.handleMessage, quit)

	w.Add(w.gla)
	w.ShowAll()

	return w, nil
}

func getWindowSize() (width, height int) {
	width = 1200
	height = 800

	display, err := gdk.DisplayGetDefault()
	if err != nil {
		return
	}

	monitor, err := display.GetPrimaryMonitor()
	if err != nil {
		return
	}

	width = int(float32(monitor.GetGeometry().GetWidth()) * .6)
	height = int(float32(monitor.GetGeometry().GetHeight()) * .6)
	return
}

type RenderWindow struct {
	*gtk.ApplicationWindow
	gla    *gtk.GLArea
	viewer *Viewer

	dragging     bool
	dragX, dragY float64

	ctx         context.Context
	quit        func(error)
	sendMessage chan interface{}
}

func (w *RenderWindow) glaRealize(gla *gtk.GLArea) {
	gla.MakeCurrent()

	err := w.viewer.Realize()
	if err != nil {
		w.quit(err)
	}
}

func (w *RenderWindow) glaRender(gla *gtk.GLArea) bool {
	gla.AttachBuffers()
	w.viewer.Draw()
	return true
}

func (w *RenderWindow) resize(gla *gtk.GLArea, width, height int) {
	w.viewer.Resize(width, height)
}

// withGL runs the action op with the GL context current, showing any error
// in a dialog.
func (w *RenderWindow) withGL(op string, f func() error) {
	w.gla.MakeCurrent()
	err := Failed(op, f())
	if err != nil {
		log.Println(err)
		NewErrorDialog(w, err)
	}
}

// ReloadShaders recompiles the shown program if it uses a changed file.
// It must be called on the UI thread.
func (w *RenderWindow) ReloadShaders(names []string) {
	w.withGL("reload shaders", func() error {
		return w.viewer.ReloadShaders(names)
	})
}

func (w *RenderWindow) keyPress(win *gtk.ApplicationWindow, event *gdk.Event) bool {
	key := gdk.EventKeyNewFromEvent(event)

	if d, ok := gtkDirections[key.KeyVal()]; ok {
		w.viewer.Navigate(d)
		return true
	}

	switch key.KeyVal() {
	case gdk.KEY_Tab:
		w.withGL("switch program", w.viewer.NextProgram)
	case gdk.KEY_space:
		w.viewer.SetAnimate(!w.viewer.Animating())
	case gdk.KEY_r:
		w.viewer.ResetCamera()
		w.viewer.ResetView()
	default:
		return false
	}
	return true
}

func (w *RenderWindow) button(gla *gtk.GLArea, event *gdk.Event) {
	button := gdk.EventButtonNewFromEvent(event)
	if button.Button() != gdk.BUTTON_PRIMARY {
		return
	}

	if button.Type() == gdk.EVENT_BUTTON_PRESS {
		w.dragging = true
		w.dragX, w.dragY = button.MotionVal()
	} else if button.Type() == gdk.EVENT_BUTTON_RELEASE {
		w.dragging = false
	}
}

func (w *RenderWindow) motion(gla *gtk.GLArea, event *gdk.Event) {
	if !w.dragging {
		return
	}

	x, y := gdk.EventMotionNewFromEvent(event).MotionVal()
	w.viewer.Drag(x-w.dragX, y-w.dragY)
	w.dragX, w.dragY = x, y
}

func (w *RenderWindow) scroll(gla *gtk.GLArea, event *gdk.Event) {
	scroll := gdk.EventScrollNewFromEvent(event)

	if scroll.Direction() == gdk.SCROLL_DOWN {
		w.viewer.Scroll(-1)
	} else if scroll.Direction() == gdk.SCROLL_UP {
		w.viewer.Scroll(1)
	}
}

// handleMessage applies a message from the config window on the UI thread.
func (w *RenderWindow) handleMessage(v interface{}) {
	glib.IdleAdd(func() {
		switch msg := v.(type) {
		case ProgramMessage:
			w.withGL("switch to "+msg.Name, func() error {
				return w.viewer.SelectProgram(msg.Name)
			})
		case ZoomMessage:
			w.viewer.ZoomTo(msg.Range)
		case ConstantMessage:
			w.viewer.SetConstant(complex(msg.Real, msg.Imag))
		case IterationsMessage:
			w.viewer.SetMaxIterations(msg.MaxIterations)
		case AnimateMessage:
			w.viewer.SetAnimate(msg.Animate)
		case ResetMessage:
			if msg.Camera {
				w.viewer.ResetCamera()
			}
			if msg.View {
				w.viewer.ResetView()
			}
		default:
			log.Println("unknown message received", reflect.TypeOf(v))
		}
	})
}
