package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net"
	"reflect"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/juliashaders/programs"
)

const (
	// the zoom slider works in -log10 of the half range
	minZoom = -1
	maxZoom = 12
)

func NewConfigWindow(
	app *gtk.Application,
	listener net.Listener,
	ctx context.Context,
	quit func(error),
) (*ConfigWindow, error) {
	var err error
	w := &ConfigWindow{
		ctx:         ctx,
		quit:        quit,
		sendMessage: make(chan interface{}, 16),
	}

	w.ApplicationWindow, err = gtk.ApplicationWindowNew(app)
	if err != nil {
		return nil, fmt.Errorf("gtk.ApplicationWindowNew: %w", err)
	}

	w.SetDefaultSize(280, 700)

	box, err := gtk.BoxNew(gtk.ORIENTATION_VERTICAL, 6)
	if err != nil {
		return nil, fmt.Errorf("gtk.BoxNew: %w", err)
	}
	box.SetMarginStart(8)
	box.SetMarginEnd(8)
	box.SetMarginTop(8)
	box.SetMarginBottom(8)

	w.programs, _ = gtk.ComboBoxTextNew()
	for _, name := range programs.Names() {
		w.programs.AppendText(name)
	}
	w.programs.Connect("changed", func() {
		if w.updating {
			return
		}
		w.send(ProgramMessage{Name: w.programs.GetActiveText()})
	})

	w.zoom, _ = gtk.ScaleNewWithRange(gtk.ORIENTATION_HORIZONTAL, minZoom, maxZoom, 0.01)
	w.zoom.Connect("value-changed", func() {
		if w.updating {
			return
		}
		w.send(ZoomMessage{Range: math.Pow(10, -w.zoom.GetValue())})
	})

	w.real, _ = gtk.ScaleNewWithRange(gtk.ORIENTATION_HORIZONTAL, -2, 2, 0.0001)
	w.imag, _ = gtk.ScaleNewWithRange(gtk.ORIENTATION_HORIZONTAL, -2, 2, 0.0001)
	for _, s := range []*gtk.Scale{w.real, w.imag} {
		s.SetDigits(4)
		s.Connect("value-changed", func() {
			if w.updating {
				return
			}
			w.send(ConstantMessage{Real: w.real.GetValue(), Imag: w.imag.GetValue()})
		})
	}

	w.iterations, _ = gtk.SpinButtonNewWithRange(minIterations, 100000, 10)
	w.iterations.Connect("value-changed", func() {
		if w.updating {
			return
		}
		w.send(IterationsMessage{MaxIterations: int32(w.iterations.GetValueAsInt())})
	})

	w.animate, _ = gtk.CheckButtonNewWithLabel("Animate")
	w.animate.Connect("toggled", func() {
		w.send(AnimateMessage{Animate: w.animate.GetActive()})
	})

	reset, _ := gtk.ButtonNewWithLabel("Reset")
	reset.Connect("clicked", func() {
		w.send(ResetMessage{Camera: true, View: true})
	})

	w.saveWidth, _ = gtk.SpinButtonNewWithRange(16, 16384, 1)
	w.saveWidth.SetValue(1920)
	w.saveHeight, _ = gtk.SpinButtonNewWithRange(16, 16384, 1)
	w.saveHeight.SetValue(1080)
	w.antialias, _ = gtk.CheckButtonNewWithLabel("Antialias")
	w.antialias.SetActive(true)
	saveButton, _ := gtk.ButtonNewWithLabel("Save Image")
	saveButton.Connect("clicked", w.saveImage)

	w.status, _ = gtk.LabelNew("waiting for render window")
	w.status.SetLineWrap(true)
	w.status.SetSelectable(true)

	for _, row := range []struct {
		label  string
		widget gtk.IWidget
	}{
		{"Program", w.programs},
		{"Zoom", w.zoom},
		{"C real", w.real},
		{"C imaginary", w.imag},
		{"Iterations", w.iterations},
		{"", w.animate},
		{"", reset},
		{"Image width", w.saveWidth},
		{"Image height", w.saveHeight},
		{"", w.antialias},
		{"", saveButton},
		{"", w.status},
	} {
		if row.label != "" {
			l, _ := gtk.LabelNew(row.label)
			l.SetHAlign(gtk.ALIGN_START)
			box.PackStart(l, false, false, 0)
		}
		box.PackStart(row.widget, false, false, 0)
	}

	w.Add(box)
	w.ShowAll()

	go w.accept(listener)

	return w, nil
}

type ConfigWindow struct {
	*gtk.ApplicationWindow

	programs   *gtk.ComboBoxText
	zoom       *gtk.Scale
	real, imag *gtk.Scale
	iterations *gtk.SpinButton
	animate    *gtk.CheckButton
	saveWidth  *gtk.SpinButton
	saveHeight *gtk.SpinButton
	antialias  *gtk.CheckButton
	status     *gtk.Label

	// updating is set while widgets are synced from a status message
	updating   bool
	lastStatus StatusMessage

	ctx         context.Context
	quit        func(error)
	sendMessage chan interface{}
}

func (w *ConfigWindow) accept(listener net.Listener) {
	conn, err := listener.Accept()
	if err != nil {
		w.quit(fmt.Errorf("accepting render window: %w", err))
		return
	}

	go sendMessages(w.ctx, conn, w.sendMessage, w.quit)
	receiveMessages(conn, w.handleMessage, w.quit)
}

func (w *ConfigWindow) send(msg interface{}) {
	select {
	case w.sendMessage <- msg:
	case <-w.ctx.Done():
	}
}

func (w *ConfigWindow) handleMessage(v interface{}) {
	status, ok := v.(StatusMessage)
	if !ok {
		log.Println("unknown message received", reflect.TypeOf(v))
		return
	}

	glib.IdleAdd(func() {
		w.sync(status)
	})
}

// sync shows status, moving the widgets to match when the program changed.
func (w *ConfigWindow) sync(status StatusMessage) {
	w.updating = true
	defer func() { w.updating = false }()

	if status.Program != w.lastStatus.Program {
		for i, name := range programs.Names() {
			if name == status.Program {
				w.programs.SetActive(i)
			}
		}
		w.zoom.SetValue(-math.Log10(status.Bounds.Range))
		c := status.Uniforms.Constant()
		w.real.SetValue(real(c))
		w.imag.SetValue(imag(c))
		w.iterations.SetValue(float64(status.Uniforms.MaxIterations))
	}
	w.lastStatus = status

	edge := ""
	if status.AtEdge {
		edge = " (at edge)"
	}
	w.status.SetText(fmt.Sprintf(
		"%v\ncenter %.6g%+.6gi\nrange %.3g\ntarget %.3f, %.3f, %.3f%v\n%v fps",
		status.Program,
		status.Bounds.Real, status.Bounds.Imag,
		status.Bounds.Range,
		status.Target[0], status.Target[1], status.Target[2], edge,
		status.FPS,
	))
}

func (w *ConfigWindow) saveImage() {
	if w.lastStatus.Program == "" {
		NewErrorDialog(w, Failed("save image", errors.New("nothing rendered yet")))
		return
	}

	program, err := programs.Find(w.lastStatus.Program)
	if err != nil {
		NewErrorDialog(w, Failed("save image", err))
		return
	}

	chooser, err := gtk.FileChooserDialogNewWith2Buttons(
		"Save Image",
		w,
		gtk.FILE_CHOOSER_ACTION_SAVE,
		"Cancel", gtk.RESPONSE_CANCEL,
		"Save", gtk.RESPONSE_ACCEPT,
	)
	if err != nil {
		NewErrorDialog(w, Failed("open the save dialog", err))
		return
	}
	chooser.SetDoOverwriteConfirmation(true)
	chooser.SetCurrentName(program.Name + ".png")

	response := chooser.Run()
	name := chooser.GetFilename()
	chooser.Destroy()
	if response != gtk.RESPONSE_ACCEPT {
		return
	}

	opts := SaveOptions{
		Name:        name,
		Width:       w.saveWidth.GetValueAsInt(),
		Height:      w.saveHeight.GetValueAsInt(),
		Multithread: true,
	}
	if w.antialias.GetActive() {
		opts.Antialias = 0.5
	}

	save(w.ctx, w, opts, program, w.lastStatus.Uniforms, w.lastStatus.Bounds)
}
