package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
)

// failure is an error from a user action, shown under the action's name.
type failure struct {
	op  string
	err error
}

func (f failure) Error() string { return fmt.Sprintf("could not %v: %v", f.op, f.err) }
func (f failure) Unwrap() error { return f.err }

// Failed records that op failed with err. A nil err stays nil, and an error
// already tied to an action keeps it.
func Failed(op string, err error) error {
	var f failure
	if err == nil || errors.As(err, &f) {
		return err
	}
	return failure{op: op, err: err}
}

// CatchPanicToContext turns a panic into the cancellation cause of a
// context, stack included. It must be deferred.
func CatchPanicToContext(cancel context.CancelCauseFunc) {
	v := recover()
	if v == nil {
		return
	}

	err, ok := v.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", v)
	}
	if cancel != nil {
		cancel(fmt.Errorf("%w\n%s", err, debug.Stack()))
	}
}

// WithErrorDialogCancelCause returns a context for op. Cancelling it with
// any cause but context.Canceled shows that cause in a dialog over parent.
func WithErrorDialogCancelCause(parent gtk.IWindow, op string, ctx context.Context) (context.Context, context.CancelCauseFunc) {
	ctx, cancel := context.WithCancelCause(ctx)
	context.AfterFunc(ctx, func() {
		err := context.Cause(ctx)
		if errors.Is(err, context.Canceled) {
			return
		}

		err = Failed(op, err)
		log.Println(err)
		glib.IdleAdd(func() {
			NewErrorDialog(parent, err)
		})
	})
	return ctx, cancel
}

// errorDialogText splits err into the dialog headline and its detail.
func errorDialogText(err error) (primary, secondary string) {
	var f failure
	if errors.As(err, &f) {
		return "Could not " + f.op, f.err.Error()
	}
	return "Something went wrong", err.Error()
}

// NewErrorDialog shows err over parent and blocks until it is dismissed.
func NewErrorDialog(parent gtk.IWindow, err error) {
	primary, secondary := errorDialogText(err)

	dialog := gtk.MessageDialogNew(
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT|gtk.DIALOG_MODAL,
		gtk.MESSAGE_ERROR,
		gtk.BUTTONS_CLOSE,
		"%s",
		primary,
	)
	dialog.FormatSecondaryText("%s", secondary)
	defer dialog.Destroy()

	// shader logs are long; let them be copied out
	messageArea, err := dialog.GetMessageArea()
	if err == nil {
		messageArea.GetChildren().Foreach(func(item interface{}) {
			if widget, ok := item.(*gtk.Widget); ok {
				if l, err := gtk.WidgetToLabel(widget); err == nil {
					l.SetSelectable(true)
				}
			}
		})
	}

	dialog.SetKeepAbove(true)
	dialog.Run()
}

// progressText formats the fraction reported by fraction. known is false
// until a source is tracked.
func progressText(fraction func() float64) (text string, value float64, known bool) {
	if fraction == nil {
		return "", 0, false
	}

	value = math.Max(0, math.Min(1, fraction()))
	return fmt.Sprintf("%.0f%%", value*100), value, true
}

// ProgressDialog follows an image export until its context is done.
type ProgressDialog struct {
	*gtk.Dialog
	bar *gtk.ProgressBar

	fraction atomic.Pointer[func() float64]
}

func NewProgressDialog(
	ctx context.Context,
	parent gtk.IWindow,
	title string,
	description string,
	onCancel func(),
) (*ProgressDialog, error) {
	dialog, err := gtk.DialogNewWithButtons(
		title,
		parent,
		gtk.DIALOG_DESTROY_WITH_PARENT,
		[]interface{}{"Cancel", gtk.RESPONSE_CANCEL},
	)
	if err != nil {
		return nil, fmt.Errorf("gtk.DialogNewWithButtons: %w", err)
	}

	d := &ProgressDialog{Dialog: dialog}
	d.SetKeepAbove(true)
	d.Connect("response", func(_ *gtk.Dialog, response gtk.ResponseType) {
		if response == gtk.RESPONSE_CANCEL {
			onCancel()
		}
	})

	ca, err := d.GetContentArea()
	if err != nil {
		return nil, fmt.Errorf("progress dialog content: %w", err)
	}
	label, _ := gtk.LabelNew(description)
	ca.Add(label)

	d.bar, _ = gtk.ProgressBarNew()
	d.bar.SetShowText(true)
	d.bar.SetSizeRequest(500, 80)
	ca.Add(d.bar)

	go d.update(ctx)
	return d, nil
}

// Track makes the bar show fraction, replacing any earlier source.
// It may be called from any goroutine.
func (d *ProgressDialog) Track(fraction func() float64) {
	d.fraction.Store(&fraction)
}

func (d *ProgressDialog) current() func() float64 {
	if f := d.fraction.Load(); f != nil {
		return *f
	}
	return nil
}

func (d *ProgressDialog) update(ctx context.Context) {
	ticker := time.NewTicker(time.Second / 10)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			text, value, known := progressText(d.current())
			glib.IdleAdd(func() {
				if !known {
					d.bar.Pulse()
					return
				}
				d.bar.SetFraction(value)
				d.bar.SetText(text)
			})
		case <-ctx.Done():
			glib.IdleAdd(d.Destroy)
			return
		}
	}
}
