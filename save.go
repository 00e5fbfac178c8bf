package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/gotk3/gotk3/gtk"
	"github.com/stewi1014/juliashaders/programs"
	"github.com/stewi1014/juliashaders/viewport"
)

type SaveOptions struct {
	Name          string
	Width, Height int
	// Antialias is the distance in pixels between the nine samples taken for
	// each pixel. Zero disables antialiasing.
	Antialias   float64
	Multithread bool
}

// writePNG renders bounds of program on the CPU and encodes it to out.
// progress receives a supplier of the fraction done.
func writePNG(
	ctx context.Context,
	out io.Writer,
	opts SaveOptions,
	program programs.Program,
	uniforms programs.Uniforms,
	bounds viewport.Bounds,
	progress func(func() float64),
) error {
	img, err := program.GetImage(uniforms, bounds, opts.Width, opts.Height)
	if err != nil {
		return err
	}

	if opts.Antialias > 0 {
		img = programs.AntiAlias9x(img, opts.Antialias)
	}

	imageImage := programs.ToImage(img)
	progress(programs.WrapWithProgress(&imageImage))

	if opts.Multithread {
		buff := programs.BufferImage(imageImage)
		err = buff.Buffer(ctx)
		if err != nil {
			return err
		}
		imageImage = buff
	}

	err = png.Encode(out, imageImage)
	if err != nil {
		return fmt.Errorf("encoding png: %w", err)
	}
	return nil
}

// save writes the image in the background, showing progress and any error
// in dialogs over window.
func save(
	ctx context.Context,
	window gtk.IWindow,
	opts SaveOptions,
	program programs.Program,
	uniforms programs.Uniforms,
	bounds viewport.Bounds,
) {
	ctx, cancel := WithErrorDialogCancelCause(window, "save "+filepath.Base(opts.Name), ctx)
	defer CatchPanicToContext(cancel)

	file, err := os.Create(opts.Name)
	if err != nil {
		cancel(err)
		return
	}

	progressDialog, err := NewProgressDialog(
		ctx, window, "Save Image",
		fmt.Sprintf("Saving %v", file.Name()),
		func() { cancel(context.Canceled) },
	)
	if err != nil {
		file.Close()
		cancel(err)
		return
	}
	progressDialog.ShowAll()

	go func() {
		defer CatchPanicToContext(cancel)

		err := writePNG(ctx, file, opts, program, uniforms, bounds, progressDialog.Track)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(file.Name())
			cancel(err)
			return
		}

		log.Printf("saved %v", file.Name())
		cancel(nil)
	}()
}
