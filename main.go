package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/gotk3/gotk3/glib"
	"github.com/gotk3/gotk3/gtk"
	"github.com/spf13/cobra"
	"github.com/stewi1014/juliashaders/config"
	"github.com/stewi1014/juliashaders/programs"
	"github.com/stewi1014/juliashaders/viewport"
)

func init() {
	// GTK and GLFW both need the main thread.
	runtime.LockOSThread()
}

type rootOptions struct {
	configPath string
	program    string
	backend    string
	shaderDir  string
	debug      bool
}

// load reads the config file and applies the flags that were set over it.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("program") {
		cfg.Viewer.Program = o.program
	}
	if flags.Changed("backend") {
		cfg.Viewer.Backend = o.backend
	}
	if flags.Changed("shader-dir") {
		cfg.Viewer.ShaderDir = o.shaderDir
	}
	if flags.Changed("debug") {
		cfg.Viewer.Debug = o.debug
	}

	return cfg, cfg.Validate()
}

func shaderFS(cfg config.Config) fs.FS {
	if cfg.Viewer.ShaderDir != "" {
		return os.DirFS(cfg.Viewer.ShaderDir)
	}
	return programs.Embedded()
}

func main() {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "juliashaders",
		Short: "Explore Mandelbrot and Julia sets rendered by GLSL shaders",
		Long: `juliashaders renders fractal shaders on a quad in a bounded 3D world.
The camera orbits and slides towards a target with the keyboard, while the
mouse and the config window zoom and pan the complex plane.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "juliashaders.yaml", "Config file")
	rootCmd.PersistentFlags().StringVarP(&opts.program, "program", "p", "", "Program to show, matched fuzzily")
	rootCmd.PersistentFlags().StringVar(&opts.shaderDir, "shader-dir", "", "Load shaders from this directory and reload them on change")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable GL debug output")
	rootCmd.Flags().StringVarP(&opts.backend, "backend", "b", config.BackendGTK, "Window backend, gtk or glfw")

	rootCmd.AddCommand(newViewCommand(opts))
	rootCmd.AddCommand(newSaveCommand(opts))
	rootCmd.AddCommand(newListCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newViewCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the render window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.backend, "backend", "b", config.BackendGTK, "Window backend, gtk or glfw")

	return cmd
}

func runView(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.load(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	switch cfg.Viewer.Backend {
	case config.BackendGLFW:
		err = glfwMain(ctx, cfg, shaderFS(cfg), cfg.Viewer.ShaderDir)
	default:
		err = gtkMain(ctx, cfg, shaderFS(cfg))
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func gtkMain(ctx context.Context, cfg config.Config, shaders fs.FS) error {
	gtk.Init(&os.Args)
	app, err := gtk.ApplicationNew("com.github.stewi1014.juliashaders", glib.APPLICATION_FLAGS_NONE)
	if err != nil {
		return fmt.Errorf("gtk.ApplicationNew failed: %w", err)
	}

	appContext, appQuit := context.WithCancelCause(ctx)
	app.Connect("activate", func() {
		client, listener := NewPipeListener()
		context.AfterFunc(appContext, func() {
			listener.Close()
		})

		renderWindow, err := NewRenderWindow(app, client, appContext, appQuit, cfg, shaders)
		if err != nil {
			appQuit(err)
			return
		}
		renderWindow.Connect("destroy", func() {
			appQuit(nil)
		})
		renderWindow.SetTitle("Julia Shaders")

		configWindow, err := NewConfigWindow(app, listener, appContext, appQuit)
		if err != nil {
			appQuit(err)
			return
		}
		configWindow.Connect("destroy", func() {
			appQuit(nil)
		})
		configWindow.SetTitle("Julia Shaders Config")

		if cfg.Viewer.ShaderDir != "" {
			go func() {
				err := watchShaders(appContext, cfg.Viewer.ShaderDir, func(names []string) {
					glib.IdleAdd(func() {
						renderWindow.ReloadShaders(names)
					})
				})
				if err != nil {
					appQuit(err)
				}
			}()
		}
	})

	go func() {
		<-appContext.Done()
		glib.IdleAdd(app.Quit)
	}()
	app.Run(nil)
	return context.Cause(appContext)
}

func watchShaders(ctx context.Context, dir string, onChange func(names []string)) error {
	log.Printf("watching %v for shader changes", dir)
	err := programs.Watch(ctx, dir, onChange)
	if err != nil {
		return fmt.Errorf("watching shaders: %w", err)
	}
	return nil
}

func newSaveCommand(opts *rootOptions) *cobra.Command {
	var (
		saveOpts        SaveOptions
		center          []float64
		halfRange       float64
		constant        []float64
		maxIterations   int32
		progressLogging time.Duration
	)

	cmd := &cobra.Command{
		Use:   "save <file.png>",
		Short: "Render a program on the CPU and write it as a PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			program, err := programs.Find(cfg.Viewer.Program)
			if err != nil {
				return err
			}

			uniforms := program.DefaultUniforms(cfg.Viewer.MaxIterations)
			if cmd.Flags().Changed("iterations") {
				uniforms.MaxIterations = maxIterations
			}
			if cmd.Flags().Changed("constant") {
				if len(constant) != 2 {
					return fmt.Errorf("--constant needs a real and an imaginary part, got %v values", len(constant))
				}
				uniforms.SetConstant(complex(constant[0], constant[1]))
			}

			bounds := program.DefaultBounds()
			if cmd.Flags().Changed("center") {
				if len(center) != 2 {
					return fmt.Errorf("--center needs a real and an imaginary part, got %v values", len(center))
				}
				bounds.Real, bounds.Imag = center[0], center[1]
			}
			if cmd.Flags().Changed("range") {
				bounds.Range = halfRange
			}

			saveOpts.Name = args[0]
			return runSave(cmd.Context(), saveOpts, program, uniforms, bounds, progressLogging)
		},
	}

	cmd.Flags().IntVar(&saveOpts.Width, "width", 1920, "Image width in pixels")
	cmd.Flags().IntVar(&saveOpts.Height, "height", 1080, "Image height in pixels")
	cmd.Flags().Float64Var(&saveOpts.Antialias, "antialias", 0.5, "Distance in pixels between antialiasing samples, 0 to disable")
	cmd.Flags().BoolVar(&saveOpts.Multithread, "multithread", true, "Render columns in parallel")
	cmd.Flags().Float64SliceVar(&center, "center", nil, "Center of the view as real,imag")
	cmd.Flags().Float64Var(&halfRange, "range", 0, "Half width of the view")
	cmd.Flags().Float64SliceVar(&constant, "constant", nil, "Julia constant as real,imag")
	cmd.Flags().Int32Var(&maxIterations, "iterations", 0, "Maximum iterations")
	cmd.Flags().DurationVar(&progressLogging, "progress", time.Second, "Interval between progress logs")

	return cmd
}

func runSave(
	ctx context.Context,
	opts SaveOptions,
	program programs.Program,
	uniforms programs.Uniforms,
	bounds viewport.Bounds,
	progressLogging time.Duration,
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	file, err := os.Create(opts.Name)
	if err != nil {
		return fmt.Errorf("creating image: %w", err)
	}

	progress := func(supplier func() float64) {
		if progressLogging <= 0 {
			return
		}
		go func() {
			ticker := time.NewTicker(progressLogging)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					log.Printf("%v: %.0f%%", opts.Name, supplier()*100)
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	start := time.Now()
	err = writePNG(ctx, file, opts, program, uniforms, bounds, progress)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(opts.Name)
		return err
	}

	log.Printf("saved %v in %v", opts.Name, time.Since(start).Round(time.Millisecond))
	return nil
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available programs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, p := range programs.Programs() {
				fmt.Fprintf(out, "%-12v c=%v center=%v range=%v\n", p.Name, p.Constant, p.Center, p.Range)
			}
		},
	}
}
