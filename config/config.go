// Package config loads viewer settings from a YAML file.
// Fields missing from the file keep their defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/stewi1014/juliashaders/camera"
	"gopkg.in/yaml.v3"
)

type World struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (w World) Size() camera.WorldSize {
	return camera.NewWorldSize(w.X, w.Y, w.Z)
}

type Viewer struct {
	Program       string `yaml:"program"`
	MaxIterations int32  `yaml:"maxIterations"`
	Animate       bool   `yaml:"animate"`
	Backend       string `yaml:"backend"`
	ShaderDir     string `yaml:"shaderDir"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Debug         bool   `yaml:"debug"`
}

type Config struct {
	World  World           `yaml:"world"`
	Camera camera.Settings `yaml:"camera"`
	Viewer Viewer          `yaml:"viewer"`
}

const (
	BackendGTK  = "gtk"
	BackendGLFW = "glfw"
)

func Default() Config {
	return Config{
		World:  World{X: 1, Y: 1, Z: 1},
		Camera: camera.DefaultSettings(),
		Viewer: Viewer{
			Program:       "mandelbrot",
			MaxIterations: 100,
			Backend:       BackendGTK,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %v: %w", path, err)
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.World.X <= 0 || c.World.Y <= 0 || c.World.Z <= 0 {
		return fmt.Errorf("world size must be positive, got %v", c.World)
	}
	if c.Viewer.MaxIterations <= 0 {
		return fmt.Errorf("maxIterations must be positive, got %v", c.Viewer.MaxIterations)
	}
	if err := c.Camera.Validate(c.World.Size()); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	switch c.Viewer.Backend {
	case BackendGTK, BackendGLFW:
	default:
		return fmt.Errorf("unknown backend %q", c.Viewer.Backend)
	}
	return nil
}
