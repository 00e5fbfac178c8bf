package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "juliashaders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesDefaults(t *testing.T) {
	path := writeConfig(t, `
world:
  x: 2
camera:
  position: [0, -2, 1]
  targetSpeed:
    angular: 0.1
viewer:
  program: julia3
  backend: glfw
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, World{X: 2, Y: 1, Z: 1}, cfg.World)
	assert.Equal(t, mgl64.Vec3{0, -2, 1}, cfg.Camera.Position)
	assert.Equal(t, 0.1, cfg.Camera.TargetSpeed.Angular)
	assert.Equal(t, 0.010, cfg.Camera.TargetSpeed.X, "unset speeds keep their defaults")
	assert.True(t, cfg.Camera.TargetMovesCamera)
	assert.Equal(t, "julia3", cfg.Viewer.Program)
	assert.Equal(t, BackendGLFW, cfg.Viewer.Backend)
	assert.Equal(t, int32(100), cfg.Viewer.MaxIterations)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax":     "world: [",
		"world":      "world: {x: -1}",
		"iterations": "viewer: {maxIterations: 0}",
		"backend":    "viewer: {backend: vulkan}",
		"vector":     "camera: {position: [1, 2]}",
		"fov":        "camera: {fov: 0}",
		"near":       "camera: {near: -0.1}",
		"far":        "camera: {near: 5, far: 0.1}",
		"speed":      "camera: {targetSpeed: {x: -0.01}}",
		"angular":    "camera: {targetSpeed: {angular: -0.05}}",
	}

	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, contents))
			assert.Error(t, err)
		})
	}
}

func TestWorldSize(t *testing.T) {
	w := World{X: 1, Y: 2, Z: 3}.Size()
	assert.Equal(t, 2.0, w.Y)
	assert.Greater(t, w.DiagL, w.DiagX)
}
