package programs

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stewi1014/juliashaders/viewport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	assert.ElementsMatch(t, []string{"julia", "julia3", "julia4_8", "julia6", "julia8", "mandelbrot"}, Names())
	assert.Equal(t, len(Names()), NumPrograms())

	for _, p := range Programs() {
		assert.NotNil(t, p.GetPixel, p.Name)
		assert.Greater(t, p.Range, 0.0, p.Name)
		assert.True(t, p.Uses(p.FragmentFile))
		assert.True(t, p.Uses("shaders/"+DefaultVertexFile))
	}

	assert.Error(t, NewProgram(Program{Name: "julia"}), "names must be unique")
}

func TestFind(t *testing.T) {
	p, err := Find("mandelbrot")
	require.NoError(t, err)
	assert.Equal(t, "mandelbrot", p.Name)

	p, err = Find("julia")
	require.NoError(t, err)
	assert.Equal(t, "julia", p.Name, "exact match wins over longer fuzzy matches")

	p, err = Find("jul3")
	require.NoError(t, err)
	assert.Equal(t, "julia3", p.Name)

	p, err = Find("MANDEL")
	require.NoError(t, err)
	assert.Equal(t, "mandelbrot", p.Name)

	_, err = Find("sierpinski")
	assert.ErrorIs(t, err, ErrUnknownProgram)
}

func TestNext(t *testing.T) {
	names := Names()
	seen := map[string]bool{}
	name := names[0]
	for range names {
		seen[name] = true
		name = Next(name).Name
	}
	assert.Len(t, seen, NumPrograms(), "cycling visits every program")
	assert.Equal(t, names[0], name, "cycling wraps around")

	assert.Equal(t, GetProgram(0).Name, Next("sierpinski").Name)
	assert.Equal(t, GetProgram(1).Name, Next(GetProgram(0).Name).Name)
}

func TestDefaultBoundsAndUniforms(t *testing.T) {
	p, err := Find("mandelbrot")
	require.NoError(t, err)
	assert.Equal(t, viewport.Bounds{Real: -0.5, Imag: 0, Range: 2}, p.DefaultBounds())

	j, err := Find("julia")
	require.NoError(t, err)
	u := j.DefaultUniforms(50)
	assert.Equal(t, int32(50), u.MaxIterations)
	assert.InDelta(t, real(j.Constant), real(u.Constant()), 1e-6)
	assert.InDelta(t, imag(j.Constant), imag(u.Constant()), 1e-6)
}

func TestMandelbrotPixels(t *testing.T) {
	p, err := Find("mandelbrot")
	require.NoError(t, err)
	u := p.DefaultUniforms(100)

	assert.Equal(t, NullColour, p.GetPixel(u, 0), "origin is in the set")
	assert.Equal(t, NullColour, p.GetPixel(u, -1), "-1 is in the set")
	assert.NotEqual(t, NullColour, p.GetPixel(u, complex(1, 1)))
	assert.Equal(t, Colour(0, true), p.GetPixel(u, complex(5, 0)), "points outside the diamond escape immediately")
}

func TestEscape(t *testing.T) {
	n, escaped := escape(0, 10, func(z complex128) complex128 { return z + 1 })
	assert.True(t, escaped)
	assert.Equal(t, int32(5), n)

	n, escaped = escape(0, 10, func(z complex128) complex128 { return z })
	assert.False(t, escaped)
	assert.Equal(t, int32(10), n)
}

func TestJuliaPixelPower(t *testing.T) {
	u := Uniforms{MaxIterations: 1}
	u.SetConstant(complex(1, 0))

	// one step of z^3 + 1 from z=1.5 gives 4.375, which escapes
	assert.Equal(t, Colour(1, true), juliaPixel(3)(u, complex(1.5, 0)))
	// one step of z^2 + 1 from z=1.5 gives 3.25, still inside after the last iteration
	assert.Equal(t, NullColour, juliaPixel(2)(u, complex(1.5, 0)))
}

func TestJulia4_8Pixel(t *testing.T) {
	u := Uniforms{MaxIterations: 1}
	u.SetConstant(complex(1, 0))

	// 1 + 1 + 1 = 3 stays inside for the single iteration
	assert.Equal(t, NullColour, julia4_8Pixel(u, complex(1, 0)))
	// 1.2^4 + 1.2^8 + 1 is about 7.37, which escapes
	assert.Equal(t, Colour(1, true), julia4_8Pixel(u, complex(1.2, 0)))
}

func TestLoadSources(t *testing.T) {
	p, err := Find("julia3")
	require.NoError(t, err)

	src, err := LoadSources(Embedded(), p)
	require.NoError(t, err)
	assert.Contains(t, src.Vertex, "vertex_z_r")
	assert.Contains(t, src.Vertex, "vertex_z_i")
	assert.Contains(t, src.Fragment, "max_iterations")
	assert.Equal(t, "julia3.frag", src.FragmentFile)
	assert.Equal(t, DefaultVertexFile, src.VertexFile)

	missingFragment := fstest.MapFS{
		DefaultVertexFile: &fstest.MapFile{Data: []byte("void main() {}")},
	}
	_, err = LoadSources(missingFragment, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fragment shader julia3.frag")

	_, err = LoadSources(fstest.MapFS{}, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vertex shader default.vert")
}

func TestEmbeddedHasEveryProgram(t *testing.T) {
	for _, p := range Programs() {
		_, err := LoadSources(Embedded(), p)
		assert.NoError(t, err, p.Name)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan []string, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func(names []string) { changed <- names })
	}()

	// give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "julia.frag"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "julia.frag"), []byte("b"), 0o644))

	select {
	case names := <-changed:
		assert.Equal(t, []string{"julia.frag"}, names)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestImageExport(t *testing.T) {
	p, err := Find("mandelbrot")
	require.NoError(t, err)

	img, err := p.GetImage(p.DefaultUniforms(50), p.DefaultBounds(), 120, 80)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(-60, -40, 60, 40), img.Bounds())

	// the center of the default view is -0.5, inside the set
	assert.Equal(t, NullColour, img.GetPixel(mgl64.Vec2{0, 0}))

	var out image.Image = ToImage(AntiAlias9x(img, 0.5))
	progress := WrapWithProgress(&out)
	buffered := BufferImage(out)
	require.NoError(t, buffered.Buffer(context.Background()))

	assert.Equal(t, image.Rect(0, 0, 120, 80), buffered.Bounds())
	assert.InDelta(t, 1, progress(), 1e-9)

	_, _, _, a := buffered.At(60, 40).RGBA()
	assert.Equal(t, uint32(0xffff), a)
}

func TestImageExportOddSize(t *testing.T) {
	p, err := Find("julia")
	require.NoError(t, err)

	img, err := p.GetImage(p.DefaultUniforms(20), p.DefaultBounds(), 121, 81)
	require.NoError(t, err)
	assert.Equal(t, 121, img.Bounds().Dx())
	assert.Equal(t, 81, img.Bounds().Dy())

	buffered := BufferImage(ToImage(img))
	require.NoError(t, buffered.Buffer(context.Background()))
	assert.Equal(t, image.Rect(0, 0, 121, 81), buffered.Bounds())
}

func TestImageExportCancel(t *testing.T) {
	p, err := Find("julia")
	require.NoError(t, err)

	img, err := p.GetImage(p.DefaultUniforms(50), p.DefaultBounds(), 200, 200)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, BufferImage(ToImage(img)).Buffer(ctx), context.Canceled)
}

func TestNoCPUImplementation(t *testing.T) {
	p := Program{Name: "gpu only"}
	_, err := p.GetImage(Uniforms{}, viewport.Bounds{Range: 1}, 10, 10)
	assert.ErrorIs(t, err, ErrNoCPUImplementation)
}
