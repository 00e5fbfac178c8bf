package programs

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

//go:embed shaders
var embedded embed.FS

// Embedded returns the shader sources compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "shaders")
	if err != nil {
		panic(err)
	}
	return sub
}

// Sources holds shader text along with the files it came from.
type Sources struct {
	Vertex       string
	Fragment     string
	VertexFile   string
	FragmentFile string
}

// LoadSources reads the vertex source of p, then its fragment source.
func LoadSources(fsys fs.FS, p Program) (Sources, error) {
	vertex, err := fs.ReadFile(fsys, p.VertexFile)
	if err != nil {
		return Sources{}, fmt.Errorf("loading vertex shader %v: %w", p.VertexFile, err)
	}

	fragment, err := fs.ReadFile(fsys, p.FragmentFile)
	if err != nil {
		return Sources{}, fmt.Errorf("loading fragment shader %v: %w", p.FragmentFile, err)
	}

	return Sources{
		Vertex:       string(vertex),
		Fragment:     string(fragment),
		VertexFile:   p.VertexFile,
		FragmentFile: p.FragmentFile,
	}, nil
}

// Uses reports whether p is built from the shader file name.
func (p Program) Uses(name string) bool {
	name = filepath.Base(name)
	return name == p.VertexFile || name == p.FragmentFile
}

// WatchDebounce is how long Watch waits for writes to settle.
const WatchDebounce = 100 * time.Millisecond

// Watch calls onChange with the names of shader files in dir that were
// written, batching bursts of writes. It returns when ctx is done.
// onChange runs on the watching goroutine.
func Watch(ctx context.Context, dir string, onChange func(names []string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %v: %w", dir, err)
	}

	debounce := time.NewTimer(0)
	<-debounce.C

	pending := make(map[string]struct{})
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isShaderFile(event.Name) || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			pending[filepath.Base(event.Name)] = struct{}{}
			debounce.Reset(WatchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Println("shader watcher error:", err)

		case <-debounce.C:
			if len(pending) == 0 {
				continue
			}
			names := make([]string, 0, len(pending))
			for name := range pending {
				names = append(names, name)
			}
			clear(pending)
			onChange(names)

		case <-ctx.Done():
			return nil
		}
	}
}

func isShaderFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".vert", ".frag", ".glsl":
		return true
	}
	return false
}
