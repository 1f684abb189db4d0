package shader

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/logger"
)

//go:embed glsl/*.vert glsl/*.frag
var bundled embed.FS

// Library resolves shader names to GLSL source. Files in the override
// directory take precedence over the sources bundled with the binary.
type Library struct {
	mu          sync.RWMutex
	overrideDir string
	bundled     fs.FS
}

var defaultLibrary = NewLibrary("")

// NewLibrary returns a library that looks in overrideDir before the bundled
// sources. An empty overrideDir uses the bundled sources only.
func NewLibrary(overrideDir string) *Library {
	sub, err := fs.Sub(bundled, "glsl")
	if err != nil {
		panic(err)
	}
	return &Library{overrideDir: overrideDir, bundled: sub}
}

// Default returns the process-wide library used by New.
func Default() *Library {
	return defaultLibrary
}

// SetOverrideDir changes the override directory of the library.
func (l *Library) SetOverrideDir(dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.overrideDir = dir
}

// OverrideDir returns the override directory, or "" when unset.
func (l *Library) OverrideDir() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.overrideDir
}

// Read returns the source of the named shader file. A missing resource is
// logged and yields an empty string; compiling it then fails and is logged
// again by the caller.
func (l *Library) Read(name string) string {
	if dir := l.OverrideDir(); dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return string(data)
		}
		if !os.IsNotExist(err) {
			logger.Named("shader").Warn("reading shader override",
				zap.String("name", name), zap.Error(err))
		}
	}

	data, err := fs.ReadFile(l.bundled, name)
	if err != nil {
		logger.Named("shader").Error("shader resource not found",
			zap.String("name", name), zap.Error(err))
		return ""
	}
	return string(data)
}

// Names lists the bundled shader files.
func (l *Library) Names() []string {
	entries, err := fs.ReadDir(l.bundled, ".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

// Read resolves name with the default library.
func Read(name string) string {
	return defaultLibrary.Read(name)
}
