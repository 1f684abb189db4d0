package shader

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/logger"
)

// Watcher tracks edits in a shader override directory so programs can be
// rebuilt on the GL thread between frames.
type Watcher struct {
	fsw *fsnotify.Watcher

	mu      sync.Mutex
	changed map[string]struct{}
	done    chan struct{}
}

// Watch starts watching dir.
func Watch(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:     fsw,
		changed: make(map[string]struct{}),
		done:    make(chan struct{}),
	}
	go w.loop()

	logger.Named("shader").Info("watching shader directory", zap.String("dir", dir))
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.mu.Lock()
				w.changed[filepath.Base(ev.Name)] = struct{}{}
				w.mu.Unlock()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Named("shader").Warn("shader watcher error", zap.Error(err))
		}
	}
}

// Changed returns and clears the set of file names modified since the last call.
func (w *Watcher) Changed() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, 0, len(w.changed))
	for name := range w.changed {
		names = append(names, name)
	}
	clear(w.changed)
	return names
}

// ReloadChanged rebuilds every shader built from a changed file and returns
// how many were rebuilt. Must run on the GL thread.
func (w *Watcher) ReloadChanged(gl gpu.GL, shaders ...*Shader) int {
	changed := w.Changed()
	if len(changed) == 0 {
		return 0
	}
	set := make(map[string]bool, len(changed))
	for _, name := range changed {
		set[name] = true
	}

	n := 0
	for _, s := range shaders {
		if s == nil || s.program == 0 {
			continue
		}
		if set[s.vertName] || set[s.fragName] {
			if s.Reload(gl) == nil {
				n++
			}
		}
	}
	return n
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
