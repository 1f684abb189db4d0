// Package viewer runs the desktop VR viewer: an SDL window whose thread owns
// the GL context, a source and element pipeline, and the input loop feeding
// navigation events to the elements.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/config"
	"github.com/Faultbox/midgard-vr/internal/element"
	"github.com/Faultbox/midgard-vr/internal/engine/debug"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu/gl41"
	"github.com/Faultbox/midgard-vr/internal/engine/hmd"
	"github.com/Faultbox/midgard-vr/internal/engine/input"
	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
	"github.com/Faultbox/midgard-vr/internal/engine/shader"
	"github.com/Faultbox/midgard-vr/internal/engine/window"
	"github.com/Faultbox/midgard-vr/internal/logger"
)

// snapshotKey saves the pipeline output as PNG.
const snapshotKey = "F12"

// Viewer is the main viewer instance. New, Run and Close must be called from
// the main goroutine, which owns the GL context.
type Viewer struct {
	config   *config.Config
	running  bool
	window   *window.Window
	ctx      *gpu.Context
	input    *input.Input
	hmd      *hmd.HMD
	pipeline *Pipeline
	present  *presenter
	watcher  *shader.Watcher
	snapshot *debug.Snapshotter
}

// New creates the window, the GL context and the pipeline.
func New(cfg *config.Config) (*Viewer, error) {
	log := logger.Named("viewer")
	log.Info("initializing viewer",
		zap.String("element", cfg.Scene.Element),
		zap.String("source", cfg.Source.Type),
		zap.String("camera", cfg.Camera.Type))

	v := &Viewer{
		config:   cfg,
		input:    input.New(),
		snapshot: debug.NewSnapshotter(".", "midgard-vr"),
	}

	var err error
	v.window, err = window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// The window's context is current on this thread now.
	gl, err := gl41.Init()
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to load OpenGL: %w", err)
	}
	log.Info("OpenGL ready", zap.String("version", gl41.Version()))
	v.ctx = gpu.NewContext(gl)

	if cfg.Shaders.Dir != "" {
		shader.Default().SetOverrideDir(cfg.Shaders.Dir)
		if cfg.Shaders.HotReload {
			if v.watcher, err = shader.Watch(cfg.Shaders.Dir); err != nil {
				log.Warn("shader hot reload disabled", zap.Error(err))
			}
		}
	}

	v.hmd = OpenHMD(cfg.HMD)

	err = v.offThread(func() error {
		var err error
		if v.pipeline, err = NewPipeline(v.ctx, cfg, v.hmd); err != nil {
			return err
		}
		v.present, err = newPresenter(v.ctx)
		return err
	})
	if err != nil {
		v.Close()
		return nil, err
	}

	log.Info("viewer initialized successfully")
	return v, nil
}

// offThread runs fn on another goroutine while this thread serves the GL
// calls it makes. Constructors and Destroy methods block on the GL thread
// and would deadlock if called from it directly.
func (v *Viewer) offThread(fn func() error) error {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- fn()
		cancel()
	}()
	_ = v.ctx.Serve(ctx)
	return <-done
}

// Run starts the main loop. It returns when the window is closed or an
// element reports end of stream.
func (v *Viewer) Run() error {
	v.running = true
	log := logger.Named("viewer")

	start := time.Now()
	frameCount := 0
	fpsTimer := time.Now()
	var frameBudget time.Duration
	if v.config.Window.FPSLimit > 0 {
		frameBudget = time.Second / time.Duration(v.config.Window.FPSLimit)
	}

	log.Info("starting render loop")

	for v.running {
		frameStart := time.Now()

		if v.input.Update() {
			v.running = false
			break
		}
		if w, h, ok := v.input.Resized(); ok {
			log.Debug("window resized", zap.Int("width", w), zap.Int("height", h))
		}
		for _, ev := range v.input.Events() {
			if err := v.handleEvent(ev); err != nil {
				if errors.Is(err, element.ErrEOS) {
					log.Info("end of stream")
					v.running = false
					break
				}
				return err
			}
		}
		if !v.running {
			break
		}

		// Serve calls queued by other goroutines, then draw on this thread.
		v.ctx.Drain()
		if v.watcher != nil {
			if n := v.watcher.ReloadChanged(v.ctx.GL(), v.pipeline.Shaders()...); n > 0 {
				log.Info("shaders reloaded", zap.Int("count", n))
			}
		}
		v.render(time.Since(start))
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
		if frameBudget > 0 {
			if rest := frameBudget - time.Since(frameStart); rest > 0 {
				time.Sleep(rest)
			}
		}
	}
	return nil
}

func (v *Viewer) handleEvent(ev navigation.Event) error {
	if ev.Type == navigation.EventKeyPress && ev.Key == snapshotKey {
		if _, err := v.snapshot.SaveFramebuffer(v.pipeline.Output()); err != nil {
			logger.Named("viewer").Warn("snapshot failed", zap.Error(err))
		}
		return nil
	}
	return v.pipeline.NavigationEvent(ev)
}

// render draws one frame. Runs on the GL thread.
func (v *Viewer) render(t time.Duration) {
	tex := v.pipeline.Frame(t)
	srcW, srcH := v.pipeline.Output().Size()
	dstW, dstH := v.window.DrawableSize()
	v.present.draw(tex, srcW, srcH, dstW, dstH)
}

// Close releases the pipeline, the HMD and the window.
func (v *Viewer) Close() {
	logger.Named("viewer").Info("closing viewer")

	if v.ctx != nil {
		_ = v.offThread(func() error {
			if v.present != nil {
				v.present.destroy()
			}
			if v.pipeline != nil {
				v.pipeline.Stop()
			}
			return nil
		})
		v.ctx.Close()
	}
	if v.watcher != nil {
		v.watcher.Close()
	}
	CloseHMD(v.hmd)
	if v.window != nil {
		v.window.Close()
	}
}
