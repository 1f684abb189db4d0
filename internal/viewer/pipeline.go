package viewer

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/config"
	"github.com/Faultbox/midgard-vr/internal/element"
	"github.com/Faultbox/midgard-vr/internal/engine/camera"
	"github.com/Faultbox/midgard-vr/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/hmd"
	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
	"github.com/Faultbox/midgard-vr/internal/engine/renderer"
	"github.com/Faultbox/midgard-vr/internal/engine/shader"
	"github.com/Faultbox/midgard-vr/internal/logger"
	"github.com/Faultbox/midgard-vr/internal/source"
)

// Pipeline is a source followed by a chain of elements, each rendering the
// previous stage's output texture.
type Pipeline struct {
	ctx      *gpu.Context
	hmd      *hmd.HMD
	source   source.Source
	elements []element.Element
}

// OpenHMD creates the configured driver and opens its first device. A
// missing device is logged and leaves the adapter closed, so the viewer
// falls back to mono.
func OpenHMD(cfg config.HMDConfig) *hmd.HMD {
	log := logger.Named("viewer")

	driver, err := hmd.NewDriver(cfg.Driver)
	if err != nil {
		log.Warn("no HMD driver", zap.String("driver", cfg.Driver), zap.Error(err))
		return hmd.New(nil)
	}
	if d, ok := driver.(*hmd.Dummy); ok {
		d.SetSpin(cfg.IdleYaw)
	}

	h := hmd.New(driver)
	if err := h.Open(); err != nil {
		log.Warn("HMD unavailable, rendering mono", zap.Error(err))
		return h
	}
	if cfg.EyeSeparation != 0 {
		h.AdjustEyeSeparation(cfg.EyeSeparation - h.EyeSeparation())
	}
	return h
}

// CloseHMD closes the adapter's device and driver, logging a failure.
func CloseHMD(h *hmd.HMD) {
	if h == nil {
		return
	}
	if err := h.Close(); err != nil {
		logger.Named("viewer").Warn("closing HMD failed", zap.Error(err))
	}
}

// NewPipeline builds the source and elements described by cfg. It blocks on
// the GL thread.
func NewPipeline(ctx *gpu.Context, cfg *config.Config, h *hmd.HMD) (*Pipeline, error) {
	p := &Pipeline{ctx: ctx, hmd: h}

	src, err := source.New(ctx, source.Config{
		Kind:   source.Kind(cfg.Source.Type),
		Path:   cfg.Source.Path,
		Width:  cfg.Source.Width,
		Height: cfg.Source.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}
	p.source = src

	kinds := []element.Kind{element.Kind(cfg.Scene.Element)}
	if cfg.Render.Warp && kinds[0] != element.KindWarp {
		kinds = append(kinds, element.KindWarp)
	}

	opts, err := elementOptions(cfg, h)
	if err != nil {
		p.Stop()
		return nil, fmt.Errorf("creating pipeline: %w", err)
	}

	width, height := src.Size()
	w, hgt := int32(width), int32(height)
	for _, kind := range kinds {
		el, err := element.New(kind, ctx, opts)
		if err != nil {
			p.Stop()
			return nil, fmt.Errorf("creating pipeline: %w", err)
		}
		if pc, ok := el.(*element.PointCloud); ok {
			tuneArcball(pc.Camera(), cfg.Camera.Arcball)
		}
		el.SetCaps(w, hgt)
		if err := el.InitGL(); err != nil {
			el.Stop()
			p.Stop()
			return nil, fmt.Errorf("creating pipeline: %w", err)
		}
		p.elements = append(p.elements, el)
		w, hgt = el.OutputSize()
	}

	logger.Named("viewer").Info("pipeline ready",
		zap.String("source", cfg.Source.Type),
		zap.Any("elements", kinds),
		zap.Int32("width", w),
		zap.Int32("height", hgt))
	return p, nil
}

func elementOptions(cfg *config.Config, h *hmd.HMD) (element.Options, error) {
	opts := element.Options{
		HMD: h,
		Renderer: renderer.Config{
			Mode:       renderer.Mode(cfg.Render.Mode),
			EyeWidth:   int32(cfg.Render.EyeWidth),
			EyeHeight:  int32(cfg.Render.EyeHeight),
			ClearColor: cfg.Render.ClearColor,
		},
		SphereRadius: cfg.Scene.SphereRadius,
		SphereStacks: cfg.Scene.SphereStacks,
		SphereSlices: cfg.Scene.SphereSlices,
		MeshPath:     cfg.Scene.MeshPath,
		Axes:         cfg.Scene.Axes,
	}

	kind := camera.Kind(cfg.Camera.Type)
	if kind == camera.KindHMD || kind == "" {
		return opts, nil
	}
	cam, err := camera.New(kind, camera.Config{FOV: cfg.Camera.FOV}, h)
	if err != nil {
		return opts, err
	}
	if a, ok := cam.(*camera.Arcball); ok {
		tuneArcball(a, cfg.Camera.Arcball)
	}
	opts.Camera = cam
	return opts, nil
}

func tuneArcball(a *camera.Arcball, cfg config.ArcballConfig) {
	a.Theta = cfg.Theta
	a.Phi = cfg.Phi
	a.CenterDistance = cfg.CenterDistance
	a.ScrollSpeed = cfg.ScrollSpeed
	a.RotationSpeed = cfg.RotationSpeed
	a.UpdateView()
}

// Elements returns the element chain in render order.
func (p *Pipeline) Elements() []element.Element { return p.elements }

// Output returns the framebuffer of the last element.
func (p *Pipeline) Output() *framebuffer.Framebuffer {
	return p.elements[len(p.elements)-1].Output()
}

// Frame renders the chain for time t and returns the final texture. Must
// run on the GL thread.
func (p *Pipeline) Frame(t time.Duration) uint32 {
	tex := p.source.Frame(t)
	for _, el := range p.elements {
		tex = el.Render(tex)
	}
	return tex
}

// NavigationEvent delivers ev to every element. ErrEOS from any element ends
// the stream; other errors are logged.
func (p *Pipeline) NavigationEvent(ev navigation.Event) error {
	for _, el := range p.elements {
		if err := el.NavigationEvent(ev); err != nil {
			if errors.Is(err, element.ErrEOS) {
				return err
			}
			logger.Named("viewer").Warn("navigation event", zap.Stringer("event", ev), zap.Error(err))
		}
	}
	return nil
}

// Shaders returns every hot-reloadable program of the chain.
func (p *Pipeline) Shaders() []*shader.Shader {
	var out []*shader.Shader
	for _, el := range p.elements {
		out = append(out, el.Shaders()...)
	}
	return out
}

// Stop releases the chain and the source. It blocks on the GL thread.
func (p *Pipeline) Stop() {
	for _, el := range p.elements {
		el.Stop()
	}
	p.elements = nil
	if p.source != nil {
		p.source.Destroy()
		p.source = nil
	}
}
