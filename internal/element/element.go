// Package element implements the VR processing stages the viewer chains
// behind a source: the stereo compositor, the depth point cloud builder and
// the HMD lens warp. Each stage consumes one input texture per frame and
// renders into a framebuffer it owns.
package element

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/camera"
	"github.com/Faultbox/midgard-vr/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/hmd"
	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
	"github.com/Faultbox/midgard-vr/internal/engine/renderer"
	"github.com/Faultbox/midgard-vr/internal/engine/shader"
	"github.com/Faultbox/midgard-vr/internal/logger"
)

// ErrEOS is returned by NavigationEvent when the user asked to end the stream.
var ErrEOS = errors.New("end of stream")

// Kind names an element type.
type Kind string

const (
	KindCompositor Kind = "compositor"
	KindPointCloud Kind = "pointcloud"
	KindWarp       Kind = "warp"
)

// Element is one processing stage.
type Element interface {
	// SetCaps sets the input frame size.
	SetCaps(width, height int32)
	// InitGL creates the GL resources. It blocks on the GL thread.
	InitGL() error
	// Render draws one frame from the input texture and returns the output
	// texture. Must run on the GL thread.
	Render(input uint32) uint32
	// OutputSize returns the size of the rendered frame.
	OutputSize() (int32, int32)
	// Output returns the framebuffer Render draws into, nil before InitGL.
	Output() *framebuffer.Framebuffer
	// NavigationEvent handles user input. It returns ErrEOS on Escape.
	NavigationEvent(ev navigation.Event) error
	// Shaders returns the programs eligible for hot reload.
	Shaders() []*shader.Shader
	// Stop releases the GL resources. It blocks on the GL thread.
	Stop()
}

// Options configures the elements built by New.
type Options struct {
	// HMD feeds the compositor camera. Nil or closed falls back to mono.
	HMD *hmd.HMD
	// Camera replaces the compositor's HMD camera. Cameras without a stereo
	// pair render mono.
	Camera   camera.Camera
	Renderer renderer.Config

	SphereRadius float32
	SphereStacks int
	SphereSlices int
	// MeshPath replaces the compositor sphere with an imported glTF mesh.
	MeshPath string
	// Axes adds the debug axes to the compositor scene.
	Axes bool
}

// DefaultOptions returns a 10 unit, 20x20 sphere and the default renderer.
func DefaultOptions() Options {
	return Options{
		Renderer:     renderer.DefaultConfig(),
		SphereRadius: 10,
		SphereStacks: 20,
		SphereSlices: 20,
	}
}

// New builds an element of the given kind.
func New(kind Kind, ctx *gpu.Context, opts Options) (Element, error) {
	switch kind {
	case KindCompositor, "":
		return NewCompositor(ctx, opts), nil
	case KindPointCloud:
		return NewPointCloud(ctx), nil
	case KindWarp:
		return NewWarp(ctx), nil
	}
	return nil, fmt.Errorf("unknown element %q", kind)
}

// isEOS reports whether ev asks to end the stream.
func isEOS(ev navigation.Event) bool {
	return ev.Type == navigation.EventKeyPress && ev.Key == navigation.KeyEscape
}

// output is the framebuffer an element renders its frame into.
type output struct {
	ctx *gpu.Context
	fb  *framebuffer.Framebuffer
}

// ensure creates the framebuffer or resizes it to width x height. It blocks
// on the GL thread.
func (o *output) ensure(width, height int32) {
	if o.fb == nil {
		o.fb = framebuffer.New(o.ctx, width, height)
		return
	}
	if w, h := o.fb.Size(); w == width && h == height {
		return
	}
	o.ctx.Run(func(gpu.GL) {
		o.fb.Resize(width, height)
	})
	logger.Named("element").Debug("output resized",
		zap.Int32("width", width),
		zap.Int32("height", height))
}

func (o *output) size() (int32, int32) {
	if o.fb == nil {
		return 0, 0
	}
	return o.fb.Size()
}

func (o *output) destroy() {
	if o.fb != nil {
		o.fb.Destroy()
		o.fb = nil
	}
}
