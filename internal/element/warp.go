package element

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/mesh"
	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
	"github.com/Faultbox/midgard-vr/internal/engine/scene"
	"github.com/Faultbox/midgard-vr/internal/engine/shader"
	"github.com/Faultbox/midgard-vr/internal/logger"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// Warp applies the HMD lens distortion to a side-by-side stereo frame.
type Warp struct {
	ctx  *gpu.Context
	quad *scene.Node
	out  output

	screen math.Vec2
	aspect float32
}

// NewWarp returns a warp sized for the dummy HMD screen until SetCaps.
func NewWarp(ctx *gpu.Context) *Warp {
	w := &Warp{ctx: ctx, out: output{ctx: ctx}}
	w.SetCaps(1280, 800)
	return w
}

// SetCaps sets the screen size. Input and output share it.
func (w *Warp) SetCaps(width, height int32) {
	width, height = max(width, 1), max(height, 1)
	w.screen = math.Vec2{X: float32(width), Y: float32(height)}
	w.aspect = w.screen.X / w.screen.Y
	if w.out.fb != nil {
		w.out.ensure(width, height)
	}
	logger.Named("element").Debug("warp caps",
		zap.Int32("width", width),
		zap.Int32("height", height),
		zap.Float32("aspect", w.aspect))
}

func (w *Warp) InitGL() error {
	if w.quad != nil {
		return nil
	}
	sh, err := shader.New(w.ctx, "mvp_uv.vert", "warp.frag")
	if err != nil {
		return fmt.Errorf("creating warp: %w", err)
	}
	m, err := mesh.New(w.ctx, mesh.Plane(w.aspect))
	if err != nil {
		sh.Delete()
		return fmt.Errorf("creating warp: %w", err)
	}
	w.quad = scene.NewMeshNode(w.ctx, sh, m)
	w.out.ensure(w.OutputSize())
	return nil
}

func (w *Warp) OutputSize() (int32, int32) {
	return int32(w.screen.X), int32(w.screen.Y)
}

func (w *Warp) Render(input uint32) uint32 {
	gl := w.ctx.GL()
	restore := w.out.fb.BindWithViewport()
	w.out.fb.Clear(0, 0, 0, 1)

	sh := w.quad.Shader()
	sh.Bind()
	sh.UploadMatrix(math.Ortho(-w.aspect, w.aspect, -1, 1, -1, 1), "mvp")
	sh.UploadVec2(w.screen, "screen_size")
	w.quad.SetTexture(input)
	w.quad.Draw(gl)

	restore()
	return w.out.fb.ColorTexture()
}

func (w *Warp) NavigationEvent(ev navigation.Event) error {
	if isEOS(ev) {
		return ErrEOS
	}
	return nil
}

func (w *Warp) Shaders() []*shader.Shader {
	if w.quad == nil {
		return nil
	}
	return []*shader.Shader{w.quad.Shader()}
}

func (w *Warp) Stop() {
	if w.quad != nil {
		w.quad.Destroy()
		w.quad = nil
	}
	w.out.destroy()
}

func (w *Warp) Output() *framebuffer.Framebuffer { return w.out.fb }
