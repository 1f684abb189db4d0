package viewer

import (
	"fmt"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/mesh"
	"github.com/Faultbox/midgard-vr/internal/engine/scene"
	"github.com/Faultbox/midgard-vr/internal/engine/shader"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// presenter draws the pipeline output into the window, letterboxed to keep
// its aspect ratio.
type presenter struct {
	ctx  *gpu.Context
	quad *scene.Node
}

func newPresenter(ctx *gpu.Context) (*presenter, error) {
	sh, err := shader.New(ctx, "mvp_uv.vert", "texture_uv.frag")
	if err != nil {
		return nil, fmt.Errorf("creating presenter: %w", err)
	}
	m, err := mesh.New(ctx, mesh.Plane(1))
	if err != nil {
		sh.Delete()
		return nil, fmt.Errorf("creating presenter: %w", err)
	}
	return &presenter{ctx: ctx, quad: scene.NewMeshNode(ctx, sh, m)}, nil
}

// draw shows tex, sized srcW x srcH, in the default framebuffer of size
// dstW x dstH. Must run on the GL thread.
func (p *presenter) draw(tex uint32, srcW, srcH, dstW, dstH int32) {
	gl := p.ctx.GL()
	gl.BindFramebuffer(gpu.Framebuffer, 0)
	gl.Viewport(0, 0, dstW, dstH)
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gpu.ColorBufferBit | gpu.DepthBufferBit)

	gl.Viewport(letterbox(srcW, srcH, dstW, dstH))
	sh := p.quad.Shader()
	sh.Bind()
	sh.UploadMatrix(math.Identity(), "mvp")
	p.quad.SetTexture(tex)
	p.quad.Draw(gl)
}

func (p *presenter) destroy() {
	p.quad.Destroy()
}

// letterbox fits a srcW x srcH rectangle centered into dstW x dstH.
func letterbox(srcW, srcH, dstW, dstH int32) (x, y, w, h int32) {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return 0, 0, max(dstW, 0), max(dstH, 0)
	}
	// Compare srcW/srcH against dstW/dstH without rounding.
	if int64(srcW)*int64(dstH) >= int64(srcH)*int64(dstW) {
		w = dstW
		h = int32(int64(dstW) * int64(srcH) / int64(srcW))
	} else {
		h = dstH
		w = int32(int64(dstH) * int64(srcW) / int64(srcH))
	}
	return (dstW - w) / 2, (dstH - h) / 2, w, h
}
