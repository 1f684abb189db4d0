// Package framebuffer provides off-screen color targets for per-eye rendering.
package framebuffer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/logger"
)

// ErrIncomplete reports a framebuffer the driver refused to render into.
var ErrIncomplete = errors.New("framebuffer incomplete")

// Framebuffer manages an offscreen render target with a color texture and a
// depth renderbuffer.
type Framebuffer struct {
	ctx          *gpu.Context
	fbo          uint32
	colorTexture uint32
	depthRBO     uint32
	width        int32
	height       int32
	status       uint32
}

// New creates a framebuffer of the given size. It blocks until the GL thread
// has created it. An incomplete framebuffer is logged and still returned so
// rendering can continue; Err reports the condition.
func New(ctx *gpu.Context, width, height int32) *Framebuffer {
	fb := &Framebuffer{
		ctx:    ctx,
		width:  max(width, 1),
		height: max(height, 1),
	}
	ctx.Run(fb.create)
	ctx.Ref()

	if err := fb.Err(); err != nil {
		logger.Named("renderer").Error("creating framebuffer",
			zap.Int32("width", fb.width),
			zap.Int32("height", fb.height),
			zap.Error(err))
	}
	return fb
}

func (fb *Framebuffer) create(gl gpu.GL) {
	fb.fbo = gl.GenFramebuffer()
	gl.BindFramebuffer(gpu.Framebuffer, fb.fbo)

	fb.colorTexture = gl.GenTexture()
	gl.BindTexture(gpu.Texture2D, fb.colorTexture)
	gl.TexImage2D(gpu.Texture2D, gpu.RGBA8, fb.width, fb.height, gpu.RGBA, nil)
	gl.TexParameteri(gpu.Texture2D, gpu.TextureMinFilter, gpu.Linear)
	gl.TexParameteri(gpu.Texture2D, gpu.TextureMagFilter, gpu.Linear)
	gl.TexParameteri(gpu.Texture2D, gpu.TextureWrapS, gpu.ClampToEdge)
	gl.TexParameteri(gpu.Texture2D, gpu.TextureWrapT, gpu.ClampToEdge)
	gl.FramebufferTexture2D(gpu.Framebuffer, gpu.ColorAttachment0, gpu.Texture2D, fb.colorTexture)

	fb.depthRBO = gl.GenRenderbuffer()
	gl.BindRenderbuffer(gpu.Renderbuffer, fb.depthRBO)
	gl.RenderbufferStorage(gpu.Renderbuffer, gpu.DepthComponent24, fb.width, fb.height)
	gl.FramebufferRenderbuffer(gpu.Framebuffer, gpu.DepthAttachment, gpu.Renderbuffer, fb.depthRBO)

	fb.status = gl.CheckFramebufferStatus(gpu.Framebuffer)

	gl.BindTexture(gpu.Texture2D, 0)
	gl.BindRenderbuffer(gpu.Renderbuffer, 0)
	gl.BindFramebuffer(gpu.Framebuffer, 0)
}

// Err returns ErrIncomplete with the driver status when the framebuffer is
// not complete, nil otherwise.
func (fb *Framebuffer) Err() error {
	if fb.status != gpu.FramebufferComplete {
		return fmt.Errorf("%w: status 0x%x", ErrIncomplete, fb.status)
	}
	return nil
}

// CurrentBinding returns the framebuffer currently bound on the GL thread.
func CurrentBinding(gl gpu.GL) uint32 {
	return gl.CurrentFramebuffer()
}

// Bind makes this framebuffer the render target and sets the viewport to its size.
func (fb *Framebuffer) Bind() {
	gl := fb.ctx.GL()
	gl.BindFramebuffer(gpu.Framebuffer, fb.fbo)
	gl.Viewport(0, 0, fb.width, fb.height)
}

// Unbind restores the default framebuffer.
func (fb *Framebuffer) Unbind() {
	fb.ctx.GL().BindFramebuffer(gpu.Framebuffer, 0)
}

// BindWithViewport binds the framebuffer and returns a function restoring
// the framebuffer that was bound before.
func (fb *Framebuffer) BindWithViewport() (restore func()) {
	gl := fb.ctx.GL()
	prev := gl.CurrentFramebuffer()
	fb.Bind()
	return func() {
		gl.BindFramebuffer(gpu.Framebuffer, prev)
	}
}

// Clear clears color and depth with the given color.
func (fb *Framebuffer) Clear(r, g, b, a float32) {
	gl := fb.ctx.GL()
	gl.ClearColor(r, g, b, a)
	gl.Clear(gpu.ColorBufferBit | gpu.DepthBufferBit)
}

// ColorTexture returns the color attachment texture.
func (fb *Framebuffer) ColorTexture() uint32 {
	return fb.colorTexture
}

// FBO returns the framebuffer object name.
func (fb *Framebuffer) FBO() uint32 {
	return fb.fbo
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize reallocates the attachments when the size changes. Must run on the GL thread.
func (fb *Framebuffer) Resize(width, height int32) {
	width, height = max(width, 1), max(height, 1)
	if width == fb.width && height == fb.height {
		return
	}
	fb.width, fb.height = width, height

	gl := fb.ctx.GL()
	gl.BindTexture(gpu.Texture2D, fb.colorTexture)
	gl.TexImage2D(gpu.Texture2D, gpu.RGBA8, fb.width, fb.height, gpu.RGBA, nil)
	gl.BindTexture(gpu.Texture2D, 0)

	gl.BindRenderbuffer(gpu.Renderbuffer, fb.depthRBO)
	gl.RenderbufferStorage(gpu.Renderbuffer, gpu.DepthComponent24, fb.width, fb.height)
	gl.BindRenderbuffer(gpu.Renderbuffer, 0)
}

// ReadPixels returns the color attachment as bottom-up RGBA rows. Must run
// on the GL thread.
func (fb *Framebuffer) ReadPixels() []byte {
	gl := fb.ctx.GL()
	pixels := make([]byte, int(fb.width)*int(fb.height)*4)

	prev := gl.CurrentFramebuffer()
	gl.BindFramebuffer(gpu.Framebuffer, fb.fbo)
	gl.ReadPixels(0, 0, fb.width, fb.height, pixels)
	gl.BindFramebuffer(gpu.Framebuffer, prev)

	return pixels
}

// Destroy releases the GL objects. It blocks until the GL thread is done and
// is safe to call twice.
func (fb *Framebuffer) Destroy() {
	if fb.fbo == 0 && fb.colorTexture == 0 && fb.depthRBO == 0 {
		return
	}
	fbo, tex, rbo := fb.fbo, fb.colorTexture, fb.depthRBO
	fb.ctx.Run(func(gl gpu.GL) {
		if fbo != 0 {
			gl.DeleteFramebuffer(fbo)
		}
		if tex != 0 {
			gl.DeleteTexture(tex)
		}
		if rbo != 0 {
			gl.DeleteRenderbuffer(rbo)
		}
	})
	fb.fbo, fb.colorTexture, fb.depthRBO = 0, 0, 0
	fb.ctx.Unref()
}
