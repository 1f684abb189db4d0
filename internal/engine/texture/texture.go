package texture

import (
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/logger"
)

// Texture is an RGBA 2D texture.
type Texture struct {
	ctx    *gpu.Context
	id     uint32
	width  int32
	height int32
}

// New uploads img. It blocks until the GL thread has created the texture.
func New(ctx *gpu.Context, img *image.RGBA) *Texture {
	t := &Texture{ctx: ctx}
	ctx.Run(func(gl gpu.GL) {
		t.id = gl.GenTexture()
		gl.BindTexture(gpu.Texture2D, t.id)
		gl.TexParameteri(gpu.Texture2D, gpu.TextureMinFilter, gpu.Linear)
		gl.TexParameteri(gpu.Texture2D, gpu.TextureMagFilter, gpu.Linear)
		gl.TexParameteri(gpu.Texture2D, gpu.TextureWrapS, gpu.Repeat)
		gl.TexParameteri(gpu.Texture2D, gpu.TextureWrapT, gpu.ClampToEdge)
		t.upload(gl, img)
		gl.BindTexture(gpu.Texture2D, 0)
	})
	ctx.Ref()

	logger.Named("texture").Debug("texture uploaded",
		zap.Uint32("id", t.id),
		zap.Int32("width", t.width),
		zap.Int32("height", t.height))
	return t
}

func (t *Texture) upload(gl gpu.GL, img *image.RGBA) {
	b := img.Bounds()
	t.width, t.height = int32(b.Dx()), int32(b.Dy())
	gl.TexImage2D(gpu.Texture2D, gpu.RGBA8, t.width, t.height, gpu.RGBA, img.Pix)
}

// Update replaces the texture contents with img. Must run on the GL thread.
func (t *Texture) Update(img *image.RGBA) {
	gl := t.ctx.GL()
	gl.BindTexture(gpu.Texture2D, t.id)
	t.upload(gl, img)
	gl.BindTexture(gpu.Texture2D, 0)
}

// ID returns the GL texture name, 0 after Destroy.
func (t *Texture) ID() uint32 { return t.id }

// Size returns the texture dimensions.
func (t *Texture) Size() (int32, int32) { return t.width, t.height }

// Destroy deletes the texture. It blocks on the GL thread and is safe to
// call twice.
func (t *Texture) Destroy() {
	if t.id == 0 {
		return
	}
	id := t.id
	t.ctx.Run(func(gl gpu.GL) {
		gl.DeleteTexture(id)
	})
	t.id = 0
	t.ctx.Unref()
}
