package source

import (
	"fmt"
	"time"

	"github.com/Faultbox/midgard-vr/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/mesh"
	"github.com/Faultbox/midgard-vr/internal/engine/shader"
)

// Mandelbrot renders an animated fractal into its own framebuffer.
type Mandelbrot struct {
	ctx    *gpu.Context
	fb     *framebuffer.Framebuffer
	shader *shader.Shader
	quad   *mesh.Mesh
	width  int
	height int
}

// NewMandelbrot creates a width x height fractal source.
func NewMandelbrot(ctx *gpu.Context, width, height int) (*Mandelbrot, error) {
	sh, err := shader.New(ctx, "fullscreen.vert", "mandelbrot.frag")
	if err != nil {
		return nil, fmt.Errorf("creating mandelbrot source: %w", err)
	}
	quad, err := mesh.New(ctx, mesh.Plane(1))
	if err != nil {
		sh.Delete()
		return nil, fmt.Errorf("creating mandelbrot source: %w", err)
	}
	ctx.Run(func(gl gpu.GL) {
		quad.BindAttributes(gl, sh.Program())
	})

	return &Mandelbrot{
		ctx:    ctx,
		fb:     framebuffer.New(ctx, int32(width), int32(height)),
		shader: sh,
		quad:   quad,
		width:  width,
		height: height,
	}, nil
}

// Frame renders the fractal at time t and returns its texture.
func (m *Mandelbrot) Frame(t time.Duration) uint32 {
	restore := m.fb.BindWithViewport()
	defer restore()

	m.fb.Clear(0, 0, 0, 1)
	m.shader.Bind()
	m.shader.UploadFloat(float32(t.Seconds()), "time")
	m.shader.UploadFloat(float32(m.width)/float32(m.height), "aspect_ratio")
	m.quad.Draw()
	return m.fb.ColorTexture()
}

func (m *Mandelbrot) Size() (int, int) { return m.width, m.height }

func (m *Mandelbrot) Destroy() {
	m.quad.Destroy()
	m.shader.Delete()
	m.fb.Destroy()
}
