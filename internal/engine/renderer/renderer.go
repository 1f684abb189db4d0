// Package renderer draws scenes either directly or as a side-by-side stereo
// pair rendered through one offscreen framebuffer per eye.
package renderer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/camera"
	"github.com/Faultbox/midgard-vr/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/mesh"
	"github.com/Faultbox/midgard-vr/internal/engine/scene"
	"github.com/Faultbox/midgard-vr/internal/engine/shader"
	"github.com/Faultbox/midgard-vr/internal/logger"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// Mode selects the draw path.
type Mode string

const (
	// ModeStereo renders each eye offscreen and composites them side by side.
	ModeStereo Mode = "stereo"
	// ModeMono draws the scene straight into the bound framebuffer.
	ModeMono Mode = "mono"
)

// Config holds renderer configuration.
type Config struct {
	Mode Mode
	// EyeWidth and EyeHeight size the eye targets when no HMD is open.
	EyeWidth   int32
	EyeHeight  int32
	ClearColor [4]float32
}

// DefaultConfig returns a stereo configuration with 960x1080 eyes.
func DefaultConfig() Config {
	return Config{
		Mode:      ModeStereo,
		EyeWidth:  960,
		EyeHeight: 1080,
	}
}

// Renderer draws a scene in mono or stereo.
type Renderer struct {
	ctx    *gpu.Context
	config Config

	camera    camera.StereoCamera
	left      *framebuffer.Framebuffer
	right     *framebuffer.Framebuffer
	composite *shader.Shader
	quad      *mesh.Mesh

	eyeWidth  int32
	eyeHeight int32
	eyeAspect float32
}

// New creates a renderer. Stereo resources are created by InitStereo.
func New(ctx *gpu.Context, cfg Config) *Renderer {
	if cfg.Mode == "" {
		cfg.Mode = ModeStereo
	}
	return &Renderer{ctx: ctx.Ref(), config: cfg}
}

// Mode returns the configured draw path.
func (r *Renderer) Mode() Mode { return r.config.Mode }

// InitStereo creates the eye framebuffers, the composite shader and the
// quad the eyes are composited onto. Eye size comes from the camera's HMD,
// or from the configuration when no device is open. It blocks on the GL
// thread and does nothing once initialized.
func (r *Renderer) InitStereo(cam camera.StereoCamera) error {
	if r.composite != nil {
		return nil
	}
	r.camera = cam

	r.eyeWidth, r.eyeHeight = r.config.EyeWidth, r.config.EyeHeight
	fromDevice := false
	if h := cam.HMD(); h != nil && h.IsOpen() {
		r.eyeWidth, r.eyeHeight = h.EyeSize()
		fromDevice = true
	}
	r.eyeWidth, r.eyeHeight = max(r.eyeWidth, 1), max(r.eyeHeight, 1)
	r.eyeAspect = float32(r.eyeWidth) / float32(r.eyeHeight)

	// Without a device the camera projection has no eye geometry of its own.
	if a, ok := cam.(interface{ SetAspect(float32) }); ok && !fromDevice {
		a.SetAspect(r.eyeAspect)
	}

	r.left = framebuffer.New(r.ctx, r.eyeWidth, r.eyeHeight)
	r.right = framebuffer.New(r.ctx, r.eyeWidth, r.eyeHeight)

	var err error
	r.composite, err = shader.New(r.ctx, "mvp_uv.vert", "texture_uv.frag")
	if err != nil {
		r.releaseStereo()
		return fmt.Errorf("creating composite shader: %w", err)
	}

	r.quad, err = mesh.New(r.ctx, mesh.Plane(r.eyeAspect))
	if err != nil {
		r.releaseStereo()
		return fmt.Errorf("creating composite quad: %w", err)
	}
	program := r.composite.Program()
	r.ctx.Run(func(gl gpu.GL) {
		r.quad.BindAttributes(gl, program)
	})

	logger.Named("renderer").Info("stereo initialized",
		zap.Int32("eye_width", r.eyeWidth),
		zap.Int32("eye_height", r.eyeHeight),
		zap.Float32("eye_aspect", r.eyeAspect))
	return nil
}

// EyeSize returns the size of one eye target.
func (r *Renderer) EyeSize() (int32, int32) { return r.eyeWidth, r.eyeHeight }

// OutputSize returns the size of the composited stereo frame.
func (r *Renderer) OutputSize() (int32, int32) { return 2 * r.eyeWidth, r.eyeHeight }

// EyeTextures returns the color textures of the left and right eye targets.
func (r *Renderer) EyeTextures() (uint32, uint32) {
	if r.left == nil {
		return 0, 0
	}
	return r.left.ColorTexture(), r.right.ColorTexture()
}

// Draw renders s through the configured path. Stereo falls back to mono
// until InitStereo has succeeded. Must run on the GL thread.
func (r *Renderer) Draw(s *scene.Scene) {
	if r.config.Mode == ModeStereo && r.composite != nil {
		r.DrawStereo(s)
		return
	}
	r.DrawMono(s)
}

// DrawMono clears the bound framebuffer and draws s with the camera MVP.
func (r *Renderer) DrawMono(s *scene.Scene) {
	gl := r.ctx.GL()
	r.clear(gl)
	gl.Enable(gpu.DepthTest)
	s.Draw()
	gl.Disable(gpu.DepthTest)
}

// DrawStereo draws s once per eye into the eye framebuffers, then composites
// both eye textures side by side into the framebuffer that was bound on
// entry. Must run on the GL thread.
func (r *Renderer) DrawStereo(s *scene.Scene) {
	gl := r.ctx.GL()
	target := framebuffer.CurrentBinding(gl)

	gl.Enable(gpu.DepthTest)
	r.drawEye(r.left, r.camera.LeftVP(), s)
	r.drawEye(r.right, r.camera.RightVP(), s)
	gl.Disable(gpu.DepthTest)

	gl.BindFramebuffer(gpu.Framebuffer, target)
	r.clear(gl)

	r.composite.Bind()
	r.composite.UploadMatrix(math.Ortho(-r.eyeAspect, r.eyeAspect, -1, 1, -1, 1), "mvp")
	r.composite.UploadInt(0, scene.TextureUniform)
	gl.ActiveTexture(gpu.Texture0)

	gl.Viewport(0, 0, r.eyeWidth, r.eyeHeight)
	gl.BindTexture(gpu.Texture2D, r.left.ColorTexture())
	r.quad.Draw()

	gl.Viewport(r.eyeWidth, 0, r.eyeWidth, r.eyeHeight)
	gl.BindTexture(gpu.Texture2D, r.right.ColorTexture())
	r.quad.Draw()

	gl.BindTexture(gpu.Texture2D, 0)
}

func (r *Renderer) drawEye(fb *framebuffer.Framebuffer, vp math.Mat4, s *scene.Scene) {
	fb.Bind()
	c := r.config.ClearColor
	fb.Clear(c[0], c[1], c[2], c[3])
	s.DrawNodes(vp)
}

func (r *Renderer) clear(gl gpu.GL) {
	c := r.config.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gpu.ColorBufferBit | gpu.DepthBufferBit)
}

// Destroy releases the stereo resources. It blocks on the GL thread.
func (r *Renderer) Destroy() {
	r.releaseStereo()
	if r.ctx != nil {
		r.ctx.Unref()
		r.ctx = nil
	}
}

// releaseStereo frees whatever InitStereo allocated so a later call starts
// from scratch.
func (r *Renderer) releaseStereo() {
	if r.quad != nil {
		r.quad.Destroy()
		r.quad = nil
	}
	if r.composite != nil {
		r.composite.Delete()
		r.composite = nil
	}
	if r.left != nil {
		r.left.Destroy()
		r.right.Destroy()
		r.left, r.right = nil, nil
	}
}
