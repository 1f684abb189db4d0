package element

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/camera"
	"github.com/Faultbox/midgard-vr/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/hmd"
	"github.com/Faultbox/midgard-vr/internal/engine/mesh"
	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
	"github.com/Faultbox/midgard-vr/internal/engine/renderer"
	"github.com/Faultbox/midgard-vr/internal/engine/scene"
	"github.com/Faultbox/midgard-vr/internal/engine/shader"
	"github.com/Faultbox/midgard-vr/internal/logger"
)

// Compositor projects the input frame onto the inside of a sphere and renders
// it for both eyes of the HMD, side by side.
type Compositor struct {
	ctx  *gpu.Context
	opts Options

	camera   camera.Camera
	scene    *scene.Scene
	sphere   *scene.Node
	renderer *renderer.Renderer
	out      output

	inWidth, inHeight int32
}

// NewCompositor returns a compositor. GL resources are created by InitGL.
func NewCompositor(ctx *gpu.Context, opts Options) *Compositor {
	def := DefaultOptions()
	if opts.SphereRadius <= 0 {
		opts.SphereRadius = def.SphereRadius
	}
	if opts.SphereStacks <= 0 {
		opts.SphereStacks = def.SphereStacks
	}
	if opts.SphereSlices <= 0 {
		opts.SphereSlices = def.SphereSlices
	}
	if opts.HMD == nil {
		opts.HMD = hmd.New(nil)
	}
	c := &Compositor{ctx: ctx, opts: opts, out: output{ctx: ctx}}
	c.camera = opts.Camera
	if c.camera == nil {
		c.camera = camera.NewHMD(camera.Config{}, opts.HMD)
	}
	return c
}

// SetCaps records the input frame size. The output size follows the eyes.
func (c *Compositor) SetCaps(width, height int32) {
	c.inWidth, c.inHeight = width, height
	logger.Named("element").Debug("compositor caps",
		zap.Int32("width", width),
		zap.Int32("height", height))
}

// Camera returns the scene camera.
func (c *Compositor) Camera() camera.Camera { return c.camera }

// Scene returns the compositor scene, nil before InitGL.
func (c *Compositor) Scene() *scene.Scene { return c.scene }

func (c *Compositor) InitGL() error {
	if c.scene != nil {
		return nil
	}
	c.scene = scene.New(c.ctx, c.camera, c.initScene)
	if err := c.scene.InitGL(); err != nil {
		return fmt.Errorf("creating compositor: %w", err)
	}

	cfg := c.opts.Renderer
	stereo, ok := c.camera.(camera.StereoCamera)
	if cfg.Mode != renderer.ModeMono && !ok {
		logger.Named("element").Warn("camera has no stereo pair, rendering mono")
		cfg.Mode = renderer.ModeMono
	}
	c.renderer = renderer.New(c.ctx, cfg)
	if c.renderer.Mode() == renderer.ModeStereo {
		if err := c.renderer.InitStereo(stereo); err != nil {
			return fmt.Errorf("creating compositor: %w", err)
		}
	}
	w, h := c.OutputSize()
	if a, ok := c.camera.(interface{ SetAspect(float32) }); ok && c.renderer.Mode() == renderer.ModeMono {
		a.SetAspect(float32(w) / float32(h))
	}
	c.out.ensure(w, h)
	return nil
}

func (c *Compositor) initScene(s *scene.Scene) error {
	sh, err := shader.New(c.ctx, "mvp_uv.vert", "texture_uv.frag")
	if err != nil {
		return err
	}

	g := mesh.Sphere(c.opts.SphereRadius, c.opts.SphereStacks, c.opts.SphereSlices)
	if c.opts.MeshPath != "" {
		if g, err = mesh.Import(c.opts.MeshPath); err != nil {
			sh.Delete()
			return err
		}
	}
	m, err := mesh.New(c.ctx, g)
	if err != nil {
		sh.Delete()
		return err
	}
	c.sphere = scene.NewMeshNode(c.ctx, sh, m)
	s.AppendNode(c.sphere)

	if c.opts.Axes {
		axes, err := scene.NewAxesNode(c.ctx)
		if err != nil {
			return err
		}
		s.AppendNode(axes)
	}
	return nil
}

// OutputSize is two eyes wide in stereo, the eye size in mono.
func (c *Compositor) OutputSize() (int32, int32) {
	if c.renderer != nil && c.renderer.Mode() == renderer.ModeStereo {
		return c.renderer.OutputSize()
	}
	if h := c.opts.HMD; h.IsOpen() {
		return h.EyeSize()
	}
	cfg := c.opts.Renderer
	return max(cfg.EyeWidth, 1), max(cfg.EyeHeight, 1)
}

func (c *Compositor) Render(input uint32) uint32 {
	c.sphere.SetTexture(input)
	c.scene.UpdateView()

	restore := c.out.fb.BindWithViewport()
	c.renderer.Draw(c.scene)
	restore()
	return c.out.fb.ColorTexture()
}

// NavigationEvent forwards ev to the scene and its HMD camera.
func (c *Compositor) NavigationEvent(ev navigation.Event) error {
	if isEOS(ev) {
		return ErrEOS
	}
	if c.scene == nil {
		c.camera.NavigationEvent(ev)
		return nil
	}
	c.scene.NavigationEvent(ev)
	return nil
}

func (c *Compositor) Shaders() []*shader.Shader {
	if c.scene == nil {
		return nil
	}
	var out []*shader.Shader
	for _, n := range c.scene.Nodes() {
		out = append(out, n.Shader())
	}
	return out
}

func (c *Compositor) Stop() {
	if c.renderer != nil {
		c.renderer.Destroy()
		c.renderer = nil
	}
	if c.scene != nil {
		c.scene.Destroy()
		c.scene = nil
	}
	c.out.destroy()
}

func (c *Compositor) Output() *framebuffer.Framebuffer { return c.out.fb }
