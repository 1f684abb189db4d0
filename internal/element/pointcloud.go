package element

import (
	"fmt"

	"github.com/Faultbox/midgard-vr/internal/engine/camera"
	"github.com/Faultbox/midgard-vr/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/mesh"
	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
	"github.com/Faultbox/midgard-vr/internal/engine/renderer"
	"github.com/Faultbox/midgard-vr/internal/engine/scene"
	"github.com/Faultbox/midgard-vr/internal/engine/shader"
)

// Depth sensor resolution the point grid is sampled at.
const (
	PointCloudWidth  = 512
	PointCloudHeight = 424
)

// PointCloud displaces a grid of points by the red channel of the input
// depth frame and shows it through an arcball camera.
type PointCloud struct {
	ctx      *gpu.Context
	camera   *camera.Arcball
	scene    *scene.Scene
	points   *scene.Node
	renderer *renderer.Renderer
	out      output

	width, height int32
}

// NewPointCloud returns a point cloud builder rendering at 1280x720 until
// SetCaps says otherwise.
func NewPointCloud(ctx *gpu.Context) *PointCloud {
	p := &PointCloud{
		ctx:    ctx,
		camera: camera.NewArcball(camera.Config{}),
		out:    output{ctx: ctx},
		width:  1280,
		height: 720,
	}
	p.camera.SetAspect(float32(p.width) / float32(p.height))
	return p
}

// SetCaps sets the output size and the camera aspect to match.
func (p *PointCloud) SetCaps(width, height int32) {
	p.width, p.height = max(width, 1), max(height, 1)
	p.camera.SetAspect(float32(p.width) / float32(p.height))
	if p.out.fb != nil {
		p.out.ensure(p.width, p.height)
	}
}

// Camera returns the arcball camera.
func (p *PointCloud) Camera() *camera.Arcball { return p.camera }

// Scene returns the point cloud scene, nil before InitGL.
func (p *PointCloud) Scene() *scene.Scene { return p.scene }

func (p *PointCloud) InitGL() error {
	if p.scene != nil {
		return nil
	}
	p.scene = scene.New(p.ctx, p.camera, func(s *scene.Scene) error {
		sh, err := shader.New(p.ctx, "points.vert", "points.frag")
		if err != nil {
			return err
		}
		m, err := mesh.New(p.ctx, mesh.PointPlane(PointCloudWidth, PointCloudHeight))
		if err != nil {
			sh.Delete()
			return err
		}
		p.points = scene.NewMeshNode(p.ctx, sh, m)
		s.AppendNode(p.points)
		return nil
	})
	if err := p.scene.InitGL(); err != nil {
		return fmt.Errorf("creating point cloud: %w", err)
	}
	p.renderer = renderer.New(p.ctx, renderer.Config{Mode: renderer.ModeMono})
	p.out.ensure(p.width, p.height)
	return nil
}

func (p *PointCloud) OutputSize() (int32, int32) { return p.width, p.height }

func (p *PointCloud) Render(input uint32) uint32 {
	gl := p.ctx.GL()
	p.points.SetTexture(input)
	p.scene.UpdateView()

	restore := p.out.fb.BindWithViewport()
	gl.Enable(gpu.ProgramPointSize)
	p.renderer.Draw(p.scene)
	gl.Disable(gpu.ProgramPointSize)
	restore()
	return p.out.fb.ColorTexture()
}

// NavigationEvent drives the arcball. Tab toggles wireframe through the scene.
func (p *PointCloud) NavigationEvent(ev navigation.Event) error {
	if isEOS(ev) {
		return ErrEOS
	}
	if p.scene == nil {
		p.camera.NavigationEvent(ev)
		return nil
	}
	p.scene.NavigationEvent(ev)
	return nil
}

func (p *PointCloud) Shaders() []*shader.Shader {
	if p.points == nil {
		return nil
	}
	return []*shader.Shader{p.points.Shader()}
}

func (p *PointCloud) Stop() {
	if p.renderer != nil {
		p.renderer.Destroy()
		p.renderer = nil
	}
	if p.scene != nil {
		p.scene.Destroy()
		p.scene = nil
		p.points = nil
	}
	p.out.destroy()
}

func (p *PointCloud) Output() *framebuffer.Framebuffer { return p.out.fb }
