package scene

import (
	"fmt"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/mesh"
	"github.com/Faultbox/midgard-vr/internal/engine/shader"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// TextureUniform is the sampler uniform textured nodes read from.
const TextureUniform = "tex"

// Node is one drawable: a shader and the meshes drawn with it, plus an
// optional texture bound to unit 0.
type Node struct {
	shader  *shader.Shader
	meshes  []*mesh.Mesh
	texture uint32
}

// NewMeshNode groups meshes under sh and binds their attributes to it. It
// blocks until the GL thread is done. The node takes ownership of sh and
// the meshes.
func NewMeshNode(ctx *gpu.Context, sh *shader.Shader, meshes ...*mesh.Mesh) *Node {
	n := &Node{shader: sh, meshes: meshes}
	ctx.Run(func(gl gpu.GL) {
		for _, m := range meshes {
			m.BindAttributes(gl, sh.Program())
		}
	})
	return n
}

// NewAxesNode returns a node drawing the X, Y and Z unit axes in red, green
// and blue.
func NewAxesNode(ctx *gpu.Context) (*Node, error) {
	sh, err := shader.New(ctx, "mvp_color.vert", "color.frag")
	if err != nil {
		return nil, fmt.Errorf("creating axes shader: %w", err)
	}

	axes := []math.Vec3{{X: 1}, {Y: 1}, {Z: 1}}
	meshes := make([]*mesh.Mesh, 0, len(axes))
	for _, axis := range axes {
		m, err := mesh.New(ctx, mesh.Line(math.Vec3{}, axis, axis))
		if err != nil {
			for _, done := range meshes {
				done.Destroy()
			}
			sh.Delete()
			return nil, fmt.Errorf("creating axis mesh: %w", err)
		}
		meshes = append(meshes, m)
	}
	return NewMeshNode(ctx, sh, meshes...), nil
}

// SetTexture sets the texture drawn on the node's meshes, 0 for none.
func (n *Node) SetTexture(tex uint32) { n.texture = tex }

// Texture returns the node's texture.
func (n *Node) Texture() uint32 { return n.texture }

// Shader returns the node's shader.
func (n *Node) Shader() *shader.Shader { return n.shader }

// Meshes returns the node's meshes in draw order.
func (n *Node) Meshes() []*mesh.Mesh { return n.meshes }

func (n *Node) bindTexture(gl gpu.GL) {
	if n.texture == 0 {
		return
	}
	gl.ActiveTexture(gpu.Texture0)
	gl.BindTexture(gpu.Texture2D, n.texture)
	n.shader.UploadInt(0, TextureUniform)
}

// Draw draws every mesh in its own mode. The shader must be bound. Must run
// on the GL thread.
func (n *Node) Draw(gl gpu.GL) {
	n.bindTexture(gl)
	for _, m := range n.meshes {
		m.Draw()
	}
}

// DrawWireframe draws every mesh as lines. Must run on the GL thread.
func (n *Node) DrawWireframe(gl gpu.GL) {
	n.bindTexture(gl)
	for _, m := range n.meshes {
		m.DrawWireframe()
	}
}

// Destroy releases the meshes and the shader. It blocks on the GL thread.
func (n *Node) Destroy() {
	for _, m := range n.meshes {
		m.Destroy()
	}
	n.meshes = nil
	if n.shader != nil {
		n.shader.Delete()
	}
}
