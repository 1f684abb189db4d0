// Package scene holds the nodes drawn each frame and the camera viewing them.
package scene

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/camera"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/navigation"
	"github.com/Faultbox/midgard-vr/internal/logger"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// InitFunc builds the scene's GL resources. It runs off the GL thread, so it
// may create meshes and shaders.
type InitFunc func(s *Scene) error

// Scene is an ordered list of nodes and the camera they are drawn with.
type Scene struct {
	ctx    *gpu.Context
	camera camera.Camera
	nodes  []*Node

	initFn      InitFunc
	initialized bool
	wireframe   bool
}

// New returns an empty scene viewed through cam. initFn may be nil.
func New(ctx *gpu.Context, cam camera.Camera, initFn InitFunc) *Scene {
	return &Scene{
		ctx:    ctx.Ref(),
		camera: cam,
		initFn: initFn,
	}
}

// InitGL runs the init function once. Later calls return nil without doing
// anything.
func (s *Scene) InitGL() error {
	if s.initialized {
		return nil
	}
	s.initialized = true

	if s.initFn == nil {
		return nil
	}
	if err := s.initFn(s); err != nil {
		logger.Named("scene").Error("initializing scene", zap.Error(err))
		return fmt.Errorf("initializing scene: %w", err)
	}
	logger.Named("scene").Debug("scene initialized", zap.Int("nodes", len(s.nodes)))
	return nil
}

// Initialized reports whether InitGL has run.
func (s *Scene) Initialized() bool { return s.initialized }

// AppendNode adds n after the existing nodes. Nodes draw in insertion order.
func (s *Scene) AppendNode(n *Node) {
	s.nodes = append(s.nodes, n)
}

// Nodes returns the nodes in draw order.
func (s *Scene) Nodes() []*Node { return s.nodes }

// Camera returns the scene camera.
func (s *Scene) Camera() camera.Camera { return s.camera }

// Wireframe reports whether nodes are drawn as lines.
func (s *Scene) Wireframe() bool { return s.wireframe }

// SetWireframe switches wireframe drawing.
func (s *Scene) SetWireframe(on bool) { s.wireframe = on }

// UpdateView recomputes the camera matrices.
func (s *Scene) UpdateView() {
	s.camera.UpdateView()
}

// Draw draws every node with the camera's MVP. Must run on the GL thread.
func (s *Scene) Draw() {
	s.DrawNodes(s.camera.MVP())
}

// DrawNodes draws every node with mvp uploaded as the "mvp" uniform. Must run
// on the GL thread.
func (s *Scene) DrawNodes(mvp math.Mat4) {
	gl := s.ctx.GL()
	for _, n := range s.nodes {
		n.shader.Bind()
		n.shader.UploadMatrix(mvp, "mvp")
		if s.wireframe {
			n.DrawWireframe(gl)
		} else {
			n.Draw(gl)
		}
	}
}

// NavigationEvent forwards ev to the camera, then handles the Tab key, which
// toggles wireframe drawing.
func (s *Scene) NavigationEvent(ev navigation.Event) {
	s.camera.NavigationEvent(ev)

	if ev.Type == navigation.EventKeyPress && ev.Key == navigation.KeyTab {
		s.wireframe = !s.wireframe
		logger.Named("scene").Debug("wireframe toggled", zap.Bool("wireframe", s.wireframe))
	}
}

// Destroy releases every node. It blocks on the GL thread.
func (s *Scene) Destroy() {
	for _, n := range s.nodes {
		n.Destroy()
	}
	s.nodes = nil
	if s.ctx != nil {
		s.ctx.Unref()
		s.ctx = nil
	}
}
