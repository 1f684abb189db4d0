package mesh

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/logger"
)

type buffer struct {
	name string
	size int32
	vbo  uint32
}

// Mesh is geometry resident on the GPU: a vertex array, one buffer per
// attribute and a shared index buffer. It owns those handles and releases
// each of them exactly once in Destroy.
type Mesh struct {
	ctx *gpu.Context

	vao     uint32
	ibo     uint32
	buffers []buffer

	mode        uint32
	indexCount  int32
	vertexCount int32
}

// New uploads g. It blocks until the GL thread has created the buffers.
func New(ctx *gpu.Context, g *Geometry) (*Mesh, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("creating mesh: %w", err)
	}

	m := &Mesh{
		ctx:         ctx,
		mode:        g.Mode,
		indexCount:  int32(len(g.Indices)),
		vertexCount: int32(g.VertexCount()),
	}

	ctx.Run(func(gl gpu.GL) {
		m.vao = gl.GenVertexArray()
		gl.BindVertexArray(m.vao)

		for _, a := range g.Attributes {
			vbo := gl.GenBuffer()
			gl.BindBuffer(gpu.ArrayBuffer, vbo)
			gl.BufferFloat32(gpu.ArrayBuffer, a.Data)
			if loc, ok := DefaultLocations[a.Name]; ok {
				gl.EnableVertexAttribArray(loc)
				gl.VertexAttribPointer(loc, a.Size)
			}
			m.buffers = append(m.buffers, buffer{name: a.Name, size: a.Size, vbo: vbo})
		}

		if len(g.Indices) > 0 {
			m.ibo = gl.GenBuffer()
			gl.BindBuffer(gpu.ElementArrayBuffer, m.ibo)
			gl.BufferUint32(gpu.ElementArrayBuffer, g.Indices)
		}

		gl.BindVertexArray(0)
		gl.BindBuffer(gpu.ArrayBuffer, 0)
	})
	ctx.Ref()

	logger.Named("mesh").Debug("mesh uploaded",
		zap.Uint32("vao", m.vao),
		zap.String("mode", ModeName(m.mode)),
		zap.Int32("vertices", m.vertexCount),
		zap.Int32("indices", m.indexCount))
	return m, nil
}

// BindAttributes points the mesh attributes at the locations a program
// reports for them. Attributes the program does not use are left disabled.
// Must run on the GL thread.
func (m *Mesh) BindAttributes(gl gpu.GL, program uint32) {
	gl.BindVertexArray(m.vao)
	for _, b := range m.buffers {
		loc := gl.GetAttribLocation(program, b.name)
		if loc < 0 {
			continue
		}
		gl.BindBuffer(gpu.ArrayBuffer, b.vbo)
		gl.EnableVertexAttribArray(uint32(loc))
		gl.VertexAttribPointer(uint32(loc), b.size)
	}
	if m.ibo != 0 {
		gl.BindBuffer(gpu.ElementArrayBuffer, m.ibo)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gpu.ArrayBuffer, 0)
}

// Draw issues the draw call in the mesh's own mode. Must run on the GL thread.
func (m *Mesh) Draw() {
	m.draw(m.mode)
}

// DrawWireframe draws the index list as line pairs. Must run on the GL thread.
func (m *Mesh) DrawWireframe() {
	m.draw(gpu.Lines)
}

func (m *Mesh) draw(mode uint32) {
	if m.vao == 0 {
		return
	}
	gl := m.ctx.GL()
	gl.BindVertexArray(m.vao)
	if m.ibo != 0 {
		gl.DrawElements(mode, m.indexCount)
	} else {
		gl.DrawArrays(mode, 0, m.vertexCount)
	}
	gl.BindVertexArray(0)
}

// Mode returns the primitive draw mode.
func (m *Mesh) Mode() uint32 { return m.mode }

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() int32 { return m.indexCount }

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int32 { return m.vertexCount }

// VAO returns the vertex array name, 0 after Destroy.
func (m *Mesh) VAO() uint32 { return m.vao }

// Destroy releases the GPU buffers. It blocks until the GL thread is done
// and is safe to call more than once.
func (m *Mesh) Destroy() {
	if m.vao == 0 {
		return
	}
	vao, ibo, buffers := m.vao, m.ibo, m.buffers
	m.ctx.Run(func(gl gpu.GL) {
		for _, b := range buffers {
			gl.DeleteBuffer(b.vbo)
		}
		if ibo != 0 {
			gl.DeleteBuffer(ibo)
		}
		gl.DeleteVertexArray(vao)
	})
	m.vao, m.ibo, m.buffers = 0, 0, nil
	m.ctx.Unref()
}
