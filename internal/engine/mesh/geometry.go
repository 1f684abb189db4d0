// Package mesh builds procedural geometry and uploads it to vertex arrays.
package mesh

import (
	"fmt"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
)

// Standard attribute names. Shaders bind them at the matching locations.
const (
	AttrPosition = "position"
	AttrUV       = "uv"
	AttrColor    = "color"
)

// DefaultLocations maps attribute names to the layout locations used by the
// bundled shaders.
var DefaultLocations = map[string]uint32{
	AttrPosition: 0,
	AttrUV:       1,
	AttrColor:    2,
}

// Attribute is one named per-vertex buffer.
type Attribute struct {
	Name string
	Size int32 // components per vertex
	Data []float32
}

// Geometry is the CPU side of a mesh.
type Geometry struct {
	Attributes []Attribute
	Indices    []uint32
	Mode       uint32
}

// Attribute returns the named attribute or nil.
func (g *Geometry) Attribute(name string) *Attribute {
	for i := range g.Attributes {
		if g.Attributes[i].Name == name {
			return &g.Attributes[i]
		}
	}
	return nil
}

// VertexCount returns the number of vertices described by the position attribute.
func (g *Geometry) VertexCount() int {
	pos := g.Attribute(AttrPosition)
	if pos == nil || pos.Size == 0 {
		return 0
	}
	return len(pos.Data) / int(pos.Size)
}

// Validate checks that every attribute covers the same number of vertices
// and that indices stay in range.
func (g *Geometry) Validate() error {
	pos := g.Attribute(AttrPosition)
	if pos == nil {
		return fmt.Errorf("geometry has no %s attribute", AttrPosition)
	}
	n := g.VertexCount()
	for _, a := range g.Attributes {
		if a.Size <= 0 || a.Size > 4 {
			return fmt.Errorf("attribute %s: invalid size %d", a.Name, a.Size)
		}
		if len(a.Data) != n*int(a.Size) {
			return fmt.Errorf("attribute %s: %d floats for %d vertices of size %d",
				a.Name, len(a.Data), n, a.Size)
		}
	}
	for i, idx := range g.Indices {
		if int(idx) >= n {
			return fmt.Errorf("index %d: %d out of range for %d vertices", i, idx, n)
		}
	}
	return nil
}

// ModeName returns a readable draw mode for logging.
func ModeName(mode uint32) string {
	switch mode {
	case gpu.Points:
		return "points"
	case gpu.Lines:
		return "lines"
	case gpu.LineLoop:
		return "line-loop"
	case gpu.LineStrip:
		return "line-strip"
	case gpu.Triangles:
		return "triangles"
	case gpu.TriangleStrip:
		return "triangle-strip"
	case gpu.TriangleFan:
		return "triangle-fan"
	}
	return fmt.Sprintf("mode(%d)", mode)
}
