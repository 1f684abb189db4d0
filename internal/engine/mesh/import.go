package mesh

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/logger"
)

// Import reads the first primitive of the first mesh reached from the
// document's scene, walking nodes depth first. Documents without a scene fall
// back to the first mesh. Positions, texture coordinates and indices are
// copied as stored.
func Import(path string) (*Geometry, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	m, ok := firstMesh(doc)
	if !ok || len(doc.Meshes[m].Primitives) == 0 {
		return nil, fmt.Errorf("%s: no mesh primitives", path)
	}

	prim := doc.Meshes[m].Primitives[0]
	mode, ok := primitiveModes[prim.Mode]
	if !ok {
		return nil, fmt.Errorf("%s: unsupported primitive mode %d", path, prim.Mode)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("%s: primitive has no POSITION attribute", path)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	g := &Geometry{Mode: mode}
	pos := make([]float32, 0, len(positions)*3)
	for _, p := range positions {
		pos = append(pos, p[0], p[1], p[2])
	}
	g.Attributes = append(g.Attributes, Attribute{Name: AttrPosition, Size: 3, Data: pos})

	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		coords, err := modeler.ReadTextureCoord(doc, doc.Accessors[uvIdx], nil)
		if err != nil {
			return nil, fmt.Errorf("reading texture coordinates: %w", err)
		}
		uv := make([]float32, 0, len(coords)*2)
		for _, c := range coords {
			uv = append(uv, c[0], c[1])
		}
		g.Attributes = append(g.Attributes, Attribute{Name: AttrUV, Size: 2, Data: uv})
	}

	if prim.Indices != nil {
		g.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	}

	logger.Named("mesh").Info("imported mesh",
		zap.String("path", path),
		zap.Int("mesh", m),
		zap.String("mode", ModeName(mode)),
		zap.Int("vertices", len(positions)),
		zap.Int("indices", len(g.Indices)))
	return g, nil
}

var primitiveModes = map[gltf.PrimitiveMode]uint32{
	gltf.PrimitivePoints:        gpu.Points,
	gltf.PrimitiveLines:         gpu.Lines,
	gltf.PrimitiveLineLoop:      gpu.LineLoop,
	gltf.PrimitiveLineStrip:     gpu.LineStrip,
	gltf.PrimitiveTriangles:     gpu.Triangles,
	gltf.PrimitiveTriangleStrip: gpu.TriangleStrip,
	gltf.PrimitiveTriangleFan:   gpu.TriangleFan,
}

// firstMesh returns the index of the first mesh found under the default
// scene, or scene 0 when none is marked.
func firstMesh(doc *gltf.Document) (int, bool) {
	if len(doc.Meshes) == 0 {
		return 0, false
	}
	scene := 0
	if doc.Scene != nil {
		scene = *doc.Scene
	}
	if scene >= len(doc.Scenes) {
		return 0, true
	}

	seen := make(map[int]bool)
	var walk func(nodes []int) (int, bool)
	walk = func(nodes []int) (int, bool) {
		for _, n := range nodes {
			if n < 0 || n >= len(doc.Nodes) || seen[n] {
				continue
			}
			seen[n] = true
			node := doc.Nodes[n]
			if node.Mesh != nil && *node.Mesh < len(doc.Meshes) {
				return *node.Mesh, true
			}
			if m, ok := walk(node.Children); ok {
				return m, true
			}
		}
		return 0, false
	}
	if m, ok := walk(doc.Scenes[scene].Nodes); ok {
		return m, true
	}
	return 0, true
}
