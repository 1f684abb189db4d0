package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/pkg/math"
)

// Plane returns a quad spanning ±aspect horizontally and ±1 vertically,
// drawn as a triangle strip closed with a repeated first index.
func Plane(aspect float32) *Geometry {
	return &Geometry{
		Attributes: []Attribute{
			{Name: AttrPosition, Size: 4, Data: []float32{
				-aspect, 1, 0, 1,
				aspect, 1, 0, 1,
				aspect, -1, 0, 1,
				-aspect, -1, 0, 1,
			}},
			{Name: AttrUV, Size: 2, Data: []float32{
				0, 1,
				1, 1,
				1, 0,
				0, 0,
			}},
		},
		Indices: []uint32{0, 1, 2, 3, 0},
		Mode:    gpu.TriangleStrip,
	}
}

// Sphere returns a UV sphere with (slices+1)*stacks vertices and
// slices*stacks*6 triangle indices. Rows run from the south pole upwards;
// within a row, consecutive stacks walk around the Y axis. slices and stacks
// must both be at least 2.
func Sphere(radius float32, stacks, slices int) *Geometry {
	if stacks < 2 {
		stacks = 2
	}
	if slices < 2 {
		slices = 2
	}

	vertexCount := (slices + 1) * stacks
	positions := make([]float32, 0, vertexCount*3)
	uvs := make([]float32, 0, vertexCount*2)

	stackStep := 1 / float32(stacks-1)
	sliceStep := 1 / float32(slices-1)

	for i := 0; i <= slices; i++ {
		theta := math32.Pi * float32(i) * sliceStep
		for j := 0; j < stacks; j++ {
			phi := 2 * math32.Pi * float32(j) * stackStep

			x := math32.Sin(theta) * math32.Cos(phi)
			y := -math32.Cos(theta)
			z := math32.Sin(phi) * math32.Sin(theta)

			positions = append(positions, x*radius, y*radius, z*radius)
			uvs = append(uvs, float32(j)*stackStep, float32(i)*sliceStep)
		}
	}

	indices := make([]uint32, 0, slices*stacks*6)
	vau := 0
	for i := 0; i < slices; i++ {
		for j := 0; j < stacks; j++ {
			next := (j + 1) % stacks
			indices = append(indices,
				uint32(vau+j), uint32(vau+next), uint32(vau+j+stacks),
				uint32(vau+next), uint32(vau+next+stacks), uint32(vau+j+stacks),
			)
		}
		vau += stacks
	}

	return &Geometry{
		Attributes: []Attribute{
			{Name: AttrPosition, Size: 3, Data: positions},
			{Name: AttrUV, Size: 2, Data: uvs},
		},
		Indices: indices,
		Mode:    gpu.Triangles,
	}
}

// cubeFaces lists the four corners of every face, counter-clockwise seen
// from outside.
var cubeFaces = [6][4][3]float32{
	{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}},     // front
	{{1, -1, -1}, {-1, -1, -1}, {-1, 1, -1}, {1, 1, -1}}, // back
	{{-1, 1, 1}, {1, 1, 1}, {1, 1, -1}, {-1, 1, -1}},     // top
	{{-1, -1, -1}, {1, -1, -1}, {1, -1, 1}, {-1, -1, 1}}, // bottom
	{{1, -1, 1}, {1, -1, -1}, {1, 1, -1}, {1, 1, 1}},     // right
	{{-1, -1, -1}, {-1, -1, 1}, {-1, 1, 1}, {-1, 1, -1}}, // left
}

// Cube returns a unit cube with separate vertices per face so every face
// gets the full texture.
func Cube() *Geometry {
	positions := make([]float32, 0, 24*3)
	uvs := make([]float32, 0, 24*2)
	indices := make([]uint32, 0, 36)

	faceUV := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for f, face := range cubeFaces {
		for k, corner := range face {
			positions = append(positions, corner[0], corner[1], corner[2])
			uvs = append(uvs, faceUV[k][0], faceUV[k][1])
		}
		base := uint32(f * 4)
		indices = append(indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}

	return &Geometry{
		Attributes: []Attribute{
			{Name: AttrPosition, Size: 3, Data: positions},
			{Name: AttrUV, Size: 2, Data: uvs},
		},
		Indices: indices,
		Mode:    gpu.Triangles,
	}
}

// PointPlane returns a width×height grid of points covering [-1, 1]² with
// texture coordinates addressing the matching texel.
func PointPlane(width, height int) *Geometry {
	if width < 1 || height < 1 {
		return &Geometry{
			Attributes: []Attribute{{Name: AttrPosition, Size: 3}, {Name: AttrUV, Size: 2}},
			Mode:       gpu.Points,
		}
	}

	n := width * height
	positions := make([]float32, 0, n*3)
	uvs := make([]float32, 0, n*2)
	indices := make([]uint32, 0, n)

	step := func(i, count int) float32 {
		if count == 1 {
			return 0
		}
		return float32(i) / float32(count-1)
	}

	for y := 0; y < height; y++ {
		v := step(y, height)
		for x := 0; x < width; x++ {
			u := step(x, width)
			positions = append(positions, u*2-1, v*2-1, 0)
			uvs = append(uvs, u, v)
			indices = append(indices, uint32(len(indices)))
		}
	}

	return &Geometry{
		Attributes: []Attribute{
			{Name: AttrPosition, Size: 3, Data: positions},
			{Name: AttrUV, Size: 2, Data: uvs},
		},
		Indices: indices,
		Mode:    gpu.Points,
	}
}

// Line returns a single segment with a constant color.
func Line(from, to, color math.Vec3) *Geometry {
	return &Geometry{
		Attributes: []Attribute{
			{Name: AttrPosition, Size: 3, Data: []float32{from.X, from.Y, from.Z, to.X, to.Y, to.Z}},
			{Name: AttrColor, Size: 3, Data: []float32{color.X, color.Y, color.Z, color.X, color.Y, color.Z}},
		},
		Indices: []uint32{0, 1},
		Mode:    gpu.Lines,
	}
}
