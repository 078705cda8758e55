package opengl

import (
	"github.com/go-gl/gl/v4.3-core/gl"

	"simpleblocks/core"
)

// RestartIndex ends one triangle strip inside an element buffer.
const RestartIndex uint16 = 0xFFFF

const floatsPerVertex = 4

// quad corners in the two in-plane axes, ordered around the perimeter:
// lower left, lower right, upper right, upper left.
var quadCorners = [core.VerticesPerQuad][2]float32{
	{-0.5, -0.5},
	{0.5, -0.5},
	{0.5, 0.5},
	{-0.5, 0.5},
}

// strip order for one quad, relative to its first vertex.
var quadStrip = [core.VerticesPerQuad]uint16{0, 1, 3, 2}

// sliceDepth is the position of slice i of n along the stacking axis. Slices
// sit at voxel-centered depths so none lies on a block face.
func sliceDepth(i, n int) float32 {
	return (float32(i)+0.5)/float32(n) - 0.5
}

// planeAxes returns the stacking axis and the two in-plane axes.
func planeAxes(axis core.SliceAxis) (int, int, int) {
	switch axis {
	case core.YZ:
		return 0, 1, 2
	case core.XZ:
		return 1, 0, 2
	default:
		return 2, 0, 1
	}
}

// SliceVertices returns the vertex buffer contents for all six slice stacks.
// Bucket b starts at vertex core.BaseVertex of its orientation. Positive
// stacks run from -0.5 to +0.5 along their axis, negative stacks the reverse.
func SliceVertices(slices int) []float32 {
	verts := make([]float32, 0, core.BucketCount*slices*core.VerticesPerQuad*floatsPerVertex)
	for _, axis := range []core.SliceAxis{core.YZ, core.XZ, core.XY} {
		for _, negative := range []bool{false, true} {
			verts = appendStack(verts, axis, negative, slices)
		}
	}
	return verts
}

func appendStack(verts []float32, axis core.SliceAxis, negative bool, slices int) []float32 {
	stack, u, v := planeAxes(axis)
	for i := 0; i < slices; i++ {
		depth := sliceDepth(i, slices)
		if negative {
			depth = -depth
		}
		for _, c := range quadCorners {
			var p [floatsPerVertex]float32
			p[stack] = depth
			p[u] = c[0]
			p[v] = c[1]
			p[3] = 1
			verts = append(verts, p[:]...)
		}
	}
	return verts
}

// SliceElements returns the element buffer for one stack of slices: a four
// index strip per quad followed by RestartIndex. All stacks share it through
// the base vertex offset.
func SliceElements(slices int) []uint16 {
	elems := make([]uint16, 0, core.ElementsPerQuad*slices)
	for i := 0; i < slices; i++ {
		first := uint16(i * core.VerticesPerQuad)
		for _, s := range quadStrip {
			elems = append(elems, first+s)
		}
		elems = append(elems, RestartIndex)
	}
	return elems
}

// BoxVertices are the corners of the unit cube centered on the origin. The
// first four form the z=-0.5 face, the last four the z=+0.5 face.
func BoxVertices() []float32 {
	var verts []float32
	for _, z := range []float32{-0.5, 0.5} {
		for _, c := range quadCorners {
			verts = append(verts, c[0], c[1], z, 1)
		}
	}
	return verts
}

// BoxElements draws as two line loops of four followed by four lines.
func BoxElements() []uint16 {
	return []uint16{
		0, 1, 2, 3,
		4, 5, 6, 7,
		0, 4, 1, 5, 2, 6, 3, 7,
	}
}

// meshBuffers is a VAO with its vertex and element buffers.
type meshBuffers struct {
	vao, vbo, ebo uint32
	elements      int32
}

func newMeshBuffers(verts []float32, elems []uint16) *meshBuffers {
	m := &meshBuffers{elements: int32(len(elems))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(elems)*2, gl.Ptr(elems), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, floatsPerVertex, gl.FLOAT, false, floatsPerVertex*4, gl.PtrOffset(0))

	gl.BindVertexArray(0)
	return m
}

func (m *meshBuffers) bind() {
	gl.BindVertexArray(m.vao)
}

func (m *meshBuffers) delete() {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
}
