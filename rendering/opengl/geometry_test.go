package opengl

import (
	"testing"

	"simpleblocks/core"
)

func vertexAt(verts []float32, i int32) [4]float32 {
	var v [4]float32
	copy(v[:], verts[int(i)*floatsPerVertex:])
	return v
}

func TestSliceVerticesSize(t *testing.T) {
	const slices = 8
	verts := SliceVertices(slices)
	want := core.BucketCount * slices * core.VerticesPerQuad * floatsPerVertex
	if len(verts) != want {
		t.Fatalf("got %d floats, want %d", len(verts), want)
	}
}

// The first vertex of every bucket lies at the base vertex the orientation
// selector computes, on the plane perpendicular to the bucket's axis.
func TestSliceBucketsMatchBaseVertex(t *testing.T) {
	const slices = 4
	verts := SliceVertices(slices)
	first := sliceDepth(0, slices)

	tests := []struct {
		o     core.SliceOrientation
		axis  int
		depth float32
	}{
		{core.SliceOrientation{Axis: core.YZ}, 0, first},
		{core.SliceOrientation{Axis: core.YZ, Negative: true}, 0, -first},
		{core.SliceOrientation{Axis: core.XZ}, 1, first},
		{core.SliceOrientation{Axis: core.XZ, Negative: true}, 1, -first},
		{core.SliceOrientation{Axis: core.XY}, 2, first},
		{core.SliceOrientation{Axis: core.XY, Negative: true}, 2, -first},
	}
	for _, tc := range tests {
		base := core.BaseVertex(tc.o, slices)
		for k := int32(0); k < core.VerticesPerQuad; k++ {
			v := vertexAt(verts, base+k)
			if v[tc.axis] != tc.depth {
				t.Errorf("%s vertex %d: axis %d at %v, want %v", tc.o, k, tc.axis, v[tc.axis], tc.depth)
			}
			if v[3] != 1 {
				t.Errorf("%s vertex %d: w = %v", tc.o, k, v[3])
			}
		}
	}
}

func TestSliceStackDirection(t *testing.T) {
	const slices = 5
	verts := SliceVertices(slices)
	for _, o := range []core.SliceOrientation{
		{Axis: core.XY},
		{Axis: core.XY, Negative: true},
	} {
		base := core.BaseVertex(o, slices)
		prev := vertexAt(verts, base)[2]
		for i := int32(1); i < slices; i++ {
			z := vertexAt(verts, base+i*core.VerticesPerQuad)[2]
			if !o.Negative && z <= prev {
				t.Errorf("%s: slice %d at %v after %v", o, i, z, prev)
			}
			if o.Negative && z >= prev {
				t.Errorf("%s: slice %d at %v after %v", o, i, z, prev)
			}
			prev = z
		}
	}
}

func TestSliceDepthInsideBlock(t *testing.T) {
	if d := sliceDepth(0, 1); d != 0 {
		t.Errorf("single slice at %v, want 0", d)
	}
	for i := 0; i < 16; i++ {
		d := sliceDepth(i, 16)
		if d <= -0.5 || d >= 0.5 {
			t.Errorf("slice %d at %v is on or outside a block face", i, d)
		}
	}
}

func TestSliceElements(t *testing.T) {
	elems := SliceElements(2)
	want := []uint16{0, 1, 3, 2, RestartIndex, 4, 5, 7, 6, RestartIndex}
	if len(elems) != len(want) {
		t.Fatalf("got %v, want %v", elems, want)
	}
	for i := range want {
		if elems[i] != want[i] {
			t.Fatalf("got %v, want %v", elems, want)
		}
	}
	if n := len(SliceElements(64)); n != core.ElementsPerQuad*64 {
		t.Errorf("64 slices: %d elements", n)
	}
}

func TestBoxGeometry(t *testing.T) {
	verts := BoxVertices()
	if len(verts) != 8*floatsPerVertex {
		t.Fatalf("got %d floats", len(verts))
	}
	for i := int32(0); i < 8; i++ {
		v := vertexAt(verts, i)
		for a := 0; a < 3; a++ {
			if v[a] != -0.5 && v[a] != 0.5 {
				t.Errorf("corner %d: %v not on unit cube", i, v)
			}
		}
	}
	elems := BoxElements()
	if len(elems) != 16 {
		t.Fatalf("got %d elements", len(elems))
	}
	// Each of the four connecting edges joins a bottom and top corner that
	// differ only in z.
	for i := 8; i < 16; i += 2 {
		a, b := vertexAt(verts, int32(elems[i])), vertexAt(verts, int32(elems[i+1]))
		if a[0] != b[0] || a[1] != b[1] || a[2] == b[2] {
			t.Errorf("edge %d-%d is not vertical: %v %v", elems[i], elems[i+1], a, b)
		}
	}
}
