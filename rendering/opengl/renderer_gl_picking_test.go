package opengl

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"simpleblocks/core"
)

func TestRayBoxIntersect(t *testing.T) {
	lo := mgl32.Vec3{-0.5, -0.5, -0.5}
	hi := mgl32.Vec3{0.5, 0.5, 0.5}
	tests := []struct {
		name   string
		origin mgl32.Vec3
		dir    mgl32.Vec3
		hit    bool
		t      float32
	}{
		{"straight on", mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}, true, 4.5},
		{"from inside", mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}, true, 0},
		{"pointing away", mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1}, false, 0},
		{"parallel outside", mgl32.Vec3{2, 0, 5}, mgl32.Vec3{0, 0, -1}, false, 0},
		{"diagonal miss", mgl32.Vec3{0, 2, 2}, mgl32.Vec3{0, 1, -1}.Normalize(), false, 0},
	}
	for _, tc := range tests {
		got, hit := rayBoxIntersect(tc.origin, tc.dir, lo, hi)
		if hit != tc.hit {
			t.Errorf("%s: hit = %t, want %t", tc.name, hit, tc.hit)
			continue
		}
		if hit && !mgl32.FloatEqual(got, tc.t) {
			t.Errorf("%s: t = %v, want %v", tc.name, got, tc.t)
		}
	}
}

func TestPickBlockNearest(t *testing.T) {
	g, err := core.NewBlockGrid(core.Point3{2, 2, 2}, core.Point3{4, 4, 4})
	if err != nil {
		t.Fatal(err)
	}
	// Looking down -z through x=y=0.25 passes through blocks (1,1,1) then (1,1,0).
	b, dist := pickBlock(g.Blocks(), mgl32.Vec3{0.25, 0.25, 5}, mgl32.Vec3{0, 0, -1})
	if b == nil {
		t.Fatal("expected a hit")
	}
	if b.IJK() != (core.Point3{1, 1, 1}) {
		t.Errorf("picked %s, want (1,1,1)", b.IJK())
	}
	if !mgl32.FloatEqual(dist, 4.5) {
		t.Errorf("distance %v, want 4.5", dist)
	}

	if b, _ := pickBlock(g.Blocks(), mgl32.Vec3{3, 3, 5}, mgl32.Vec3{0, 0, -1}); b != nil {
		t.Errorf("picked %s outside the volume", b.IJK())
	}
}

func TestScreenRayCenter(t *testing.T) {
	origin, dir := screenRay(50, 50, 100, 100, mgl32.Ident4())
	if !origin.ApproxEqual(mgl32.Vec3{0, 0, -1}) {
		t.Errorf("origin %v", origin)
	}
	if !dir.ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("dir %v", dir)
	}
}

func TestPickBlockSkipsEmpty(t *testing.T) {
	g, err := core.NewBlockGrid(core.Point3{2, 2, 2}, core.Point3{4, 4, 4})
	if err != nil {
		t.Fatal(err)
	}
	// Voxels with z >= 2 are 1, the rest 0, so only the k=1 blocks survive.
	data := make([]float32, 64)
	for i := 32; i < 64; i++ {
		data[i] = 1
	}
	if _, err := core.Filter(g, data, 0.5, 1); err != nil {
		t.Fatal(err)
	}

	// From -z the ray enters empty block (1,1,0) before (1,1,1).
	origin, dir := mgl32.Vec3{0.25, 0.25, -5}, mgl32.Vec3{0, 0, 1}
	b, dist := pickBlock(g.Blocks(), origin, dir)
	if b == nil {
		t.Fatal("expected a hit")
	}
	if b.IJK() != (core.Point3{1, 1, 1}) {
		t.Errorf("picked %s, want (1,1,1)", b.IJK())
	}
	if !mgl32.FloatEqual(dist, 5) {
		t.Errorf("distance %v, want 5", dist)
	}

	// After refiltering with a window nothing passes, nothing is pickable.
	if _, err := core.Filter(g, data, 2, 3); err != nil {
		t.Fatal(err)
	}
	if b, _ := pickBlock(g.Blocks(), origin, dir); b != nil {
		t.Errorf("picked empty block %s", b.IJK())
	}
}
