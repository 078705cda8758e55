package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func shuffledBlocks(t *testing.T) []*Block {
	t.Helper()
	g, err := NewBlockGrid(Point3{3, 3, 3}, Point3{3, 3, 3})
	if err != nil {
		t.Fatal(err)
	}
	blocks := append([]*Block(nil), g.Blocks()...)
	// deterministic shuffle
	for i := range blocks {
		j := (i*7 + 3) % len(blocks)
		blocks[i], blocks[j] = blocks[j], blocks[i]
	}
	return blocks
}

func TestViewDirDistanceOrder(t *testing.T) {
	for _, dir := range []mgl32.Vec3{{0, 0, 1}, {1, 0, 0}, {-0.3, 0.8, 0.1}} {
		blocks := shuffledBlocks(t)
		ViewDirDistance{}.Order(blocks, FrameContext{ViewDir: dir})
		p := dir.Vec4(0)
		for i := 1; i < len(blocks); i++ {
			if ViewDirKey(p, blocks[i-1]) > ViewDirKey(p, blocks[i]) {
				t.Fatalf("dir %v: distances decrease at %d", dir, i)
			}
		}
	}
}

func TestViewDirDistanceFirstBlockFacesViewDir(t *testing.T) {
	blocks := shuffledBlocks(t)
	ViewDirDistance{}.Order(blocks, FrameContext{ViewDir: mgl32.Vec3{0, 0, 1}})
	if got := blocks[0].IJK(); got != (Point3{1, 1, 2}) {
		t.Errorf("first block %s, want (1,1,2)", got)
	}
}

func TestCameraDistanceOrder(t *testing.T) {
	eye := mgl32.Vec3{2, 1, 3}
	blocks := shuffledBlocks(t)
	CameraDistance{}.Order(blocks, FrameContext{CameraPos: eye})
	for i := 1; i < len(blocks); i++ {
		prev := blocks[i-1].Origin().Sub(eye).Len()
		cur := blocks[i].Origin().Sub(eye).Len()
		if prev < cur {
			t.Fatalf("block %d is farther than block %d", i, i-1)
		}
	}
	if got := blocks[len(blocks)-1].IJK(); got != (Point3{2, 2, 2}) {
		t.Errorf("nearest block drawn last should be (2,2,2), got %s", got)
	}
}

func TestOrdererByName(t *testing.T) {
	for name, want := range map[string]string{"": "viewdir", "viewdir": "viewdir", "camera": "camera"} {
		o, err := OrdererByName(name)
		if err != nil {
			t.Fatal(err)
		}
		if o.Name() != want {
			t.Errorf("OrdererByName(%q) = %s, want %s", name, o.Name(), want)
		}
	}
	if _, err := OrdererByName("nearest"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
