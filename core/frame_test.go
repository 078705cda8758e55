package core

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

type drawCall struct {
	tex        Texture
	mvp        mgl32.Mat4
	baseVertex int32
	count      int32
}

// recordingDevice captures the calls a frame makes.
type recordingDevice struct {
	unbound bool
	bindErr map[Texture]error

	boxes    int
	programs int
	bound    Texture
	mvp      mgl32.Mat4
	draws    []drawCall
}

func (d *recordingDevice) GeometryBound() bool                 { return !d.unbound }
func (d *recordingDevice) DrawBoundingBox(mgl32.Mat4)          { d.boxes++ }
func (d *recordingDevice) UseVolumeProgram()                   { d.programs++ }
func (d *recordingDevice) SetModelViewProjection(m mgl32.Mat4) { d.mvp = m }

func (d *recordingDevice) BindBlockTexture(tex Texture) error {
	if err := d.bindErr[tex]; err != nil {
		return err
	}
	d.bound = tex
	return nil
}

func (d *recordingDevice) DrawSlices(baseVertex, count int32) {
	d.draws = append(d.draws, drawCall{d.bound, d.mvp, baseVertex, count})
}

func filteredRampGrid(t *testing.T, tmin, tmax float32) *BlockGrid {
	t.Helper()
	g := newRampGrid(t)
	if _, err := Filter(g, rampVolume(), tmin, tmax); err != nil {
		t.Fatal(err)
	}
	for _, b := range g.Blocks() {
		b.SetTexture(&fakeTexture{valid: true})
	}
	return g
}

func testContext() FrameContext {
	eye := mgl32.Vec3{0, 0, 3}
	return FrameContext{
		View:       mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}),
		Projection: mgl32.Perspective(mgl32.DegToRad(50), 1, 0.1, 100),
		CameraPos:  eye,
		ViewDir:    mgl32.Vec3{0, 0.2, -1},
	}
}

func TestRenderDrawsOnlyNonEmptyBlocks(t *testing.T) {
	g := filteredRampGrid(t, 60, 100)
	fr := NewFrameRenderer(8, nil)
	dev := &recordingDevice{}

	// Hand the renderer every block so the per-block empty check is exercised.
	stats, err := fr.Render(dev, append([]*Block(nil), g.Blocks()...), testContext())
	if err != nil {
		t.Fatal(err)
	}

	live := len(g.NonEmpty())
	if stats.Drawn != live || len(dev.draws) != live {
		t.Errorf("drew %d blocks (%d calls), want %d", stats.Drawn, len(dev.draws), live)
	}
	if stats.SkippedEmpty != g.EmptyCount() {
		t.Errorf("skipped %d empty blocks, want %d", stats.SkippedEmpty, g.EmptyCount())
	}
	for _, b := range g.Blocks() {
		if !b.Empty() {
			continue
		}
		for _, d := range dev.draws {
			if d.tex == b.Texture() {
				t.Errorf("empty block %s was drawn", b.IJK())
			}
		}
	}
	if dev.programs != 1 {
		t.Errorf("volume program bound %d times, want once per frame", dev.programs)
	}
}

func TestRenderUsesOneOrientationPerFrame(t *testing.T) {
	g := filteredRampGrid(t, 0, 100)
	fr := NewFrameRenderer(8, nil)
	dev := &recordingDevice{}
	ctx := testContext()

	stats, err := fr.Render(dev, g.NonEmpty(), ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := SliceOrientation{XY, true}
	if stats.Orientation != want {
		t.Errorf("orientation %s, want %s", stats.Orientation, want)
	}
	for _, d := range dev.draws {
		if d.baseVertex != BaseVertex(want, 8) {
			t.Errorf("draw at base vertex %d, want %d", d.baseVertex, BaseVertex(want, 8))
		}
		if d.count != ElementsPerQuad*8 {
			t.Errorf("draw of %d elements, want %d", d.count, ElementsPerQuad*8)
		}
	}
}

func TestRenderSetsModelViewProjectionPerBlock(t *testing.T) {
	g := filteredRampGrid(t, 0, 100)
	fr := NewFrameRenderer(2, CameraDistance{})
	dev := &recordingDevice{}
	ctx := testContext()
	live := g.NonEmpty()

	if _, err := fr.Render(dev, live, ctx); err != nil {
		t.Fatal(err)
	}
	vp := ctx.Projection.Mul4(ctx.View)
	for i, d := range dev.draws {
		want := vp.Mul4(live[i].WorldMatrix())
		if !d.mvp.ApproxEqual(want) {
			t.Errorf("draw %d: mvp does not match block %s", i, live[i].IJK())
		}
	}
}

func TestRenderSkipsBlocksWithoutTextures(t *testing.T) {
	g := filteredRampGrid(t, 0, 100)
	blocks := g.Blocks()
	blocks[0].Release()
	blocks[1].Texture().(*fakeTexture).valid = false
	failing := blocks[2].Texture()

	dev := &recordingDevice{bindErr: map[Texture]error{failing: errors.New("bind failed")}}
	stats, err := NewFrameRenderer(4, nil).Render(dev, g.NonEmpty(), testContext())
	if err != nil {
		t.Fatal(err)
	}
	if stats.SkippedTexture != 3 || stats.Drawn != 5 {
		t.Errorf("stats %+v, want 3 skipped and 5 drawn", stats)
	}
}

func TestRenderAbortsWithoutGeometry(t *testing.T) {
	g := filteredRampGrid(t, 0, 100)
	dev := &recordingDevice{unbound: true}
	_, err := NewFrameRenderer(4, nil).Render(dev, g.NonEmpty(), testContext())
	if !errors.Is(err, ErrGeometryUnbound) {
		t.Fatalf("expected ErrGeometryUnbound, got %v", err)
	}
	if len(dev.draws) != 0 || dev.boxes != 0 {
		t.Errorf("aborted frame issued %d draws, %d boxes", len(dev.draws), dev.boxes)
	}
}

func TestRenderBoundingBoxes(t *testing.T) {
	g := filteredRampGrid(t, 60, 100)
	fr := NewFrameRenderer(4, nil)
	dev := &recordingDevice{}

	if _, err := fr.Render(dev, g.NonEmpty(), testContext()); err != nil {
		t.Fatal(err)
	}
	if dev.boxes != 0 {
		t.Errorf("boxes drawn while disabled")
	}
	fr.DrawBoundingBoxes = true
	if _, err := fr.Render(dev, g.NonEmpty(), testContext()); err != nil {
		t.Fatal(err)
	}
	if dev.boxes != len(g.NonEmpty()) {
		t.Errorf("drew %d boxes, want %d", dev.boxes, len(g.NonEmpty()))
	}
}
