package overlay

import (
	"testing"

	"simpleblocks/core"
)

const floatsPerRect = 6 * floatsPerVertex

// rectWidth returns the width of rect i in a vertex slice built by appendRect.
func rectWidth(v []float32, i int) float32 {
	r := v[i*floatsPerRect:]
	return r[floatsPerVertex] - r[0]
}

func TestHUDLayout(t *testing.T) {
	v := hudVertices(Stats{Total: 8, NonEmpty: 4, Drawn: 2, FPS: 60})
	// panel, three troughs, three fills, swatch
	if n := len(v) / floatsPerRect; n != 8 {
		t.Fatalf("got %d rects, want 8", n)
	}
	if w := rectWidth(v, 2); w != barW*0.5 {
		t.Errorf("occupied bar width %v, want %v", w, barW*0.5)
	}
	if w := rectWidth(v, 4); w != barW*0.5 {
		t.Errorf("drawn bar width %v, want %v", w, barW*0.5)
	}
	if w := rectWidth(v, 6); w != barW*0.5 {
		t.Errorf("fps bar width %v, want %v", w, barW*0.5)
	}
}

func TestHUDEmptyGrid(t *testing.T) {
	v := hudVertices(Stats{})
	// panel, three troughs with no fills, swatch
	if n := len(v) / floatsPerRect; n != 5 {
		t.Fatalf("got %d rects, want 5", n)
	}
}

func TestHUDClampsFPS(t *testing.T) {
	v := hudVertices(Stats{Total: 1, NonEmpty: 1, Drawn: 1, FPS: 1000})
	if w := rectWidth(v, 6); w != barW {
		t.Errorf("fps bar width %v, want %v", w, float32(barW))
	}
}

func TestOrientationColor(t *testing.T) {
	pos := orientationColor(core.SliceOrientation{Axis: core.XZ})
	neg := orientationColor(core.SliceOrientation{Axis: core.XZ, Negative: true})
	if pos[1] != 1 || pos[0] != 0 || pos[2] != 0 {
		t.Errorf("+XZ color %v", pos)
	}
	if neg[1] != 0.5 || neg[3] != 1 {
		t.Errorf("-XZ color %v", neg)
	}
	if c := orientationColor(core.SliceOrientation{Axis: core.XY}); c[2] != 1 {
		t.Errorf("+XY color %v", c)
	}
}
