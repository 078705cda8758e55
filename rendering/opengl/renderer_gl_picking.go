package opengl

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"simpleblocks/core"
	"simpleblocks/logging"
)

// HandleMouseClick casts a ray through the cursor and logs the nearest
// non-empty block it hits.
func (r *VolumeRenderer) HandleMouseClick(xpos, ypos float64) {
	if len(r.pickable) == 0 {
		return
	}
	if r.viewDirty {
		r.updateMatrices()
	}
	invViewProj := r.projMatrix.Mul4(r.viewMatrix).Inv()
	origin, dir := screenRay(float32(xpos), float32(ypos), float32(r.width), float32(r.height), invViewProj)

	b, t := pickBlock(r.pickable, origin, dir)
	if b == nil {
		logging.Debugf("Pick at (%.0f,%.0f) hit no block", xpos, ypos)
		return
	}
	logging.Infof("Picked block %s at distance %.3f", b, t)
}

// SetPickable sets the blocks HandleMouseClick searches. Blocks marked empty
// at click time are ignored, so the full grid may be passed once.
func (r *VolumeRenderer) SetPickable(blocks []*core.Block) {
	r.pickable = blocks
}

// screenRay returns the world space ray through a window pixel.
func screenRay(xpos, ypos, width, height float32, invViewProj mgl32.Mat4) (mgl32.Vec3, mgl32.Vec3) {
	x := (2.0*xpos)/width - 1.0
	y := 1.0 - (2.0*ypos)/height // Flip Y

	nearWorld := invViewProj.Mul4x1(mgl32.Vec4{x, y, -1.0, 1.0})
	farWorld := invViewProj.Mul4x1(mgl32.Vec4{x, y, 1.0, 1.0})

	// Perspective divide
	nearWorld = nearWorld.Mul(1.0 / nearWorld[3])
	farWorld = farWorld.Mul(1.0 / farWorld[3])

	origin := nearWorld.Vec3()
	return origin, farWorld.Vec3().Sub(origin).Normalize()
}

// rayBoxIntersect returns the entry distance of a ray into an axis aligned
// box, or false if the ray misses it or the box is behind the ray. A ray
// starting inside the box enters at 0.
func rayBoxIntersect(origin, dir, lo, hi mgl32.Vec3) (float32, bool) {
	tmin := float32(math.Inf(-1))
	tmax := float32(math.Inf(1))
	for a := 0; a < 3; a++ {
		if dir[a] == 0 {
			if origin[a] < lo[a] || origin[a] > hi[a] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[a]
		t0 := (lo[a] - origin[a]) * inv
		t1 := (hi[a] - origin[a]) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tmin {
			tmin = t0
		}
		if t1 < tmax {
			tmax = t1
		}
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		tmin = 0
	}
	return tmin, true
}

// pickBlock returns the non-empty block whose bounds the ray enters first.
func pickBlock(blocks []*core.Block, origin, dir mgl32.Vec3) (*core.Block, float32) {
	var best *core.Block
	bestT := float32(math.Inf(1))
	for _, b := range blocks {
		if b.Empty() {
			continue
		}
		half := b.Scale().Mul(0.5)
		t, hit := rayBoxIntersect(origin, dir, b.Origin().Sub(half), b.Origin().Add(half))
		if hit && t < bestT {
			best, bestT = b, t
		}
	}
	return best, bestT
}
