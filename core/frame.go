package core

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"simpleblocks/logging"
)

// ErrGeometryUnbound means the shared slice geometry was not bound when a
// frame was rendered. It is a programming error; the frame is abandoned.
var ErrGeometryUnbound = errors.New("slice geometry buffer is not bound")

// FrameContext is the camera state for one frame.
type FrameContext struct {
	View       mgl32.Mat4
	Projection mgl32.Mat4
	CameraPos  mgl32.Vec3
	ViewDir    mgl32.Vec3
}

// ViewProjection returns projection * view.
func (c FrameContext) ViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.View)
}

// Device is the GPU side of a frame.
type Device interface {
	// GeometryBound reports whether the shared slice buffers are in place.
	GeometryBound() bool

	// DrawBoundingBox draws a unit wireframe cube transformed by mvp.
	DrawBoundingBox(mvp mgl32.Mat4)

	// UseVolumeProgram binds the slice program and slice geometry.
	UseVolumeProgram()

	// BindBlockTexture binds tex to the block texture unit.
	BindBlockTexture(tex Texture) error

	SetModelViewProjection(mvp mgl32.Mat4)

	// DrawSlices issues one indexed draw of elementCount indices starting at
	// baseVertex in the shared vertex buffer.
	DrawSlices(baseVertex, elementCount int32)
}

// FrameStats reports what one frame drew.
type FrameStats struct {
	Orientation    SliceOrientation
	BaseVertex     int32
	Drawn          int
	SkippedEmpty   int
	SkippedTexture int
}

// FrameRenderer draws the live blocks of a grid as slice stacks.
type FrameRenderer struct {
	Selector          *OrientationSelector
	Orderer           Orderer
	DrawBoundingBoxes bool
}

func NewFrameRenderer(slicesPerBlock int, orderer Orderer) *FrameRenderer {
	if orderer == nil {
		orderer = ViewDirDistance{}
	}
	return &FrameRenderer{
		Selector: NewOrientationSelector(slicesPerBlock),
		Orderer:  orderer,
	}
}

// Render draws one frame. live is reordered in place.
func (fr *FrameRenderer) Render(dev Device, live []*Block, ctx FrameContext) (FrameStats, error) {
	var stats FrameStats
	if !dev.GeometryBound() {
		return stats, ErrGeometryUnbound
	}

	fr.Orderer.Order(live, ctx)
	vp := ctx.ViewProjection()

	if fr.DrawBoundingBoxes {
		for _, b := range live {
			if !b.empty {
				dev.DrawBoundingBox(vp.Mul4(b.WorldMatrix()))
			}
		}
	}

	stats.Orientation, stats.BaseVertex = fr.Selector.Select(ctx.ViewDir)
	count := int32(ElementsPerQuad * fr.Selector.SlicesPerBlock)

	dev.UseVolumeProgram()
	for _, b := range live {
		if b.empty {
			stats.SkippedEmpty++
			continue
		}
		if b.tex == nil || !b.tex.Valid() {
			stats.SkippedTexture++
			continue
		}
		if err := dev.BindBlockTexture(b.tex); err != nil {
			logging.Debugf("Skipping block %s: %v", b.ijk, err)
			stats.SkippedTexture++
			continue
		}
		dev.SetModelViewProjection(vp.Mul4(b.WorldMatrix()))
		dev.DrawSlices(stats.BaseVertex, count)
		stats.Drawn++
	}
	return stats, nil
}
