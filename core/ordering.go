package core

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Orderer sorts the live blocks into drawing order for one frame.
type Orderer interface {
	Order(blocks []*Block, ctx FrameContext)
	Name() string
}

// ViewDirDistance orders blocks by ascending distance between the view
// direction, taken as a point (w=0), and each block origin (w=1).
//
// This is not the camera-to-block distance. It is kept because it decides
// the compositing order the renderer was tuned with; CameraDistance gives
// the exact back-to-front order.
type ViewDirDistance struct{}

func (ViewDirDistance) Name() string { return "viewdir" }

func (ViewDirDistance) Order(blocks []*Block, ctx FrameContext) {
	p := ctx.ViewDir.Vec4(0)
	sort.Slice(blocks, func(i, j int) bool {
		return ViewDirKey(p, blocks[i]) < ViewDirKey(p, blocks[j])
	})
}

// ViewDirKey is the sort key used by ViewDirDistance.
func ViewDirKey(viewDir mgl32.Vec4, b *Block) float32 {
	return viewDir.Sub(b.Origin().Vec4(1)).Len()
}

// CameraDistance orders blocks farthest from the camera first.
type CameraDistance struct{}

func (CameraDistance) Name() string { return "camera" }

func (CameraDistance) Order(blocks []*Block, ctx FrameContext) {
	eye := ctx.CameraPos
	sort.Slice(blocks, func(i, j int) bool {
		return blocks[i].Origin().Sub(eye).Len() > blocks[j].Origin().Sub(eye).Len()
	})
}

// OrdererByName returns the strategy registered under name.
func OrdererByName(name string) (Orderer, error) {
	switch name {
	case "", "viewdir":
		return ViewDirDistance{}, nil
	case "camera":
		return CameraDistance{}, nil
	}
	return nil, fmt.Errorf("unknown block ordering %q (want viewdir or camera)", name)
}
